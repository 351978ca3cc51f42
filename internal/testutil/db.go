// Package testutil 提供测试用的内存数据库
package testutil

import (
	"testing"

	"movie-tracker/config"
	"movie-tracker/internal/model"
	dbPkg "movie-tracker/pkg/db"

	"gorm.io/gorm"
)

// NewDB 创建已迁移的 SQLite 内存数据库，测试结束时自动关闭
// 内存库每个连接独立，因此连接池固定为 1
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := dbPkg.InitDB(config.DatabaseConfig{
		Driver:   "sqlite",
		Database: ":memory:",
		MaxIdle:  1,
		MaxOpen:  1,
	})
	if err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	if err := dbPkg.AutoMigrate(db, model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	t.Cleanup(func() { _ = dbPkg.CloseDB(db) })
	return db
}

// CreateUser 插入测试用户
func CreateUser(t testing.TB, db *gorm.DB, username string) *model.User {
	t.Helper()

	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}
