package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User 用户模型
// 索引与唯一约束：用户名唯一、邮箱唯一
// 说明：密码仅存储哈希（PasswordHash），不存储明文
// ID 使用 UUID 字符串，好友关系按字典序规范化依赖该字符串比较

type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey"`
	Username     string    `gorm:"type:varchar(64);not null;uniqueIndex;comment:用户名"`
	Email        string    `gorm:"type:varchar(128);not null;uniqueIndex;comment:邮箱"`
	PasswordHash string    `gorm:"type:varchar(255);not null;comment:密码哈希"`
	CreatedAt    time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名（因全局配置使用单数表名，这里与结构体名一致为 user）
func (User) TableName() string { return "user" }

// BeforeCreate 未指定ID时生成UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// PublicUser 对外可见的用户身份
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Public 转换为对外身份
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}
