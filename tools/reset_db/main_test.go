package main

import (
	"database/sql"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"movie-tracker/config"
	"movie-tracker/internal/model"
	dbPkg "movie-tracker/pkg/db"
)

func TestClearStatements(t *testing.T) {
	tests := []struct {
		driver      string
		hasSequence bool
		want        []string
	}{
		{"mysql", false, []string{"DELETE FROM `user`", "ALTER TABLE `user` AUTO_INCREMENT = 1"}},
		{"postgres", false, []string{`TRUNCATE TABLE "user" RESTART IDENTITY CASCADE`}},
		{"sqlite3", false, []string{`DELETE FROM "user"`}},
		{"sqlite3", true, []string{`DELETE FROM "user"`, "DELETE FROM sqlite_sequence WHERE name = 'user'"}},
	}
	for _, tt := range tests {
		got := clearStatements(tt.driver, "user", tt.hasSequence)
		if strings.Join(got, ";") != strings.Join(tt.want, ";") {
			t.Errorf("clearStatements(%s, %v) = %q, want %q", tt.driver, tt.hasSequence, got, tt.want)
		}
	}
}

func TestSQLDriverName(t *testing.T) {
	for in, want := range map[string]string{"": "mysql", "mysql": "mysql", "postgres": "postgres", "sqlite": "sqlite3"} {
		if got := sqlDriverName(in); got != want {
			t.Errorf("sqlDriverName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResetTablesClearsSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reset.db")
	gdb, err := dbPkg.InitDB(config.DatabaseConfig{Driver: "sqlite", Database: path, MaxIdle: 1, MaxOpen: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := dbPkg.AutoMigrate(gdb, model.All()...); err != nil {
		t.Fatal(err)
	}
	if err := gdb.Create(&model.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}).Error; err != nil {
		t.Fatal(err)
	}
	if err := gdb.Create(&model.Movie{ID: 42, Title: "Inception"}).Error; err != nil {
		t.Fatal(err)
	}
	_ = dbPkg.CloseDB(gdb)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if failed := resetTables(db, "sqlite3", io.Discard); failed != 0 {
		t.Fatalf("resetTables failed %d statements", failed)
	}
	for _, table := range []string{"user", "movie"} {
		var n int
		if err := db.QueryRow(`SELECT count(*) FROM "` + table + `"`).Scan(&n); err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Errorf("table %s has %d rows after reset", table, n)
		}
	}
}
