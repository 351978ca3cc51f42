package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"movie-tracker/config"

	"gorm.io/gorm"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.DatabaseConfig
		want    string
		wantErr bool
	}{
		{
			name: "mysql",
			cfg: config.DatabaseConfig{Driver: "mysql", Username: "u", Password: "p", Host: "h",
				Port: 3306, Database: "d", Charset: "utf8mb4"},
			want: "u:p@tcp(h:3306)/d?charset=utf8mb4&parseTime=True&loc=Local",
		},
		{
			name: "postgres",
			cfg: config.DatabaseConfig{Driver: "postgres", Username: "u", Password: "p", Host: "h",
				Port: 5432, Database: "d", SSLMode: "disable"},
			want: "host=h port=5432 user=u password=p dbname=d sslmode=disable",
		},
		{
			name: "sqlite",
			cfg:  config.DatabaseConfig{Driver: "sqlite", Database: "file::memory:"},
			want: "file::memory:",
		},
		{
			name:    "unknown driver",
			cfg:     config.DatabaseConfig{Driver: "oracle"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DSN(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInitDBSQLite(t *testing.T) {
	db, err := InitDB(config.DatabaseConfig{Driver: "sqlite", Database: ":memory:", MaxIdle: 1, MaxOpen: 1})
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer CloseDB(db)

	if err := HealthCheck(db); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}
}

func TestHealthCheckNil(t *testing.T) {
	err := HealthCheck(nil)
	if err == nil || !strings.Contains(err.Error(), "未初始化") {
		t.Errorf("HealthCheck(nil) = %v, want not-initialized error", err)
	}
}

type recordingWriter struct {
	lines []string
}

func (w *recordingWriter) Printf(format string, args ...interface{}) {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	w := &recordingWriter{}
	l := newGormLogger(w, false)
	sql := func() (string, int64) { return "SELECT * FROM `favorite_item`", 0 }

	l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	if len(w.lines) != 0 {
		t.Fatalf("record-not-found was logged: %q", w.lines)
	}

	l.Trace(context.Background(), time.Now(), sql, errors.New("disk I/O error"))
	if len(w.lines) != 1 || !strings.Contains(w.lines[0], "disk I/O error") {
		t.Errorf("store error lines = %q, want one line with the error", w.lines)
	}
}
