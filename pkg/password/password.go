package password

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	// Cost bcrypt 计算成本
	Cost = 10
	// MinLength 密码最小长度
	MinLength = 8
	// MaxBytes bcrypt 只接受不超过 72 字节的密码
	MaxBytes = 72
)

var (
	// ErrTooShort 密码长度不足
	ErrTooShort = errors.New("password must be at least 8 characters")
	// ErrTooLong 密码超过 bcrypt 上限
	ErrTooLong = errors.New("password must be at most 72 bytes")
)

// Hash 生成密码哈希
func Hash(plain string) (string, error) {
	if utf8.RuneCountInString(plain) < MinLength {
		return "", ErrTooShort
	}
	if len(plain) > MaxBytes {
		return "", ErrTooLong
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify 校验密码
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
