package session

import (
	"strings"

	"movie-tracker/config"
	"movie-tracker/internal/model"
	"movie-tracker/pkg/jwt"
)

// TokenCodec Cookie 值与用户ID之间的转换
type TokenCodec interface {
	Encode(user *model.User) (string, error)
	Decode(token string) (string, error)
}

// NewCodec session.signed 为 true 时使用签名令牌，否则 Cookie 值即用户ID
func NewCodec(cfg config.SessionConfig) TokenCodec {
	if cfg.Signed {
		return signedCodec{jwt: jwt.NewJWTService(cfg)}
	}
	return rawCodec{}
}

type rawCodec struct{}

func (rawCodec) Encode(user *model.User) (string, error) {
	return user.ID, nil
}

func (rawCodec) Decode(token string) (string, error) {
	return strings.TrimSpace(token), nil
}

type signedCodec struct {
	jwt *jwt.JWTService
}

func (c signedCodec) Encode(user *model.User) (string, error) {
	return c.jwt.GenerateToken(user.ID, user.Username)
}

func (c signedCodec) Decode(token string) (string, error) {
	claims, err := c.jwt.ValidateToken(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
