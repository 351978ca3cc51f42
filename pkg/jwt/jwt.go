package jwt

import (
	"errors"
	"fmt"
	"time"

	"movie-tracker/config"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// JWTService 签发与校验会话令牌
// 使用对称密钥 HS256，Subject 为用户ID，有效期与会话 Cookie 一致
type JWTService struct {
	secretKey   []byte
	issuer      string
	expireAfter time.Duration
	now         func() time.Time
}

// SessionClaims 会话令牌载荷
type SessionClaims struct {
	Username string `json:"username,omitempty"`
	jwtv5.RegisteredClaims
}

// NewJWTService 创建 JWT 服务
func NewJWTService(cfg config.SessionConfig) *JWTService {
	return &JWTService{
		secretKey:   []byte(cfg.Secret),
		issuer:      cfg.Issuer,
		expireAfter: cfg.MaxAge,
		now:         time.Now,
	}
}

// WithClock 替换时间来源
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

// GenerateToken 为用户签发会话令牌
func (s *JWTService) GenerateToken(userID, username string) (string, error) {
	if userID == "" {
		return "", errors.New("userID is required")
	}
	if len(s.secretKey) == 0 {
		return "", errors.New("session secret is not configured")
	}

	now := s.now()
	claims := &SessionClaims{
		Username: username,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(s.expireAfter)),
		},
	}

	signed, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token failed: %w", err)
	}
	return signed, nil
}

// ValidateToken 校验签名、签发者与有效期，返回载荷
func (s *JWTService) ValidateToken(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, errors.New("token is empty")
	}

	claims := &SessionClaims{}
	parsed, err := jwtv5.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwtv5.Token) (interface{}, error) {
			if token.Method != jwtv5.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secretKey, nil
		},
		jwtv5.WithIssuer(s.issuer),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
