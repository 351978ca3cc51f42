// Package session 把会话 Cookie 解析为当前用户，并提供登录校验中间件
package session

import (
	"context"
	"net/http"

	"movie-tracker/config"
	"movie-tracker/internal/model"
	"movie-tracker/pkg/logger"
	"movie-tracker/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 当前用户在 gin.Context 中的键名
const contextUserKey = "currentUser"

// LoginPath 未登录访问页面时跳转的地址
const LoginPath = "/login"

// UserLookup 根据ID查找用户
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Manager 会话解析与 Cookie 读写
type Manager struct {
	cfg   config.SessionConfig
	codec TokenCodec
	users UserLookup
}

func NewManager(cfg config.SessionConfig, users UserLookup) *Manager {
	return &Manager{cfg: cfg, codec: NewCodec(cfg), users: users}
}

// Middleware 每个请求解析一次 Cookie，结果保存在 gin.Context 中
// 无效或过期的令牌、已不存在的用户都视为未登录
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(m.cfg.CookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		userID, err := m.codec.Decode(token)
		if err != nil || userID == "" {
			logger.Debug("会话令牌无效", zap.Error(err))
			c.Next()
			return
		}

		user, err := m.users.GetByID(c.Request.Context(), userID)
		if err != nil {
			logger.Debug("会话用户不存在", zap.String("user_id", userID), zap.Error(err))
			c.Next()
			return
		}

		c.Set(contextUserKey, user)
		c.Set(logger.UserIDKey, user.ID)
		c.Next()
	}
}

// CurrentUser 当前登录用户，未登录返回 nil
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(contextUserKey); ok {
		if u, ok := v.(*model.User); ok {
			return u
		}
	}
	return nil
}

// RequirePage 页面路由：未登录时 303 跳转到登录页
func RequirePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusSeeOther, LoginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAction 表单动作：未登录时返回 401
func RequireAction() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Login 写入会话 Cookie
func (m *Manager) Login(c *gin.Context, user *model.User) error {
	token, err := m.codec.Encode(user)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(m.cfg.CookieName, token, int(m.cfg.MaxAge.Seconds()), "/", "", m.cfg.Secure, true)
	return nil
}

// Logout 删除会话 Cookie
func (m *Manager) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(m.cfg.CookieName, "", -1, "/", "", m.cfg.Secure, true)
}
