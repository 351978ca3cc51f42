package handler

import (
	"net/http"

	"movie-tracker/internal/service"
	"movie-tracker/internal/session"
	"movie-tracker/pkg/response"

	"github.com/gin-gonic/gin"
)

// HomePath 登录、登出后跳转的地址
const HomePath = "/"

type UserHandler struct {
	users    *service.UserService
	sessions *session.Manager
}

func NewUserHandler(users *service.UserService, sessions *session.Manager) *UserHandler {
	return &UserHandler{users: users, sessions: sessions}
}

// AuthPage 登录页与注册页数据
func (h *UserHandler) AuthPage(c *gin.Context) {
	response.Success(c, gin.H{"user": response.FilterUserInfo(session.CurrentUser(c))})
}

// Register 用户注册
func (h *UserHandler) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, "All fields are required.")
		return
	}
	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Registration successful.", gin.H{
		"success": true,
		"user":    response.FilterUserInfo(user),
	})
}

// Login 用户登录，成功后写入会话 Cookie 并 303 跳转首页
func (h *UserHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, "Username/Email and password are required.")
		return
	}
	user, err := h.users.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.sessions.Login(c, user); err != nil {
		response.FromError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, HomePath)
}

// Logout 清除会话 Cookie
func (h *UserHandler) Logout(c *gin.Context) {
	h.sessions.Logout(c)
	c.Redirect(http.StatusSeeOther, HomePath)
}

// Profile 个人主页（需要登录）
func (h *UserHandler) Profile(c *gin.Context) {
	profile, err := h.users.Profile(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, profile)
}
