package handler

import (
	"strconv"
	"strings"

	"movie-tracker/internal/service"
	"movie-tracker/internal/session"

	"github.com/gin-gonic/gin"
)

// movieForm 各页面提交收藏、评分、评论时附带的电影信息
type movieForm struct {
	MovieID     string `form:"movieId"`
	Title       string `form:"title"`
	PosterPath  string `form:"poster_path"`
	ReleaseDate string `form:"release_date"`
	Overview    string `form:"overview"`
}

func (f movieForm) input(movieID int) service.MovieInput {
	return service.MovieInput{
		ID:          movieID,
		Title:       strings.TrimSpace(f.Title),
		PosterPath:  optional(f.PosterPath),
		ReleaseDate: optional(f.ReleaseDate),
		Overview:    optional(f.Overview),
	}
}

type commentForm struct {
	movieForm
	Content string `form:"content"`
}

type deleteCommentForm struct {
	CommentID string `form:"commentId" binding:"required"`
}

type sendRequestForm struct {
	ReceiverID string `form:"receiverId" binding:"required"`
}

type respondRequestForm struct {
	RequestID string `form:"requestId" binding:"required"`
}

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type registerForm struct {
	Username string `form:"username" binding:"required"`
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// parseMovieID 解析正整数电影ID
func parseMovieID(raw string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pageParam 读取 page 查询参数，非法值按第一页处理
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// currentUserID 当前登录用户ID，未登录为空串
func currentUserID(c *gin.Context) string {
	if u := session.CurrentUser(c); u != nil {
		return u.ID
	}
	return ""
}
