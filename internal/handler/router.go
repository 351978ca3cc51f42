package handler

import (
	"movie-tracker/internal/session"

	"github.com/gin-gonic/gin"
)

// Handlers 路由用到的全部处理器
type Handlers struct {
	Movie  *MovieHandler
	Friend *FriendHandler
	User   *UserHandler
	// WebSocket 推送连接，为 nil 时不注册 /ws
	WebSocket func(userIDOf func(*gin.Context) string) gin.HandlerFunc
}

// RegisterRoutes 注册页面与表单动作路由，调用前需已挂载会话中间件
func RegisterRoutes(r gin.IRouter, h Handlers) {
	page := session.RequirePage()
	action := session.RequireAction()

	// 首页与搜索
	r.GET("/", h.Movie.Home)
	r.POST("/toggleFavorite", action, h.Movie.ToggleFavorite)
	r.GET("/search", h.Movie.Search)
	r.POST("/search/toggleFavorite", action, h.Movie.ToggleFavorite)

	// 电影详情
	movie := r.Group("/movie/:id")
	{
		movie.GET("", h.Movie.MovieDetail)
		movie.POST("/toggleFavorite", action, h.Movie.MovieToggleFavorite)
		movie.POST("/updateUserData", action, h.Movie.UpdateUserData)
		movie.POST("/addComment", action, h.Movie.AddComment)
		movie.POST("/deleteComment", action, h.Movie.DeleteComment)
	}

	// 收藏
	r.GET("/favorites", page, h.Movie.Favorites)
	r.POST("/favorites/toggleFavorite", action, h.Movie.ToggleFavorite)
	r.GET("/collections", h.Movie.Collections)

	// 好友
	friends := r.Group("/friends")
	{
		friends.GET("", page, h.Friend.Page)
		friends.POST("/sendRequest", action, h.Friend.SendRequest)
		friends.POST("/acceptRequest", action, h.Friend.AcceptRequest)
		friends.POST("/declineRequest", action, h.Friend.DeclineRequest)
	}

	// 用户
	r.GET("/profile", page, h.User.Profile)
	r.GET("/login", h.User.AuthPage)
	r.POST("/login", h.User.Login)
	r.GET("/register", h.User.AuthPage)
	r.POST("/register", h.User.Register)
	r.GET("/logout", h.User.Logout)
	r.POST("/logout", h.User.Logout)

	if h.WebSocket != nil {
		r.GET("/ws", h.WebSocket(currentUserID))
	}
}
