package handler

import (
	"movie-tracker/internal/apperr"
	"movie-tracker/internal/service"
	"movie-tracker/internal/session"
	"movie-tracker/pkg/response"

	"github.com/gin-gonic/gin"
)

// MovieHandler 首页、搜索、详情、收藏相关页面与动作
type MovieHandler struct {
	pages       *service.PageService
	collections *service.CollectionService
	comments    *service.CommentService
}

// NewMovieHandler 创建MovieHandler实例
func NewMovieHandler(pages *service.PageService, collections *service.CollectionService, comments *service.CommentService) *MovieHandler {
	return &MovieHandler{pages: pages, collections: collections, comments: comments}
}

// Home 首页：热门电影与最近浏览
func (h *MovieHandler) Home(c *gin.Context) {
	page, err := h.pages.Home(c.Request.Context(), session.CurrentUser(c), pageParam(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, page)
}

// Search 搜索页
func (h *MovieHandler) Search(c *gin.Context) {
	page, err := h.pages.Search(c.Request.Context(), session.CurrentUser(c), c.Query("q"), pageParam(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, page)
}

// MovieDetail 电影详情页
func (h *MovieHandler) MovieDetail(c *gin.Context) {
	movieID, ok := parseMovieID(c.Param("id"))
	if !ok {
		response.NotFound(c, "Invalid Movie ID")
		return
	}
	page, err := h.pages.MovieDetail(c.Request.Context(), session.CurrentUser(c), movieID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, page)
}

// Favorites 收藏页（需要登录）
func (h *MovieHandler) Favorites(c *gin.Context) {
	favorites, err := h.pages.Favorites(c.Request.Context(), session.CurrentUser(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"favorites": favorites})
}

// Collections 布局数据
func (h *MovieHandler) Collections(c *gin.Context) {
	page, err := h.pages.Collections(c.Request.Context(), session.CurrentUser(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, page)
}

// ToggleFavorite 列表页的收藏切换，电影ID来自表单字段 movieId
func (h *MovieHandler) ToggleFavorite(c *gin.Context) {
	var form movieForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, "Invalid form data.")
		return
	}
	movieID, ok := parseMovieID(form.MovieID)
	if !ok {
		response.BadRequest(c, "Movie ID is required.")
		return
	}
	h.toggleFavorite(c, form.input(movieID))
}

// MovieToggleFavorite 详情页的收藏切换，电影ID来自路径
func (h *MovieHandler) MovieToggleFavorite(c *gin.Context) {
	movieID, ok := parseMovieID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "Movie ID is required.")
		return
	}
	var form movieForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, "Invalid form data.")
		return
	}
	h.toggleFavorite(c, form.input(movieID))
}

func (h *MovieHandler) toggleFavorite(c *gin.Context, movie service.MovieInput) {
	action, err := h.collections.ToggleFavorite(c.Request.Context(), currentUserID(c), movie)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, response.ActionResult{
		Success: true,
		Action:  string(action),
		Type:    "favorite",
		MovieID: movie.ID,
	})
}

// UpdateUserData 更新评分与笔记；未提交的字段保持不变
func (h *MovieHandler) UpdateUserData(c *gin.Context) {
	movieID, ok := parseMovieID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "Invalid Movie ID.")
		return
	}
	var form movieForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, "Invalid form data.")
		return
	}

	var update service.RatingUpdate
	if raw, set := c.GetPostForm("userRating"); set {
		rating, err := service.ParseRating(raw)
		if err != nil {
			response.FromError(c, err)
			return
		}
		update.RatingSet, update.Rating = true, rating
	}
	if raw, set := c.GetPostForm("userNotes"); set {
		update.NotesSet, update.Notes = true, optional(raw)
	}

	err := h.collections.UpsertRating(c.Request.Context(), currentUserID(c), movieID, update, form.input(movieID))
	if err != nil {
		if apperr.Is(err, apperr.KindValidation) && form.Title == "" {
			response.BadRequest(c, "Movie title is required to rate/note a new movie.")
			return
		}
		response.FromError(c, err)
		return
	}
	response.Success(c, response.ActionResult{
		Success: true,
		MovieID: movieID,
		Message: "User data updated.",
	})
}

// AddComment 发表评论
func (h *MovieHandler) AddComment(c *gin.Context) {
	movieID, ok := parseMovieID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "Invalid Movie ID.")
		return
	}
	var form commentForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, "Invalid form data.")
		return
	}

	comment, err := h.comments.AddComment(c.Request.Context(), currentUserID(c), form.input(movieID), form.Content)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, response.ActionResult{Success: true, CommentID: comment.ID})
}

// DeleteComment 删除自己的评论
func (h *MovieHandler) DeleteComment(c *gin.Context) {
	var form deleteCommentForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, "Comment ID is required.")
		return
	}
	if err := h.comments.DeleteComment(c.Request.Context(), currentUserID(c), form.CommentID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, response.ActionResult{Success: true, CommentID: form.CommentID})
}
