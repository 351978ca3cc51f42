package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"movie-tracker/internal/apperr"
	"movie-tracker/internal/model"
	"movie-tracker/internal/repository"
)

// MaxCommentLength 评论最大字符数
const MaxCommentLength = 2000

// CommentView 评论展示数据
type CommentView struct {
	ID        string           `json:"id"`
	Content   string           `json:"content"`
	MovieID   int              `json:"movieId"`
	UserID    string           `json:"userId"`
	User      model.PublicUser `json:"user"`
	Movie     *MovieCard       `json:"movie,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func commentView(c *model.Comment) CommentView {
	return CommentView{
		ID:        c.ID,
		Content:   c.Content,
		MovieID:   c.MovieID,
		UserID:    c.UserID,
		User:      c.User.Public(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CommentService 电影评论
type CommentService struct {
	comments    *repository.CommentRepository
	collections *CollectionService
}

func NewCommentService(comments *repository.CommentRepository, collections *CollectionService) *CommentService {
	return &CommentService{comments: comments, collections: collections}
}

// AddComment 发表评论，电影不存在时先补全电影记录
func (s *CommentService) AddComment(ctx context.Context, userID string, movie MovieInput, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("Comment cannot be empty.")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return nil, apperr.Validation("Comment is too long (max 2000 characters).")
	}
	if err := s.collections.EnsureMovieExists(ctx, movie); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		Content: content,
		MovieID: movie.ID,
		UserID:  userID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperr.Store("create comment failed", err)
	}
	return comment, nil
}

// DeleteComment 删除评论，仅作者本人可删除
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID string) error {
	commentID = strings.TrimSpace(commentID)
	if commentID == "" {
		return apperr.Validation("Comment ID is required.")
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperr.NotFound("Comment not found.")
		}
		return apperr.Store("get comment failed", err)
	}
	if comment.UserID != userID {
		return apperr.Forbidden("You can only delete your own comments.")
	}

	rows, err := s.comments.Delete(ctx, commentID, userID)
	if err != nil {
		return apperr.Store("delete comment failed", err)
	}
	if rows == 0 {
		return apperr.NotFound("Comment not found.")
	}
	return nil
}

// MovieComments 电影下的评论，最新在前
func (s *CommentService) MovieComments(ctx context.Context, movieID int) ([]CommentView, error) {
	comments, err := s.comments.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, apperr.Store("list comments failed", err)
	}
	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, commentView(&comments[i]))
	}
	return views, nil
}

// RecentComments 用户最近的评论（含电影）
func (s *CommentService) RecentComments(ctx context.Context, userID string, limit int) ([]CommentView, error) {
	comments, err := s.comments.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Store("list user comments failed", err)
	}
	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		view := commentView(&comments[i])
		card := CardFromStored(comments[i].Movie)
		view.Movie = &card
		views = append(views, view)
	}
	return views, nil
}

// CountByUser 用户评论数
func (s *CommentService) CountByUser(ctx context.Context, userID string) (int64, error) {
	count, err := s.comments.CountByUser(ctx, userID)
	if err != nil {
		return 0, apperr.Store("count comments failed", err)
	}
	return count, nil
}
