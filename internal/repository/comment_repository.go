package repository

import (
	"context"

	"movie-tracker/internal/model"

	"gorm.io/gorm"
)

// CommentRepository 评论数据仓储
type CommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository 创建CommentRepository实例
func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create 创建评论
func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetByID 根据ID获取评论
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// Delete 删除评论（只能删除自己发表的评论）
func (r *CommentRepository) Delete(ctx context.Context, id, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Comment{})
	return result.RowsAffected, result.Error
}

// ListByMovie 获取电影下的评论（含作者），最新的在前
func (r *CommentRepository) ListByMovie(ctx context.Context, movieID int) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("movie_id = ?", movieID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

// ListByUser 获取用户最近的评论（含电影）
func (r *CommentRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Preload("Movie").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

// CountByUser 统计用户评论数
func (r *CommentRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
