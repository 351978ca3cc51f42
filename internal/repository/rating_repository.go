package repository

import (
	"context"

	"movie-tracker/internal/model"

	"gorm.io/gorm"
)

// RatingRepository 评分数据仓储
type RatingRepository struct {
	db *gorm.DB
}

// NewRatingRepository 创建RatingRepository实例
func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Get 获取用户对某部电影的评分
func (r *RatingRepository) Get(ctx context.Context, userID string, movieID int) (*model.UserMovieRating, error) {
	var rating model.UserMovieRating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// Create 创建评分
func (r *RatingRepository) Create(ctx context.Context, rating *model.UserMovieRating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}

// UpdateFields 仅更新给定字段，值为 nil 时写入 NULL
func (r *RatingRepository) UpdateFields(ctx context.Context, userID string, movieID int, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.UserMovieRating{}).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Updates(fields).Error
}

// MapByMovieIDs 批量获取评分，按电影ID索引
func (r *RatingRepository) MapByMovieIDs(ctx context.Context, userID string, movieIDs []int) (map[int]model.UserMovieRating, error) {
	result := make(map[int]model.UserMovieRating, len(movieIDs))
	if len(movieIDs) == 0 {
		return result, nil
	}
	var ratings []model.UserMovieRating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND movie_id IN ?", userID, movieIDs).
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}
	for _, rating := range ratings {
		result[rating.MovieID] = rating
	}
	return result, nil
}

// Count 统计用户评分条数
func (r *RatingRepository) Count(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UserMovieRating{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
