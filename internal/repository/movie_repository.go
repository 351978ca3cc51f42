package repository

import (
	"context"

	"movie-tracker/internal/model"

	"gorm.io/gorm"
)

// MovieRepository 电影数据仓储
type MovieRepository struct {
	db *gorm.DB
}

// NewMovieRepository 创建MovieRepository实例
func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// GetByID 根据ID获取电影
func (r *MovieRepository) GetByID(ctx context.Context, id int) (*model.Movie, error) {
	var movie model.Movie
	if err := r.db.WithContext(ctx).First(&movie, id).Error; err != nil {
		return nil, err
	}
	return &movie, nil
}

// Exists 判断电影是否已在库中
func (r *MovieRepository) Exists(ctx context.Context, id int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Movie{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Create 创建电影
func (r *MovieRepository) Create(ctx context.Context, movie *model.Movie) error {
	return r.db.WithContext(ctx).Create(movie).Error
}
