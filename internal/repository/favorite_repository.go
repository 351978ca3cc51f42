package repository

import (
	"context"
	"time"

	"movie-tracker/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavoriteRepository 收藏数据仓储
type FavoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository 创建FavoriteRepository实例
func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Get 获取用户对某部电影的收藏记录
func (r *FavoriteRepository) Get(ctx context.Context, userID string, movieID int) (*model.FavoriteItem, error) {
	var item model.FavoriteItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Upsert 按 (user_id, movie_id) 插入，已存在时刷新加入时间
func (r *FavoriteRepository) Upsert(ctx context.Context, item *model.FavoriteItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"date_added"}),
		}).
		Create(item).Error
}

// Touch 刷新加入时间
func (r *FavoriteRepository) Touch(ctx context.Context, userID string, movieID int, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.FavoriteItem{}).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Update("date_added", at).Error
}

// Delete 删除收藏，返回受影响行数
func (r *FavoriteRepository) Delete(ctx context.Context, userID string, movieID int) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&model.FavoriteItem{})
	return result.RowsAffected, result.Error
}

// MovieIDsIn 返回 movieIDs 中已被用户收藏的ID
func (r *FavoriteRepository) MovieIDsIn(ctx context.Context, userID string, movieIDs []int) ([]int, error) {
	var ids []int
	if len(movieIDs) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).Model(&model.FavoriteItem{}).
		Where("user_id = ? AND movie_id IN ?", userID, movieIDs).
		Pluck("movie_id", &ids).Error
	return ids, err
}

// ListWithMovies 按加入时间倒序获取收藏（含电影信息），limit<=0 表示不限
func (r *FavoriteRepository) ListWithMovies(ctx context.Context, userID string, limit int) ([]model.FavoriteItem, error) {
	var items []model.FavoriteItem
	query := r.db.WithContext(ctx).
		Preload("Movie").
		Where("user_id = ?", userID).
		Order("date_added DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&items).Error
	return items, err
}

// Count 统计用户收藏数量
func (r *FavoriteRepository) Count(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.FavoriteItem{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
