package repository

import (
	"context"

	"movie-tracker/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecentlyViewedRepository 最近浏览数据仓储
type RecentlyViewedRepository struct {
	db *gorm.DB
}

// NewRecentlyViewedRepository 创建RecentlyViewedRepository实例
func NewRecentlyViewedRepository(db *gorm.DB) *RecentlyViewedRepository {
	return &RecentlyViewedRepository{db: db}
}

// Upsert 按 (user_id, movie_id) 插入，已存在时刷新浏览时间
func (r *RecentlyViewedRepository) Upsert(ctx context.Context, item *model.RecentlyViewedItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"date_added"}),
		}).
		Create(item).Error
}

// Count 统计用户最近浏览条数
func (r *RecentlyViewedRepository) Count(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.RecentlyViewedItem{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// OldestIDs 返回用户最旧的 n 条记录ID
func (r *RecentlyViewedRepository) OldestIDs(ctx context.Context, userID string, n int) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.RecentlyViewedItem{}).
		Where("user_id = ?", userID).
		Order("date_added ASC").
		Order("id ASC").
		Limit(n).
		Pluck("id", &ids).Error
	return ids, err
}

// DeleteByIDs 按ID批量删除
func (r *RecentlyViewedRepository) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.RecentlyViewedItem{})
	return result.RowsAffected, result.Error
}

// ListWithMovies 按浏览时间倒序获取最近浏览（含电影信息）
func (r *RecentlyViewedRepository) ListWithMovies(ctx context.Context, userID string, limit int) ([]model.RecentlyViewedItem, error) {
	var items []model.RecentlyViewedItem
	err := r.db.WithContext(ctx).
		Preload("Movie").
		Where("user_id = ?", userID).
		Order("date_added DESC").
		Order("id DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}
