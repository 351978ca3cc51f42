package model

import "time"

// FavoriteItem 收藏
// (user_id, movie_id) 唯一，重复收藏只刷新 DateAdded

type FavoriteItem struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorite_user_movie;comment:用户ID"`
	MovieID   int       `gorm:"not null;uniqueIndex:idx_favorite_user_movie;index;comment:电影ID"`
	DateAdded time.Time `gorm:"not null;index;comment:加入时间"`

	Movie Movie `gorm:"foreignKey:MovieID"`
}

func (FavoriteItem) TableName() string { return "favorite_item" }

// RecentlyViewedItem 最近浏览
// 每个用户最多保留 RecentlyViewedLimit 条，按 DateAdded 淘汰最旧的记录

type RecentlyViewedItem struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_recent_user_movie;comment:用户ID"`
	MovieID   int       `gorm:"not null;uniqueIndex:idx_recent_user_movie;index;comment:电影ID"`
	DateAdded time.Time `gorm:"not null;index;comment:浏览时间"`

	Movie Movie `gorm:"foreignKey:MovieID"`
}

func (RecentlyViewedItem) TableName() string { return "recently_viewed_item" }

// RecentlyViewedLimit 每个用户保留的最近浏览条数
const RecentlyViewedLimit = 20

// UserMovieRating 用户对电影的评分与笔记
// Rating 为空表示未评分，取值 1-10

type UserMovieRating struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_rating_user_movie;comment:用户ID"`
	MovieID   int       `gorm:"not null;uniqueIndex:idx_rating_user_movie;index;comment:电影ID"`
	Rating    *int      `gorm:"comment:评分"`
	Notes     *string   `gorm:"type:text;comment:笔记"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`

	Movie Movie `gorm:"foreignKey:MovieID"`
}

func (UserMovieRating) TableName() string { return "user_movie_rating" }
