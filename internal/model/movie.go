package model

import "time"

// Movie 电影模型
// ID 直接使用电影目录（TMDB）的ID，首次被收藏、浏览、评分或评论时创建，不会被删除
// UserRating/UserNotes 为遗留字段，已由 UserMovieRating 取代，仅保留表结构

type Movie struct {
	ID          int       `gorm:"primaryKey;autoIncrement:false"`
	Title       string    `gorm:"type:varchar(255);not null;comment:标题"`
	PosterPath  *string   `gorm:"type:varchar(255);comment:海报路径"`
	ReleaseDate *string   `gorm:"type:varchar(32);comment:上映日期"`
	Overview    *string   `gorm:"type:text;comment:简介"`
	UserRating  *int      `gorm:"comment:遗留评分字段"`
	UserNotes   *string   `gorm:"type:text;comment:遗留笔记字段"`
	CreatedAt   time.Time `gorm:"comment:创建时间"`
	UpdatedAt   time.Time `gorm:"comment:更新时间"`
}

func (Movie) TableName() string { return "movie" }
