package service

import (
	"time"

	"movie-tracker/internal/catalog"
	"movie-tracker/internal/model"
)

// MovieCard 列表与详情页展示的电影
// 来自目录接口和本地存储的数据都经由下方映射函数转换，可选字段显式为指针
type MovieCard struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Overview    *string    `json:"overview"`
	PosterPath  *string    `json:"posterPath"`
	PosterURL   string     `json:"posterUrl"`
	ReleaseDate *string    `json:"releaseDate"`
	VoteAverage *float64   `json:"voteAverage,omitempty"`
	UserRating  *int       `json:"userRating"`
	UserNotes   *string    `json:"userNotes"`
	DateAdded   *time.Time `json:"dateAdded,omitempty"`
	IsFavorite  bool       `json:"isFavorite"`
}

// CardFromCatalog 目录接口条目转换为卡片
func CardFromCatalog(m catalog.Movie) MovieCard {
	vote := m.VoteAverage
	return MovieCard{
		ID:          m.ID,
		Title:       m.Title,
		Overview:    optionalString(m.Overview),
		PosterPath:  nonEmpty(m.PosterPath),
		ReleaseDate: optionalString(m.ReleaseDate),
		VoteAverage: &vote,
	}
}

// CardsFromCatalog 批量转换
func CardsFromCatalog(movies []catalog.Movie) []MovieCard {
	cards := make([]MovieCard, 0, len(movies))
	for _, m := range movies {
		cards = append(cards, CardFromCatalog(m))
	}
	return cards
}

// CardFromStored 本地电影记录转换为卡片
func CardFromStored(m model.Movie) MovieCard {
	return MovieCard{
		ID:          m.ID,
		Title:       m.Title,
		Overview:    m.Overview,
		PosterPath:  nonEmpty(m.PosterPath),
		ReleaseDate: m.ReleaseDate,
	}
}

// withRating 附加用户评分与笔记
func (c MovieCard) withRating(r *model.UserMovieRating) MovieCard {
	if r != nil {
		c.UserRating = r.Rating
		c.UserNotes = r.Notes
	}
	return c
}

// MovieInputFromCatalog 由目录条目构造落库输入
func MovieInputFromCatalog(m catalog.Movie) MovieInput {
	return MovieInput{
		ID:          m.ID,
		Title:       m.Title,
		PosterPath:  nonEmpty(m.PosterPath),
		ReleaseDate: optionalString(m.ReleaseDate),
		Overview:    optionalString(m.Overview),
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
