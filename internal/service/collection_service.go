package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"movie-tracker/internal/apperr"
	"movie-tracker/internal/model"
	"movie-tracker/internal/repository"
	"movie-tracker/pkg/logger"
	"movie-tracker/pkg/metrics"

	"go.uber.org/zap"
)

// MovieInput 写入收藏、浏览、评分、评论前用于补全电影记录的信息
type MovieInput struct {
	ID          int    `validate:"gt=0"`
	Title       string `validate:"required"`
	PosterPath  *string
	ReleaseDate *string
	Overview    *string
}

var movieInputMessages = map[string]string{
	"ID":    "Movie ID is required.",
	"Title": "Movie title is required.",
}

// FavoriteAction 切换收藏的结果
type FavoriteAction string

const (
	FavoriteAdded   FavoriteAction = "added"
	FavoriteRemoved FavoriteAction = "removed"
)

// RatingUpdate 评分/笔记的部分更新
// *Set 为 false 的字段不写入；为 true 且值为 nil 时清空
type RatingUpdate struct {
	RatingSet bool
	Rating    *int
	NotesSet  bool
	Notes     *string
}

// CollectionService 收藏、最近浏览与评分
type CollectionService struct {
	movies    *repository.MovieRepository
	favorites *repository.FavoriteRepository
	recent    *repository.RecentlyViewedRepository
	ratings   *repository.RatingRepository
	now       Clock
}

func NewCollectionService(
	movies *repository.MovieRepository,
	favorites *repository.FavoriteRepository,
	recent *repository.RecentlyViewedRepository,
	ratings *repository.RatingRepository,
) *CollectionService {
	return &CollectionService{
		movies:    movies,
		favorites: favorites,
		recent:    recent,
		ratings:   ratings,
		now:       time.Now,
	}
}

// WithClock 替换时间来源
func (s *CollectionService) WithClock(now Clock) *CollectionService {
	s.now = now
	return s
}

// EnsureMovieExists 电影不存在时创建；并发创建导致的唯一约束冲突视为成功
// 已存在的电影不要求提供标题
func (s *CollectionService) EnsureMovieExists(ctx context.Context, in MovieInput) error {
	if in.ID <= 0 {
		return apperr.Validation(movieInputMessages["ID"])
	}

	exists, err := s.movies.Exists(ctx, in.ID)
	if err != nil {
		return apperr.Store("check movie failed", err)
	}
	if exists {
		return nil
	}

	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in, movieInputMessages); err != nil {
		return err
	}

	movie := &model.Movie{
		ID:          in.ID,
		Title:       in.Title,
		PosterPath:  nonEmpty(in.PosterPath),
		ReleaseDate: nonEmpty(in.ReleaseDate),
		Overview:    nonEmpty(in.Overview),
	}
	if err := s.movies.Create(ctx, movie); err != nil {
		if repository.IsDuplicate(err) {
			return nil
		}
		return apperr.Store("create movie failed", err)
	}
	return nil
}

// IsInFavorites 是否已收藏
func (s *CollectionService) IsInFavorites(ctx context.Context, userID string, movieID int) (bool, error) {
	_, err := s.favorites.Get(ctx, userID, movieID)
	if err == nil {
		return true, nil
	}
	if repository.IsNotFound(err) {
		return false, nil
	}
	return false, apperr.Store("get favorite failed", err)
}

// SetFavorite 设置收藏状态，重复收藏只刷新加入时间，取消不存在的收藏不报错
func (s *CollectionService) SetFavorite(ctx context.Context, userID string, movieID int, movie MovieInput, desired bool) error {
	if movieID <= 0 {
		return apperr.Validation("Movie ID is required.")
	}

	if !desired {
		rows, err := s.favorites.Delete(ctx, userID, movieID)
		if err != nil {
			return apperr.Store("delete favorite failed", err)
		}
		if rows > 0 {
			metrics.RecordFavoriteChange(string(FavoriteRemoved))
		}
		return nil
	}

	favorited, err := s.IsInFavorites(ctx, userID, movieID)
	if err != nil {
		return err
	}
	if favorited {
		if err := s.favorites.Touch(ctx, userID, movieID, s.now()); err != nil {
			return apperr.Store("refresh favorite failed", err)
		}
		metrics.RecordFavoriteChange("refreshed")
		return nil
	}

	movie.ID = movieID
	if err := s.EnsureMovieExists(ctx, movie); err != nil {
		return err
	}
	item := &model.FavoriteItem{UserID: userID, MovieID: movieID, DateAdded: s.now()}
	if err := s.favorites.Upsert(ctx, item); err != nil {
		return apperr.Store("add favorite failed", err)
	}
	metrics.RecordFavoriteChange(string(FavoriteAdded))
	return nil
}

// ToggleFavorite 已收藏则取消，否则加入；加入时必须提供标题
func (s *CollectionService) ToggleFavorite(ctx context.Context, userID string, movie MovieInput) (FavoriteAction, error) {
	if movie.ID <= 0 {
		return "", apperr.Validation("Movie ID is required.")
	}

	favorited, err := s.IsInFavorites(ctx, userID, movie.ID)
	if err != nil {
		return "", err
	}
	if favorited {
		if err := s.SetFavorite(ctx, userID, movie.ID, movie, false); err != nil {
			return "", err
		}
		return FavoriteRemoved, nil
	}

	if strings.TrimSpace(movie.Title) == "" {
		return "", apperr.Validation("Movie title is required to add to favorites.")
	}
	if err := s.SetFavorite(ctx, userID, movie.ID, movie, true); err != nil {
		return "", err
	}
	return FavoriteAdded, nil
}

// FavoriteSet 批量查询收藏标记，未登录时返回空集合
func (s *CollectionService) FavoriteSet(ctx context.Context, userID string, movieIDs []int) (map[int]bool, error) {
	set := make(map[int]bool, len(movieIDs))
	if userID == "" || len(movieIDs) == 0 {
		return set, nil
	}
	ids, err := s.favorites.MovieIDsIn(ctx, userID, movieIDs)
	if err != nil {
		return nil, apperr.Store("list favorite ids failed", err)
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Favorites 收藏列表（最新在前，附带评分）
func (s *CollectionService) Favorites(ctx context.Context, userID string) ([]MovieCard, error) {
	return s.favoriteCards(ctx, userID, 0)
}

// RecentFavorites 最近的 n 条收藏
func (s *CollectionService) RecentFavorites(ctx context.Context, userID string, n int) ([]MovieCard, error) {
	return s.favoriteCards(ctx, userID, n)
}

func (s *CollectionService) favoriteCards(ctx context.Context, userID string, limit int) ([]MovieCard, error) {
	items, err := s.favorites.ListWithMovies(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Store("list favorites failed", err)
	}

	movieIDs := make([]int, 0, len(items))
	for _, item := range items {
		movieIDs = append(movieIDs, item.MovieID)
	}
	ratings, err := s.ratings.MapByMovieIDs(ctx, userID, movieIDs)
	if err != nil {
		return nil, apperr.Store("list ratings failed", err)
	}

	cards := make([]MovieCard, 0, len(items))
	for _, item := range items {
		card := CardFromStored(item.Movie)
		if r, ok := ratings[item.MovieID]; ok {
			card = card.withRating(&r)
		}
		added := item.DateAdded
		card.DateAdded = &added
		card.IsFavorite = true
		cards = append(cards, card)
	}
	return cards, nil
}

// RecordView 记录浏览并把该用户的最近浏览裁剪到上限
// 插入与裁剪不在同一事务中，并发时短暂超出上限会在下一次写入时修正
func (s *CollectionService) RecordView(ctx context.Context, userID string, movieID int, movie MovieInput) error {
	movie.ID = movieID
	if err := s.EnsureMovieExists(ctx, movie); err != nil {
		return err
	}

	item := &model.RecentlyViewedItem{UserID: userID, MovieID: movieID, DateAdded: s.now()}
	if err := s.recent.Upsert(ctx, item); err != nil {
		return apperr.Store("record view failed", err)
	}

	count, err := s.recent.Count(ctx, userID)
	if err != nil {
		return apperr.Store("count recently viewed failed", err)
	}
	if count <= model.RecentlyViewedLimit {
		return nil
	}

	overflow := int(count) - model.RecentlyViewedLimit
	ids, err := s.recent.OldestIDs(ctx, userID, overflow)
	if err != nil {
		return apperr.Store("select oldest views failed", err)
	}
	trimmed, err := s.recent.DeleteByIDs(ctx, ids)
	if err != nil {
		return apperr.Store("trim recently viewed failed", err)
	}
	metrics.RecordRecentlyViewedTrim(int(trimmed))
	logger.Debug("裁剪最近浏览记录",
		zap.String("user_id", userID),
		zap.Int64("trimmed", trimmed),
	)
	return nil
}

// RecentlyViewed 最近浏览（最新在前，最多 20 条）
func (s *CollectionService) RecentlyViewed(ctx context.Context, userID string) ([]MovieCard, error) {
	items, err := s.recent.ListWithMovies(ctx, userID, model.RecentlyViewedLimit)
	if err != nil {
		return nil, apperr.Store("list recently viewed failed", err)
	}
	cards := make([]MovieCard, 0, len(items))
	for _, item := range items {
		card := CardFromStored(item.Movie)
		viewed := item.DateAdded
		card.DateAdded = &viewed
		cards = append(cards, card)
	}
	return cards, nil
}

// ParseRating 解析表单中的评分，空串和 "0" 表示清空
func ParseRating(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.Validation("Invalid rating value. Must be between 1 and 10, or 0/empty to clear.")
	}
	return normalizeRating(&value)
}

func normalizeRating(rating *int) (*int, error) {
	if rating == nil || *rating == 0 {
		return nil, nil
	}
	if *rating < 1 || *rating > 10 {
		return nil, apperr.Validation("Invalid rating value. Must be between 1 and 10, or 0/empty to clear.")
	}
	return rating, nil
}

// UpsertRating 写入评分与笔记，只更新提供的字段
func (s *CollectionService) UpsertRating(ctx context.Context, userID string, movieID int, update RatingUpdate, movie MovieInput) error {
	if update.RatingSet {
		rating, err := normalizeRating(update.Rating)
		if err != nil {
			return err
		}
		update.Rating = rating
	}
	if update.NotesSet && update.Notes != nil && strings.TrimSpace(*update.Notes) == "" {
		update.Notes = nil
	}

	movie.ID = movieID
	if err := s.EnsureMovieExists(ctx, movie); err != nil {
		return err
	}
	if !update.RatingSet && !update.NotesSet {
		return nil
	}

	_, err := s.ratings.Get(ctx, userID, movieID)
	switch {
	case err == nil:
		return s.updateRating(ctx, userID, movieID, update)
	case !repository.IsNotFound(err):
		return apperr.Store("get rating failed", err)
	}

	rating := &model.UserMovieRating{UserID: userID, MovieID: movieID, UpdatedAt: s.now()}
	if update.RatingSet {
		rating.Rating = update.Rating
	}
	if update.NotesSet {
		rating.Notes = update.Notes
	}
	if err := s.ratings.Create(ctx, rating); err != nil {
		if repository.IsDuplicate(err) {
			return s.updateRating(ctx, userID, movieID, update)
		}
		return apperr.Store("create rating failed", err)
	}
	return nil
}

func (s *CollectionService) updateRating(ctx context.Context, userID string, movieID int, update RatingUpdate) error {
	fields := map[string]interface{}{"updated_at": s.now()}
	if update.RatingSet {
		if update.Rating == nil {
			fields["rating"] = nil
		} else {
			fields["rating"] = *update.Rating
		}
	}
	if update.NotesSet {
		if update.Notes == nil {
			fields["notes"] = nil
		} else {
			fields["notes"] = *update.Notes
		}
	}
	if err := s.ratings.UpdateFields(ctx, userID, movieID, fields); err != nil {
		return apperr.Store("update rating failed", err)
	}
	return nil
}

// Rating 用户对电影的评分，没有时返回 nil
func (s *CollectionService) Rating(ctx context.Context, userID string, movieID int) (*model.UserMovieRating, error) {
	rating, err := s.ratings.Get(ctx, userID, movieID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, apperr.Store("get rating failed", err)
	}
	return rating, nil
}

// Stats 个人主页统计
type Stats struct {
	FavoriteCount       int64 `json:"favoriteCount"`
	RecentlyViewedCount int64 `json:"recentlyViewedCount"`
	CommentCount        int64 `json:"commentCount"`
	RatingCount         int64 `json:"ratingCount"`
}

// collectionStats 填充收藏、浏览、评分计数
func (s *CollectionService) collectionStats(ctx context.Context, userID string) (Stats, error) {
	var stats Stats
	var err error
	if stats.FavoriteCount, err = s.favorites.Count(ctx, userID); err != nil {
		return stats, apperr.Store("count favorites failed", err)
	}
	if stats.RecentlyViewedCount, err = s.recent.Count(ctx, userID); err != nil {
		return stats, apperr.Store("count recently viewed failed", err)
	}
	if stats.RatingCount, err = s.ratings.Count(ctx, userID); err != nil {
		return stats, apperr.Store("count ratings failed", err)
	}
	return stats, nil
}
