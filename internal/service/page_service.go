package service

import (
	"context"
	"strings"

	"movie-tracker/internal/apperr"
	"movie-tracker/internal/catalog"
	"movie-tracker/internal/model"
	"movie-tracker/internal/repository"
	"movie-tracker/pkg/logger"

	"go.uber.org/zap"
)

// MoviePage 首页与搜索页数据
type MoviePage struct {
	Query          string      `json:"query,omitempty"`
	Movies         []MovieCard `json:"movies"`
	CurrentPage    int         `json:"currentPage"`
	TotalPages     int         `json:"totalPages"`
	RecentlyViewed []MovieCard `json:"recentlyViewed,omitempty"`
}

// MovieDetailPage 电影详情页数据
type MovieDetailPage struct {
	Movie             MovieDetail   `json:"movie"`
	InFavorites       bool          `json:"inFavorites"`
	RecommendedMovies []MovieCard   `json:"recommendedMovies"`
	Comments          []CommentView `json:"comments"`
}

// MovieDetail 详情页中的电影，合并了目录数据与当前用户的评分
type MovieDetail struct {
	*catalog.MovieDetails
	PosterPath  *string `json:"poster_path"`
	PosterURL   string  `json:"posterUrl"`
	BackdropURL string  `json:"backdropUrl"`
	UserRating  *int    `json:"userRating"`
	UserNotes   *string `json:"userNotes"`
}

// CollectionsPage 布局中展示的收藏与最近浏览
type CollectionsPage struct {
	Favorites      []MovieCard `json:"favorites"`
	RecentlyViewed []MovieCard `json:"recentlyViewed"`
}

// PageService 组合电影目录与本地存储生成页面数据
type PageService struct {
	catalog     Catalog
	movies      movieLookup
	collections *CollectionService
	comments    *CommentService
}

type movieLookup interface {
	GetByID(ctx context.Context, id int) (*model.Movie, error)
}

func NewPageService(cat Catalog, movies movieLookup, collections *CollectionService, comments *CommentService) *PageService {
	return &PageService{catalog: cat, movies: movies, collections: collections, comments: comments}
}

// viewerID 未登录时返回空串
func viewerID(viewer *model.User) string {
	if viewer == nil {
		return ""
	}
	return viewer.ID
}

// Home 热门电影（带收藏标记）与最近浏览
func (s *PageService) Home(ctx context.Context, viewer *model.User, page int) (*MoviePage, error) {
	result, err := s.catalog.PopularMovies(ctx, page)
	if err != nil {
		return nil, upstreamError("Failed to load popular movies.", err)
	}

	cards, err := s.decorate(ctx, viewerID(viewer), CardsFromCatalog(result.Results))
	if err != nil {
		return nil, err
	}
	home := &MoviePage{
		Movies:      cards,
		CurrentPage: result.Page,
		TotalPages:  result.TotalPages,
	}
	if viewer != nil {
		recent, err := s.collections.RecentlyViewed(ctx, viewer.ID)
		if err != nil {
			return nil, err
		}
		home.RecentlyViewed = s.withPosters(recent)
	}
	return home, nil
}

// Search 按标题搜索，空查询直接返回空结果
func (s *PageService) Search(ctx context.Context, viewer *model.User, query string, page int) (*MoviePage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &MoviePage{Query: "", Movies: []MovieCard{}, CurrentPage: 1, TotalPages: 0}, nil
	}

	result, err := s.catalog.SearchMovies(ctx, query, page)
	if err != nil {
		return nil, upstreamError("Failed to search movies.", err)
	}
	cards, err := s.decorate(ctx, viewerID(viewer), CardsFromCatalog(result.Results))
	if err != nil {
		return nil, err
	}
	return &MoviePage{
		Query:       query,
		Movies:      cards,
		CurrentPage: result.Page,
		TotalPages:  result.TotalPages,
	}, nil
}

// MovieDetail 详情页；已登录用户会记录一次浏览
func (s *PageService) MovieDetail(ctx context.Context, viewer *model.User, movieID int) (*MovieDetailPage, error) {
	if movieID <= 0 {
		return nil, apperr.NotFound("Invalid Movie ID")
	}

	details, err := s.catalog.MovieDetails(ctx, movieID)
	if err != nil {
		if catalog.IsNotFound(err) {
			return nil, apperr.NotFound("Movie not found on TMDB.")
		}
		return nil, upstreamError("Failed to load movie data. Please try again later.", err)
	}

	detail := MovieDetail{MovieDetails: details, PosterPath: nonEmpty(details.PosterPath)}
	if detail.PosterPath == nil {
		stored, err := s.movies.GetByID(ctx, movieID)
		switch {
		case err == nil:
			detail.PosterPath = nonEmpty(stored.PosterPath)
		case !repository.IsNotFound(err):
			logger.Warn("读取本地电影海报失败", zap.Int("movie_id", movieID), zap.Error(err))
		}
	}
	detail.PosterURL = s.catalog.ImageURL(detail.PosterPath, catalog.PosterSizes.Large)
	detail.BackdropURL = s.catalog.ImageURL(details.BackdropPath, catalog.BackdropSizes.Large)

	page := &MovieDetailPage{Movie: detail}
	uid := viewerID(viewer)
	if uid != "" {
		input := MovieInputFromCatalog(details.Movie)
		input.PosterPath = detail.PosterPath
		if err := s.collections.RecordView(ctx, uid, movieID, input); err != nil {
			return nil, err
		}
		rating, err := s.collections.Rating(ctx, uid, movieID)
		if err != nil {
			return nil, err
		}
		if rating != nil {
			page.Movie.UserRating = rating.Rating
			page.Movie.UserNotes = rating.Notes
		}
		if page.InFavorites, err = s.collections.IsInFavorites(ctx, uid, movieID); err != nil {
			return nil, err
		}
	}

	recs, err := s.catalog.RecommendedMovies(ctx, movieID, 1)
	if err != nil {
		return nil, upstreamError("Failed to load recommended movies.", err)
	}
	if page.RecommendedMovies, err = s.decorate(ctx, uid, CardsFromCatalog(recs.Results)); err != nil {
		return nil, err
	}
	if page.Comments, err = s.comments.MovieComments(ctx, movieID); err != nil {
		return nil, err
	}
	return page, nil
}

// Favorites 收藏页
func (s *PageService) Favorites(ctx context.Context, viewer *model.User) ([]MovieCard, error) {
	cards, err := s.collections.Favorites(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	return s.withPosters(cards), nil
}

// Collections 布局数据：收藏与最近浏览，未登录时均为空
func (s *PageService) Collections(ctx context.Context, viewer *model.User) (*CollectionsPage, error) {
	page := &CollectionsPage{Favorites: []MovieCard{}, RecentlyViewed: []MovieCard{}}
	if viewer == nil {
		return page, nil
	}
	favorites, err := s.collections.Favorites(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	recent, err := s.collections.RecentlyViewed(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	page.Favorites = s.withPosters(favorites)
	page.RecentlyViewed = s.withPosters(recent)
	return page, nil
}

// decorate 批量附加收藏标记与海报地址
func (s *PageService) decorate(ctx context.Context, userID string, cards []MovieCard) ([]MovieCard, error) {
	ids := make([]int, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	favorites, err := s.collections.FavoriteSet(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	for i := range cards {
		cards[i].IsFavorite = favorites[cards[i].ID]
	}
	return s.withPosters(cards), nil
}

func (s *PageService) withPosters(cards []MovieCard) []MovieCard {
	for i := range cards {
		cards[i].PosterURL = s.catalog.ImageURL(cards[i].PosterPath, catalog.PosterSizes.Medium)
	}
	return cards
}

// upstreamError 目录调用失败统一转换为上游错误
func upstreamError(message string, err error) error {
	return apperr.Upstream(message, err)
}
