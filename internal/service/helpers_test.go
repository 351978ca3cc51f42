package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"movie-tracker/internal/catalog"
	"movie-tracker/internal/repository"
	"movie-tracker/internal/testutil"

	"gorm.io/gorm"
)

// stepClock 每次调用前进一秒，保证排序确定
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type services struct {
	db          *gorm.DB
	clock       *stepClock
	collections *CollectionService
	comments    *CommentService
	social      *SocialService
	users       *UserService
	counter     *fakeCounter
	notifier    *fakeNotifier
}

func newServices(t *testing.T) *services {
	t.Helper()
	db := testutil.NewDB(t)
	clock := newStepClock()

	movieRepo := repository.NewMovieRepository(db)
	collections := NewCollectionService(
		movieRepo,
		repository.NewFavoriteRepository(db),
		repository.NewRecentlyViewedRepository(db),
		repository.NewRatingRepository(db),
	).WithClock(clock.Now)
	comments := NewCommentService(repository.NewCommentRepository(db), collections)
	counter := newFakeCounter()
	notifier := &fakeNotifier{}
	userRepo := repository.NewUserRepository(db)
	social := NewSocialService(userRepo, repository.NewFriendRepository(db), counter, notifier)

	return &services{
		db:          db,
		clock:       clock,
		collections: collections,
		comments:    comments,
		social:      social,
		users:       NewUserService(userRepo, collections, comments, social),
		counter:     counter,
		notifier:    notifier,
	}
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: make(map[string]int64)}
}

func (f *fakeCounter) Incr(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[userID]++
	return nil
}

func (f *fakeCounter) Decr(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts[userID] > 0 {
		f.counts[userID]--
	}
	return nil
}

func (f *fakeCounter) Get(_ context.Context, userID string) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count, ok := f.counts[userID]
	return count, ok, nil
}

func (f *fakeCounter) Set(_ context.Context, userID string, count int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[userID] = count
	return nil
}

type notification struct {
	userID    string
	eventType string
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (f *fakeNotifier) Notify(userID, eventType string, _ interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, notification{userID: userID, eventType: eventType})
}

// fakeCatalog 以内存数据代替目录接口
type fakeCatalog struct {
	popular     []catalog.Movie
	search      map[string][]catalog.Movie
	details     map[int]*catalog.MovieDetails
	recommended map[int][]catalog.Movie
	detailsErr  error
	searchCalls int
}

func (f *fakeCatalog) PopularMovies(_ context.Context, page int) (*catalog.MoviePage, error) {
	return &catalog.MoviePage{Page: page, Results: f.popular, TotalPages: 1, TotalResults: len(f.popular)}, nil
}

func (f *fakeCatalog) SearchMovies(_ context.Context, query string, page int) (*catalog.MoviePage, error) {
	f.searchCalls++
	results := f.search[query]
	return &catalog.MoviePage{Page: page, Results: results, TotalPages: 1, TotalResults: len(results)}, nil
}

func (f *fakeCatalog) MovieDetails(_ context.Context, movieID int) (*catalog.MovieDetails, error) {
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	d, ok := f.details[movieID]
	if !ok {
		return nil, &catalog.UpstreamError{Status: 404, Endpoint: "details"}
	}
	return d, nil
}

func (f *fakeCatalog) RecommendedMovies(_ context.Context, movieID, page int) (*catalog.MoviePage, error) {
	results := f.recommended[movieID]
	return &catalog.MoviePage{Page: page, Results: results, TotalPages: 1, TotalResults: len(results)}, nil
}

func (f *fakeCatalog) ImageURL(path *string, size catalog.ImageSize) string {
	return catalog.BuildImageURL("https://img.test/t/p", path, size)
}
