package service

import (
	"context"
	"time"

	"movie-tracker/internal/catalog"
)

// Catalog 页面服务依赖的电影目录能力，*catalog.Client 实现该接口
type Catalog interface {
	PopularMovies(ctx context.Context, page int) (*catalog.MoviePage, error)
	SearchMovies(ctx context.Context, query string, page int) (*catalog.MoviePage, error)
	MovieDetails(ctx context.Context, movieID int) (*catalog.MovieDetails, error)
	RecommendedMovies(ctx context.Context, movieID, page int) (*catalog.MoviePage, error)
	ImageURL(path *string, size catalog.ImageSize) string
}

// PendingCounter 待处理好友请求计数缓存
// Get 的第二个返回值表示缓存是否命中
type PendingCounter interface {
	Incr(ctx context.Context, userID string) error
	Decr(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (int64, bool, error)
	Set(ctx context.Context, userID string, count int64) error
}

// Notifier 向在线用户推送事件
type Notifier interface {
	Notify(userID, eventType string, payload interface{})
}

// 推送事件类型
const (
	EventFriendRequestReceived = "friend_request_received"
	EventFriendRequestAccepted = "friend_request_accepted"
)

// Clock 当前时间来源，测试中可替换
type Clock func() time.Time

type noopCounter struct{}

func (noopCounter) Incr(context.Context, string) error               { return nil }
func (noopCounter) Decr(context.Context, string) error               { return nil }
func (noopCounter) Get(context.Context, string) (int64, bool, error) { return 0, false, nil }
func (noopCounter) Set(context.Context, string, int64) error         { return nil }

type noopNotifier struct{}

func (noopNotifier) Notify(string, string, interface{}) {}
