// Package metrics 暴露 Prometheus 指标：HTTP 请求、电影目录调用以及收藏/好友等业务操作
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_tracker_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movie_tracker_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// 电影目录（TMDB）指标
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_tracker_catalog_requests_total",
			Help: "Total number of catalog API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movie_tracker_catalog_request_duration_seconds",
			Help:    "Duration of catalog API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// 业务指标
	FavoriteChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_tracker_favorite_changes_total",
			Help: "Total number of favorite additions and removals",
		},
		[]string{"action"}, // "added", "refreshed", "removed"
	)

	RecentlyViewedTrimmedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "movie_tracker_recently_viewed_trimmed_total",
			Help: "Total number of recently viewed rows evicted by the per-user limit",
		},
	)

	FriendRequestTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_tracker_friend_request_transitions_total",
			Help: "Total number of friend request state transitions",
		},
		[]string{"to"},
	)
)

// RecordHTTPRequest 记录一次HTTP请求
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCatalogRequest 记录一次电影目录调用，status 为 0 表示请求未得到响应
func RecordCatalogRequest(endpoint string, status int, duration time.Duration) {
	statusLabel := "error"
	if status > 0 {
		statusLabel = strconv.Itoa(status)
	}
	CatalogRequestsTotal.WithLabelValues(endpoint, statusLabel).Inc()
	CatalogRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordFavoriteChange 记录收藏变更
func RecordFavoriteChange(action string) {
	FavoriteChangesTotal.WithLabelValues(action).Inc()
}

// RecordRecentlyViewedTrim 记录被淘汰的最近浏览条数
func RecordRecentlyViewedTrim(n int) {
	if n <= 0 {
		return
	}
	RecentlyViewedTrimmedTotal.Add(float64(n))
}

// RecordFriendRequestTransition 记录好友请求状态流转
func RecordFriendRequestTransition(to string) {
	FriendRequestTransitionsTotal.WithLabelValues(to).Inc()
}
