// Package catalog 封装 TMDB 电影目录接口：热门、搜索、详情、推荐以及图片地址
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"movie-tracker/config"
	"movie-tracker/pkg/logger"
	"movie-tracker/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// UpstreamError 目录接口返回非 2xx 状态
type UpstreamError struct {
	Status   int
	Endpoint string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("catalog %s returned status %d", e.Endpoint, e.Status)
}

// IsNotFound 判断是否为目录接口的 404
func IsNotFound(err error) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream) && upstream.Status == http.StatusNotFound
}

// Client TMDB 客户端，除限流器外无状态，可被多个请求并发使用
type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
	http         *http.Client
	limiter      *rate.Limiter
}

// NewClient 根据配置创建客户端
func NewClient(cfg config.TMDBConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	language := cfg.Language
	if language == "" {
		language = "en-US"
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 && cfg.RateWindow > 0 {
		every := cfg.RateWindow / time.Duration(cfg.RateLimit)
		limiter = rate.NewLimiter(rate.Every(every), cfg.RateLimit)
	}

	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		imageBaseURL: cfg.ImageBaseURL,
		language:     language,
		http:         &http.Client{Timeout: timeout},
		limiter:      limiter,
	}
}

// PopularMovies 获取热门电影
func (c *Client) PopularMovies(ctx context.Context, page int) (*MoviePage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(normalizePage(page)))

	var result MoviePage
	if err := c.get(ctx, "popular", "/movie/popular", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchMovies 按标题搜索电影
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*MoviePage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(normalizePage(page)))
	params.Set("include_adult", "false")

	var result MoviePage
	if err := c.get(ctx, "search", "/search/movie", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MovieDetails 获取电影详情
func (c *Client) MovieDetails(ctx context.Context, movieID int) (*MovieDetails, error) {
	var result MovieDetails
	if err := c.get(ctx, "details", fmt.Sprintf("/movie/%d", movieID), url.Values{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RecommendedMovies 获取相似推荐
func (c *Client) RecommendedMovies(ctx context.Context, movieID, page int) (*MoviePage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(normalizePage(page)))

	var result MoviePage
	if err := c.get(ctx, "recommendations", fmt.Sprintf("/movie/%d/recommendations", movieID), params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// get 发起一次 GET 请求并解码 JSON，不重试不缓存
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("catalog %s rate limit wait: %w", endpoint, err)
		}
	}

	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("catalog %s build request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordCatalogRequest(endpoint, 0, time.Since(start))
		return fmt.Errorf("catalog %s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()
	metrics.RecordCatalogRequest(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 读掉响应体以便连接复用
		_, _ = io.Copy(io.Discard, resp.Body)
		logger.Warn("电影目录接口返回错误状态",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
		)
		return &UpstreamError{Status: resp.StatusCode, Endpoint: endpoint}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("catalog %s decode response: %w", endpoint, err)
	}
	return nil
}
