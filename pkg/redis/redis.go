package redis

import (
	"context"
	"fmt"
	"time"

	"movie-tracker/config"

	"github.com/redis/go-redis/v9"
)

// NewClient 创建Redis连接并测试连通性
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		// 连接池配置
		PoolSize:     10,              // 连接池大小
		MinIdleConns: 2,               // 最小空闲连接
		MaxRetries:   1,               // 计数仅作缓存，失败直接回退到数据库
		DialTimeout:  3 * time.Second, // 连接超时
		ReadTimeout:  time.Second,     // 读超时
		WriteTimeout: time.Second,     // 写超时
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis连接失败: %w", err)
	}
	return client, nil
}

// HealthCheck 检查Redis健康状态
func HealthCheck(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis连接异常: %w", err)
	}
	return nil
}
