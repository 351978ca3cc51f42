package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 待处理好友请求计数相关常量
const (
	PendingRequestsKeyPrefix = "movietracker:friend_requests:pending:" // 计数key前缀
	PendingRequestsTTL       = 10 * time.Minute                        // 过期后从数据库回填，限制计数偏差的持续时间
)

// PendingRequestCounter 用户收到的待处理好友请求数缓存
type PendingRequestCounter struct {
	client *redis.Client
}

func NewPendingRequestCounter(client *redis.Client) *PendingRequestCounter {
	return &PendingRequestCounter{client: client}
}

func pendingKey(userID string) string {
	return PendingRequestsKeyPrefix + userID
}

// incrIfExistsScript key 存在时加减计数并刷新过期时间，结果不大于 0 时删除 key
// key 不存在时不创建，返回 -1 表示未命中
var incrIfExistsScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
local count = redis.call("INCRBY", KEYS[1], ARGV[1])
if count <= 0 then
	redis.call("DEL", KEYS[1])
	return 0
end
redis.call("EXPIRE", KEYS[1], ARGV[2])
return count
`)

// Incr 增加计数；key 不存在时不创建，等待下次读取时从数据库回填
func (p *PendingRequestCounter) Incr(ctx context.Context, userID string) error {
	if err := p.add(ctx, userID, 1); err != nil {
		return fmt.Errorf("增加待处理请求计数失败: %w", err)
	}
	return nil
}

// Decr 减少计数，计数归零或为负时删除key
func (p *PendingRequestCounter) Decr(ctx context.Context, userID string) error {
	if err := p.add(ctx, userID, -1); err != nil {
		return fmt.Errorf("减少待处理请求计数失败: %w", err)
	}
	return nil
}

func (p *PendingRequestCounter) add(ctx context.Context, userID string, delta int64) error {
	if p.client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	ttl := int64(PendingRequestsTTL / time.Second)
	return incrIfExistsScript.Run(ctx, p.client, []string{pendingKey(userID)}, delta, ttl).Err()
}

// Get 读取计数，第二个返回值表示缓存是否命中
func (p *PendingRequestCounter) Get(ctx context.Context, userID string) (int64, bool, error) {
	if p.client == nil {
		return 0, false, fmt.Errorf("redis客户端未初始化")
	}

	count, err := p.client.Get(ctx, pendingKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("获取待处理请求计数失败: %w", err)
	}
	return count, true, nil
}

// Set 写入计数（用于从数据库回填）
func (p *PendingRequestCounter) Set(ctx context.Context, userID string, count int64) error {
	if p.client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	if err := p.client.Set(ctx, pendingKey(userID), count, PendingRequestsTTL).Err(); err != nil {
		return fmt.Errorf("设置待处理请求计数失败: %w", err)
	}
	return nil
}
