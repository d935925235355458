package cache

import (
	"context"
	"time"

	"convo/internal/model"
)

// 对话缓存 key 模式
const (
	ConversationCacheKeyPrefix = "conv:"
	DefaultConversationTTL     = 30 * time.Minute
)

// ConversationCacheKey 生成对话缓存 key
func ConversationCacheKey(id string) string {
	return ConversationCacheKeyPrefix + id
}

// ConversationCache 对话读缓存，更新与删除时失效
type ConversationCache struct {
	redis *RedisCache
	ttl   time.Duration
}

// NewConversationCache 创建对话缓存，ttl <= 0 时使用默认值
func NewConversationCache(redis *RedisCache, ttl time.Duration) *ConversationCache {
	if ttl <= 0 {
		ttl = DefaultConversationTTL
	}
	return &ConversationCache{redis: redis, ttl: ttl}
}

// Get 读取对话，未命中返回 ErrCacheMiss
func (c *ConversationCache) Get(ctx context.Context, id string) (*model.Conversation, error) {
	var conv model.Conversation
	if err := c.redis.Get(ctx, ConversationCacheKey(id), &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// Set 写入对话
func (c *ConversationCache) Set(ctx context.Context, conv *model.Conversation) error {
	return c.redis.Set(ctx, ConversationCacheKey(conv.ID), conv, c.ttl)
}

// Invalidate 使对话缓存失效
func (c *ConversationCache) Invalidate(ctx context.Context, id string) error {
	return c.redis.Delete(ctx, ConversationCacheKey(id))
}
