// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/gin-gonic/gin"

	"book-companion-api/internal/application/chat"
	"book-companion-api/internal/application/library"
	"book-companion-api/internal/config"
	"book-companion-api/internal/domain/repository"
	"book-companion-api/internal/infrastructure/persistence/bookfs"
	"book-companion-api/internal/infrastructure/persistence/redis"
	"book-companion-api/internal/interfaces/http/middleware"
	"book-companion-api/pkg/logger"
)

// ProvideBookStore 提供文件系统书籍存储
func ProvideBookStore(cfg *config.Config) *bookfs.Store {
	return bookfs.NewStore(&cfg.Library)
}

// ProvideBookCache 提供书籍缓存
func ProvideBookCache(cfg *config.Config, source repository.BookSource) (*library.Cache, error) {
	return library.NewCache(source, cfg.Library.CacheCapacity)
}

// ProvideChatService 提供章节对话服务
func ProvideChatService(books *library.Cache, sessions *chat.Store, backend chat.Backend, cfg *config.Config) *chat.Service {
	return chat.NewService(books, sessions, backend, &cfg.Chat)
}

// ProvideRedisClientOptional 提供可选 Redis 客户端（不可达时不阻塞启动）
func ProvideRedisClientOptional(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Security.RateLimit.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis not available, rate limiting disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRateLimitMiddleware 提供限流中间件
func ProvideRateLimitMiddleware(cfg *config.Config, client *redis.Client) gin.HandlerFunc {
	if client == nil {
		return nil
	}
	limiter := redis.NewRateLimiter(client)
	return middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           cfg.Security.RateLimit.Enabled,
		RequestsPerSecond: cfg.Security.RateLimit.RequestsPerSecond,
	}, limiter, redis.BuildRateLimitKey)
}
