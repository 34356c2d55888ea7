//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"book-companion-api/internal/application/chat"
	"book-companion-api/internal/config"
	"book-companion-api/internal/domain/repository"
	"book-companion-api/internal/infrastructure/llm"
	"book-companion-api/internal/infrastructure/persistence/bookfs"
	"book-companion-api/internal/interfaces/http/handler"
	"book-companion-api/internal/interfaces/http/router"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		LibrarySet,
		ChatSet,
		RedisSet,
		RouterSet,
	)
	return nil, nil, nil
}

// LibrarySet 书库提供者集合
var LibrarySet = wire.NewSet(
	ProvideBookStore,
	ProvideBookCache,
	wire.Bind(new(repository.BookSource), new(*bookfs.Store)),
)

// ChatSet 章节对话提供者集合
var ChatSet = wire.NewSet(
	llm.NewEinoFactory,
	llm.NewEinoBackend,
	chat.NewStore,
	ProvideChatService,
	wire.Bind(new(chat.Backend), new(*llm.EinoBackend)),
)

// RedisSet Redis 提供者集合（可选，不可达时禁用限流）
var RedisSet = wire.NewSet(
	ProvideRedisClientOptional,
	ProvideRateLimitMiddleware,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewBookHandler,
	handler.NewChatHandler,
	router.New,
)
