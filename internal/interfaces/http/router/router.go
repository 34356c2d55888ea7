// Package router 提供 HTTP 路由配置
package router

import (
	"book-companion-api/internal/config"
	"book-companion-api/internal/interfaces/http/handler"
	"book-companion-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router HTTP 路由器
type Router struct {
	engine *gin.Engine
	cfg    *config.Config

	health    *handler.HealthHandler
	books     *handler.BookHandler
	chat      *handler.ChatHandler
	rateLimit gin.HandlerFunc
}

// New 创建新的路由器
func New(
	cfg *config.Config,
	healthHandler *handler.HealthHandler,
	bookHandler *handler.BookHandler,
	chatHandler *handler.ChatHandler,
	rateLimit gin.HandlerFunc,
) *Router {
	// 设置 Gin 模式
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	r := &Router{
		engine:    engine,
		cfg:       cfg,
		health:    healthHandler,
		books:     bookHandler,
		chat:      chatHandler,
		rateLimit: rateLimit,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	// 基础中间件
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	// CORS 中间件
	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	// 追踪中间件
	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	// 指标中间件
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	// 限流中间件
	if r.rateLimit != nil {
		r.engine.Use(r.rateLimit)
	}
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	// 系统端点
	r.engine.GET("/health", r.health.Health)
	r.engine.GET("/ready", r.health.Ready)
	r.engine.GET("/live", r.health.Live)

	// Prometheus 指标端点
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// API v1 路由组
	v1 := r.engine.Group("/v1")
	{
		books := v1.Group("/books")
		{
			books.GET("", r.books.List)
			books.GET("/:bid", r.books.Get)
			books.GET("/:bid/chapters/:idx", r.books.Chapter)
			books.GET("/:bid/images/:name", r.books.Image)

			books.POST("/:bid/chapters/:idx/chat", r.chat.Send)
			books.GET("/:bid/chapters/:idx/chat", r.chat.History)
			books.POST("/:bid/chapters/:idx/chat/reset", r.chat.Reset)
		}
	}
}
