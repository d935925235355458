package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "convo/docs"
	"convo/internal/config"
	"convo/internal/handler"
	conversationHandler "convo/internal/handler/conversation"
	messageHandler "convo/internal/handler/message"
	userHandler "convo/internal/handler/user"
	"convo/internal/pkg/cache"
	"convo/internal/pkg/response"
	"convo/internal/pkg/storefactory"
	"convo/internal/repository"
	"convo/internal/server/middleware"
	"convo/internal/service"
)

// Server HTTP 服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	store  repository.Store
	redis  *cache.RedisCache
}

// New 创建服务器实例，按配置连接存储与缓存
func New(cfg *config.Config) (*Server, error) {
	store, err := storefactory.NewStore(cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("connected to database")

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close(context.Background())
			return nil, err
		}
		log.Info().Msg("database migrated")
	}

	// 初始化 Redis (可选)
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	return NewWithStore(cfg, store, redisCache), nil
}

// NewWithStore 使用已创建的存储构造服务器，redisCache 可为 nil
func NewWithStore(cfg *config.Config, store repository.Store, redisCache *cache.RedisCache) *Server {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建 Gin 引擎
	engine := gin.New()
	// 带与不带结尾斜杠的路由都已显式注册
	engine.RedirectTrailingSlash = false

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		store:  store,
		redis:  redisCache,
	}

	// 设置路由
	srv.setupRoutes()

	return srv
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	handler.RegisterValidator()

	// 全局中间件
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.CORS())

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.Fail(http.StatusNotFound, "Not Found"))
	})

	// 健康检查
	healthHandler := handler.NewHealthHandler(s.store)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	var convCache *cache.ConversationCache
	if s.redis != nil {
		convCache = cache.NewConversationCache(s.redis, s.cfg.Redis.CacheTTL)
	}

	userSvc := service.NewUserService(s.store.Users())
	convSvc := service.NewConversationService(s.store.Conversations(), convCache)
	msgSvc := service.NewMessageService(s.store.Messages(), s.store.Conversations())

	api := s.engine.Group("/api")
	{
		userHdl := userHandler.NewHandler(userSvc)
		users := api.Group("/users")
		route(users, http.MethodPost, "", userHdl.Create)
		route(users, http.MethodGet, "", userHdl.List)
		route(users, http.MethodGet, "/:id", userHdl.Get)
		route(users, http.MethodPut, "/:id", userHdl.Update)
		route(users, http.MethodDelete, "/:id", userHdl.Delete)

		convHdl := conversationHandler.NewHandler(convSvc)
		convs := api.Group("/conversations")
		route(convs, http.MethodPost, "", convHdl.Create)
		route(convs, http.MethodGet, "", convHdl.List)
		route(convs, http.MethodGet, "/:id", convHdl.Get)
		route(convs, http.MethodPut, "/:id", convHdl.Update)
		route(convs, http.MethodDelete, "/:id", convHdl.Delete)

		msgHdl := messageHandler.NewHandler(msgSvc)
		msgs := api.Group("/messages")
		route(msgs, http.MethodPost, "", msgHdl.Create)
		route(msgs, http.MethodGet, "/conversation/:conversation_id", msgHdl.ListByConversation)
		route(msgs, http.MethodGet, "/:id", msgHdl.Get)
		route(msgs, http.MethodPut, "/:id", msgHdl.Update)
		route(msgs, http.MethodDelete, "/:id", msgHdl.Delete)
	}
}

// route 同时注册带与不带结尾斜杠的路径
func route(g *gin.RouterGroup, method, path string, h gin.HandlerFunc) {
	g.Handle(method, path, h)
	g.Handle(method, path+"/", h)
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.Close(shutdownCtx)
		return err
	case err := <-errCh:
		s.Close(context.Background())
		return err
	}
}

// Close 关闭存储与缓存连接
func (s *Server) Close(ctx context.Context) {
	if err := s.store.Close(ctx); err != nil {
		log.Error().Err(err).Msg("failed to close database connection")
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close Redis connection")
		}
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
