package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"chatd/internal/ai"
	"chatd/internal/config"
	"chatd/internal/handler"
	"chatd/internal/pkg/cache"
	"chatd/internal/pkg/mongodb"
	"chatd/internal/repository"
	"chatd/internal/server/middleware"
	"chatd/internal/service"
)

// Server wires the HTTP engine to the persistence store and the AI
// responder. The Mongo and Redis clients are process-wide: created here
// once, shared by every request, closed on shutdown.
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	mongo  *mongodb.Client
	redis  *cache.RedisCache
}

// New creates the server and wires all dependencies.
func New(cfg *config.Config) (*Server, error) {
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// MongoDB owns all durable state; without it there is no service.
	mongoClient, err := mongodb.New(&cfg.Mongo)
	if err != nil {
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	// Redis is an optional read cache for thread lookups.
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

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		mongo:  mongoClient,
		redis:  redisCache,
	}

	srv.setupRoutes()

	return srv, nil
}

// setupRoutes builds the dependency graph and the route table.
func (s *Server) setupRoutes() {
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS(&s.cfg.CORS))

	healthHandler := handler.NewHealthHandler()
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	db := s.mongo.Database()
	threadRepo := repository.NewThreadRepo(db)
	messageRepo := repository.NewMessageRepo(db)

	// The responder never fails construction: without credentials it
	// serves deterministic mock replies.
	aiClient := ai.NewClient(&s.cfg.AI, s.cfg.Chat.SystemPrompt)

	chatSvc := service.NewChatService(aiClient, threadRepo, messageRepo, s.redis, s.cfg.Chat.MaxHistoryMessages)
	threadSvc := service.NewThreadService(threadRepo, messageRepo, s.redis)
	messageSvc := service.NewMessageService(messageRepo, threadRepo)

	threadHandler := handler.NewThreadHandler(chatSvc, threadSvc)
	messageHandler := handler.NewMessageHandler(chatSvc, threadSvc, messageSvc)

	threads := s.engine.Group("/threads")
	{
		threads.POST("", threadHandler.Create)
		threads.GET("", threadHandler.List)
		threads.GET("/:id", threadHandler.Get)
		threads.PUT("/:id", threadHandler.Update)
		threads.DELETE("/:id", threadHandler.Delete)

		threads.POST("/:id/messages", messageHandler.Send)
		threads.GET("/:id/messages", messageHandler.List)
		threads.GET("/:id/history", messageHandler.History)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		if err := s.mongo.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to close MongoDB connection")
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine exposes the gin engine for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
