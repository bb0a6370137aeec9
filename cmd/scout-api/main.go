// Package main is the draft scout API server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"draft-scout-api/internal/application/scout"
	"draft-scout-api/internal/config"
	"draft-scout-api/internal/infrastructure/embedding"
	"draft-scout-api/internal/infrastructure/llm"
	"draft-scout-api/internal/infrastructure/persistence/milvus"
	"draft-scout-api/internal/infrastructure/persistence/redis"
	"draft-scout-api/internal/infrastructure/store"
	"draft-scout-api/internal/interfaces/http/handler"
	"draft-scout-api/internal/interfaces/http/middleware"
	"draft-scout-api/internal/interfaces/http/router"
	"draft-scout-api/pkg/logger"
	"draft-scout-api/pkg/tracer"
)

// Version is injected at build time.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting scout-api",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	shutdownTracer, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		log.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracer(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	corpus, err := store.Load(cfg.Data.ProspectsFile, cfg.Data.TeamsFile)
	if err != nil {
		logger.Fatal(ctx, "failed to load corpus", err)
	}
	log.Info("corpus loaded",
		"prospects", corpus.CountProspects(),
		"teams", corpus.CountTeams(),
	)

	milvusClient, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		logger.Fatal(ctx, "failed to connect to milvus", err)
	}
	defer milvusClient.Close()
	vectorRepo := milvus.NewRepository(milvusClient)

	// Redis is optional: without it sessions and caches fall back to
	// process memory.
	var redisClient *redis.Client
	var cache *redis.Cache
	var turnStore scout.TurnStore
	var limiter middleware.RateLimiter
	redisClient, err = redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		log.Warn("redis unavailable, using in-memory sessions", "error", err)
		turnStore = scout.NewMemoryTurnStore(cfg.Scout.HistoryMaxTurns)
	} else {
		defer redisClient.Close()
		cache = redis.NewCache(redisClient)
		turnStore = redis.NewSessionStore(redisClient, cfg.Scout.HistoryMaxTurns, cfg.Scout.SessionTTL)
		limiter = redis.NewRateLimiter(redisClient)
	}

	embedder, err := embedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		logger.Fatal(ctx, "failed to create embedder", err)
	}
	embedClient := embedding.NewClient(embedder, cache, &cfg.Embedding)

	completer := llm.NewCompleter(llm.NewEinoFactory(cfg), &cfg.LLM)

	scorer := scout.NewScorer(corpus, cfg.Scout.Ranking)
	retriever := scout.NewRetriever(
		embedClient,
		milvus.NewScoutVectorIndex(vectorRepo),
		corpus,
		scorer,
		&cfg.Scout,
	)
	svc := scout.NewService(
		scout.NewInterpreter(corpus, &cfg.Scout),
		retriever,
		scout.NewContextBuilder(&cfg.Scout),
		scout.NewSessionManager(turnStore),
		completer,
		corpus,
	)

	r := router.New(cfg, router.Handlers{
		Chat:   handler.NewChatHandler(svc, Version),
		Health: handler.NewHealthHandler(redisClient, milvusClient),
	}, limiter)

	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
