package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"genefy/internal/catalog"
	"genefy/internal/config"
	"genefy/internal/db"
	apihttp "genefy/internal/http"
	"genefy/internal/repository"
	"genefy/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal("load catalog", zap.String("path", cfg.CatalogPath), zap.Error(err))
	}
	engine, err := service.NewMatingEngine(cat, logger)
	if err != nil {
		logger.Fatal("invalid catalog", zap.Error(err))
	}
	logger.Info("catalog loaded",
		zap.String("version", engine.CatalogVersion()),
		zap.Int("traits", engine.Registry().Len()),
		zap.Strings("breeds", engine.Haplotypes().Breeds()),
	)

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()
	ctxPing, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := db.Ping(ctxPing, pool); err != nil {
		cancelPing()
		logger.Fatal("db ping", zap.Error(err))
	}
	cancelPing()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal("db schema", zap.Error(err))
	}

	animalRepo := repository.NewPgAnimalRepository(pool, engine.SnapshotBuilder(), logger)
	matingRepo := repository.NewPgMatingRepository(pool)
	matcher := service.NewBatchMatcher(engine, cfg.BatchWorkers, cfg.BatchMaxFemales, logger)

	var batchLimiter service.BatchRateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			batchLimiter = service.NewRedisBatchRateLimiter(redisClient, cfg.BatchRateWindow(), cfg.BatchRateLimit)
		}
		cancel()
	}

	var jwtSvc *service.JWTService
	if cfg.JWTSecret != "" {
		jwtSvc = service.NewJWTService(cfg.JWTSecret, 0)
	}

	catalogHandler := apihttp.NewCatalogHandler(engine)
	matingHandler := apihttp.NewMatingHandler(logger, engine, matcher, animalRepo, matingRepo, batchLimiter)
	router := apihttp.NewRouter(logger, jwtSvc, catalogHandler, matingHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newLogger(level string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if strings.EqualFold(level, "debug") {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	return logger
}
