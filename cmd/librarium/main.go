package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/librarium/internal/cache"
	"github.com/xela07ax/librarium/internal/catalog/handler"
	"github.com/xela07ax/librarium/internal/catalog/server"
	"github.com/xela07ax/librarium/internal/catalog/service"
	"github.com/xela07ax/librarium/internal/infra"
	"github.com/xela07ax/librarium/internal/infra/auth"
	"github.com/xela07ax/librarium/internal/repository/postgres"
	"go.uber.org/zap"
)

func main() {
	// 1. Конфигурация. Отсутствие секрета подписи — фатально,
	// до логгера и БД даже не доходим.
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync()

	// 2. Инициализация ресурсов
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := postgres.NewStore(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("database unreachable", zap.Error(err))
	}
	defer store.Close()

	if err := store.Migrate(ctx, cfg.Database.URL); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}
	cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// 3. Инициализация слоев (Dependency Injection)
	userRepo := postgres.NewUserRepo(store)
	bookRepo := postgres.NewBookRepo(store)
	bookCache := cache.NewBookCache(rdb, cfg.Cache.TTL, logger)

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenService(cfg.Auth)
	guard := auth.NewGuard(tokens, userRepo, logger)

	authService := service.NewAuthService(userRepo, hasher, tokens, logger)
	userService := service.NewUserService(userRepo, hasher, logger)
	bookService := service.NewBookService(bookRepo, bookCache, logger)

	srv := server.NewCatalogServer(
		cfg,
		logger,
		guard,
		store,
		promReg,
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewBookHandler(bookService),
	)

	// 4. Запуск сервера
	httpSrv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("catalog API started", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// 5. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
