package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/junhak/teamfiles/internal/audit"
	"github.com/junhak/teamfiles/internal/auth"
	"github.com/junhak/teamfiles/internal/blob"
	"github.com/junhak/teamfiles/internal/config"
	"github.com/junhak/teamfiles/internal/logger"
	"github.com/junhak/teamfiles/internal/metrics"
	"github.com/junhak/teamfiles/internal/repository"
	"github.com/junhak/teamfiles/internal/roster"
	"github.com/junhak/teamfiles/internal/server"
	"github.com/junhak/teamfiles/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logg, err := logger.Init()
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer logg.Sync()

	cfg, err := config.Load()
	if err != nil {
		logg.Fatal("load config", zap.Error(err))
	}

	metrics.InitMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logg.Fatal("connect postgres", zap.Error(err))
	}
	defer dbPool.Close()

	minioClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		logg.Fatal("connect minio", zap.Error(err))
	}

	if err := storage.EnsureBucket(ctx, minioClient, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
		logg.Fatal("ensure bucket", zap.Error(err))
	}

	authService := auth.NewService(cfg.Auth)
	objectStore := blob.NewMinIOStore(minioClient, cfg.MinIO.Bucket, cfg.MinIO.PresignTTL)
	auditRepo := audit.NewRepository(dbPool)
	hub := repository.NewHub(objectStore, auditRepo, logg)
	rosterClient := roster.NewClient(cfg.Roster.BaseURL, cfg.Roster.Timeout)

	router := server.NewRouter(server.Dependencies{
		Config:      cfg,
		Log:         logg,
		DB:          dbPool,
		ObjectStore: minioClient,
		AuthService: authService,
		Hub:         hub,
		Roster:      rosterClient,
		Audit:       auditRepo,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logg.Info("TeamFiles API listening", zap.String("address", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logg.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown error", zap.Error(err))
	}
}
