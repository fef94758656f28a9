package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"user-service/internal/config"
	"user-service/internal/events"
	"user-service/internal/handler"
	"user-service/internal/repository"
	"user-service/internal/router"
	emailservice "user-service/internal/service/email"
	"user-service/internal/usecase"
	"user-service/pkg/kafka"
	"user-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func NewServer(cfg config.AppConfig) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})
	defer rdb.Close()

	userRepo := repository.NewUserRepository(rdb)
	lockRepo := repository.NewLockRepository(rdb)
	groupRepo := repository.NewGroupRepository(rdb)

	producer, err := kafka.NewRegistrationEventProducer(cfg.KafkaBrokers)
	if err != nil {
		logger.Fatal("failed to create kafka producer", zap.Error(err))
	}
	defer producer.Close()

	emailSender := emailservice.NewSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	publisher := events.NewUserEventPublisher(rdb)

	uc := usecase.NewUserUsecase(
		userRepo,
		lockRepo,
		groupRepo,
		nil, // no extension hooks configured in the standalone service
		producer,
		emailSender,
		publisher,
		utils.ZxcvbnEstimator{},
		usecase.Policy{
			MinPasswordLength:   cfg.MinPasswordLength,
			MinPasswordStrength: cfg.MinPasswordStrength,
			DefaultDigestFreq:   cfg.DefaultDigestFreq,
		},
		logger,
	)

	h := handler.NewUserHandler(uc, logger)

	r := chi.NewRouter()
	router.SetupRoutes(r, h)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	logger.Info("server stopped gracefully")
}
