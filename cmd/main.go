package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-co-op/gocron/v2"
	_ "github.com/lib/pq"

	"github.com/tippliga/tippliga/config"
	"github.com/tippliga/tippliga/db"
	"github.com/tippliga/tippliga/engine"
	"github.com/tippliga/tippliga/feed"
	"github.com/tippliga/tippliga/handlers"
	"github.com/tippliga/tippliga/repositories"
	api "github.com/tippliga/tippliga/routes"
	"github.com/tippliga/tippliga/services"
	"github.com/tippliga/tippliga/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2), если он настроен
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("Cloudflare R2 is not configured, flag uploads disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := engine.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	predictionRepo := repositories.NewPostgresPredictionRepository(dbConn)
	bracketRepo := repositories.NewPostgresBracketRepository(dbConn)
	leagueRepo := repositories.NewPostgresLeagueRepository(dbConn)
	bonusRepo := repositories.NewPostgresBonusRepository(dbConn)
	rankingRepo := repositories.NewPostgresRankingRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	standingsService := services.NewStandingsService(matchRepo)
	scoringService := services.NewScoringService(matchRepo, predictionRepo, logger)
	promotionService := services.NewPromotionService(matchRepo, wsHub, logger)
	bracketScoringService := services.NewBracketScoringService(dbConn, matchRepo, bracketRepo, wsHub, logger)
	matchService := services.NewMatchService(matchRepo, scoringService, promotionService, bracketScoringService, wsHub, logger)
	predictionService := services.NewPredictionService(matchRepo, predictionRepo, leagueRepo)
	bracketService := services.NewBracketService(matchRepo, bracketRepo, leagueRepo)
	leagueService := services.NewLeagueService(dbConn, leagueRepo, bracketRepo, logger)
	bonusService := services.NewBonusService(dbConn, bonusRepo, leagueRepo, logger)
	rankingService := services.NewRankingService(rankingRepo, bracketRepo, matchRepo)

	feedClient := feed.NewClient(cfg.FeedBaseURL, cfg.FeedAPIKey)
	syncService := services.NewSyncService(feedClient, matchRepo, matchService, logger)
	logger.Info("Services initialized")

	// Планировщик периодической синхронизации результатов
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.SyncInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.SyncInterval)
			defer cancel()

			summary, err := syncService.SyncOnce(ctx)
			if err != nil {
				logger.Error("scheduled result sync failed", slog.Any("error", err))
				return
			}
			logger.Info("scheduled result sync complete",
				slog.Int("updated", summary.Updated),
				slog.Int("finished", summary.Finished),
				slog.Int("skipped", summary.Skipped),
			)
		}),
	)
	if err != nil {
		logger.Error("failed to schedule result sync job", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Error("failed to shut down scheduler", slog.Any("error", err))
		}
	}()
	logger.Info("result sync scheduler started", slog.Duration("interval", cfg.SyncInterval))

	// Инициализация обработчиков HTTP
	matchHandler := handlers.NewMatchHandler(matchService, syncService, bracketScoringService, matchRepo, uploader)
	standingsHandler := handlers.NewStandingsHandler(standingsService)
	rankingHandler := handlers.NewRankingHandler(rankingService)
	predictionHandler := handlers.NewPredictionHandler(predictionService)
	bracketHandler := handlers.NewBracketHandler(bracketService)
	leagueHandler := handlers.NewLeagueHandler(leagueService)
	bonusHandler := handlers.NewBonusHandler(bonusService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		matchHandler,
		standingsHandler,
		rankingHandler,
		predictionHandler,
		bracketHandler,
		leagueHandler,
		bonusHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
