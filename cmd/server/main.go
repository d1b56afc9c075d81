package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vkaryagin/freelance-market/internal/config"
	"github.com/vkaryagin/freelance-market/internal/db"
	httpHandlers "github.com/vkaryagin/freelance-market/internal/http/handlers"
	httpRouter "github.com/vkaryagin/freelance-market/internal/http/router"
	"github.com/vkaryagin/freelance-market/internal/jobs"
	"github.com/vkaryagin/freelance-market/internal/logger"
	"github.com/vkaryagin/freelance-market/internal/metrics"
	"github.com/vkaryagin/freelance-market/internal/repository"
	"github.com/vkaryagin/freelance-market/internal/service"
	"github.com/vkaryagin/freelance-market/internal/storage"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	metrics.Init()

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	fileStorage, err := storage.NewFileStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	ledgerRepo := repository.NewLedgerRepository(dbConn)
	withdrawalRepo := repository.NewWithdrawalRepository(dbConn, ledgerRepo)
	orderRepo := repository.NewOrderRepository(dbConn)
	applicationRepo := repository.NewApplicationRepository(dbConn, ledgerRepo)
	disputeRepo := repository.NewDisputeRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Сервисы.
	notificationService := service.NewNotificationService(notificationRepo)
	financeService := service.NewFinanceService(ledgerRepo)
	withdrawalService := service.NewWithdrawalService(withdrawalRepo, notificationService)
	orderService := service.NewOrderService(orderRepo)
	applicationService := service.NewApplicationService(applicationRepo, orderRepo)
	disputeService := service.NewDisputeService(disputeRepo, orderRepo, notificationService)
	refundService := service.NewRefundService(applicationRepo, notificationService, cfg.RefundGracePeriod)

	// Демо-данные только для разработки.
	if cfg.Env == "development" {
		seedService := service.NewSeedService(userRepo, ledgerRepo, orderRepo)
		if err := seedService.Seed(ctx); err != nil {
			logger.Log.WithError(err).Warn("main: не удалось создать демо-данные")
		}
	}

	// Планировщик возвратов.
	scheduler := jobs.NewScheduler(refundService, cfg.RefundSweepSpec)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("main: не удалось запустить планировщик: %v", err)
	}
	defer scheduler.Stop()

	// HTTP хэндлеры.
	financeHandler := httpHandlers.NewFinanceHandler(financeService)
	withdrawalHandler := httpHandlers.NewWithdrawalHandler(withdrawalService)
	orderHandler := httpHandlers.NewOrderHandler(orderService)
	applicationHandler := httpHandlers.NewApplicationHandler(applicationService, scheduler)
	disputeHandler := httpHandlers.NewDisputeHandler(disputeService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	mediaHandler := httpHandlers.NewMediaHandler(fileStorage)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg,
		financeHandler, withdrawalHandler, orderHandler, applicationHandler,
		disputeHandler, notificationHandler, mediaHandler, healthHandler,
		tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
