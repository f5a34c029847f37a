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
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/league-system/config"
	"github.com/Dosada05/league-system/db"
	"github.com/Dosada05/league-system/handlers"
	"github.com/Dosada05/league-system/realtime"
	"github.com/Dosada05/league-system/repositories"
	api "github.com/Dosada05/league-system/routes"
	"github.com/Dosada05/league-system/scheduler"
	"github.com/Dosada05/league-system/services"
	"github.com/Dosada05/league-system/standings"
	"github.com/Dosada05/league-system/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("application stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("database_driver", cfg.DatabaseDriver))

	// Подключение к базе данных и миграции
	dbConn, err := db.Connect(cfg.DatabaseDriver, cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	if err := db.Migrate(dbConn, cfg.DatabaseDriver); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("database ready")

	// Хранилище бэкапов: Cloudflare R2, если настроено, иначе локальная папка
	r2Cfg := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	var uploader storage.FileUploader
	if r2Cfg.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, r2Cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("backup destination: Cloudflare R2", slog.String("bucket", cfg.R2BucketName))
	} else {
		uploader, err = storage.NewLocalDirUploader(cfg.BackupDir)
		if err != nil {
			return fmt.Errorf("failed to initialize backup directory: %w", err)
		}
		logger.Info("backup destination: local directory", slog.String("dir", cfg.BackupDir))
	}

	// WebSocket Hub
	wsHub := realtime.NewHub(logger)

	// Репозитории
	tenantRepo := repositories.NewPostgresTenantRepository(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	standingRepo := repositories.NewStandingRepository(teamRepo, playerRepo, matchRepo, eventRepo)

	recalculator := standings.NewRecalculator(standingRepo, logger)

	// Сервисы
	authService := services.NewAuthService(userRepo, logger)
	tenantService := services.NewTenantService(tenantRepo)
	userService := services.NewUserService(userRepo)
	groupService := services.NewGroupService(groupRepo)
	teamService := services.NewTeamService(dbConn, teamRepo, groupRepo, playerRepo, recalculator, wsHub, logger)
	playerService := services.NewPlayerService(playerRepo, teamRepo)
	matchService := services.NewMatchService(dbConn, matchRepo, eventRepo, teamRepo, groupRepo, recalculator, wsHub, logger)
	eventService := services.NewEventService(dbConn, eventRepo, matchRepo, playerRepo, recalculator, wsHub)
	standingsService := services.NewStandingsService(dbConn, teamRepo, recalculator, wsHub)
	backupService := services.NewBackupService(dbConn, tenantRepo, groupRepo, teamRepo, playerRepo, matchRepo, eventRepo,
		recalculator, uploader, cfg.BackupRetention, wsHub, logger)
	logger.Info("services initialized")

	if cfg.AdminEmail != "" {
		created, err := authService.EnsureSuperAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("failed to bootstrap super admin: %w", err)
		}
		if created {
			logger.Info("bootstrap super admin created", slog.String("email", cfg.AdminEmail))
		}
	}

	// Планировщик бэкапов
	sched, err := scheduler.New(logger)
	if err != nil {
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}
	if _, err := sched.AddJob("tenant-backup", cfg.BackupCron, func() error {
		jobCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		_, err := backupService.RunScheduledBackup(jobCtx)
		return err
	}); err != nil {
		return fmt.Errorf("failed to schedule backups: %w", err)
	}

	// HTTP
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:      handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Tenant:    handlers.NewTenantHandler(tenantService),
		User:      handlers.NewUserHandler(userService),
		Group:     handlers.NewGroupHandler(groupService),
		Team:      handlers.NewTeamHandler(teamService, playerService),
		Player:    handlers.NewPlayerHandler(playerService),
		Match:     handlers.NewMatchHandler(matchService, eventService),
		Standings: handlers.NewStandingsHandler(standingsService),
		Backup:    handlers.NewBackupHandler(backupService),
		WebSocket: handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins, logger),
	}, cfg.JWTSecretKey, cfg.CORSAllowedOrigins)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		wsHub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		sched.Start()
		<-gctx.Done()
		return sched.Stop()
	})

	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
		return nil
	})

	return g.Wait()
}
