package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/approvalhq/workflow-service/internal/application/service"
	"github.com/approvalhq/workflow-service/internal/auth"
	"github.com/approvalhq/workflow-service/internal/config"
	"github.com/approvalhq/workflow-service/internal/infrastructure/persistence/repository"
	"github.com/approvalhq/workflow-service/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/approvalhq/workflow-service/internal/interfaces/http"
	"github.com/approvalhq/workflow-service/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting approval workflow service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create data directory", zap.Error(err))
		}
	}

	db, err := sqlite.New(sqlite.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := sqlite.NewMigrator(db, logger)
	if err := migrator.Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	requestRepo := repository.NewRequestRepository(db, logger)
	historyRepo := repository.NewHistoryRepository(db, logger)
	configRepo := repository.NewConfigRepository(db, logger)

	serviceLogger := utils.NewSugarAdapter(logger)
	approvalService := service.NewApprovalService(requestRepo, historyRepo, configRepo, db, serviceLogger)
	workflowService := service.NewWorkflowService(configRepo, serviceLogger)

	authenticator := auth.NewAuthenticator(cfg.Auth.Secret, cfg.Auth.Issuer, logger)
	handlers := httpserver.NewHandlers(approvalService, workflowService, logger)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Mode:            cfg.Server.Mode,
	}, handlers, authenticator, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
