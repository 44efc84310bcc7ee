package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ghermet/factureflow/internal/auth"
	"github.com/ghermet/factureflow/internal/config"
	"github.com/ghermet/factureflow/internal/fixtures"
	"github.com/ghermet/factureflow/internal/registry"
	"github.com/ghermet/factureflow/internal/repository"
	"github.com/ghermet/factureflow/internal/scheduler"
	"github.com/ghermet/factureflow/internal/server"
	"github.com/ghermet/factureflow/internal/session"
	"github.com/ghermet/factureflow/internal/workflow"
	"github.com/ghermet/factureflow/pkg/database"
	"github.com/ghermet/factureflow/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
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

	logger.Info("Starting FactureFlow",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{DSN: cfg.Database.DSN}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories
	deptRepo := repository.NewDepartmentRepository(db.DB, logger)
	invoiceRepo := repository.NewInvoiceRepository(db.DB, logger)
	commentRepo := repository.NewCommentRepository(db.DB, logger)

	// The database is in-memory, so every start begins from fixtures.
	seeder := fixtures.NewSeeder(db, deptRepo, invoiceRepo, commentRepo, logger)
	if err := seeder.Seed(); err != nil {
		logger.Fatal("Failed to seed fixture data", zap.Error(err))
	}

	// Services
	sessions := session.NewManager(
		deptRepo,
		auth.ForMode(cfg.Auth.Verifier),
		cfg.Session.JWTSecret,
		cfg.Session.TTL,
		logger,
	)
	engine := workflow.NewEngine(db, invoiceRepo, commentRepo, cfg.Workflow.RevertSecret, logger)
	reg := registry.NewService(deptRepo, logger)

	ageRefresher := scheduler.NewAgeRefresher(invoiceRepo, logger)
	if err := ageRefresher.Start(); err != nil {
		logger.Fatal("Failed to start age refresher", zap.Error(err))
	}
	defer ageRefresher.Stop()

	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := server.NewHandler(sessions, engine, reg, invoiceRepo, commentRepo, seeder, logger)
	router := server.NewRouter(handler, sessions, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
