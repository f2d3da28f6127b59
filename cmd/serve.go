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

	"github.com/Dosada05/lobby-royale/brackets"
	"github.com/Dosada05/lobby-royale/config"
	"github.com/Dosada05/lobby-royale/db"
	"github.com/Dosada05/lobby-royale/handlers"
	"github.com/Dosada05/lobby-royale/repositories"
	api "github.com/Dosada05/lobby-royale/routes"
	"github.com/Dosada05/lobby-royale/services"
	"github.com/Dosada05/lobby-royale/storage"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			if err := cfg.RequireJWT(); err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, logger)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Хранилище снимков сетки подключается только при полной конфигурации R2.
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 is not configured, bracket export is disabled")
	}

	// Репозитории
	transactor := repositories.NewTransactor(dbConn, logger)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	memberRepo := repositories.NewPostgresTeamMemberRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	lobbyRepo := repositories.NewPostgresLobbyRepository(dbConn)
	seatRepo := repositories.NewPostgresLobbyTeamRepository(dbConn)
	reportRepo := repositories.NewPostgresScoreReportRepository(dbConn)
	disputeRepo := repositories.NewPostgresDisputeRepository(dbConn)

	// Сервисы
	advancementService := services.NewAdvancementService(
		transactor, tournamentRepo, roundRepo, lobbyRepo, seatRepo, logger,
	)
	bracketService := services.NewBracketService(
		transactor, tournamentRepo, registrationRepo, roundRepo, lobbyRepo, seatRepo,
		reportRepo, disputeRepo, brackets.NewLobbyEliminationGenerator(), uploader, logger,
	)
	scoreService := services.NewScoreService(
		transactor, tournamentRepo, roundRepo, lobbyRepo, seatRepo,
		reportRepo, disputeRepo, memberRepo, advancementService, logger,
	)
	disputeService := services.NewDisputeService(
		transactor, tournamentRepo, roundRepo, lobbyRepo, seatRepo,
		reportRepo, disputeRepo, advancementService, logger,
	)
	tournamentService := services.NewTournamentService(
		transactor, tournamentRepo, registrationRepo, teamRepo, memberRepo, logger,
	)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{JWTSecret: []byte(cfg.JWTSecretKey), AllowedOrigins: cfg.CORSAllowedOrigins},
		handlers.NewBracketHandler(bracketService),
		handlers.NewScoreHandler(scoreService),
		handlers.NewDisputeHandler(disputeService),
		handlers.NewTournamentHandler(tournamentService),
	)

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
	}
	return nil
}
