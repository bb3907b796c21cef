package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medika/medika/internal/config"
	"github.com/medika/medika/internal/domain/booking"
	"github.com/medika/medika/internal/domain/catalog"
	"github.com/medika/medika/internal/domain/doctor"
	"github.com/medika/medika/internal/domain/medicalrecord"
	"github.com/medika/medika/internal/domain/notification"
	"github.com/medika/medika/internal/domain/schedule"
	"github.com/medika/medika/internal/domain/wallet"
	"github.com/medika/medika/internal/platform/auth"
	"github.com/medika/medika/internal/platform/db"
	"github.com/medika/medika/internal/platform/middleware"
	"github.com/medika/medika/internal/platform/push"
)

// EarningsAdapter exposes the booking store's settled revenue rows through
// the wallet.EarningsSource interface, avoiding a circular import between
// the wallet and booking packages.
type EarningsAdapter struct {
	repo booking.Repository
}

func (a *EarningsAdapter) CompletedPaidByDoctor(ctx context.Context, doctorID uuid.UUID) ([]wallet.Earning, error) {
	return a.repo.CompletedPaidEarnings(ctx, doctorID)
}

// BookingDirectoryAdapter answers booking-ownership questions for the
// medical record service.
type BookingDirectoryAdapter struct {
	repo booking.Repository
}

func (a *BookingDirectoryAdapter) PatientForDoctorBooking(ctx context.Context, bookingID, doctorID uuid.UUID) (uuid.UUID, error) {
	b, err := a.repo.GetByID(ctx, bookingID)
	if err != nil {
		return uuid.Nil, err
	}
	if b.DoctorID == nil || *b.DoctorID != doctorID {
		return uuid.Nil, pgx.ErrNoRows
	}
	return b.PatientID, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "medika-server",
		Short: "Clinic booking API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the booking API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("invalid timezone")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", db.HealthHandler(pool))

	api := e.Group("/api/v1")
	api.Use(auth.Middleware(auth.Config{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.JWTIssuer,
	}))

	// Shared transaction runner: retries the whole unit of work on
	// serialization and lock failures.
	txRunner := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.InTxRetry(ctx, pool, fn)
	}

	// Repositories
	serviceRepo := catalog.NewRepoPG(pool)
	doctorRepo := doctor.NewRepoPG(pool)
	ledger := schedule.NewLedgerPG(pool)
	bookingRepo := booking.NewRepoPG(pool)
	recordRepo := medicalrecord.NewRepoPG(pool)
	walletRepo := wallet.NewWalletRepoPG(pool)
	withdrawRepo := wallet.NewWithdrawRepoPG(pool)
	notifRepo := notification.NewRepoPG(pool)
	tokenRepo := notification.NewTokenRepoPG(pool)

	// Services
	catalogSvc := catalog.New(serviceRepo)
	doctorSvc := doctor.New(doctorRepo)
	scheduleSvc := schedule.New(txRunner, ledger, doctorRepo)
	walletSvc := wallet.New(txRunner, walletRepo, withdrawRepo, &EarningsAdapter{repo: bookingRepo})
	recordSvc := medicalrecord.New(recordRepo, &BookingDirectoryAdapter{repo: bookingRepo})
	notifSvc := notification.New(notifRepo, tokenRepo, push.NewExpoClient(cfg.PushEndpoint), logger)
	bookingSvc := booking.New(txRunner, bookingRepo, serviceRepo, doctorRepo, ledger,
		walletSvc, recordSvc, notifSvc, logger)

	// Routes
	catalog.NewHandler(catalogSvc).RegisterRoutes(api)
	doctor.NewHandler(doctorSvc).RegisterRoutes(api)
	schedule.NewHandler(scheduleSvc).RegisterRoutes(api)
	wallet.NewHandler(walletSvc).RegisterRoutes(api)
	medicalrecord.NewHandler(recordSvc).RegisterRoutes(api)
	notification.NewHandler(notifSvc).RegisterRoutes(api)
	booking.NewHandler(bookingSvc).RegisterRoutes(api)

	// Reminder sweep
	var sweeper *booking.ReminderSweeper
	if cfg.ReminderEnabled {
		sweeper = booking.NewReminderSweeper(bookingRepo, notifSvc, loc, logger)
		if err := sweeper.Start(); err != nil {
			logger.Fatal().Err(err).Msg("failed to start reminder sweeper")
		}
		logger.Info().Str("timezone", cfg.Timezone).Msg("reminder sweeper started")
	}

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	if sweeper != nil {
		sweeper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
	return nil
}
