package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/retailops/loadboard/internal/adapters/repository"
	"github.com/retailops/loadboard/internal/application/services"
	"github.com/retailops/loadboard/internal/infrastructure/config"
	"github.com/retailops/loadboard/internal/infrastructure/database"
	"github.com/retailops/loadboard/internal/infrastructure/logger"
	"github.com/retailops/loadboard/internal/infrastructure/server"
	"github.com/retailops/loadboard/internal/ports"
)

// Build metadata, set with -ldflags "-X ...".
var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "development"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the task API server",
		Long:  "Start the task API server with the configured document store, routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage the Postgres document store schema (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration(database.MigrateUp)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration(database.MigrateDown)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			showMigrationVersion()
		},
	})

	return migrateCmd
}

// NewTokenCommand creates the token command
func NewTokenCommand() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "API token commands",
	}

	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a bearer token for the task API",
		Run: func(cmd *cobra.Command, args []string) {
			subject, _ := cmd.Flags().GetString("subject")
			if subject == "" {
				log.Fatal("Subject is required")
			}
			issueToken(subject)
		},
	}
	issueCmd.Flags().String("subject", "", "Token subject, e.g. the dashboard operator (required)")

	tokenCmd.AddCommand(issueCmd)
	return tokenCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print loadboard version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("loadboard %s\n", Version)
			fmt.Printf("Build Date: %s\n", BuildDate)
			fmt.Printf("Git Commit: %s\n", GitCommit)
		},
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	store, closeStore, err := openStore(cfg, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to open document store", "driver", cfg.Database.Driver, "error", err)
	}
	defer closeStore()

	srv, err := server.New(cfg, store, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize server", "error", err)
	}

	appLogger.Infow("Starting loadboard API server",
		"address", cfg.Server.GetAddr(),
		"environment", cfg.App.Environment,
		"driver", cfg.Database.Driver,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.GetAddr())
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalw("Server failed", "error", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLogger.Errorw("Graceful shutdown failed", "error", err)
		}
	}
}

// openStore connects the configured document store driver
func openStore(cfg *config.Config, appLogger *logger.Logger) (ports.DocumentStore, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		appLogger.Warn("Using the in-memory document store; tasks are lost on restart")
		return repository.NewMemoryStore(), func() {}, nil
	}

	if cfg.Database.AutoMigrate {
		status, err := database.Migrate(cfg.Database, database.MigrateUp)
		if err != nil {
			return nil, nil, err
		}
		appLogger.Infow("Schema migrated", "version", status.Version, "changed", status.Changed)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	if err := db.HealthCheck(context.Background()); err != nil {
		db.Close()
		return nil, nil, err
	}
	appLogger.Infow("Connected to document store", "pool", db.GetConnectionInfo())

	return repository.NewPostgresStore(db), func() {
		if err := db.Close(); err != nil {
			appLogger.Errorw("Failed to close database", "error", err)
		}
	}, nil
}

func runMigration(direction string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		log.Fatalf("Migrations need the %s driver, configured driver is %s", config.DriverPostgres, cfg.Database.Driver)
	}

	status, err := database.Migrate(cfg.Database, direction)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if !status.Changed {
		fmt.Println("No migrations to run")
		return
	}
	fmt.Printf("Migration %s completed successfully (version %d)\n", direction, status.Version)
}

func showMigrationVersion() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	status, err := database.Version(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to get migration version: %v", err)
	}

	fmt.Printf("Current migration version: %d\n", status.Version)
	fmt.Printf("Dirty: %t\n", status.Dirty)
}

func issueToken(subject string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Auth.Secret == "" {
		log.Fatal("AUTH_SECRET must be set to issue tokens")
	}

	token, err := services.NewAuthService(cfg.Auth).IssueToken(subject)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}
