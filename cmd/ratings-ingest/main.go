// Package main provides the entry point for the rating ingestion service.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/stride-score/internal/config"
	"github.com/yourusername/stride-score/internal/database"
	"github.com/yourusername/stride-score/internal/datasource"
	"github.com/yourusername/stride-score/internal/health"
	"github.com/yourusername/stride-score/internal/logger"
	"github.com/yourusername/stride-score/internal/metrics"
	"github.com/yourusername/stride-score/internal/repository"
	"github.com/yourusername/stride-score/internal/scheduler"
	"github.com/yourusername/stride-score/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	ingestSvc  *service.IngestionService
	cardSource datasource.CardSource
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(daemonCmd)
}

var rootCmd = &cobra.Command{
	Use:   "ratings-ingest",
	Short: "Apply pending result cards to the belief store",
	Long:  `Reads result cards from the input directory, applies each race to the skill beliefs in chronological order, and archives consumed cards.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupDependencies(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep(cmd.Context())
	},
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the ingestion service continuously",
	Long:  `Polls the input directory on the configured schedule and serves health and metrics endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setupDependencies(ctx context.Context) error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog = logger.NewLogger(cfg.App.LogLevel)
	if cfg.IsProduction() {
		appLog.SetFormatter(&logrus.JSONFormatter{})
	}
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Info("StrideScore ingestion starting")

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	db, err = database.NewDB(connectCtx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	validator, err := service.NewCardValidator(appLog)
	if err != nil {
		return fmt.Errorf("failed to create card validator: %w", err)
	}

	cardSource, err = datasource.NewFilesystemSource(cfg.Ingestion.InputDir, cfg.Ingestion.ArchiveDir, appLog)
	if err != nil {
		return fmt.Errorf("failed to create card source: %w", err)
	}

	ingestSvc = service.NewIngestionService(
		db,
		repos,
		validator,
		service.NewCardNormalizer(appLog),
		&cfg.Rating,
		cfg.Ingestion.BatchSize,
		appLog,
	)

	metrics.InitRegistry()
	return nil
}

func runSweep(ctx context.Context) error {
	summaries, err := ingestSvc.ProcessPending(ctx, cardSource)
	if err != nil {
		return err
	}

	for _, summary := range summaries {
		fmt.Println(summary.String())
	}
	if len(summaries) == 0 {
		appLog.Info("No pending cards")
	}
	return nil
}

func runDaemon(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	healthServer := health.NewServer(health.Config{
		ServiceName:    cfg.App.Name,
		Version:        Version,
		Commit:         GitCommit,
		Port:           fmt.Sprintf("%d", cfg.Metrics.Port),
		MetricsPath:    cfg.Metrics.Path,
		MetricsHandler: metrics.Handler(),
		Logger:         appLog,
		DB:             db,
	})
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	sched := scheduler.NewScheduler(ingestSvc, cardSource, appLog)
	if err := sched.ScheduleIngestion(cfg.Ingestion.PollSchedule); err != nil {
		return fmt.Errorf("failed to schedule ingestion: %w", err)
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	healthServer.SetReady(true)

	appLog.WithFields(logrus.Fields{
		"schedule": cfg.Ingestion.PollSchedule,
		"next_run": sched.GetNextRun().Format(time.RFC3339),
	}).Info("Ingestion daemon running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthServer.SetReady(false)
	cancel()
	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error stopping scheduler")
	}

	appLog.Info("Ingestion daemon shut down")
	return nil
}
