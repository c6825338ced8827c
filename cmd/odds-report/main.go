// Package main provides the entry point for the win odds report tool.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/stride-score/internal/config"
	"github.com/yourusername/stride-score/internal/database"
	"github.com/yourusername/stride-score/internal/logger"
	"github.com/yourusername/stride-score/internal/models"
	"github.com/yourusername/stride-score/internal/repository"
	"github.com/yourusername/stride-score/internal/service"
)

var (
	configFile string
	cardFile   string
	appLog     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	oddsSvc    *service.OddsService
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&cardFile, "card", "f", "", "Path to the upcoming race card JSON")
	rootCmd.MarkFlagRequired("card")
}

var rootCmd = &cobra.Command{
	Use:   "odds-report",
	Short: "Price upcoming races from current skill beliefs",
	Long:  `Reads an upcoming race card and prints win probabilities and decimal odds for every race, computed from the stored beliefs.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupDependencies(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd.Context())
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

	oddsSvc = service.NewOddsService(
		repos.Belief,
		service.NewCardNormalizer(appLog),
		&cfg.Rating,
		time.Duration(cfg.Ingestion.BeliefCacheTTL)*time.Second,
		appLog,
	)

	return nil
}

func runReport(ctx context.Context) error {
	data, err := os.ReadFile(cardFile)
	if err != nil {
		return fmt.Errorf("failed to read card file: %w", err)
	}

	card := &models.Card{}
	if err := json.Unmarshal(data, card); err != nil {
		return fmt.Errorf("failed to decode card file: %w", err)
	}

	reports := make([]*models.OddsReport, 0, len(card.Races))
	for i := range card.Races {
		report, err := oddsSvc.QuoteRace(ctx, &card.Races[i])
		if err != nil {
			appLog.WithError(err).WithFields(logrus.Fields{
				"venue":       card.Races[i].Venue,
				"race_number": card.Races[i].RaceNumber,
			}).Error("Failed to price race")
			continue
		}
		reports = append(reports, report)
	}

	if len(reports) == 0 {
		return fmt.Errorf("no race in %s could be priced", cardFile)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(reports)
}
