package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/frostyapps/cortex-demos/internal/config"
	"github.com/frostyapps/cortex-demos/internal/seeder"
	"github.com/frostyapps/cortex-demos/internal/tarot"
	"github.com/frostyapps/cortex-demos/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	dryRun     = flag.Bool("dry-run", false, "Don't upload to the bucket, just print what would be uploaded")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	cardLimit  = flag.Int("limit", 0, "Limit number of cards to process (0 = all)")
	concurrent = flag.Int("concurrent", 2, "Number of concurrent requests")
	delay      = flag.Duration("delay", time.Second, "Delay between requests")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	logger.Info("Starting tarot deck seeder...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	var store seeder.CardStore
	if !*dryRun {
		if err := cfg.ValidateStorage(); err != nil {
			logger.WithError(err).Fatal("Storage configuration validation failed")
		}

		deck, err := tarot.NewBucketDeck(tarot.BucketConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			UseSSL:    cfg.Storage.UseSSL,
		}, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize card bucket")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = deck.EnsureBucket(ctx)
		cancel()
		if err != nil {
			logger.WithError(err).Fatal("Failed to prepare card bucket")
		}
		store = deck
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deckSeeder := seeder.NewDeckSeeder(seeder.Config{
		Parallelism: *concurrent,
		Delay:       *delay,
		Limit:       *cardLimit,
		DryRun:      *dryRun,
		Verbose:     *verbose,
	}, store, logger)

	result, err := deckSeeder.Seed(ctx)
	if err != nil {
		logger.WithError(err).Fatal("Deck seeding failed")
	}

	if len(result.Errors) > 0 {
		logger.Warn("Some cards failed to upload:")
		for _, err := range result.Errors {
			logger.WithError(err).Warn("Seeding error")
		}
	}

	logger.Info("Deck seeding completed successfully!")
}
