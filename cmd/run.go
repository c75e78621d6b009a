package cmd

import (
	"context"
	"fmt"
	"time"

	"lutfarm/bot"
	"lutfarm/config"
	"lutfarm/database"
	"lutfarm/events"
	"lutfarm/infrastructure"
	"lutfarm/library"
	"lutfarm/report"
	"lutfarm/repository"
	"lutfarm/service"

	log "github.com/sirupsen/logrus"
)

// Run loads the setup, wires the optional sinks and optimizes one bet mode
func Run(ctx context.Context) error {
	cfg := config.Get()
	cfg.ConfigureLogging()
	log.Println("Starting lutfarm run...")

	log.Printf("Loading setup from %s...", cfg.SetupPath)
	setup, err := config.LoadSetup(cfg.SetupPath)
	if err != nil {
		return err
	}
	if setup.Run1000Batch {
		log.Warn("run_1000_batch is accepted for compatibility and has no effect")
	}
	log.Println("Setup loaded successfully")

	paths := library.NewPaths(setup.PathToGames, setup.GameName)

	log.Println("Initializing event bus...")
	eventBus := events.NewBus()
	log.Println("Event bus initialized successfully")

	var uowFactory service.UnitOfWorkFactory
	if cfg.PersistResults {
		databaseURL := database.ConstructDatabaseURL(cfg.DatabaseURL, cfg.DatabaseName)

		log.Println("Running database migrations...")
		if err := database.MigrateUp(databaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		log.Println("Connecting to database...")
		db, err := database.NewConnection(ctx, databaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		log.Println("Database connection established successfully")

		uowFactory = repository.NewUnitOfWorkFactory(db, eventBus)
	}

	if cfg.NATSURL != "" {
		log.Println("Connecting to NATS...")
		natsClient := infrastructure.NewNATSClient(cfg.NATSURL)
		if err := natsClient.Connect(); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer func() {
			// bus handlers run asynchronously
			time.Sleep(time.Second)
			if err := natsClient.Close(); err != nil {
				log.WithError(err).Warn("Error closing NATS connection")
			}
		}()
		infrastructure.NewNATSEventPublisher(natsClient).Attach(eventBus)
		log.Println("NATS event forwarding enabled")
	}

	var notifier service.Notifier
	if cfg.DiscordToken != "" {
		log.Println("Initializing Discord notifier...")
		discordNotifier, err := bot.New(cfg.DiscordToken, cfg.DiscordChannelID)
		if err != nil {
			return fmt.Errorf("failed to initialize Discord notifier: %w", err)
		}
		notifier = discordNotifier
		log.Println("Discord notifier initialized successfully")
	}

	writer := report.NewWriter(paths, setup.Chart)
	optimizer := service.NewOptimizationService(setup, paths, eventBus, writer, uowFactory, notifier)

	summary, err := optimizer.Run(ctx)
	if err != nil {
		return err
	}

	hashes, err := report.HashFiles([]string{summary.Files.Published})
	if err != nil {
		return err
	}
	for _, h := range hashes {
		log.WithFields(log.Fields{"file": h.Path, "sha256": h.Hash}).Info("Published lookup table")
	}

	log.Printf("Run %s finished in %s", summary.RunID, summary.Result.Duration.Round(time.Millisecond))
	return nil
}
