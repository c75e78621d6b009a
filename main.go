package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"lutfarm/cmd"
	"lutfarm/config"
	"lutfarm/database"
	"lutfarm/library"
	"lutfarm/report"

	log "github.com/sirupsen/logrus"
)

func main() {
	if len(os.Args) > 1 {
		var err error
		handled := true
		switch os.Args[1] {
		case "migrate":
			err = handleMigrationCommand()
		case "swap":
			err = handleSwapCommand()
		case "hash":
			err = handleHashCommand()
		default:
			handled = false
		}
		if handled {
			if err != nil {
				log.Fatal("Command error: ", err)
			}
			return
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, stopping run...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: lutfarm migrate [up|down|status] [args...]")
	}

	cfg := config.Get()
	cfg.ConfigureLogging()
	databaseURL := database.ConstructDatabaseURL(cfg.DatabaseURL, cfg.DatabaseName)
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for migrations")
	}

	switch os.Args[2] {
	case "up":
		return database.MigrateUp(databaseURL)
	case "down":
		steps := 1
		if len(os.Args) > 3 {
			n, err := strconv.Atoi(os.Args[3])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid step count %q", os.Args[3])
			}
			steps = n
		}
		return database.MigrateDown(databaseURL, steps)
	case "status":
		return database.MigrateStatus(databaseURL)
	default:
		return fmt.Errorf("unknown migration command: %s", os.Args[2])
	}
}

// handleSwapCommand publishes the distribution of report n of a bet mode
func handleSwapCommand() error {
	if len(os.Args) < 5 {
		return fmt.Errorf("usage: lutfarm swap <game> <mode> <n>")
	}
	game, mode := os.Args[2], os.Args[3]
	n, err := strconv.Atoi(os.Args[4])
	if err != nil || n < 1 {
		return fmt.Errorf("invalid report number %q", os.Args[4])
	}

	cfg := config.Get()
	cfg.ConfigureLogging()
	setup, err := config.LoadSetup(cfg.SetupPath)
	if err != nil {
		return err
	}

	paths := library.NewPaths(setup.PathToGames, game)
	rows, err := report.Swap(paths.Report(mode, n), paths.Published(mode))
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"report":    paths.Report(mode, n),
		"published": paths.Published(mode),
		"rows":      rows,
	}).Info("Swapped published lookup table")
	return nil
}

func handleHashCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: lutfarm hash <file>...")
	}
	hashes, err := report.HashFiles(os.Args[2:])
	if err != nil {
		return err
	}
	for _, h := range hashes {
		fmt.Printf("%s  %s\n", h.Hash, h.Path)
	}
	return nil
}
