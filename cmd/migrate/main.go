package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/kontorapp/kontor/internal/config"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/postgres"
)

func main() {
	// Parse command line flags
	dryRun := flag.Bool("dry-run", false, "Print pending migration SQL without executing it")
	timeout := flag.Duration("timeout", 60*time.Second, "Timeout for the whole migration run")
	flag.Parse()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host, "dbname", cfg.Postgres.DBName)

	db, err := postgres.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var out io.Writer
	if *dryRun {
		logger.Info("Dry run mode - printing migration SQL without executing")
		out = os.Stdout
	}

	logger.Info("Running database migrations...")
	if err := postgres.Migrate(ctx, db, logger, out); err != nil {
		logger.Fatalw("Failed to apply migrations", "error", err)
	}

	fmt.Println("Migration process completed")
}
