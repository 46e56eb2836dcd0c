// Command initdb creates the schema, seeds the default categories and prunes
// expired sessions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/spendwise/expense-tracker/internal/core/service"
	"github.com/spendwise/expense-tracker/internal/infrastructure/db/sqlstore"
	"github.com/spendwise/expense-tracker/internal/pkg/config"
	"github.com/spendwise/expense-tracker/pkg/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := config.Load()

	fs := flag.NewFlagSet("initdb", flag.ContinueOnError)
	dbURL := fs.String("db", cfg.DatabaseURL, "Database URL (sqlite://path or postgres://...)")
	prune := fs.Bool("prune-sessions", true, "Delete expired sessions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "initdb"})
	ctx := context.Background()

	db, err := sqlstore.Open(ctx, sqlstore.Config{URL: *dbURL})
	if err != nil {
		return err
	}
	defer sqlstore.Close(db)

	categories := service.NewCategoryService(sqlstore.NewCategoryRepository(db), nil, log)
	n, err := categories.SeedDefaults(ctx)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if n > 0 {
		fmt.Printf("Created %d default categories\n", n)
	} else {
		fmt.Println("Categories already exist, skipping creation")
	}

	if *prune {
		removed, err := sqlstore.NewSessionStore(db).DeleteExpired(ctx, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("prune sessions: %w", err)
		}
		fmt.Printf("Removed %d expired sessions\n", removed)
	}

	fmt.Println("Database initialization completed")
	return nil
}
