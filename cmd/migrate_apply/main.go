package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"rps_webapp/internal/config"
	"rps_webapp/internal/db"
	"rps_webapp/internal/migrations"
	"rps_webapp/internal/repository"
)

func main() {
	apply := flag.Bool("apply", false, "apply pending migrations")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		exitf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := repository.Open(ctx, cfg)
	if err != nil {
		exitf("open store: %v", err)
	}
	defer store.Close()

	ms, err := db.LoadMigrations(migrations.FS, cfg.StoreDriver)
	if err != nil {
		exitf("load migrations: %v", err)
	}

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		exitf("schema version: %v", err)
	}

	fmt.Printf("driver %s, schema version %d\n", cfg.StoreDriver, current)
	for _, m := range ms {
		state := "pending"
		if m.Version <= current {
			state = "applied"
		}
		fmt.Printf("  %04d %-32s %s\n", m.Version, m.Name, state)
	}

	if !*apply {
		return
	}

	if err := store.Initialize(ctx); err != nil {
		exitf("apply: %v", err)
	}
	after, err := store.SchemaVersion(ctx)
	if err != nil {
		exitf("schema version: %v", err)
	}
	fmt.Printf("schema version %d -> %d\n", current, after)
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
