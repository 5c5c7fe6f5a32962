// Command journal prints the death journal of one entity: the latest
// death/revive entries and how many of each the entity has.
//
// Object IDs are handed out in config order on every start, so the same
// entries of config/gameserver.yaml keep their IDs between runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/udisondev/healthsync/internal/config"
	"github.com/udisondev/healthsync/internal/db"
	"github.com/udisondev/healthsync/internal/model"
)

const GameConfigPath = "config/gameserver.yaml"

func main() {
	entityID := flag.Uint("entity", 0, "object ID of the entity")
	limit := flag.Int("limit", 20, "number of latest entries to print")
	flag.Parse()

	if *entityID == 0 {
		fmt.Fprintln(os.Stderr, "usage: journal -entity <object id> [-limit n]")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, uint32(*entityID), *limit); err != nil {
		fmt.Fprintln(os.Stderr, "journal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, entityID uint32, limit int) error {
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfgPath := GameConfigPath
	if p := os.Getenv("HEALTHSYNC_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadGameServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading game config: %w", err)
	}

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	repo := db.NewDeathJournalRepository(database.Pool())

	entries, err := repo.ListByEntity(ctx, entityID, limit)
	if err != nil {
		return err
	}

	fmt.Printf("entity %d\n", entityID)
	for _, event := range []model.LifeEvent{model.LifeEventDeath, model.LifeEventRevive} {
		n, err := repo.CountByEvent(ctx, entityID, event)
		if err != nil {
			return err
		}
		fmt.Printf("  %-7s %d\n", event, n)
	}

	if len(entries) == 0 {
		fmt.Println("no entries")
		return nil
	}
	fmt.Printf("\n%-25s  %-20s  %-7s  %s\n", "occurred_at", "name", "event", "health")
	for _, e := range entries {
		fmt.Printf("%-25s  %-20s  %-7s  %.2f\n",
			e.OccurredAt.Format(time.RFC3339), e.EntityName, e.Event, e.Health)
	}
	return nil
}
