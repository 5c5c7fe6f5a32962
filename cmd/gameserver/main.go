package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/healthsync/internal/config"
	"github.com/udisondev/healthsync/internal/db"
	"github.com/udisondev/healthsync/internal/gameserver"
)

const GameConfigPath = "config/gameserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}

	// Load config FIRST to determine log level
	cfgPath := GameConfigPath
	if p := os.Getenv("HEALTHSYNC_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadGameServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading game config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	})))

	slog.Info("healthsync authority starting",
		"config", cfgPath,
		"log_level", cfg.Server.LogLevel,
		"bind", cfg.Server.BindAddress,
		"port", cfg.Server.Port,
		"allow_set_while_dead", cfg.Rules.AllowSetWhileDead)

	g, gctx := errgroup.WithContext(ctx)

	// Death journal is optional: without a database the server keeps state in memory only.
	var journal gameserver.Journal
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		writer := db.NewJournalWriter(db.NewDeathJournalRepository(database.Pool()), cfg.Database.JournalQueueSize)
		journal = writer

		g.Go(func() error {
			slog.Info("starting death journal writer", "queue", cfg.Database.JournalQueueSize)
			return writer.Run(gctx)
		})
	}

	srv := gameserver.NewServer(cfg, journal)
	if err := srv.SpawnEntities(cfg.Entities); err != nil {
		return fmt.Errorf("spawning entities: %w", err)
	}

	g.Go(func() error {
		slog.Info("starting authority server", "port", cfg.Server.Port, "tick", cfg.Server.TickInterval)
		if err := srv.Run(gctx); err != nil {
			return fmt.Errorf("authority server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
