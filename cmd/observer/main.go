// Command observer connects to the authority as a proxy, mirrors every
// entity and logs deaths and revivals. With -damage it also forwards damage
// to every living entity, and with -revive it asks the authority to bring
// dead ones back.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/healthsync/internal/config"
	"github.com/udisondev/healthsync/internal/model"
	"github.com/udisondev/healthsync/internal/proxy"
	"github.com/udisondev/healthsync/internal/world"
)

const ObserverConfigPath = "config/observer.yaml"

type flags struct {
	damage float64
	revive float64
	every  time.Duration
}

func main() {
	var f flags
	flag.Float64Var(&f.damage, "damage", 0, "damage forwarded to every living entity each interval (0 = watch only)")
	flag.Float64Var(&f.revive, "revive", 0, "health requested for dead entities each interval (0 = never revive)")
	flag.DurationVar(&f.every, "every", time.Second, "interval between forwarded requests")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, f); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags) error {
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfgPath := ObserverConfigPath
	if p := os.Getenv("HEALTHSYNC_OBSERVER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadObserver(cfgPath)
	if err != nil {
		return fmt.Errorf("loading observer config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	client, err := proxy.Dial(dialCtx, cfg.ServerAddress,
		proxy.WithReadTimeout(cfg.ReadTimeout),
		proxy.WithSpawnHook(watch),
	)
	if err != nil {
		return err
	}
	defer client.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := client.Run(gctx); err != nil {
			return fmt.Errorf("proxy: %w", err)
		}
		// Соединение закрыто сервером: завершаем остальные горутины.
		return context.Canceled
	})

	if f.damage > 0 || f.revive > 0 {
		g.Go(func() error {
			drive(gctx, client.World(), f)
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// watch attaches logging listeners to a freshly mirrored entity.
func watch(e *world.Entity) {
	h := e.Health()
	h.OnDeath().Add(func(ref model.EntityRef) {
		slog.Info("entity died", "entity", ref)
	})
	h.OnRevive().Add(func(ref model.EntityRef) {
		slog.Info("entity revived", "entity", ref, "health", h.Health())
	})
	h.OnHealthReplicated(func(prev, cur float64) {
		slog.Debug("health replicated", "entity", e.Ref(), "from", prev, "to", cur)
	})
}

// drive forwards damage and revive requests through the proxy components.
func drive(ctx context.Context, w *world.World, f flags) {
	ticker := time.NewTicker(f.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.ForEach(func(e *world.Entity) bool {
				h := e.Health()
				switch {
				case h.IsAlive() && f.damage > 0:
					h.DecreaseHealthValue(f.damage)
				case h.IsDead() && f.revive > 0:
					h.BringToLife(f.revive)
				}
				return true
			})
		}
	}
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
