package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/harunnryd/kaizen/internal/adapter"
	"github.com/harunnryd/kaizen/internal/config"
	"github.com/harunnryd/kaizen/internal/idempotency"
	"github.com/harunnryd/kaizen/internal/scheduler"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the agent as a long-lived service",
	Long:  `Starts the Telegram adapter and the daily brief scheduler, and serves until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("config not loaded")
		}

		rt, err := buildRuntime(cfg)
		if err != nil {
			return fmt.Errorf("failed to wire runtime: %w", err)
		}
		defer rt.Close()

		sig := NewSignalHandler(context.Background())
		sig.Start()
		ctx := sig.Context()

		var notifier adapter.Notifier = adapter.NewNullNotifier("")
		var inputs []adapter.InputAdapter

		if cfg.Telegram.Token != "" {
			dedupeTTL, err := config.DurationOrDefault(cfg.Telegram.IdempotencyTTL, config.DefaultTelegramIdempotencyTTL)
			if err != nil {
				return err
			}
			dedupe, err := idempotency.NewStore(filepath.Join(cfg.Server.DataDir, "processed_events.json"))
			if err != nil {
				return fmt.Errorf("failed to open idempotency store: %w", err)
			}
			tg := adapter.NewTelegramAdapter(cfg.Telegram.Token, rt.handleMessage, cfg.Telegram.UpdateTimeout, dedupe, dedupeTTL)
			notifier = tg
			inputs = append(inputs, tg)
		} else {
			slog.Warn("No Telegram token configured, serving without an inbound adapter")
		}

		for _, in := range inputs {
			if err := in.Start(ctx); err != nil {
				return fmt.Errorf("failed to start %s adapter: %w", in.Name(), err)
			}
		}

		if cfg.Scheduler.Enabled {
			briefFn := func(ctx context.Context, userID string) (string, error) {
				return rt.handleMessage(ctx, userID, "daily")
			}
			sched := scheduler.New(rt.store, rt.prefs, notifier, briefFn)
			if err := sched.Start(ctx); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			defer sched.Stop(context.Background())
		}

		slog.Info("Kaizen serving", "telegram", cfg.Telegram.Token != "", "scheduler", cfg.Scheduler.Enabled)
		<-ctx.Done()

		for _, in := range inputs {
			if err := in.Stop(context.Background()); err != nil {
				slog.Warn("Adapter stop failed", "adapter", in.Name(), "error", err)
			}
		}
		slog.Info("Kaizen stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
