package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/voltrun/voltrun/internal/config"
	"github.com/voltrun/voltrun/internal/data"
	httpiface "github.com/voltrun/voltrun/internal/interfaces/http"
)

func newServeCmd() *cobra.Command {
	flags := &screenFlags{}
	var (
		addr     string
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Re-screen on an interval and serve the latest report over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags, addr, interval)
		},
	}
	addScreenFlags(cmd, flags)
	cmd.Flags().StringVar(&addr, "addr", ":8087", "HTTP listen address")
	cmd.Flags().DurationVar(&interval, "interval", 15*time.Minute, "Re-screen interval")
	return cmd
}

func runServe(ctx context.Context, flags *screenFlags, addr string, interval time.Duration) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	provider, symbols, err := buildProvider(flags)
	if err != nil {
		return err
	}

	held := map[string]bool{}
	if flags.portfolio != "" {
		holdings, err := data.LoadPortfolio(flags.portfolio)
		if err != nil {
			return err
		}
		held = data.HeldSet(holdings)
	}

	server := httpiface.NewServer(addr, log.Logger)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			runOnce(ctx, cfg, provider, symbols, flags, held, server)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return server.ListenAndServe()
}

func runOnce(ctx context.Context, cfg *config.ScreeningConfig, provider data.Provider, symbols []string, flags *screenFlags, held map[string]bool, server *httpiface.Server) {
	start := time.Now()
	rep, err := executeRun(ctx, cfg, provider, symbols, flags, held)
	if err != nil {
		log.Error().Err(err).Msg("screening run failed")
		return
	}
	httpiface.ObserveRun(rep.Counters.Inspected, rep.Counters.Rejected, rep.Counters.Accepted,
		len(rep.Candidates), time.Since(start).Seconds())
	server.Publish(rep)
	log.Info().Str("run_id", rep.RunID).Int("candidates", len(rep.Candidates)).Msg("report published")
}
