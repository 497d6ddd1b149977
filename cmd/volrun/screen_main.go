package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/voltrun/voltrun/internal/config"
	"github.com/voltrun/voltrun/internal/data"
	"github.com/voltrun/voltrun/internal/domain/metrics"
	"github.com/voltrun/voltrun/internal/report"
	"github.com/voltrun/voltrun/internal/screen"
	"github.com/voltrun/voltrun/internal/universe"
)

type screenFlags struct {
	configPath string
	input      string
	endpoints  []string
	redisAddr  string
	cacheTTL   time.Duration

	symbols        []string
	include        []string
	exclude        []string
	includeClasses []string
	excludeClasses []string
	portfolio      string

	debug  bool
	topN   int
	output string
}

func newScreenCmd() *cobra.Command {
	flags := &screenFlags{}
	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Run one screening pass and print the ranked candidates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScreen(cmd.Context(), flags, os.Stdout)
		},
	}
	addScreenFlags(cmd, flags)
	return cmd
}

func addScreenFlags(cmd *cobra.Command, flags *screenFlags) {
	cmd.Flags().StringVar(&flags.configPath, "config", "config/screening.yaml", "Screening thresholds YAML")
	cmd.Flags().StringVar(&flags.input, "input", "", "Offline metrics snapshot (JSON) instead of live endpoints")
	cmd.Flags().StringSliceVar(&flags.endpoints, "endpoint", nil, "Metrics endpoint base URL (repeatable, fallback order)")
	cmd.Flags().StringVar(&flags.redisAddr, "redis", "", "Redis address for the metrics cache (empty disables caching)")
	cmd.Flags().DurationVar(&flags.cacheTTL, "cache-ttl", 15*time.Minute, "Metrics cache TTL")
	cmd.Flags().StringSliceVar(&flags.symbols, "symbols", nil, "Symbols to screen (defaults to every symbol in --input)")
	cmd.Flags().StringSliceVar(&flags.include, "include", nil, "Only screen these symbols")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "Never screen these symbols")
	cmd.Flags().StringSliceVar(&flags.includeClasses, "include-class", nil, "Only screen these asset classes/sectors")
	cmd.Flags().StringSliceVar(&flags.excludeClasses, "exclude-class", nil, "Never screen these asset classes/sectors")
	cmd.Flags().StringVar(&flags.portfolio, "portfolio", "", "Holdings CSV; held symbols vote HOLD/SCALE")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "Record and print the rejection log")
	cmd.Flags().IntVar(&flags.topN, "top-n", 0, "Limit output to the N best candidates (0 = all)")
	cmd.Flags().StringVar(&flags.output, "output", "table", "Output format (table|json)")
}

func runScreen(ctx context.Context, flags *screenFlags, out *os.File) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}

	provider, symbols, err := buildProvider(flags)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols to screen: pass --symbols or an --input snapshot")
	}

	held := map[string]bool{}
	if flags.portfolio != "" {
		holdings, err := data.LoadPortfolio(flags.portfolio)
		if err != nil {
			return err
		}
		held = data.HeldSet(holdings)
	}

	rep, err := executeRun(ctx, cfg, provider, symbols, flags, held)
	if err != nil {
		return err
	}

	if flags.topN > 0 && len(rep.Candidates) > flags.topN {
		rep.Candidates = rep.Candidates[:flags.topN]
	}
	if strings.EqualFold(flags.output, "json") {
		return rep.WriteJSON(out)
	}
	return rep.WriteTable(out)
}

// executeRun fetches the batch, applies the universe cut and runs the
// pipeline. Shared by screen and serve.
func executeRun(ctx context.Context, cfg *config.ScreeningConfig, provider data.Provider, symbols []string, flags *screenFlags, held map[string]bool) (*report.Report, error) {
	// The symbol cut runs before the fetch so excluded symbols never cost
	// an endpoint request; the class cut needs the fetched record and runs
	// right after. Either way the chain never sees a cut symbol, so none
	// of them show up as rejections.
	filter := universe.NewFilter(flags.include, flags.exclude, flags.includeClasses, flags.excludeClasses)
	wanted := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if filter.AllowsSymbol(sym) {
			wanted = append(wanted, sym)
		}
	}

	batch, err := provider.Fetch(ctx, wanted)
	if err != nil {
		return nil, fmt.Errorf("fetch metrics: %w", err)
	}
	screened := make(map[string]*metrics.Record, len(batch))
	for sym, rec := range batch {
		class := ""
		if rec != nil {
			class = rec.AssetClass
			if class == "" {
				class = rec.Sector
			}
		}
		if filter.Allows(sym, class) {
			screened[sym] = rec
		}
	}

	runCtx := screen.NewContext(cfg, time.Now().UTC(), flags.debug)
	pipeline := screen.NewPipeline(runCtx, held, log.Logger)
	candidates := pipeline.Run(runCtx, screened)
	return report.Assemble(runCtx, candidates), nil
}

// buildProvider resolves the data source: offline snapshot, or the live
// endpoint chain with an optional Redis cache in front.
func buildProvider(flags *screenFlags) (data.Provider, []string, error) {
	if flags.input != "" {
		fp, err := data.NewFileProvider(flags.input)
		if err != nil {
			return nil, nil, err
		}
		symbols := flags.symbols
		if len(symbols) == 0 {
			symbols = fp.Symbols()
			sort.Strings(symbols)
		}
		return fp, symbols, nil
	}

	if len(flags.endpoints) == 0 {
		return nil, nil, fmt.Errorf("either --input or at least one --endpoint is required")
	}
	client, err := data.NewClient(data.DefaultClientConfig(flags.endpoints...), log.Logger)
	if err != nil {
		return nil, nil, err
	}
	var provider data.Provider = client
	if flags.redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: flags.redisAddr})
		provider = data.NewCachedProvider(provider, rdb, flags.cacheTTL, log.Logger)
	}
	return provider, flags.symbols, nil
}
