package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/app"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/cache"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/config"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/engine"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/providers"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/rank"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/report"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/storage"
)

func newScanCmd(log zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one fetch-and-score cycle",
		Long: `Fetches the current tickers for the configured exchange, persists the
observations, rebuilds each pool's history, scores every pool, and
publishes the snapshot to Postgres and Redis.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, log)
		},
	}

	cmd.Flags().String("exchange", "uniswap_v3", "CoinGecko exchange identifier")
	cmd.Flags().String("output", "", "Write the ranked snapshot to a CSV file")
	cmd.Flags().String("filter", "", "Filter applied to the CSV output")
	cmd.Flags().Int("top-n", 0, "Truncate the CSV output to the top N pools")
	return cmd
}

func runScan(cmd *cobra.Command, log zerolog.Logger) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := openStorage(cmd, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	var latestCache *cache.Cache
	if addr, _ := cmd.Flags().GetString("redis-addr"); addr != "" {
		latestCache = cache.New(addr, 15*time.Minute, log)
		defer latestCache.Close()
	}

	cgCfg := providers.DefaultCoinGeckoConfig()
	if exchange, _ := cmd.Flags().GetString("exchange"); exchange != "" {
		cgCfg.ExchangeID = exchange
	}

	scanner := app.NewScanner(cfg,
		engine.New(cfg, log),
		providers.NewCoinGeckoClient(cgCfg, log),
		providers.NewDefiLlamaClient(providers.DefaultDefiLlamaConfig(), log),
		db, latestCache, log)

	result, err := scanner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("snapshot %s: %d pools scored, %d excluded\n",
		result.SnapshotID, len(result.Pools), len(result.Excluded))

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		return nil
	}

	filter, _ := cmd.Flags().GetString("filter")
	topN, _ := cmd.Flags().GetInt("top-n")
	ranked, err := rank.NewRegistry(cfg).Rank(result.Pools, rank.Options{Filter: filter, Limit: topN})
	if err != nil {
		return err
	}

	written, err := report.WriteRankedCSV(output, ranked)
	if err != nil {
		return err
	}
	if written {
		fmt.Printf("wrote %d pools to %s\n", len(ranked), output)
	} else {
		fmt.Printf("%s unchanged, skipped write\n", output)
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.LoadOrDefault(path)
}

func openStorage(cmd *cobra.Command, log zerolog.Logger) (*storage.DB, error) {
	dsn, _ := cmd.Flags().GetString("postgres-dsn")
	return storage.Open(dsn, log)
}
