package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/app"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/cache"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/rank"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/report"
)

func newRankCmd(log zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank the latest scored snapshot",
		Long: `Loads the most recent snapshot from the cache or store and prints the
ranked pools without refetching market data.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd, log)
		},
	}

	cmd.Flags().String("filter", "", "Registered filter name (see the filters list below)")
	cmd.Flags().String("venue", "", "Keep only pools on this venue")
	cmd.Flags().Int("top-n", 20, "Number of pools to print (0 = all)")
	cmd.Flags().String("output", "", "Also write the ranked view to a CSV file")
	cmd.Flags().Bool("list-filters", false, "List the registered filters and exit")
	return cmd
}

func runRank(cmd *cobra.Command, log zerolog.Logger) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	registry := rank.NewRegistry(cfg)

	if list, _ := cmd.Flags().GetBool("list-filters"); list {
		for _, def := range registry.Definitions() {
			fmt.Printf("%-18s %s\n", def.Name, def.Label)
		}
		return nil
	}

	db, err := openStorage(cmd, log)
	if err != nil {
		return err
	}
	defer db.Close()

	var latestCache *cache.Cache
	if addr, _ := cmd.Flags().GetString("redis-addr"); addr != "" {
		latestCache = cache.New(addr, 0, log)
		defer latestCache.Close()
	}

	source := app.NewSnapshotSource(latestCache, db.Snapshots(), log)
	snapshot, err := source.Latest(ctx)
	if err != nil {
		return err
	}

	filter, _ := cmd.Flags().GetString("filter")
	venue, _ := cmd.Flags().GetString("venue")
	topN, _ := cmd.Flags().GetInt("top-n")

	ranked, err := registry.Rank(snapshot.Pools, rank.Options{Filter: filter, Venue: venue, Limit: topN})
	if err != nil {
		return err
	}

	fmt.Printf("snapshot %s (computed %s)\n\n", snapshot.SnapshotID, snapshot.ComputedAt.Format("2006-01-02 15:04:05 MST"))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tPAIR\tVENUE\tSCORE\tTIER\t24H VOLUME")
	for i, p := range ranked {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.1f\t%s\t$%.0f\n",
			i+1, p.Result.Pair, p.Result.Venue, p.Result.Score, p.Result.Tier, p.Result.VolumeUSD24h)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if _, err := report.WriteRankedCSV(output, ranked); err != nil {
			return err
		}
	}
	return nil
}
