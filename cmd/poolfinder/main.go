package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "poolfinder"
	version = "v1.2.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log := newLogger()

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "DEX liquidity pool quality scanner",
		Version: version,
		Long: `poolfinder scores decentralized exchange liquidity pools on volume
consistency, spread efficiency, market depth, historical reliability, and
cross-exchange standing, then ranks them into quality tiers.`,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to policy YAML (defaults apply when empty)")
	rootCmd.PersistentFlags().String("postgres-dsn",
		envOr("POOLFINDER_POSTGRES_DSN", "postgres://localhost:5432/poolfinder?sslmode=disable"),
		"Postgres connection string")
	rootCmd.PersistentFlags().String("redis-addr",
		envOr("POOLFINDER_REDIS_ADDR", "localhost:6379"),
		"Redis address; empty disables the cache")

	rootCmd.AddCommand(newScanCmd(log))
	rootCmd.AddCommand(newRankCmd(log))
	rootCmd.AddCommand(newServeCmd(log))

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// newLogger writes human-readable output on a terminal, JSON otherwise.
func newLogger() zerolog.Logger {
	var out = zerolog.New(os.Stderr)
	if term.IsTerminal(int(os.Stderr.Fd())) {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return out.With().Timestamp().Logger()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
