package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/app"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/cache"
	httpapi "github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/interfaces/http"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/rank"
)

func newServeCmd(log zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only snapshot API",
		Long: `Serves the latest scored snapshot over HTTP: /health, /pools,
/pools/{id}, /filters, and Prometheus /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, log)
		},
	}

	cmd.Flags().String("listen", "127.0.0.1:8080", "Listen address")
	return cmd
}

func runServe(cmd *cobra.Command, log zerolog.Logger) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := openStorage(cmd, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(cmd.Context()); err != nil {
		return err
	}

	var latestCache *cache.Cache
	if addr, _ := cmd.Flags().GetString("redis-addr"); addr != "" {
		latestCache = cache.New(addr, 0, log)
		defer latestCache.Close()
	}

	serverCfg := httpapi.DefaultServerConfig()
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		host, portStr, err := net.SplitHostPort(listen)
		if err != nil {
			return fmt.Errorf("parse listen address %q: %w", listen, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("parse listen port %q: %w", portStr, err)
		}
		serverCfg.Host = host
		serverCfg.Port = port
	}

	source := app.NewSnapshotSource(latestCache, db.Snapshots(), log)
	handlers := httpapi.NewHandlers(source, rank.NewRegistry(cfg), log)

	server, err := httpapi.NewServer(serverCfg, handlers, log)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
