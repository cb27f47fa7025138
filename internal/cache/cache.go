// Package cache keeps the latest scored snapshot in Redis so the HTTP
// layer can serve reads without touching Postgres on every request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/engine"
)

const latestReportKey = "poolfinder:latest_report"

// ErrMiss is returned when no snapshot is cached.
var ErrMiss = errors.New("cache miss")

// Cache stores the latest scoring report with a TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// New connects to Redis. TTL bounds how stale a served snapshot can get
// before readers fall back to the store.
func New(addr string, ttl time.Duration, log zerolog.Logger) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
		log:    log.With().Str("component", "cache").Logger(),
	}
}

// SetLatest stores the report as the current snapshot.
func (c *Cache) SetLatest(ctx context.Context, report engine.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := c.client.Set(ctx, latestReportKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache report: %w", err)
	}

	c.log.Debug().Int("pools", len(report.Pools)).Msg("latest report cached")
	return nil
}

// GetLatest loads the current snapshot, or ErrMiss when none is cached.
func (c *Cache) GetLatest(ctx context.Context) (engine.Report, error) {
	data, err := c.client.Get(ctx, latestReportKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return engine.Report{}, ErrMiss
	}
	if err != nil {
		return engine.Report{}, fmt.Errorf("read cached report: %w", err)
	}

	var report engine.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return engine.Report{}, fmt.Errorf("unmarshal cached report: %w", err)
	}
	return report, nil
}

// Close releases the client.
func (c *Cache) Close() error {
	return c.client.Close()
}
