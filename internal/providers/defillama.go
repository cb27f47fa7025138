package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/metrics"
)

// TokenMeta is DefiLlama's view of one token contract.
type TokenMeta struct {
	Symbol   string  `json:"symbol"`
	Decimals int     `json:"decimals"`
	Price    float64 `json:"price"`
}

// DefiLlamaConfig configures the metadata client.
type DefiLlamaConfig struct {
	BaseURL        string
	Chain          string
	BatchSize      int
	RequestTimeout time.Duration
	RPS            float64
}

// DefaultDefiLlamaConfig targets the public coins API on Ethereum.
func DefaultDefiLlamaConfig() DefiLlamaConfig {
	return DefiLlamaConfig{
		BaseURL:        "https://coins.llama.fi",
		Chain:          "ethereum",
		BatchSize:      50,
		RequestTimeout: 10 * time.Second,
		RPS:            1.0 / 1.2,
	}
}

// DefiLlamaClient resolves token contract addresses to symbols so pools can
// be displayed as SYMBOL/SYMBOL pairs instead of 0x addresses.
type DefiLlamaClient struct {
	cfg     DefiLlamaConfig
	http    *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewDefiLlamaClient builds the metadata client.
func NewDefiLlamaClient(cfg DefiLlamaConfig, log zerolog.Logger) *DefiLlamaClient {
	return &DefiLlamaClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), 1),
		log:     log.With().Str("component", "defillama").Logger(),
	}
}

// FetchTokenMeta resolves metadata for the given contract addresses,
// batching to keep URLs within limits. Non-address inputs (already symbols)
// are skipped. The result maps lowercase address to metadata.
func (c *DefiLlamaClient) FetchTokenMeta(ctx context.Context, addresses []string) (map[string]TokenMeta, error) {
	out := make(map[string]TokenMeta)

	batch := make([]string, 0, c.cfg.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.fetchBatch(ctx, batch, out); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	for _, addr := range addresses {
		if !IsContractAddress(addr) {
			continue
		}
		batch = append(batch, strings.ToLower(addr))
		if len(batch) == c.cfg.BatchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	c.log.Info().Int("tokens", len(out)).Msg("token metadata resolved")
	return out, nil
}

func (c *DefiLlamaClient) fetchBatch(ctx context.Context, addresses []string, out map[string]TokenMeta) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	keys := make([]string, len(addresses))
	for i, addr := range addresses {
		keys[i] = c.cfg.Chain + ":" + addr
	}
	url := fmt.Sprintf("%s/prices/current/%s", c.cfg.BaseURL, strings.Join(keys, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("defillama", "error").Inc()
		return fmt.Errorf("defillama batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequests.WithLabelValues("defillama", "error").Inc()
		return fmt.Errorf("defillama batch: HTTP %d", resp.StatusCode)
	}

	var payload struct {
		Coins map[string]TokenMeta `json:"coins"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode defillama response: %w", err)
	}

	for key, meta := range payload.Coins {
		parts := strings.SplitN(key, ":", 2)
		if len(parts) != 2 {
			continue
		}
		out[strings.ToLower(parts[1])] = meta
	}

	metrics.ProviderRequests.WithLabelValues("defillama", "ok").Inc()
	return nil
}

// IsContractAddress reports whether s looks like a 20-byte hex contract
// address rather than an already-resolved symbol.
func IsContractAddress(s string) bool {
	return len(s) == 42 && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"))
}

// ResolveSymbol maps an address to its symbol, falling back to a truncated
// address for unknown contracts, matching the display convention.
func ResolveSymbol(addr string, meta map[string]TokenMeta) string {
	if !IsContractAddress(addr) {
		return addr
	}
	if m, ok := meta[strings.ToLower(addr)]; ok && m.Symbol != "" {
		return m.Symbol
	}
	return addr[:8] + "..."
}
