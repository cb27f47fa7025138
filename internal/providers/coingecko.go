// Package providers fetches raw market data from the upstream APIs the
// scoring engine treats as external collaborators: CoinGecko exchange
// tickers and DefiLlama token metadata.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/metrics"
)

// Ticker is one pool quote from the CoinGecko exchange tickers endpoint.
type Ticker struct {
	Base            string  `json:"base"`
	Target          string  `json:"target"`
	Last            float64 `json:"last"`
	ConvertedVolume struct {
		USD float64 `json:"usd"`
	} `json:"converted_volume"`
	BidAskSpreadPct float64 `json:"bid_ask_spread_percentage"`
	Market          struct {
		Name       string `json:"name"`
		Identifier string `json:"identifier"`
	} `json:"market"`
	CoinID       string `json:"coin_id"`
	TargetCoinID string `json:"target_coin_id"`
}

// CoinGeckoConfig configures the tickers client. The free tier allows
// roughly one request per 1.2s, matching the limiter default.
type CoinGeckoConfig struct {
	BaseURL        string
	ExchangeID     string
	PerPage        int
	MaxPages       int
	RequestTimeout time.Duration
	RPS            float64
	Burst          int
}

// DefaultCoinGeckoConfig targets the public API and the Uniswap v3 venue.
func DefaultCoinGeckoConfig() CoinGeckoConfig {
	return CoinGeckoConfig{
		BaseURL:        "https://api.coingecko.com/api/v3",
		ExchangeID:     "uniswap_v3",
		PerPage:        100,
		MaxPages:       50,
		RequestTimeout: 10 * time.Second,
		RPS:            1.0 / 1.2,
		Burst:          1,
	}
}

// CoinGeckoClient pages through an exchange's tickers with token-bucket
// rate limiting and a circuit breaker in front of the upstream.
type CoinGeckoClient struct {
	cfg     CoinGeckoConfig
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// NewCoinGeckoClient builds a client with a limiter ahead of the wire and
// a breaker tripping after repeated failures.
func NewCoinGeckoClient(cfg CoinGeckoConfig, log zerolog.Logger) *CoinGeckoClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "coingecko",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &CoinGeckoClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		breaker: breaker,
		log:     log.With().Str("component", "coingecko").Logger(),
	}
}

// FetchTickers retrieves every tickers page for the configured exchange.
// Pagination stops on an empty or partial page; HTTP 429 waits out the
// rate-limit window and retries the same page.
func (c *CoinGeckoClient) FetchTickers(ctx context.Context) ([]Ticker, error) {
	var all []Ticker

	for page := 1; page <= c.cfg.MaxPages; page++ {
		tickers, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("fetch tickers page %d: %w", page, err)
		}

		all = append(all, tickers...)
		c.log.Debug().Int("page", page).Int("tickers", len(tickers)).Msg("tickers page fetched")

		if len(tickers) < c.cfg.PerPage {
			break
		}
	}

	c.log.Info().Int("tickers", len(all)).Str("exchange", c.cfg.ExchangeID).Msg("tickers fetch complete")
	return all, nil
}

func (c *CoinGeckoClient) fetchPage(ctx context.Context, page int) ([]Ticker, error) {
	url := fmt.Sprintf("%s/exchanges/%s/tickers?page=%d&per_page=%d",
		c.cfg.BaseURL, c.cfg.ExchangeID, page, c.cfg.PerPage)

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.doPage(ctx, url)
		})
		if errors.Is(err, errRateLimited) {
			c.log.Warn().Int("page", page).Msg("rate limited, backing off 60s")
			select {
			case <-time.After(60 * time.Second):
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if err != nil {
			metrics.ProviderRequests.WithLabelValues("coingecko", "error").Inc()
			return nil, err
		}

		metrics.ProviderRequests.WithLabelValues("coingecko", "ok").Inc()
		return result.([]Ticker), nil
	}
}

var errRateLimited = errors.New("upstream rate limited")

func (c *CoinGeckoClient) doPage(ctx context.Context, url string) ([]Ticker, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	var payload struct {
		Tickers []Ticker `json:"tickers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode tickers: %w", err)
	}
	return payload.Tickers, nil
}
