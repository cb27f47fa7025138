package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tickerPage(n int, venue string) []map[string]interface{} {
	page := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		page = append(page, map[string]interface{}{
			"base":                      fmt.Sprintf("0xbase%04d", i),
			"target":                    "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
			"last":                      1.5,
			"converted_volume":          map[string]float64{"usd": float64(1000 * (i + 1))},
			"bid_ask_spread_percentage": 0.3,
			"market":                    map[string]string{"name": "Uniswap V3", "identifier": venue},
		})
	}
	return page
}

func newTickersServer(t *testing.T, pages map[int][]map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/exchanges/uniswap_v3/tickers")

		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		require.NoError(t, err)

		tickers, ok := pages[page]
		if !ok {
			tickers = nil
		}
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{"tickers": tickers}))
	}))
}

func testClient(baseURL string, perPage int) *CoinGeckoClient {
	cfg := DefaultCoinGeckoConfig()
	cfg.BaseURL = baseURL
	cfg.PerPage = perPage
	cfg.RPS = 1000 // no throttling in tests
	cfg.Burst = 1000
	return NewCoinGeckoClient(cfg, zerolog.Nop())
}

func TestFetchTickersPaginates(t *testing.T) {
	pages := map[int][]map[string]interface{}{
		1: tickerPage(3, "uniswap_v3"),
		2: tickerPage(3, "uniswap_v3"),
		3: tickerPage(1, "uniswap_v3"), // partial page ends pagination
		4: tickerPage(3, "uniswap_v3"), // must never be requested
	}
	server := newTickersServer(t, pages)
	defer server.Close()

	client := testClient(server.URL, 3)
	tickers, err := client.FetchTickers(context.Background())
	require.NoError(t, err)
	assert.Len(t, tickers, 7)

	first := tickers[0]
	assert.Equal(t, "0xbase0000", first.Base)
	assert.Equal(t, "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", first.Target)
	assert.Equal(t, 1000.0, first.ConvertedVolume.USD)
	assert.Equal(t, 0.3, first.BidAskSpreadPct)
	assert.Equal(t, "uniswap_v3", first.Market.Identifier)
}

func TestFetchTickersStopsOnEmptyPage(t *testing.T) {
	pages := map[int][]map[string]interface{}{
		1: tickerPage(3, "uniswap_v3"),
	}
	server := newTickersServer(t, pages)
	defer server.Close()

	tickers, err := testClient(server.URL, 3).FetchTickers(context.Background())
	require.NoError(t, err)
	assert.Len(t, tickers, 3)
}

func TestDoPageRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := testClient(server.URL, 3)
	_, err := client.doPage(context.Background(), server.URL)
	assert.ErrorIs(t, err, errRateLimited)
}

func TestFetchTickersUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := testClient(server.URL, 3).FetchTickers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}
