package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/domain"
)

func sample(id string, score float64) domain.ScoredPool {
	return domain.ScoredPool{
		Result: domain.CompositeResult{
			PoolID:       id,
			Venue:        "uniswap_v3",
			Pair:         "WETH/USDC",
			Score:        score,
			Tier:         "Quality",
			VolumeUSD24h: 50_000,
			SubScores: domain.SubScores{
				domain.FactorVolumeConsistency:     100,
				domain.FactorSpreadEfficiency:      90,
				domain.FactorMarketDepth:           58.7,
				domain.FactorHistoricalReliability: 33.3,
				domain.FactorCrossExchangeStanding: 66.7,
			},
		},
	}
}

func TestWriteRankedCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pools.csv")

	written, err := WriteRankedCSV(path, []domain.ScoredPool{sample("p1", 72.7), sample("p2", 65.0)})
	require.NoError(t, err)
	assert.True(t, written)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, header, rows[0])
	assert.Equal(t, []string{"1", "p1", "uniswap_v3", "WETH/USDC", "50000", "72.7", "Quality",
		"100.0", "90.0", "58.7", "33.3", "66.7"}, rows[1])
	assert.Equal(t, "2", rows[2][0])
	assert.Equal(t, "p2", rows[2][1])
}

func TestWriteRankedCSVSkipsUnchangedContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pools.csv")
	pools := []domain.ScoredPool{sample("p1", 72.7)}

	written, err := WriteRankedCSV(path, pools)
	require.NoError(t, err)
	assert.True(t, written)

	stat, err := os.Stat(path)
	require.NoError(t, err)
	firstWrite := stat.ModTime()

	// Same content: no rewrite.
	written, err = WriteRankedCSV(path, pools)
	require.NoError(t, err)
	assert.False(t, written)

	stat, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, firstWrite, stat.ModTime())

	// Changed content: rewritten.
	written, err = WriteRankedCSV(path, []domain.ScoredPool{sample("p1", 80.1)})
	require.NoError(t, err)
	assert.True(t, written)
}

func TestWriteRankedCSVEmptySet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	written, err := WriteRankedCSV(path, nil)
	require.NoError(t, err)
	assert.True(t, written)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, header, rows[0])
}
