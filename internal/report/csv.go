// Package report exports ranked pool results as CSV files, skipping the
// write when the content is unchanged.
package report

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/domain"
)

var header = []string{
	"rank", "pool_id", "venue", "trading_pair", "volume_usd_24h",
	"score", "tier",
	"volume_consistency", "spread_efficiency", "market_depth",
	"historical_reliability", "cross_exchange_standing",
}

// WriteRankedCSV writes the ranked pools to path. The file is only touched
// when its content would change; a sibling .hash file carries the content
// digest. Returns true when the file was written.
func WriteRankedCSV(path string, pools []domain.ScoredPool) (bool, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return false, fmt.Errorf("write csv header: %w", err)
	}
	for i, p := range pools {
		row := []string{
			strconv.Itoa(i + 1),
			p.Result.PoolID,
			p.Result.Venue,
			p.Result.Pair,
			strconv.FormatFloat(p.Result.VolumeUSD24h, 'f', 0, 64),
			strconv.FormatFloat(p.Result.Score, 'f', 1, 64),
			p.Result.Tier,
			formatSub(p.Result.SubScores, domain.FactorVolumeConsistency),
			formatSub(p.Result.SubScores, domain.FactorSpreadEfficiency),
			formatSub(p.Result.SubScores, domain.FactorMarketDepth),
			formatSub(p.Result.SubScores, domain.FactorHistoricalReliability),
			formatSub(p.Result.SubScores, domain.FactorCrossExchangeStanding),
		}
		if err := w.Write(row); err != nil {
			return false, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return false, fmt.Errorf("flush csv: %w", err)
	}

	digest := sha256.Sum256(buf.Bytes())
	hash := hex.EncodeToString(digest[:])
	hashPath := path + ".hash"

	if stored, err := os.ReadFile(hashPath); err == nil && string(stored) == hash {
		return false, nil
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.WriteFile(hashPath, []byte(hash), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", hashPath, err)
	}
	return true, nil
}

func formatSub(subs domain.SubScores, f domain.Factor) string {
	return strconv.FormatFloat(subs[f], 'f', 1, 64)
}
