package analytics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/qubic-network/qubicx/pkg/db/models/explorer"
)

// AnalyzeTrades writes a short plain-language summary of a page of QX events.
// With assetName set it describes that asset, otherwise the most active assets.
// It returns "" for an empty page.
func AnalyzeTrades(trades []explorer.QXTrade, assetName string) string {
	if len(trades) == 0 {
		return ""
	}

	assetCounts := map[string]int64{}
	eventCounts := map[string]int64{}
	type volume struct{ shares, value int64 }
	volumes := map[string]*volume{}

	for _, t := range trades {
		assetCounts[t.AssetName]++
		eventCounts[t.Event]++
		v, ok := volumes[t.AssetName]
		if !ok {
			v = &volume{}
			volumes[t.AssetName] = v
		}
		if t.Shares != nil {
			v.shares += *t.Shares
			if t.Price != nil {
				v.value += *t.Price * *t.Shares
			}
		}
	}

	events := rankCounts(eventCounts)
	var parts []string

	if assetName != "" {
		count := len(trades)
		described := make([]string, len(events))
		for i, e := range events {
			described[i] = fmt.Sprintf("%d %s", e.count, e.key)
		}
		parts = append(parts, fmt.Sprintf("%s has %d %s in this period (%s).",
			assetName, count, plural(int64(count), "transaction"), strings.Join(described, ", ")))
		if v, ok := volumes[assetName]; ok {
			if v.shares > 0 {
				parts = append(parts, fmt.Sprintf("Total volume: %s shares traded.", FormatThousands(v.shares)))
			}
			if v.value > 0 {
				parts = append(parts, fmt.Sprintf("Total value: %s QUBIC.", FormatThousands(v.value)))
			}
		}
		return strings.Join(parts, " ")
	}

	assets := rankCounts(assetCounts)
	if len(assets) > 3 {
		assets = assets[:3]
	}
	listed := make([]string, len(assets))
	for i, a := range assets {
		listed[i] = fmt.Sprintf("%s (%d %s)", a.key, a.count, plural(a.count, "transaction"))
	}
	parts = append(parts, fmt.Sprintf("Based on %d recent trades, the most active assets are: %s.", len(trades), strings.Join(listed, ", ")))

	dominant := assets[0]
	share := float64(dominant.count) / float64(len(trades)) * 100
	parts = append(parts, fmt.Sprintf("%s dominates trading activity with %.1f%% of all transactions.", dominant.key, share))

	top := events[0]
	parts = append(parts, fmt.Sprintf("The primary activity type is %s (%d events).", top.key, top.count))

	return strings.Join(parts, " ")
}

// AnalyzeHolders summarizes holders whose balance loaded. Holders must already be sorted.
// It returns "" when no balance loaded.
func AnalyzeHolders(holders []TopHolder) string {
	var valid []TopHolder
	for _, h := range holders {
		if h.Balance != nil && h.BalanceStatus == BalanceLoaded {
			valid = append(valid, h)
		}
	}
	if len(valid) == 0 {
		return ""
	}

	var total, txTotal int64
	for _, h := range valid {
		total += *h.Balance
		txTotal += h.TxCount
	}

	top := valid[0]
	parts := []string{fmt.Sprintf(
		"Among the %d most active addresses with confirmed balances, the top holder has %s QU (%s).",
		len(valid), FormatQU(*top.Balance), top.AddressShort)}

	if len(valid) >= 3 {
		var top3 int64
		for _, h := range valid[:3] {
			top3 += *h.Balance
		}
		pct := 0.0
		if total > 0 {
			pct = float64(top3) / float64(total) * 100
		}
		parts = append(parts, fmt.Sprintf(
			"The top 3 addresses collectively hold %s QU, representing %.1f%% of the tracked balance.",
			FormatQU(top3), pct))
	}

	avgTx := (txTotal + int64(len(valid))/2) / int64(len(valid))
	parts = append(parts, fmt.Sprintf("These addresses average %s transactions each.", FormatThousands(avgTx)))
	parts = append(parts, "Note: This analysis is based on transaction activity in the local database combined with live RPC balance queries.")

	return strings.Join(parts, " ")
}

// FormatQU renders an amount with T, B or M suffixes above a million, grouped digits below.
func FormatQU(qu int64) string {
	f := float64(qu)
	switch {
	case f >= 1e12:
		return fmt.Sprintf("%.2fT", f/1e12)
	case f >= 1e9:
		return fmt.Sprintf("%.2fB", f/1e9)
	case f >= 1e6:
		return fmt.Sprintf("%.2fM", f/1e6)
	}
	return FormatThousands(qu)
}

// FormatThousands groups digits with commas.
func FormatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func plural(n int64, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
