package analytics

import "github.com/qubic-network/qubicx/pkg/db/models/explorer"

// WhaleSummary totals a page of large transfers.
type WhaleSummary struct {
	Count         int   `json:"count"`
	TotalValue    int64 `json:"totalValue"`
	LargestAmount int64 `json:"largestAmount"`
}

// SummarizeWhales sums and maxes amounts over exactly the given transactions.
// When the store caps the page, the totals describe the page and not the population.
func SummarizeWhales(txs []explorer.Transaction) WhaleSummary {
	s := WhaleSummary{Count: len(txs)}
	for _, tx := range txs {
		s.TotalValue += tx.Amount
		if tx.Amount > s.LargestAmount {
			s.LargestAmount = tx.Amount
		}
	}
	return s
}
