// Package dedupe collapses transactions that share an id.
package dedupe

import "fjacquet/moneyview/internal/models"

// Dedupe keeps the first transaction for every id and preserves the order of
// the kept ones. Applying it twice gives the same result as applying it once.
func Dedupe(txs []models.Transaction) []models.Transaction {
	seen := make(map[string]struct{}, len(txs))
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if _, dup := seen[tx.ID]; dup {
			continue
		}
		seen[tx.ID] = struct{}{}
		out = append(out, tx)
	}
	return out
}
