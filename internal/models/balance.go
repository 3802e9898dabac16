package models

import "github.com/shopspring/decimal"

// BalanceInformation is one row of an income or expense aggregate.
type BalanceInformation struct {
	Name             string          `json:"name" yaml:"name"`
	Balance          decimal.Decimal `json:"balance" yaml:"balance"`
	TransactionCount int             `json:"transaction_count" yaml:"transaction_count"`
}

// BalanceReport groups aggregate rows with their sum.
type BalanceReport struct {
	Rows  []BalanceInformation `json:"rows" yaml:"rows"`
	Total decimal.Decimal      `json:"total" yaml:"total"`
}

// NewBalanceReport computes the total of rows.
func NewBalanceReport(rows []BalanceInformation) BalanceReport {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Balance)
	}
	return BalanceReport{Rows: rows, Total: total}
}
