// Package models holds the records produced by the statement pipeline.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one booked movement on an account.
type Transaction struct {
	ID                      string          `json:"id" yaml:"id"`
	AccountID               string          `json:"account_id" yaml:"account_id"`
	Date                    time.Time       `json:"date" yaml:"date"`
	TotalAmount             decimal.Decimal `json:"total_amount" yaml:"total_amount"`
	BalanceAfterTransaction decimal.Decimal `json:"balance_after_transaction" yaml:"balance_after_transaction"`
	PartnerName             string          `json:"partner_name" yaml:"partner_name"`
	PartnerID               string          `json:"partner_id" yaml:"partner_id"`
	Description             string          `json:"description" yaml:"description"`
	LineItems               []LineItem      `json:"line_items" yaml:"line_items"`
}

// LineItem is a tagged share of a transaction's amount. The item with an empty
// description is the residual the categorizer recomputes on every pass.
type LineItem struct {
	Description string          `json:"description" yaml:"description"`
	Amount      decimal.Decimal `json:"amount" yaml:"amount"`
	TagID       string          `json:"tag_id" yaml:"tag_id"`
}

// IsResidual reports whether the item was generated by the categorizer.
func (li LineItem) IsResidual() bool {
	return li.Description == ""
}

// LineItemTotal sums the amounts of all line items.
func (t Transaction) LineItemTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, li := range t.LineItems {
		sum = sum.Add(li.Amount)
	}
	return sum
}

// TagID returns the tag of the residual line item, or "" before tagging.
func (t Transaction) TagID() string {
	for i := len(t.LineItems) - 1; i >= 0; i-- {
		if t.LineItems[i].IsResidual() {
			return t.LineItems[i].TagID
		}
	}
	return ""
}

// IsDebit reports whether money left the account.
func (t Transaction) IsDebit() bool {
	return t.TotalAmount.IsNegative()
}

// Clone returns a copy that shares no line item storage with t.
func (t Transaction) Clone() Transaction {
	c := t
	if t.LineItems != nil {
		c.LineItems = make([]LineItem, len(t.LineItems))
		copy(c.LineItems, t.LineItems)
	}
	return c
}
