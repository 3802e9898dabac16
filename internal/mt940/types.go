// Package mt940 tokenizes SWIFT MT940 customer statements into messages with
// an opening balance and ordered statement lines.
package mt940

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebitOrCredit marks a balance.
type DebitOrCredit int

const (
	Credit DebitOrCredit = iota
	Debit
)

func (d DebitOrCredit) String() string {
	if d == Debit {
		return "D"
	}
	return "C"
}

// ExtDebitOrCredit marks a statement line, including reversals.
type ExtDebitOrCredit int

const (
	LineCredit ExtDebitOrCredit = iota
	LineDebit
	ReverseCredit
	ReverseDebit
)

func (e ExtDebitOrCredit) String() string {
	switch e {
	case LineDebit:
		return "D"
	case ReverseCredit:
		return "RC"
	case ReverseDebit:
		return "RD"
	default:
		return "C"
	}
}

// IsDebit reports whether the movement reduces the balance. A reversed
// debit is booked as a debit as well.
func (e ExtDebitOrCredit) IsDebit() bool {
	return e == LineDebit || e == ReverseDebit
}

// Balance is an opening (:60F:/:60M:) or closing (:62F:/:62M:) balance.
type Balance struct {
	Indicator DebitOrCredit
	Date      time.Time
	Currency  string
	Amount    decimal.Decimal
}

// Signed returns the amount, negative for a debit balance.
func (b Balance) Signed() decimal.Decimal {
	if b.Indicator == Debit {
		return b.Amount.Neg()
	}
	return b.Amount
}

// StatementLine is one :61: field with its following :86: narrative.
type StatementLine struct {
	ValueDate time.Time
	// EntryDate is zero when the line carries none.
	EntryDate       time.Time
	Indicator       ExtDebitOrCredit
	FundsCode       string
	RawAmount       string
	TransactionType string
	CustomerRef     string
	BankRef         string
	Details         string
	Information     string

	// Problems lists recoverable field errors found while tokenizing.
	Problems []error
}

// Amount parses RawAmount; the decimal separator is a comma.
func (l StatementLine) Amount() (decimal.Decimal, error) {
	return ParseAmount(l.RawAmount)
}

// Message is one statement, from :20: to the next :20:.
type Message struct {
	TransactionRef  string
	RelatedRef      string
	AccountID       string
	StatementNumber string
	OpeningBalance  Balance
	ClosingBalance  *Balance
	Information     string
	Lines           []StatementLine
}
