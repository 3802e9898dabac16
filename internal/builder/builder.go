// Package builder turns tokenized statement messages into transactions with
// a running balance and a stable id.
package builder

import (
	"strings"

	"github.com/shopspring/decimal"

	"fjacquet/moneyview/internal/logging"
	"fjacquet/moneyview/internal/models"
	"fjacquet/moneyview/internal/mt940"
	"fjacquet/moneyview/internal/narrative"
	"fjacquet/moneyview/internal/parsererror"
)

// Builder is stateless between calls and safe for concurrent use.
type Builder struct {
	decoder *narrative.Decoder
	logger  logging.Logger
}

// New creates a builder. decoder reads narratives that were not re-encoded
// during preprocessing.
func New(decoder *narrative.Decoder, logger logging.Logger) *Builder {
	if decoder == nil {
		decoder = narrative.NewDecoder(narrative.DefaultOptions())
	}
	return &Builder{decoder: decoder, logger: logging.OrDefault(logger)}
}

// Build emits one transaction per statement line, in line order. The
// balance after line k is the signed opening balance plus the signed amounts
// of lines 1..k. Unreadable amounts count as zero.
func (b *Builder) Build(msg mt940.Message) []models.Transaction {
	log := b.logger.WithField(logging.FieldAccount, msg.AccountID)
	balance := msg.OpeningBalance.Signed()
	out := make([]models.Transaction, 0, len(msg.Lines))

	for i, line := range msg.Lines {
		for _, p := range line.Problems {
			log.WithError(p).Warn("Statement line field unreadable", logging.Field{Key: logging.FieldLine, Value: i})
		}

		amount := b.signedAmount(log, i, line)
		balance = balance.Add(amount)

		n := b.decoder.Read(strings.ReplaceAll(line.Information, "\n", ""))

		id := n.TransactionID
		if id == "" {
			id = usableBankRef(line.BankRef)
		}
		if id != "" {
			id = ReferenceID(line.EntryDate, amount, id)
		} else {
			id = Fingerprint(amount, balance, n.Description)
		}

		tx := models.Transaction{
			ID:                      id,
			AccountID:               msg.AccountID,
			Date:                    line.EntryDate,
			TotalAmount:             amount,
			BalanceAfterTransaction: balance,
			PartnerName:             n.PartnerName,
			PartnerID:               n.PartnerID,
			Description:             n.Description,
		}
		out = append(out, tx)
	}

	log.Debug("Message built", logging.Field{Key: logging.FieldCount, Value: len(out)})
	return out
}

func (b *Builder) signedAmount(log logging.Logger, index int, line mt940.StatementLine) decimal.Decimal {
	amount, err := line.Amount()
	if err != nil {
		fe := &parsererror.FieldError{Stage: "builder", Field: "amount", Value: line.RawAmount, Err: err}
		log.WithError(fe).Warn("Amount unreadable, using zero", logging.Field{Key: logging.FieldLine, Value: index})
		return decimal.Zero
	}
	if line.Indicator.IsDebit() {
		return amount.Neg()
	}
	return amount
}
