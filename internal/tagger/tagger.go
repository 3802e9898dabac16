// Package tagger assigns each transaction the tag of its residual line item.
package tagger

import (
	"context"

	"github.com/shopspring/decimal"

	"fjacquet/moneyview/internal/concurrent"
	"fjacquet/moneyview/internal/logging"
	"fjacquet/moneyview/internal/models"
)

// Tagger runs its strategies in order on each transaction.
type Tagger struct {
	strategies []Strategy
	pool       *concurrent.Processor
	logger     logging.Logger
}

// New creates a Tagger with an explicit strategy chain. A nil pool tags
// sequentially.
func New(pool *concurrent.Processor, logger logging.Logger, strategies ...Strategy) *Tagger {
	logger = logging.OrDefault(logger)
	if pool == nil {
		pool = concurrent.NewProcessor(logger, 1, -1)
	}
	return &Tagger{
		strategies: strategies,
		pool:       pool,
		logger:     logger,
	}
}

// NewDefault creates the standard chain: keywords in the description, then
// keywords in the partner name, then ai when it is not nil.
func NewDefault(pool *concurrent.Processor, logger logging.Logger, ai AIClient) *Tagger {
	strategies := []Strategy{
		NewKeywordStrategy(FieldDescription, logger),
		NewKeywordStrategy(FieldPartner, logger),
	}
	if ai != nil {
		strategies = append(strategies, NewAIStrategy(ai, logger))
	}
	return New(pool, logger, strategies...)
}

// Categorize returns a copy of tx whose line items are the described ones it
// already had plus a fresh residual item. The residual holds whatever part of
// TotalAmount the other items leave uncovered, so items always sum to it.
func (t *Tagger) Categorize(ctx context.Context, tx models.Transaction, table *models.KeywordTable) models.Transaction {
	out := tx.Clone()

	kept := make([]models.LineItem, 0, len(out.LineItems)+1)
	covered := decimal.Zero
	for _, li := range out.LineItems {
		if li.IsResidual() {
			continue
		}
		kept = append(kept, li)
		covered = covered.Add(li.Amount)
	}

	out.LineItems = append(kept, models.LineItem{
		Description: "",
		Amount:      out.TotalAmount.Sub(covered),
		TagID:       t.pick(ctx, out, table),
	})
	return out
}

func (t *Tagger) pick(ctx context.Context, tx models.Transaction, table *models.KeywordTable) string {
	for _, s := range t.strategies {
		tagID, ok, err := s.Suggest(ctx, tx, table)
		if err != nil {
			t.logger.WithError(err).WithFields(
				logging.Field{Key: logging.FieldStrategy, Value: s.Name()},
				logging.Field{Key: logging.FieldTransactionID, Value: tx.ID},
			).Warn("Tagging strategy failed")
			continue
		}
		if ok {
			return tagID
		}
	}
	return models.DefaultTagID
}

// CategorizeAll tags every transaction on the worker pool, keeping order.
func (t *Tagger) CategorizeAll(ctx context.Context, txs []models.Transaction, table *models.KeywordTable) ([]models.Transaction, error) {
	tagged, err := concurrent.Map(ctx, t.pool, "tagger", txs, func(tx models.Transaction) models.Transaction {
		return t.Categorize(ctx, tx, table)
	})
	if err != nil {
		return nil, err
	}

	t.logger.Info("Transactions tagged",
		logging.Field{Key: logging.FieldCount, Value: len(tagged)})
	return tagged, nil
}
