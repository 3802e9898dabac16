package tagger

import (
	"context"

	"fjacquet/moneyview/internal/models"
)

// Strategy proposes a tag for a transaction. Strategies are tried in order
// and the first one that finds a tag wins.
type Strategy interface {
	// Suggest returns the tag id, whether a tag was found, and any error.
	// An error never aborts tagging; the next strategy is tried.
	Suggest(ctx context.Context, tx models.Transaction, table *models.KeywordTable) (string, bool, error)

	// Name identifies the strategy in logs.
	Name() string
}
