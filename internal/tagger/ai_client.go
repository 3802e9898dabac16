package tagger

import (
	"context"

	"fjacquet/moneyview/internal/models"
)

// AIClient asks an external model to pick one of the candidate tags. This
// abstraction keeps the tagging logic testable without network calls.
type AIClient interface {
	// SuggestTag returns the id of one of candidates, or "" when the model
	// found no fitting tag.
	SuggestTag(ctx context.Context, tx models.Transaction, candidates []models.Tag) (string, error)
}
