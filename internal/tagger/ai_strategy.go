package tagger

import (
	"context"
	"strings"

	"fjacquet/moneyview/internal/logging"
	"fjacquet/moneyview/internal/models"
	"fjacquet/moneyview/internal/parsererror"
)

// AIStrategy asks an AIClient when no keyword matched.
type AIStrategy struct {
	aiClient AIClient
	logger   logging.Logger
}

// NewAIStrategy creates a new AIStrategy instance.
func NewAIStrategy(aiClient AIClient, logger logging.Logger) *AIStrategy {
	return &AIStrategy{
		aiClient: aiClient,
		logger:   logging.OrDefault(logger),
	}
}

// Name returns the name of this strategy for logging and debugging.
func (s *AIStrategy) Name() string {
	return "AI"
}

// Suggest offers the table's tags, minus the default tag, to the AI client.
// Answers outside the candidate list are discarded.
func (s *AIStrategy) Suggest(ctx context.Context, tx models.Transaction, table *models.KeywordTable) (string, bool, error) {
	if s.aiClient == nil {
		return "", false, nil
	}
	if strings.TrimSpace(tx.Description) == "" && strings.TrimSpace(tx.PartnerName) == "" {
		return "", false, nil
	}

	candidates := make([]models.Tag, 0, table.Len())
	known := make(map[string]bool)
	for _, tag := range table.Tags() {
		if tag.ID == models.DefaultTagID {
			continue
		}
		candidates = append(candidates, tag)
		known[tag.ID] = true
	}
	if len(candidates) == 0 {
		return "", false, nil
	}

	tagID, err := s.aiClient.SuggestTag(ctx, tx, candidates)
	if err != nil {
		return "", false, &parsererror.CategorizationError{
			Transaction: tx.ID,
			Strategy:    s.Name(),
			Err:         err,
		}
	}

	if !known[tagID] {
		s.logger.WithFields(
			logging.Field{Key: logging.FieldStrategy, Value: s.Name()},
			logging.Field{Key: logging.FieldTransactionID, Value: tx.ID},
			logging.Field{Key: logging.FieldValue, Value: tagID},
		).Debug("AI returned no usable tag")
		return "", false, nil
	}

	s.logger.WithFields(
		logging.Field{Key: logging.FieldStrategy, Value: s.Name()},
		logging.Field{Key: logging.FieldTransactionID, Value: tx.ID},
		logging.Field{Key: logging.FieldTag, Value: tagID},
	).Debug("Transaction tagged using AI")

	return tagID, true, nil
}
