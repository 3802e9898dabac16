package tagger

import (
	"context"

	"fjacquet/moneyview/internal/logging"
	"fjacquet/moneyview/internal/models"
)

// Field selects the transaction text a KeywordStrategy searches.
type Field int

const (
	FieldDescription Field = iota
	FieldPartner
)

func (f Field) String() string {
	if f == FieldPartner {
		return "partner_name"
	}
	return "description"
}

// KeywordStrategy looks up one text field of the transaction in the keyword
// table.
type KeywordStrategy struct {
	field  Field
	logger logging.Logger
}

// NewKeywordStrategy creates a KeywordStrategy over field.
func NewKeywordStrategy(field Field, logger logging.Logger) *KeywordStrategy {
	return &KeywordStrategy{
		field:  field,
		logger: logging.OrDefault(logger),
	}
}

// Name returns the name of this strategy for logging and debugging.
func (s *KeywordStrategy) Name() string {
	return "Keyword(" + s.field.String() + ")"
}

// Suggest matches the selected field against the table.
func (s *KeywordStrategy) Suggest(_ context.Context, tx models.Transaction, table *models.KeywordTable) (string, bool, error) {
	text := tx.Description
	if s.field == FieldPartner {
		text = tx.PartnerName
	}

	tagID, ok := table.Match(text)
	if !ok {
		return "", false, nil
	}

	s.logger.WithFields(
		logging.Field{Key: logging.FieldStrategy, Value: s.Name()},
		logging.Field{Key: logging.FieldTransactionID, Value: tx.ID},
		logging.Field{Key: logging.FieldTag, Value: tagID},
	).Debug("Transaction tagged using keyword matching")

	return tagID, true, nil
}
