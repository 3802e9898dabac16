// Package ingest imports statements into the ledger and reports balances.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"fjacquet/moneyview/internal/logging"
	"fjacquet/moneyview/internal/models"
	"fjacquet/moneyview/internal/parsererror"
)

// StatementParser turns raw statement text into transactions.
type StatementParser interface {
	Parse(ctx context.Context, raw string) ([]models.Transaction, error)
}

// TagSource provides the current tag definitions.
type TagSource interface {
	LoadTags() ([]models.Tag, error)
}

// Categorizer tags a batch of transactions against a keyword table.
type Categorizer interface {
	CategorizeAll(ctx context.Context, txs []models.Transaction, table *models.KeywordTable) ([]models.Transaction, error)
}

// Repository stores transactions and aggregates them.
type Repository interface {
	Upsert(ctx context.Context, txs []models.Transaction) error
	All(ctx context.Context) ([]models.Transaction, error)
	PartnerBalance(ctx context.Context, positive bool) ([]models.BalanceInformation, error)
	TagBalance(ctx context.Context, positive bool) ([]models.BalanceInformation, error)
}

// Service coordinates parsing, tagging and storage.
type Service struct {
	parser StatementParser
	tags   TagSource
	tagger Categorizer
	repo   Repository
	logger logging.Logger
}

// NewService creates a Service.
func NewService(parser StatementParser, tags TagSource, tagger Categorizer, repo Repository, logger logging.Logger) *Service {
	return &Service{
		parser: parser,
		tags:   tags,
		tagger: tagger,
		repo:   repo,
		logger: logging.OrDefault(logger),
	}
}

// Categorize parses raw and tags the result without storing it.
func (s *Service) Categorize(ctx context.Context, source, raw string) ([]models.Transaction, error) {
	txs, err := s.parser.Parse(ctx, raw)
	if err != nil {
		var se *parsererror.StructuralError
		if errors.As(err, &se) && se.Source == "" {
			return nil, se.WithSource(source)
		}
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}

	table, err := s.table()
	if err != nil {
		return nil, err
	}
	return s.tagger.CategorizeAll(ctx, txs, table)
}

// Ingest parses, tags and stores one statement. It returns the number of
// transactions written.
func (s *Service) Ingest(ctx context.Context, source, raw string) (int, error) {
	txs, err := s.Categorize(ctx, source, raw)
	if err != nil {
		return 0, err
	}
	if err := s.repo.Upsert(ctx, txs); err != nil {
		return 0, fmt.Errorf("store %s: %w", source, err)
	}

	s.logger.Info("Statement imported",
		logging.Field{Key: logging.FieldSource, Value: source},
		logging.Field{Key: logging.FieldCount, Value: len(txs)})
	return len(txs), nil
}

// Retag recomputes the tag of every stored transaction with the current tags.
func (s *Service) Retag(ctx context.Context) (int, error) {
	stored, err := s.repo.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("load transactions: %w", err)
	}

	table, err := s.table()
	if err != nil {
		return 0, err
	}
	tagged, err := s.tagger.CategorizeAll(ctx, stored, table)
	if err != nil {
		return 0, err
	}
	if err := s.repo.Upsert(ctx, tagged); err != nil {
		return 0, fmt.Errorf("store retagged transactions: %w", err)
	}

	s.logger.Info("Transactions retagged", logging.Field{Key: logging.FieldCount, Value: len(tagged)})
	return len(tagged), nil
}

// PartnerBalance reports income (positive) or expenses per partner.
func (s *Service) PartnerBalance(ctx context.Context, positive bool) (models.BalanceReport, error) {
	rows, err := s.repo.PartnerBalance(ctx, positive)
	if err != nil {
		return models.BalanceReport{}, fmt.Errorf("partner balance: %w", err)
	}
	return models.NewBalanceReport(rows), nil
}

// TagBalance reports income (positive) or expenses per tag, named by the
// current tag definitions.
func (s *Service) TagBalance(ctx context.Context, positive bool) (models.BalanceReport, error) {
	rows, err := s.repo.TagBalance(ctx, positive)
	if err != nil {
		return models.BalanceReport{}, fmt.Errorf("tag balance: %w", err)
	}

	tags, err := s.tags.LoadTags()
	if err != nil {
		return models.BalanceReport{}, fmt.Errorf("load tags: %w", err)
	}
	names := models.TagNames(tags)
	for i := range rows {
		if name, ok := names[rows[i].Name]; ok {
			rows[i].Name = name
		}
	}
	return models.NewBalanceReport(rows), nil
}

// TagNames returns the tag id to name mapping of the current tags.
func (s *Service) TagNames() (map[string]string, error) {
	tags, err := s.tags.LoadTags()
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	return models.TagNames(tags), nil
}

func (s *Service) table() (*models.KeywordTable, error) {
	tags, err := s.tags.LoadTags()
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	table := models.NewKeywordTable(tags)
	s.logger.Debug("Keyword table built", logging.Field{Key: logging.FieldCount, Value: table.Len()})
	return table, nil
}
