// Package statement runs the full statement pipeline: preprocess, tokenize,
// build and deduplicate.
package statement

import (
	"context"
	"fmt"
	"time"

	"fjacquet/moneyview/internal/builder"
	"fjacquet/moneyview/internal/concurrent"
	"fjacquet/moneyview/internal/dedupe"
	"fjacquet/moneyview/internal/logging"
	"fjacquet/moneyview/internal/models"
	"fjacquet/moneyview/internal/mt940"
	"fjacquet/moneyview/internal/narrative"
	"fjacquet/moneyview/internal/preprocess"
)

// Options configures a Parser.
type Options struct {
	Dialect narrative.Options
	// RewriteNarrative re-encodes ":86:" fields into the fixed layout during
	// preprocessing instead of decoding them in the builder.
	RewriteNarrative bool
}

// DefaultOptions returns the default dialect with narrative re-encoding on.
func DefaultOptions() Options {
	return Options{Dialect: narrative.DefaultOptions(), RewriteNarrative: true}
}

// Parser turns raw statement text into transactions.
type Parser struct {
	pre     *preprocess.Preprocessor
	builder *builder.Builder
	pool    *concurrent.Processor
	logger  logging.Logger
}

// NewParser creates a parser. A nil pool runs every stage sequentially.
func NewParser(pool *concurrent.Processor, opts Options, logger logging.Logger) *Parser {
	logger = logging.OrDefault(logger)
	if pool == nil {
		pool = concurrent.NewProcessor(logger, 1, -1)
	}

	decoder := narrative.NewDecoder(opts.Dialect)
	var encoder *narrative.Decoder
	if opts.RewriteNarrative {
		encoder = decoder
	}

	return &Parser{
		pre:     preprocess.New(pool, preprocess.Rewrites(encoder), logger),
		builder: builder.New(decoder, logger),
		pool:    pool,
		logger:  logger,
	}
}

// Parse returns the transactions of every message in raw, in message order
// and line order, with duplicates removed. A structural error in any message
// fails the whole batch before anything is built.
func (p *Parser) Parse(ctx context.Context, raw string) ([]models.Transaction, error) {
	start := time.Now()

	text, err := p.pre.Normalize(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}

	messages, err := mt940.Parse(text)
	if err != nil {
		return nil, err
	}

	built, err := concurrent.Map(ctx, p.pool, "builder", messages, p.builder.Build)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	var all []models.Transaction
	for _, txs := range built {
		all = append(all, txs...)
	}
	unique := dedupe.Dedupe(all)

	p.logger.Info("Statement parsed",
		logging.Field{Key: "messages", Value: len(messages)},
		logging.Field{Key: logging.FieldCount, Value: len(unique)},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()})
	if dropped := len(all) - len(unique); dropped > 0 {
		p.logger.Debug("Duplicate transactions dropped", logging.Field{Key: logging.FieldCount, Value: dropped})
	}

	return unique, nil
}
