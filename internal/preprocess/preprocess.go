// Package preprocess repairs bank-specific MT940 malformations so the
// envelope tokenizer can read the text.
package preprocess

import (
	"context"
	"strings"
	"time"

	"fjacquet/moneyview/internal/concurrent"
	"fjacquet/moneyview/internal/logging"
	"fjacquet/moneyview/internal/narrative"
)

// Preprocessor applies the rewrites to every line on a worker pool.
type Preprocessor struct {
	pool     *concurrent.Processor
	rewrites []Rewrite
	logger   logging.Logger
}

// New creates a preprocessor. A nil pool runs sequentially.
func New(pool *concurrent.Processor, rewrites []Rewrite, logger logging.Logger) *Preprocessor {
	logger = logging.OrDefault(logger)
	if pool == nil {
		pool = concurrent.NewProcessor(logger, 1, 0)
	}
	return &Preprocessor{pool: pool, rewrites: rewrites, logger: logger}
}

// Normalize joins continuation lines, rewrites each line and rejoins them
// with '\n'. Line order is preserved.
func (p *Preprocessor) Normalize(ctx context.Context, raw string) (string, error) {
	start := time.Now()
	lines := strings.Split(JoinContinuations(raw), "\n")

	out, err := concurrent.Map(ctx, p.pool, "preprocess", lines, func(line string) string {
		return ApplyAll(line, p.rewrites)
	})
	if err != nil {
		return "", err
	}

	p.logger.Debug("Statement text normalized",
		logging.Field{Key: logging.FieldLine, Value: len(lines)},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()})

	return strings.Join(out, "\n"), nil
}

// Normalize is the sequential form with the default dialect.
func Normalize(raw string) string {
	rewrites := Rewrites(narrative.NewDecoder(narrative.DefaultOptions()))
	lines := strings.Split(JoinContinuations(raw), "\n")
	for i, line := range lines {
		lines[i] = ApplyAll(line, rewrites)
	}
	return strings.Join(lines, "\n")
}
