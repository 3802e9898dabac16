// Package container provides dependency injection for the moneyview
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fjacquet/moneyview/internal/concurrent"
	"fjacquet/moneyview/internal/config"
	"fjacquet/moneyview/internal/ingest"
	"fjacquet/moneyview/internal/logging"
	"fjacquet/moneyview/internal/narrative"
	"fjacquet/moneyview/internal/statement"
	"fjacquet/moneyview/internal/store"
	"fjacquet/moneyview/internal/tagger"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	pool     *concurrent.Processor
	store    *store.TagStore
	aiClient *tagger.GeminiClient
	tagger   *tagger.Tagger
	parser   *statement.Parser
	ledger   *lazyLedger
	service  *ingest.Service
}

// NewContainer creates and wires all application dependencies. The ledger
// database is opened on first use.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	return NewContainerWithLogger(ctx, cfg, logger)
}

// NewContainerWithLogger is NewContainer with a caller-provided logger.
func NewContainerWithLogger(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	logger = logging.OrDefault(logger)

	pool := concurrent.NewProcessor(logger, cfg.Ingest.Workers, cfg.Ingest.SequentialThreshold)
	tagStore := store.NewTagStore(cfg.Tags.File, logger)

	var (
		aiClient *tagger.GeminiClient
		ai       tagger.AIClient
	)
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		client, err := tagger.NewGeminiClient(ctx, tagger.GeminiConfig{
			APIKey:            cfg.AI.APIKey,
			Model:             cfg.AI.Model,
			RequestsPerMinute: cfg.AI.RequestsPerMinute,
			Timeout:           time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create AI client: %w", err)
		}
		aiClient = client
		ai = client
		logger.Info("AI tagging enabled")
	} else {
		logger.Info("AI tagging disabled")
	}

	tg := tagger.NewDefault(pool, logger, ai)
	parser := statement.NewParser(pool, statement.Options{
		Dialect: narrative.Options{
			ClosingMarker:   cfg.Dialect.ClosingMarker,
			ClosingPartner:  cfg.Dialect.ClosingPartner,
			OfflineSentinel: cfg.Dialect.OfflineSentinel,
		},
		RewriteNarrative: cfg.Ingest.RewriteNarrative,
	}, logger)
	ledger := &lazyLedger{path: cfg.Store.Path, logger: logger}

	logger.Info("Container initialized successfully",
		logging.Field{Key: logging.FieldWorkers, Value: pool.Workers()},
		logging.Field{Key: "ai_enabled", Value: aiClient != nil})

	return &Container{
		logger:   logger,
		config:   cfg,
		pool:     pool,
		store:    tagStore,
		aiClient: aiClient,
		tagger:   tg,
		parser:   parser,
		ledger:   ledger,
		service:  ingest.NewService(parser, tagStore, tg, ledger, logger),
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the tag store.
func (c *Container) GetStore() *store.TagStore {
	return c.store
}

// GetTagger returns the tagger.
func (c *Container) GetTagger() *tagger.Tagger {
	return c.tagger
}

// GetParser returns the statement parser.
func (c *Container) GetParser() *statement.Parser {
	return c.parser
}

// GetService returns the ingestion service.
func (c *Container) GetService() *ingest.Service {
	return c.service
}

// Close releases the ledger and the AI client, if they were opened.
func (c *Container) Close() error {
	var errs []error
	if err := c.ledger.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close ledger: %w", err))
	}
	if c.aiClient != nil {
		if err := c.aiClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close AI client: %w", err))
		}
	}
	c.logger.Debug("Container closed")
	return errors.Join(errs...)
}
