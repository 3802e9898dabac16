package container

import (
	"context"
	"sync"

	"fjacquet/moneyview/internal/ledger"
	"fjacquet/moneyview/internal/logging"
	"fjacquet/moneyview/internal/models"
)

// lazyLedger opens the database on the first call so that commands which
// never touch it do not create a file.
type lazyLedger struct {
	path   string
	logger logging.Logger

	mu     sync.Mutex
	ledger *ledger.Ledger
}

func (l *lazyLedger) get(ctx context.Context) (*ledger.Ledger, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ledger != nil {
		return l.ledger, nil
	}
	opened, err := ledger.Open(ctx, l.path, l.logger)
	if err != nil {
		return nil, err
	}
	l.ledger = opened
	return opened, nil
}

func (l *lazyLedger) opened() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ledger != nil
}

func (l *lazyLedger) Upsert(ctx context.Context, txs []models.Transaction) error {
	db, err := l.get(ctx)
	if err != nil {
		return err
	}
	return db.Upsert(ctx, txs)
}

func (l *lazyLedger) All(ctx context.Context) ([]models.Transaction, error) {
	db, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return db.All(ctx)
}

func (l *lazyLedger) PartnerBalance(ctx context.Context, positive bool) ([]models.BalanceInformation, error) {
	db, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return db.PartnerBalance(ctx, positive)
}

func (l *lazyLedger) TagBalance(ctx context.Context, positive bool) ([]models.BalanceInformation, error) {
	db, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return db.TagBalance(ctx, positive)
}

func (l *lazyLedger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ledger == nil {
		return nil
	}
	err := l.ledger.Close()
	l.ledger = nil
	return err
}
