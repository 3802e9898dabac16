// Package ledger persists categorized transactions in SQLite and answers the
// balance queries over them.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"fjacquet/moneyview/internal/logging"
	"fjacquet/moneyview/internal/models"
)

const dateLayout = "2006-01-02"

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id            TEXT PRIMARY KEY,
	account_id    TEXT NOT NULL,
	date          TEXT NOT NULL,
	total_cents   INTEGER NOT NULL,
	balance_cents INTEGER NOT NULL,
	partner_name  TEXT NOT NULL,
	partner_id    TEXT NOT NULL,
	description   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS line_items (
	transaction_id TEXT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
	position       INTEGER NOT NULL,
	description    TEXT NOT NULL,
	amount_cents   INTEGER NOT NULL,
	tag_id         TEXT NOT NULL,
	PRIMARY KEY (transaction_id, position)
);
CREATE INDEX IF NOT EXISTS idx_line_items_tag ON line_items(tag_id);
`

// Ledger is the transaction database.
type Ledger struct {
	db     *sql.DB
	logger logging.Logger
}

// Open opens (or creates) the SQLite database at path and ensures the schema
// exists. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string, logger logging.Logger) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	logger = logging.OrDefault(logger)
	logger.Debug("Ledger opened", logging.Field{Key: logging.FieldFile, Value: path})
	return &Ledger{db: db, logger: logger}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Upsert inserts transactions or replaces the stored ones with the same id,
// line items included. All rows are written in one SQL transaction.
func (l *Ledger) Upsert(ctx context.Context, txs []models.Transaction) error {
	sqlTx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	upsertTx, err := sqlTx.PrepareContext(ctx, `
		INSERT INTO transactions (id, account_id, date, total_cents, balance_cents, partner_name, partner_id, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			account_id = excluded.account_id,
			date = excluded.date,
			total_cents = excluded.total_cents,
			balance_cents = excluded.balance_cents,
			partner_name = excluded.partner_name,
			partner_id = excluded.partner_id,
			description = excluded.description`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer upsertTx.Close()

	deleteItems, err := sqlTx.PrepareContext(ctx, `DELETE FROM line_items WHERE transaction_id = ?`)
	if err != nil {
		return fmt.Errorf("prepare line item delete: %w", err)
	}
	defer deleteItems.Close()

	insertItem, err := sqlTx.PrepareContext(ctx, `
		INSERT INTO line_items (transaction_id, position, description, amount_cents, tag_id)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare line item insert: %w", err)
	}
	defer insertItem.Close()

	for _, tx := range txs {
		if _, err := upsertTx.ExecContext(ctx,
			tx.ID, tx.AccountID, formatDate(tx.Date), toCents(tx.TotalAmount), toCents(tx.BalanceAfterTransaction),
			tx.PartnerName, tx.PartnerID, tx.Description,
		); err != nil {
			return fmt.Errorf("upsert transaction %s: %w", tx.ID, err)
		}
		if _, err := deleteItems.ExecContext(ctx, tx.ID); err != nil {
			return fmt.Errorf("delete line items of %s: %w", tx.ID, err)
		}
		for i, li := range tx.LineItems {
			if _, err := insertItem.ExecContext(ctx, tx.ID, i, li.Description, toCents(li.Amount), li.TagID); err != nil {
				return fmt.Errorf("insert line item %d of %s: %w", i, tx.ID, err)
			}
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}

	l.logger.Debug("Transactions stored", logging.Field{Key: logging.FieldCount, Value: len(txs)})
	return nil
}

// All returns every stored transaction ordered by date, then insertion.
func (l *Ledger) All(ctx context.Context) ([]models.Transaction, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, account_id, date, total_cents, balance_cents, partner_name, partner_id, description
		FROM transactions
		ORDER BY date ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	index := make(map[string]int)
	for rows.Next() {
		var (
			tx         models.Transaction
			date       string
			totalCents int64
			balCents   int64
		)
		if err := rows.Scan(&tx.ID, &tx.AccountID, &date, &totalCents, &balCents,
			&tx.PartnerName, &tx.PartnerID, &tx.Description); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Date, err = parseDate(date)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		tx.TotalAmount = fromCents(totalCents)
		tx.BalanceAfterTransaction = fromCents(balCents)
		index[tx.ID] = len(out)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := l.attachLineItems(ctx, out, index); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Ledger) attachLineItems(ctx context.Context, txs []models.Transaction, index map[string]int) error {
	rows, err := l.db.QueryContext(ctx, `
		SELECT transaction_id, description, amount_cents, tag_id
		FROM line_items
		ORDER BY transaction_id, position`)
	if err != nil {
		return fmt.Errorf("query line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			txID  string
			li    models.LineItem
			cents int64
		)
		if err := rows.Scan(&txID, &li.Description, &cents, &li.TagID); err != nil {
			return fmt.Errorf("scan line item: %w", err)
		}
		li.Amount = fromCents(cents)
		if i, ok := index[txID]; ok {
			txs[i].LineItems = append(txs[i].LineItems, li)
		}
	}
	return rows.Err()
}

// PartnerBalance sums transaction amounts per partner name. positive selects
// income, otherwise expenses.
func (l *Ledger) PartnerBalance(ctx context.Context, positive bool) ([]models.BalanceInformation, error) {
	return l.balance(ctx, `
		SELECT partner_name, SUM(total_cents), COUNT(*)
		FROM transactions
		WHERE `+signFilter("total_cents", positive)+`
		GROUP BY partner_name
		ORDER BY partner_name`)
}

// TagBalance sums line item amounts per tag id. positive selects income,
// otherwise expenses.
func (l *Ledger) TagBalance(ctx context.Context, positive bool) ([]models.BalanceInformation, error) {
	return l.balance(ctx, `
		SELECT tag_id, SUM(amount_cents), COUNT(*)
		FROM line_items
		WHERE `+signFilter("amount_cents", positive)+`
		GROUP BY tag_id
		ORDER BY tag_id`)
}

func signFilter(column string, positive bool) string {
	if positive {
		return column + " > 0"
	}
	return column + " < 0"
}

func (l *Ledger) balance(ctx context.Context, query string) ([]models.BalanceInformation, error) {
	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query balance: %w", err)
	}
	defer rows.Close()

	var out []models.BalanceInformation
	for rows.Next() {
		var (
			row   models.BalanceInformation
			cents int64
		)
		if err := rows.Scan(&row.Name, &cents, &row.TransactionCount); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		row.Balance = fromCents(cents)
		out = append(out, row)
	}
	return out, rows.Err()
}

func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored date '%s': %w", s, err)
	}
	return t, nil
}
