// Package export writes transactions as CSV.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/gocarina/gocsv"

	"fjacquet/moneyview/internal/logging"
	"fjacquet/moneyview/internal/models"
)

// Row is one exported transaction.
type Row struct {
	ID          string `csv:"ID"`
	Date        string `csv:"Date"`
	AccountID   string `csv:"AccountID"`
	Amount      string `csv:"Amount"`
	Balance     string `csv:"BalanceAfterTransaction"`
	PartnerName string `csv:"PartnerName"`
	PartnerID   string `csv:"PartnerID"`
	Description string `csv:"Description"`
	TagID       string `csv:"TagID"`
	Tag         string `csv:"Tag"`
}

// NewRow flattens tx. The tag name falls back to the tag id when tagNames
// has no entry.
func NewRow(tx models.Transaction, tagNames map[string]string) Row {
	row := Row{
		ID:          tx.ID,
		AccountID:   tx.AccountID,
		Amount:      tx.TotalAmount.StringFixed(2),
		Balance:     tx.BalanceAfterTransaction.StringFixed(2),
		PartnerName: tx.PartnerName,
		PartnerID:   tx.PartnerID,
		Description: tx.Description,
		TagID:       tx.TagID(),
	}
	if !tx.Date.IsZero() {
		row.Date = tx.Date.Format("2006-01-02")
	}
	row.Tag = row.TagID
	if name, ok := tagNames[row.TagID]; ok {
		row.Tag = name
	}
	return row
}

// ParseDelimiter returns the single character of s, or ',' for "".
func ParseDelimiter(s string) (rune, error) {
	if s == "" {
		return ',', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("CSV delimiter must be a single character, got '%s'", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// WriteCSV writes a header and one row per transaction to w.
func WriteCSV(w io.Writer, txs []models.Transaction, tagNames map[string]string, delimiter rune) error {
	if txs == nil {
		return errors.New("cannot write nil transactions to CSV")
	}

	rows := make([]Row, len(txs))
	for i, tx := range txs {
		rows[i] = NewRow(tx, tagNames)
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteCSVFile writes the CSV to path, creating parent directories.
func WriteCSVFile(path string, txs []models.Transaction, tagNames map[string]string, delimiter rune, logger logging.Logger) error {
	logger = logging.OrDefault(logger)

	if err := os.MkdirAll(filepath.Dir(path), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, models.PermissionExportFile) // #nosec G304 -- user-chosen output path
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := WriteCSV(file, txs, tagNames, delimiter); err != nil {
		return err
	}

	logger.Info("Wrote transactions to CSV file",
		logging.Field{Key: logging.FieldOutputFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(txs)},
		logging.Field{Key: logging.FieldDelimiter, Value: string(delimiter)})
	return nil
}
