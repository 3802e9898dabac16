package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/moneyview/internal/logging"
	"fjacquet/moneyview/internal/models"
)

func sample() []models.Transaction {
	return []models.Transaction{
		{
			ID:                      "2024-07-16--104.50-390773481601010055",
			AccountID:               "15051732/0000000000",
			Date:                    time.Date(2024, 7, 16, 0, 0, 0, 0, time.UTC),
			TotalAmount:             decimal.RequireFromString("-104.5"),
			BalanceAfterTransaction: decimal.RequireFromString("653.49"),
			PartnerName:             "Ev. Kirchengemeinde Torgelow",
			PartnerID:               "0035-5250",
			Description:             "Drente, Konstantin",
			LineItems:               []models.LineItem{{Amount: decimal.RequireFromString("-104.5"), TagID: "church"}},
		},
		{
			ID:          "fp1_abc",
			TotalAmount: decimal.RequireFromString("3"),
			Description: "Zinsen; Juli",
			LineItems:   []models.LineItem{{Amount: decimal.RequireFromString("3"), TagID: "interest"}},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, sample(), map[string]string{"church": "Kirche"}, ';')
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID;Date;AccountID;Amount;BalanceAfterTransaction;PartnerName;PartnerID;Description;TagID;Tag", lines[0])
	assert.Equal(t, "2024-07-16--104.50-390773481601010055;2024-07-16;15051732/0000000000;-104.50;653.49;Ev. Kirchengemeinde Torgelow;0035-5250;Drente, Konstantin;church;Kirche", lines[1])
	assert.Equal(t, `fp1_abc;;;3.00;0.00;;;"Zinsen; Juli";interest;interest`, lines[2], "unknown tag falls back to its id")
}

func TestWriteCSV_Nil(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteCSV(&buf, nil, nil, ','))
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "july.csv")
	logger := logging.NewMockLogger()

	require.NoError(t, WriteCSVFile(path, sample(), nil, ',', logger))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "ID,Date,AccountID,"))
	assert.Contains(t, string(data), `"Drente, Konstantin"`)
	assert.True(t, logger.HasEntry("INFO", "Wrote transactions to CSV file"))
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in       string
		expected rune
		wantErr  bool
	}{
		{"", ',', false},
		{";", ';', false},
		{"\t", '\t', false},
		{";;", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDelimiter(tt.in)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got)
	}
}
