package tagger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fjacquet/moneyview/internal/concurrent"
	"fjacquet/moneyview/internal/logging"
	"fjacquet/moneyview/internal/models"
)

// MockAIClient is a mock implementation of AIClient for testing
type MockAIClient struct {
	mock.Mock
}

func (m *MockAIClient) SuggestTag(ctx context.Context, tx models.Transaction, candidates []models.Tag) (string, error) {
	args := m.Called(ctx, tx, candidates)
	return args.String(0), args.Error(1)
}

func testTable() *models.KeywordTable {
	return models.NewKeywordTable([]models.Tag{
		models.DefaultTag(),
		{ID: "church", Name: "Kirche", Keywords: []string{"Kirchengemeinde"}},
		{ID: "food", Name: "Lebensmittel", Keywords: []string{"EDEKA", "Lidl"}},
		{ID: "rent", Name: "Miete", Keywords: []string{"Miete"}},
	})
}

func tx(id, amount, partner, desc string) models.Transaction {
	return models.Transaction{
		ID:          id,
		TotalAmount: decimal.RequireFromString(amount),
		PartnerName: partner,
		Description: desc,
	}
}

func TestCategorize_KeywordPriority(t *testing.T) {
	tagger := NewDefault(nil, logging.NewMockLogger(), nil)
	table := testTable()

	tests := []struct {
		name     string
		tx       models.Transaction
		expected string
	}{
		{"description match", tx("1", "-20", "Someone", "EDEKA Markt 42"), "food"},
		{"partner match", tx("2", "-20", "Lidl Vertriebs GmbH", "Einkauf"), "food"},
		{"description before partner", tx("3", "-500", "Ev. Kirchengemeinde Torgelow", "Miete Juli"), "rent"},
		{"ascending id between description matches", tx("4", "-5", "", "Kirchengemeinde EDEKA"), "church"},
		{"case-sensitive miss", tx("5", "-5", "", "edeka"), models.DefaultTagID},
		{"nothing matches", tx("6", "10", "", ""), models.DefaultTagID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tagger.Categorize(context.Background(), tt.tx, table)
			require.Len(t, got.LineItems, 1)
			assert.Equal(t, tt.expected, got.TagID())
			assert.True(t, got.LineItems[0].Amount.Equal(tt.tx.TotalAmount))
		})
	}
}

func TestCategorize_LineItemConservation(t *testing.T) {
	tagger := NewDefault(nil, logging.NewMockLogger(), nil)
	in := tx("1", "-104.50", "Ev. Kirchengemeinde Torgelow", "Drente, Konstantin")
	in.LineItems = []models.LineItem{
		{Description: "Kollekte", Amount: decimal.RequireFromString("-4.50"), TagID: "church"},
		{Description: "", Amount: decimal.RequireFromString("-99"), TagID: "stale"},
	}

	got := tagger.Categorize(context.Background(), in, testTable())

	require.Len(t, got.LineItems, 2)
	assert.Equal(t, "Kollekte", got.LineItems[0].Description)
	assert.True(t, got.LineItems[1].IsResidual())
	assert.Equal(t, "church", got.TagID())
	assert.Equal(t, "-100", got.LineItems[1].Amount.String())
	assert.True(t, got.LineItemTotal().Equal(got.TotalAmount))
	assert.Len(t, in.LineItems, 2, "input untouched")
	assert.Equal(t, "stale", in.LineItems[1].TagID)
}

func TestCategorize_Idempotent(t *testing.T) {
	tagger := NewDefault(nil, logging.NewMockLogger(), nil)
	table := testTable()
	once := tagger.Categorize(context.Background(), tx("1", "-12.34", "", "Lidl"), table)
	twice := tagger.Categorize(context.Background(), once, table)
	assert.Equal(t, once, twice)
}

func TestCategorize_AIFallback(t *testing.T) {
	ai := new(MockAIClient)
	table := testTable()
	in := tx("ai-1", "-9.99", "Streaming AG", "Abo Juli")
	candidates := []models.Tag{
		{ID: "church", Name: "Kirche"},
		{ID: "food", Name: "Lebensmittel"},
		{ID: "rent", Name: "Miete"},
	}
	ai.On("SuggestTag", mock.Anything, in, candidates).Return("rent", nil).Once()

	tagger := NewDefault(nil, logging.NewMockLogger(), ai)
	got := tagger.Categorize(context.Background(), in, table)

	assert.Equal(t, "rent", got.TagID())
	ai.AssertExpectations(t)
}

func TestCategorize_AINotCalledOnKeywordMatch(t *testing.T) {
	ai := new(MockAIClient)
	tagger := NewDefault(nil, logging.NewMockLogger(), ai)

	got := tagger.Categorize(context.Background(), tx("1", "-1", "", "EDEKA"), testTable())

	assert.Equal(t, "food", got.TagID())
	ai.AssertNotCalled(t, "SuggestTag", mock.Anything, mock.Anything, mock.Anything)
}

func TestCategorize_AIFailuresFallBackToDefault(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		err    error
		warned bool
	}{
		{"client error", "", errors.New("quota exceeded"), true},
		{"unknown tag", "travel", nil, false},
		{"no answer", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ai := new(MockAIClient)
			ai.On("SuggestTag", mock.Anything, mock.Anything, mock.Anything).Return(tt.answer, tt.err)
			logger := logging.NewMockLogger()

			got := NewDefault(nil, logger, ai).Categorize(context.Background(), tx("1", "-1", "X", "Y"), testTable())

			assert.Equal(t, models.DefaultTagID, got.TagID())
			assert.Equal(t, tt.warned, logger.HasEntry("WARN", "Tagging strategy failed"))
		})
	}
}

func TestAIStrategy_SkipsWithoutText(t *testing.T) {
	ai := new(MockAIClient)
	s := NewAIStrategy(ai, nil)

	_, ok, err := s.Suggest(context.Background(), tx("1", "-1", " ", ""), testTable())
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.Suggest(context.Background(), tx("1", "-1", "X", ""), models.NewKeywordTable([]models.Tag{models.DefaultTag()}))
	require.NoError(t, err)
	assert.False(t, ok, "no candidates besides the default tag")

	ai.AssertNotCalled(t, "SuggestTag", mock.Anything, mock.Anything, mock.Anything)
}

func TestKeywordStrategy_Name(t *testing.T) {
	assert.Equal(t, "Keyword(description)", NewKeywordStrategy(FieldDescription, nil).Name())
	assert.Equal(t, "Keyword(partner_name)", NewKeywordStrategy(FieldPartner, nil).Name())
	assert.Equal(t, "AI", NewAIStrategy(nil, nil).Name())
}

func TestCategorizeAll_KeepsOrder(t *testing.T) {
	logger := logging.NewMockLogger()
	pool := concurrent.NewProcessor(logger, 4, 0)
	tagger := NewDefault(pool, logger, nil)

	txs := make([]models.Transaction, 200)
	for i := range txs {
		desc := "Miete"
		if i%2 == 0 {
			desc = "EDEKA"
		}
		txs[i] = tx(fmt.Sprintf("tx-%03d", i), "-1", "", desc)
	}

	got, err := tagger.CategorizeAll(context.Background(), txs, testTable())
	require.NoError(t, err)
	require.Len(t, got, len(txs))
	for i, g := range got {
		assert.Equal(t, txs[i].ID, g.ID)
		if i%2 == 0 {
			assert.Equal(t, "food", g.TagID())
		} else {
			assert.Equal(t, "rent", g.TagID())
		}
	}
	assert.True(t, logger.HasEntry("INFO", "Transactions tagged"))
}

func TestCategorizeAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDefault(nil, nil, nil).CategorizeAll(ctx, []models.Transaction{tx("1", "1", "", "")}, testTable())
	assert.ErrorIs(t, err, context.Canceled)
}
