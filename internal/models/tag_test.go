package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordTable_MatchOrderAndCase(t *testing.T) {
	table := NewKeywordTable([]Tag{
		{ID: "shopping", Name: "Shopping", Keywords: []string{"Amazon"}},
		{ID: "groceries", Name: "Lebensmittel", Keywords: []string{"ALDI", "Amazon Fresh"}},
		{ID: "empty", Name: "Nothing", Keywords: []string{""}},
	})

	assert.Equal(t, 2, table.Len(), "tag without usable keywords is dropped")

	tag, ok := table.Match("Amazon Fresh order")
	assert.True(t, ok)
	assert.Equal(t, "groceries", tag, "ascending tag id decides between matches")

	_, ok = table.Match("aldi markt")
	assert.False(t, ok, "matching is case-sensitive")

	_, ok = table.Match("")
	assert.False(t, ok)
}

func TestKeywordTable_DuplicateIDsAndNil(t *testing.T) {
	table := NewKeywordTable([]Tag{
		{ID: "a", Keywords: []string{"first"}},
		{ID: "a", Keywords: []string{"second"}},
	})
	_, ok := table.Match("second")
	assert.False(t, ok)

	var none *KeywordTable
	_, ok = none.Match("anything")
	assert.False(t, ok)
	assert.Equal(t, 0, none.Len())
}

func TestTagNames(t *testing.T) {
	names := TagNames([]Tag{{ID: "food", Name: "Lebensmittel"}})
	assert.Equal(t, "Lebensmittel", names["food"])
	assert.Equal(t, DefaultTagName, names[DefaultTagID])
	assert.Equal(t, Tag{ID: "default", Name: "Sonstige"}, DefaultTag())
}

func TestKeywordTable_Tags(t *testing.T) {
	table := NewKeywordTable([]Tag{
		{ID: "rent", Name: "Miete"},
		{ID: "food", Name: "Lebensmittel", Keywords: []string{"EDEKA"}},
		{ID: "food", Name: "Duplicate"},
	})

	assert.Equal(t, 1, table.Len())
	assert.Equal(t, []Tag{{ID: "food", Name: "Lebensmittel"}, {ID: "rent", Name: "Miete"}}, table.Tags())

	var none *KeywordTable
	assert.Nil(t, none.Tags())
}
