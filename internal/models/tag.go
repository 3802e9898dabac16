package models

import (
	"sort"
	"strings"
)

// Tag is a user-defined category with the substrings that select it.
type Tag struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// DefaultTag returns the fallback tag.
func DefaultTag() Tag {
	return Tag{ID: DefaultTagID, Name: DefaultTagName}
}

// TagKeywords is one row of a KeywordTable.
type TagKeywords struct {
	TagID    string
	Keywords []string
}

// KeywordTable is an immutable tag id to keywords mapping. Rows are ordered by
// ascending tag id; that order is the match priority when several tags match.
// Empty keywords are dropped since they would match every text.
type KeywordTable struct {
	rows    []TagKeywords
	catalog []Tag
}

// NewKeywordTable snapshots tags into a table. Later duplicates of a tag id
// are ignored.
func NewKeywordTable(tags []Tag) *KeywordTable {
	seen := make(map[string]bool, len(tags))
	rows := make([]TagKeywords, 0, len(tags))
	catalog := make([]Tag, 0, len(tags))
	for _, tag := range tags {
		if tag.ID == "" || seen[tag.ID] {
			continue
		}
		seen[tag.ID] = true
		catalog = append(catalog, Tag{ID: tag.ID, Name: tag.Name})

		keywords := make([]string, 0, len(tag.Keywords))
		for _, kw := range tag.Keywords {
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) == 0 {
			continue
		}
		rows = append(rows, TagKeywords{TagID: tag.ID, Keywords: keywords})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TagID < rows[j].TagID })
	sort.Slice(catalog, func(i, j int) bool { return catalog[i].ID < catalog[j].ID })
	return &KeywordTable{rows: rows, catalog: catalog}
}

// Match returns the first tag, in table order, with a keyword contained in
// text. Matching is case-sensitive.
func (kt *KeywordTable) Match(text string) (string, bool) {
	if kt == nil || text == "" {
		return "", false
	}
	for _, row := range kt.rows {
		for _, kw := range row.Keywords {
			if strings.Contains(text, kw) {
				return row.TagID, true
			}
		}
	}
	return "", false
}

// Len returns the number of tags with at least one keyword.
func (kt *KeywordTable) Len() int {
	if kt == nil {
		return 0
	}
	return len(kt.rows)
}

// Tags returns every tag the table was built from, keywords omitted, ordered
// by id. Tags without keywords are included.
func (kt *KeywordTable) Tags() []Tag {
	if kt == nil {
		return nil
	}
	out := make([]Tag, len(kt.catalog))
	copy(out, kt.catalog)
	return out
}

// TagNames maps tag ids to display names, including the default tag.
func TagNames(tags []Tag) map[string]string {
	names := map[string]string{DefaultTagID: DefaultTagName}
	for _, tag := range tags {
		names[tag.ID] = tag.Name
	}
	return names
}
