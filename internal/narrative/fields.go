package narrative

import (
	"regexp"
	"strings"
)

// keywordPattern finds one keyword token: up to four uppercase letters and
// their separator. Scanning is leftmost-first and non-overlapping.
var keywordPattern = regexp.MustCompile(`([A-Z]{1,4})(?:\+|: )`)

var whitespace = regexp.MustCompile(`\s+`)

// Fields is an insertion-ordered keyword to value mapping in which the first
// value stored for a keyword is final.
type Fields struct {
	keys   []string
	values map[string]string
}

// NewFields returns an empty mapping.
func NewFields() *Fields {
	return &Fields{values: make(map[string]string)}
}

// SetIfAbsent stores value under key unless key is already present and
// reports whether it stored.
func (f *Fields) SetIfAbsent(key, value string) bool {
	if _, ok := f.values[key]; ok {
		return false
	}
	f.keys = append(f.keys, key)
	f.values[key] = value
	return true
}

// Get returns the value stored for key.
func (f *Fields) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Keys returns keywords in first-seen order.
func (f *Fields) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Decode splits narrative text into keyword values. A value runs from the end
// of its keyword token to the start of the next token, trimmed. Text before
// the first token is ignored. Decode never fails; text without tokens yields
// an empty mapping.
func Decode(content string) *Fields {
	fields := NewFields()
	matches := keywordPattern.FindAllStringSubmatchIndex(content, -1)
	for i, m := range matches {
		end := len(content)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		fields.SetIfAbsent(content[m[2]:m[3]], strings.TrimSpace(content[m[1]:end]))
	}
	return fields
}

// Norm collapses whitespace runs to a single space and trims the result.
func Norm(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
