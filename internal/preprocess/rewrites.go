package preprocess

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"fjacquet/moneyview/internal/narrative"
)

// Rewrite is one named, pure line transformation. It must accept any input
// and return the line unchanged when it does not apply.
type Rewrite struct {
	Name  string
	Apply func(line string) string
}

const (
	// Marker is the canonical subfield marker the bank's '?' is mapped to.
	Marker = "$"

	noiseToken     = "?34992"
	embeddedStart  = Marker + "32"
	embeddedEnd    = Marker + "60"
	creditorPrefix = narrative.KeywordCreditor + "+"
	narrativeTag   = ":86:"
)

var (
	numericMarkers  = regexp.MustCompile(`\$(?:2[1-9]|3[3-9]|6[1-9])`)
	leftoverMarkers = regexp.MustCompile(`\$\d{2}`)

	specialLetters = strings.NewReplacer("ß", "ss", "€", "EUR")
)

// JoinContinuations normalizes line endings and glues lines that start with
// a subfield marker or a continuation hyphen to the previous line. It works
// on the whole text and runs before the per-line rewrites.
func JoinContinuations(text string) string {
	// Order matters: "\r\n?" must end up as "?".
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n?", "?")
	return strings.ReplaceAll(text, "\n-", "")
}

// NormalizeMarkers drops the bank's noise token and maps '?' to Marker.
func NormalizeMarkers(line string) string {
	return strings.ReplaceAll(strings.ReplaceAll(line, noiseToken, ""), "?", Marker)
}

// StripNumericMarkers removes the purely positional markers $21-$29,
// $33-$39 and $61-$69.
func StripNumericMarkers(line string) string {
	return numericMarkers.ReplaceAllString(line, "")
}

// RelocateEmbedded moves the creditor block between $32 and the next $60 to
// the end of the line as " CREN+<block>". Without a closing $60 every $32 is
// replaced by "CREN+" in place.
func RelocateEmbedded(line string) string {
	start := strings.Index(line, embeddedStart)
	if start < 0 {
		return line
	}

	rel := strings.Index(line[start+len(embeddedStart):], embeddedEnd)
	if rel < 0 {
		return strings.ReplaceAll(line, embeddedStart, creditorPrefix)
	}
	end := start + len(embeddedStart) + rel

	block := line[start+len(embeddedStart) : end]
	rest := strings.TrimRightFunc(line[:start]+line[end+len(embeddedEnd):], unicode.IsSpace)
	return rest + " " + creditorPrefix + block
}

// EncodeNarrative returns a rewrite that replaces ":86:" lines with the fixed
// layout ":86:999?id?partnerID?partnerName?description".
func EncodeNarrative(dec *narrative.Decoder) Rewrite {
	return Rewrite{
		Name: "encode-narrative",
		Apply: func(line string) string {
			if !strings.HasPrefix(line, narrativeTag) {
				return line
			}
			return narrativeTag + dec.Resolve(line[len(narrativeTag):]).Encode()
		},
	}
}

var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Sanitize folds text to the SWIFT character set: diacritics are dropped,
// leftover $NN markers removed and any other foreign character becomes '.'.
func Sanitize(line string) string {
	line = specialLetters.Replace(line)
	if folded, _, err := transform.String(asciiFold, line); err == nil {
		line = folded
	}
	line = leftoverMarkers.ReplaceAllString(line, "")

	return strings.Map(func(r rune) rune {
		if isSwiftChar(r) {
			return r
		}
		return '.'
	}, line)
}

func isSwiftChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("/-?:().,'+{} ", r)
}

// Rewrites returns the per-line rewrites in their required order. The
// narrative re-encoding step is included only when dec is non-nil.
func Rewrites(dec *narrative.Decoder) []Rewrite {
	rewrites := []Rewrite{
		{Name: "normalize-markers", Apply: NormalizeMarkers},
		{Name: "strip-numeric-markers", Apply: StripNumericMarkers},
		{Name: "relocate-embedded", Apply: RelocateEmbedded},
	}
	if dec != nil {
		rewrites = append(rewrites, EncodeNarrative(dec))
	}
	return append(rewrites, Rewrite{Name: "sanitize", Apply: Sanitize})
}

// ApplyAll runs rewrites over line in order.
func ApplyAll(line string, rewrites []Rewrite) string {
	for _, rw := range rewrites {
		line = rw.Apply(line)
	}
	return line
}
