// Package narrative decodes the keyword-structured free text of an MT940
// ":86:" field (EREF+..., KREF+..., SVWZ+...) into transaction fields.
package narrative

import "strings"

// Keywords used by the resolver.
const (
	KeywordCustomerRef = "KREF"
	KeywordEndToEndRef = "EREF"
	KeywordMandateRef  = "MREF"
	KeywordIBAN        = "IBAN"
	KeywordCreditor    = "CREN"
	KeywordRemittance  = "SVWZ"
)

// EncodedPrefix starts the fixed-layout re-encoding of a narrative.
const EncodedPrefix = "999?"

// Options carries the bank dialect constants.
type Options struct {
	// ClosingMarker identifies an account-closing booking by the bank itself.
	ClosingMarker string
	// ClosingPartner is the partner name used for such bookings.
	ClosingPartner string
	// OfflineSentinel is a partner id that means "no id"; the partner name
	// replaces it.
	OfflineSentinel string
}

// DefaultOptions returns the dialect of the statements this tool was built on.
func DefaultOptions() Options {
	return Options{
		ClosingMarker:   "00Abschluss",
		ClosingPartner:  "VR-BANK UCKERMARK-RANDOW",
		OfflineSentinel: "OFFLINE",
	}
}

// Narrative holds the resolved, normalized fields of one ":86:" narrative.
type Narrative struct {
	TransactionID string
	PartnerID     string
	PartnerName   string
	Description   string
}

// Decoder resolves narratives with a fixed dialect.
type Decoder struct {
	opts Options
}

// NewDecoder creates a decoder. Empty option fields disable the matching rule.
func NewDecoder(opts Options) *Decoder {
	return &Decoder{opts: opts}
}

// Resolve decodes content and applies the field priorities:
// reference KREF then EREF, description SVWZ, partner name CREN then the
// closing-booking label, partner id MREF then IBAN then partner name.
func (d *Decoder) Resolve(content string) Narrative {
	fields := Decode(content)
	first := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := fields.Get(k); ok {
				return v
			}
		}
		return ""
	}

	var n Narrative
	n.TransactionID = first(KeywordCustomerRef, KeywordEndToEndRef)
	n.Description = first(KeywordRemittance)

	if v, ok := fields.Get(KeywordCreditor); ok {
		n.PartnerName = v
	} else if d.opts.ClosingMarker != "" && strings.Contains(content, d.opts.ClosingMarker) {
		n.PartnerName = d.opts.ClosingPartner
	}

	if v, ok := fields.Get(KeywordMandateRef); ok {
		n.PartnerID = v
	} else if v, ok := fields.Get(KeywordIBAN); ok {
		n.PartnerID = v
	} else {
		n.PartnerID = n.PartnerName
	}
	if d.opts.OfflineSentinel != "" && n.PartnerID == d.opts.OfflineSentinel {
		n.PartnerID = n.PartnerName
	}

	return n.normalized()
}

func (n Narrative) normalized() Narrative {
	return Narrative{
		TransactionID: Norm(n.TransactionID),
		PartnerID:     Norm(n.PartnerID),
		PartnerName:   Norm(n.PartnerName),
		Description:   Norm(n.Description),
	}
}

// Encode writes n in the fixed layout 999?id?partnerID?partnerName?description.
// Values must not contain '?'.
func (n Narrative) Encode() string {
	return EncodedPrefix + strings.Join([]string{n.TransactionID, n.PartnerID, n.PartnerName, n.Description}, "?")
}

// IsEncoded reports whether content is in the fixed layout.
func IsEncoded(content string) bool {
	return strings.HasPrefix(content, EncodedPrefix)
}

// ParseEncoded reads the fixed layout back. Missing trailing values are empty.
func ParseEncoded(content string) (Narrative, bool) {
	if !IsEncoded(content) {
		return Narrative{}, false
	}
	parts := strings.SplitN(strings.TrimPrefix(content, EncodedPrefix), "?", 4)
	for len(parts) < 4 {
		parts = append(parts, "")
	}
	return Narrative{
		TransactionID: parts[0],
		PartnerID:     parts[1],
		PartnerName:   parts[2],
		Description:   parts[3],
	}.normalized(), true
}

// Read returns the narrative of a ":86:" payload in either form.
func (d *Decoder) Read(content string) Narrative {
	if n, ok := ParseEncoded(content); ok {
		return n
	}
	return d.Resolve(content)
}
