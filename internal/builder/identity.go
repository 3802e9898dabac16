package builder

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FingerprintVersion is part of every fallback id. Changing how the
// fingerprint input is normalized requires a new version, otherwise
// re-imported statements stop deduplicating against stored ones.
const FingerprintVersion = "v1"

const fingerprintPrefix = "fp1_"

// noReference is the MT940 placeholder for a missing bank reference.
const noReference = "NONREF"

// ReferenceID derives the id of a line that carries a reference. Date and
// amount keep apart distinct movements that reuse a creditor reference.
func ReferenceID(date time.Time, amount decimal.Decimal, ref string) string {
	return fmt.Sprintf("%s-%s-%s", date.Format("2006-01-02"), amount.StringFixed(2), ref)
}

// Fingerprint derives the id of a line without any reference.
func Fingerprint(amount, balance decimal.Decimal, description string) string {
	input := strings.Join([]string{
		FingerprintVersion,
		amount.StringFixed(2),
		balance.StringFixed(2),
		description,
	}, "|")
	sum := sha256.Sum256([]byte(input))
	return fingerprintPrefix + hex.EncodeToString(sum[:])
}

func usableBankRef(ref string) string {
	if ref == "" || strings.EqualFold(ref, noReference) {
		return ""
	}
	return ref
}
