package mt940

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/moneyview/internal/parsererror"
)

var (
	tagLine      = regexp.MustCompile(`^:(\d{2}[A-Z]?):(.*)$`)
	balanceField = regexp.MustCompile(`^([CD])(\d{6})([A-Z]{3})(\d[\d,]*)$`)
	lineField    = regexp.MustCompile(`^(\d{6})(\d{4})?(RC|RD|C|D)([A-Z])?(\d[\d,]*)([NSF][A-Z0-9]{3})(.*?)(?://(.*))?$`)
)

const (
	snippetLen        = 40
	maxFractionDigits = 2
)

type field struct {
	tag     string
	content string
	line    int
}

// Parse tokenizes preprocessed MT940 text. Text before the first :20: is
// ignored, as are unknown tags and "-" terminator lines. Blank input yields
// no messages; any other input without a message, or a message lacking an
// account or opening balance or holding a malformed balance or statement
// line, fails with a *parsererror.StructuralError.
func Parse(text string) ([]Message, error) {
	fields := splitFields(text)

	var (
		messages []Message
		current  *Message
		start    int
		prevTag  string
	)

	flush := func() error {
		if current == nil {
			return nil
		}
		if err := validate(current, start); err != nil {
			return err
		}
		messages = append(messages, *current)
		return nil
	}

	for _, f := range fields {
		if f.tag == "20" {
			if err := flush(); err != nil {
				return nil, err
			}
			current = &Message{TransactionRef: strings.TrimSpace(f.content)}
			start = f.line
			prevTag = f.tag
			continue
		}
		if current == nil {
			continue
		}

		switch f.tag {
		case "21":
			current.RelatedRef = strings.TrimSpace(f.content)
		case "25":
			current.AccountID = strings.TrimSpace(f.content)
		case "28", "28C":
			current.StatementNumber = strings.TrimSpace(f.content)
		case "60F", "60M":
			b, err := parseBalance(f)
			if err != nil {
				return nil, err
			}
			current.OpeningBalance = b
		case "62F", "62M":
			b, err := parseBalance(f)
			if err != nil {
				return nil, err
			}
			current.ClosingBalance = &b
		case "61":
			l, err := parseLine(f)
			if err != nil {
				return nil, err
			}
			current.Lines = append(current.Lines, l)
		case "86":
			if prevTag == "61" && len(current.Lines) > 0 {
				current.Lines[len(current.Lines)-1].Information = f.content
			} else if current.Information == "" {
				current.Information = f.content
			}
		}
		prevTag = f.tag
	}

	if err := flush(); err != nil {
		return nil, err
	}

	if len(messages) == 0 && strings.TrimSpace(text) != "" {
		return nil, &parsererror.StructuralError{
			Snippet: snippet(text),
			Msg:     "expected at least one :20: field",
			Err:     parsererror.ErrNoMessages,
		}
	}

	return messages, nil
}

// splitFields groups lines into tagged fields. Untagged lines continue the
// previous field.
func splitFields(text string) []field {
	var fields []field
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" || strings.TrimSpace(line) == "-" {
			continue
		}
		if m := tagLine.FindStringSubmatch(line); m != nil {
			fields = append(fields, field{tag: m[1], content: m[2], line: i + 1})
			continue
		}
		if n := len(fields); n > 0 {
			fields[n-1].content += "\n" + line
		}
	}
	return fields
}

func validate(m *Message, line int) error {
	switch {
	case m.AccountID == "":
		return &parsererror.StructuralError{Line: line, Msg: fmt.Sprintf("message %q has no :25: account", m.TransactionRef)}
	case m.OpeningBalance.Currency == "":
		return &parsererror.StructuralError{Line: line, Msg: fmt.Sprintf("message %q has no :60F:/:60M: opening balance", m.TransactionRef)}
	}
	return nil
}

func parseBalance(f field) (Balance, error) {
	content := strings.TrimSpace(f.content)
	m := balanceField.FindStringSubmatch(content)
	if m == nil {
		return Balance{}, structural(f, "malformed balance")
	}

	date, err := time.Parse("060102", m[2])
	if err != nil {
		return Balance{}, structural(f, "invalid balance date")
	}
	amount, err := ParseAmount(m[4])
	if err != nil {
		return Balance{}, &parsererror.StructuralError{Line: f.line, Snippet: snippet(content), Msg: "invalid balance amount", Err: err}
	}

	indicator := Credit
	if m[1] == "D" {
		indicator = Debit
	}
	return Balance{Indicator: indicator, Date: date, Currency: m[3], Amount: amount}, nil
}

func parseLine(f field) (StatementLine, error) {
	first, details, _ := strings.Cut(f.content, "\n")
	m := lineField.FindStringSubmatch(strings.TrimSpace(first))
	if m == nil {
		return StatementLine{}, structural(f, "malformed statement line")
	}

	valueDate, err := time.Parse("060102", m[1])
	if err != nil {
		return StatementLine{}, structural(f, "invalid value date")
	}

	l := StatementLine{
		ValueDate:       valueDate,
		Indicator:       parseMark(m[3]),
		FundsCode:       m[4],
		RawAmount:       m[5],
		TransactionType: m[6],
		CustomerRef:     strings.TrimSpace(m[7]),
		BankRef:         strings.TrimSpace(m[8]),
		Details:         strings.TrimSpace(details),
	}

	if m[2] != "" {
		entry, err := entryDate(valueDate, m[2])
		if err != nil {
			l.Problems = append(l.Problems, &parsererror.FieldError{Stage: "mt940", Field: "entry_date", Value: m[2], Err: err})
		} else {
			l.EntryDate = entry
		}
	}

	return l, nil
}

func parseMark(mark string) ExtDebitOrCredit {
	switch mark {
	case "D":
		return LineDebit
	case "RC":
		return ReverseCredit
	case "RD":
		return ReverseDebit
	default:
		return LineCredit
	}
}

// entryDate resolves the year of an MMDD entry date against the value date,
// crossing the year boundary when the months are December and January.
func entryDate(valueDate time.Time, mmdd string) (time.Time, error) {
	md, err := time.Parse("0102", mmdd)
	if err != nil {
		return time.Time{}, err
	}

	year := valueDate.Year()
	switch {
	case valueDate.Month() == time.December && md.Month() == time.January:
		year++
	case valueDate.Month() == time.January && md.Month() == time.December:
		year--
	}

	d := time.Date(year, md.Month(), md.Day(), 0, 0, 0, 0, time.UTC)
	if d.Day() != md.Day() {
		return time.Time{}, fmt.Errorf("day %d out of range in %d", md.Day(), year)
	}
	return d, nil
}

// ParseAmount reads an MT940 amount such as "104,50" or "12,". At most two
// fractional digits are accepted so amounts stay exact in cents.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if strings.Count(s, ",") > 1 || strings.Contains(s, ".") {
		return decimal.Zero, fmt.Errorf("can't convert %s to decimal", raw)
	}
	if _, frac, ok := strings.Cut(s, ","); ok && len(frac) > maxFractionDigits {
		return decimal.Zero, fmt.Errorf("can't convert %s to decimal: more than %d fractional digits", raw, maxFractionDigits)
	}
	s = strings.TrimSuffix(strings.Replace(s, ",", ".", 1), ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("can't convert %s to decimal: %w", raw, err)
	}
	return d, nil
}

func structural(f field, msg string) *parsererror.StructuralError {
	return &parsererror.StructuralError{Line: f.line, Snippet: snippet(":" + f.tag + ":" + f.content), Msg: msg}
}

func snippet(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > snippetLen {
		return s[:snippetLen] + "..."
	}
	return s
}
