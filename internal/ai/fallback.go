package ai

import (
	_ "embed"
	"math"
	"strconv"
	"strings"
	"text/template"
	"unicode"
)

//go:embed fallback.md.tmpl
var fallbackSource string

var fallbackTemplate = template.Must(template.New("fallback").Parse(fallbackSource))

type fallbackData struct {
	Fields
	Personnel      string
	DirectServices string
	Administrative string
}

// FallbackDraft renders the offline proposal outline for fields. The output
// depends only on fields.
func FallbackDraft(fields Fields) string {
	amount := parseLeadingInt(fields.Amount)
	data := fallbackData{
		Fields:         fields,
		Personnel:      formatWhole(roundHalfUp(amount * 0.6)),
		DirectServices: formatWhole(roundHalfUp(amount * 0.25)),
		Administrative: formatWhole(roundHalfUp(amount * 0.15)),
	}

	var b strings.Builder
	if err := fallbackTemplate.Execute(&b, data); err != nil {
		// Executing a parsed template over plain strings does not fail.
		panic(err)
	}
	return b.String()
}

// parseLeadingInt reads an optionally signed integer prefix, skipping leading
// whitespace and accepting a 0x prefix for hex. It returns NaN when no digits
// are found.
func parseLeadingInt(s string) float64 {
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})

	sign := 1.0
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}

	base := 10.0
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	value, digits := 0.0, 0
	for _, r := range s {
		d := digitValue(r)
		if d < 0 || float64(d) >= base {
			break
		}
		value = value*base + float64(d)
		digits++
	}
	if digits == 0 {
		return math.NaN()
	}
	return sign * value
}

func digitValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10
	}
	return -1
}

// roundHalfUp rounds to the nearest integer, with halves going toward +Inf.
func roundHalfUp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r := math.Floor(v + 0.5)
	if r == 0 && v < 0 {
		return math.Copysign(0, -1)
	}
	return r
}

// formatWhole renders an integral value with comma thousands separators.
func formatWhole(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "∞"
	case math.IsInf(v, -1):
		return "-∞"
	}

	digits := strconv.FormatFloat(math.Abs(v), 'f', 0, 64)
	var b strings.Builder
	if math.Signbit(v) {
		b.WriteByte('-')
	}
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}
