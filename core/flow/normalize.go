package flow

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	nonDigitRe = regexp.MustCompile(`\D`)

	titleCaser = cases.Title(language.BrazilianPortuguese)
)

// normalize produces the lowercase trimmed form used for comparisons only.
// Free-text answers are stored from the trimmed original.
func normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func looksLikeEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// normalizeCEP accepts "01001-000" or "01001000" and returns the canonical
// dashed form. Returns "" when the input does not contain exactly 8 digits.
func normalizeCEP(raw string) string {
	digits := nonDigitRe.ReplaceAllString(raw, "")
	if len(digits) != 8 {
		return ""
	}
	return digits[:5] + "-" + digits[5:]
}

func titleName(raw string) string {
	return titleCaser.String(strings.TrimSpace(raw))
}
