// Package preprocess normalizes raw analysis input: it strips invisible
// characters, re-fangs defanged indicators and decodes common obfuscation.
package preprocess

import (
	"fmt"
	"strings"
	"unicode"

	"verdict-lab/internal/domain/models"
)

// MaxInputLength caps the analyzed input; longer input is truncated
const MaxInputLength = 2048

var refangReplacer = strings.NewReplacer(
	"hxxps://", "https://",
	"hxxp://", "http://",
	"hXXps://", "https://",
	"hXXp://", "http://",
	"[.]", ".",
	"(.)", ".",
	"{.}", ".",
	"[dot]", ".",
	"(dot)", ".",
	"[:]", ":",
	"[://]", "://",
)

// Preprocessor implements sanitization and de-obfuscation
type Preprocessor struct{}

// New returns a Preprocessor
func New() *Preprocessor {
	return &Preprocessor{}
}

// Sanitize trims the input, removes invisible characters and undoes
// common defanging
func (p *Preprocessor) Sanitize(raw string) models.SanitizeResult {
	var heuristics []models.HeuristicResult

	s := strings.TrimSpace(raw)

	cleaned, hidden := stripInvisible(s)
	if hidden > 0 {
		heuristics = append(heuristics, models.Warn(
			"Hidden Characters",
			fmt.Sprintf("Removed %d invisible or control characters from the input", hidden),
			10,
		))
	}
	s = cleaned

	if refanged := refangReplacer.Replace(s); refanged != s {
		heuristics = append(heuristics, models.Warn(
			"Defanged Indicator",
			"Input was written in defanged form, which is typical of shared threat indicators",
			5,
		))
		s = refanged
	}

	if len(s) > MaxInputLength {
		heuristics = append(heuristics, models.Warn(
			"Excessive Length",
			fmt.Sprintf("Input is %d characters long and was truncated to %d", len(s), MaxInputLength),
			10,
		))
		s = truncate(s, MaxInputLength)
	}

	if len(heuristics) == 0 {
		heuristics = append(heuristics, models.Pass("Input Sanitization", "Input contains no hidden or defanged content", 0))
	}

	return models.SanitizeResult{Sanitized: s, Heuristics: heuristics}
}

// stripInvisible drops control and zero-width characters
func stripInvisible(s string) (string, int) {
	removed := 0
	out := strings.Map(func(r rune) rune {
		switch {
		case r == '\u200b', r == '\u200c', r == '\u200d', r == '\u2060', r == '\ufeff', r == '\u00ad':
			removed++
			return -1
		case unicode.IsControl(r):
			removed++
			return -1
		case unicode.Is(unicode.Bidi_Control, r):
			removed++
			return -1
		}
		return r
	}, s)
	return out, removed
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
