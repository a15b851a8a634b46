package heuristics

import (
	"fmt"
	"math"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/net/idna"

	"verdict-lab/internal/domain/models"
)

// confusables folds look-alike characters onto the ASCII letter they imitate
var confusables = strings.NewReplacer(
	// multi-character tricks first
	"rn", "m", "vv", "w", "cl", "d",
	// digits
	"0", "o", "1", "l", "3", "e", "4", "a", "5", "s", "7", "t", "8", "b",
	// Cyrillic
	"а", "a", "е", "e", "о", "o", "р", "p", "с", "c", "у", "y", "х", "x", "і", "i", "ј", "j", "ԁ", "d", "ѕ", "s",
	// Greek
	"α", "a", "ο", "o", "ρ", "p", "ν", "v", "ι", "i", "κ", "k",
	// Latin look-alikes
	"ı", "i", "ɡ", "g", "ł", "l",
)

// EvaluateHomoglyphs looks for a registrable domain that imitates a known
// brand, either with confusable characters or a small edit distance. It
// returns nil when no brand is imitated.
func (s *Suite) EvaluateHomoglyphs(host string) *models.HeuristicResult {
	ascii, err := idna.Lookup.ToASCII(strings.ToLower(strings.TrimSuffix(host, ".")))
	if err != nil {
		ascii = strings.ToLower(host)
	}
	registrable := registrableDomain(ascii)
	for _, brand := range brandNames {
		if registrable == brandDomains[brand] {
			return nil
		}
	}

	display, err := idna.Lookup.ToUnicode(registrable)
	if err != nil {
		display = registrable
	}
	label, suffix, _ := strings.Cut(display, ".")
	folded := confusables.Replace(label)

	for _, brand := range brandNames {
		if folded == brand && label != brand {
			h := models.Fail(
				"Homoglyph Impersonation",
				fmt.Sprintf("%s uses look-alike characters to imitate %s", display, brandDomains[brand]),
				40,
			)
			return &h
		}
	}

	candidate := folded + "." + suffix
	for _, brand := range brandNames {
		if len(brand) < 5 {
			continue
		}
		target := brandDomains[brand]
		if d := fuzzy.LevenshteinDistance(candidate, target); d > 0 && d <= editThreshold(len(target)) {
			h := models.Fail(
				"Lookalike Domain",
				fmt.Sprintf("%s is %d edit(s) away from %s", display, d, target),
				30,
			)
			return &h
		}
	}
	return nil
}

// editThreshold scales the allowed edit distance with the domain length
func editThreshold(n int) int {
	switch {
	case n <= 11:
		return 1
	case n <= 15:
		return 2
	default:
		return int(math.Ceil(float64(n) * 0.15))
	}
}
