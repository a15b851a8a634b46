package heuristics

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"verdict-lab/internal/domain/models"
)

// brand names in a stable order so matches never depend on map iteration
var brandNames = slices.Sorted(maps.Keys(brandDomains))

// EvaluateDomainReputation checks the host against static reputation lists
func (s *Suite) EvaluateDomainReputation(host string) models.Evaluation {
	var ev models.Evaluation
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	registrable := registrableDomain(host)

	if tld := topLevel(host); suspiciousTLDs[tld] {
		ev.Add(models.Warn("Suspicious TLD", fmt.Sprintf("The .%s TLD is heavily used for abuse", tld), 15))
	}

	if urlShorteners[registrable] {
		ev.Add(models.Warn("URL Shortener", fmt.Sprintf("%s hides the final destination", registrable), 10))
	}

	for _, suffix := range freeHostingSuffixes {
		if withinSuffix(host, suffix) {
			ev.Add(models.Warn("Free Hosting Provider", fmt.Sprintf("Hosted under %s", suffix), 10))
			break
		}
	}

	if brand, ok := impersonatedBrand(host, registrable); ok {
		ev.Add(models.Fail(
			"Brand Impersonation",
			fmt.Sprintf("Host mentions %s but is not under %s", brand, brandDomains[brand]),
			25,
		))
	}

	if len(ev.Heuristics) == 0 {
		ev.Add(models.Pass("Domain Reputation", "Host is not on any static reputation list", 0))
	}
	return ev
}

// impersonatedBrand finds a brand name used in the host outside the brand's
// own registrable domain
func impersonatedBrand(host, registrable string) (string, bool) {
	for _, brand := range brandNames {
		if registrable == brandDomains[brand] {
			return "", false
		}
	}
	flat := strings.NewReplacer("-", "", ".", "").Replace(host)
	for _, brand := range brandNames {
		if len(brand) >= 5 && strings.Contains(flat, brand) {
			return brand, true
		}
	}
	return "", false
}
