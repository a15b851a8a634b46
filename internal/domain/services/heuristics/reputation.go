package heuristics

import (
	"fmt"

	"verdict-lab/internal/domain/models"
)

// ReputationSignal returns a trust signal for well known domains and nil for
// everything else
func (s *Suite) ReputationSignal(host string) *models.HeuristicResult {
	registrable := registrableDomain(host)

	if trustedDomains[registrable] {
		h := models.Pass("Trusted Domain", fmt.Sprintf("%s is a widely trusted domain", registrable), -20)
		return &h
	}
	for _, brand := range brandNames {
		if brandDomains[brand] == registrable {
			h := models.Pass("Known Brand Domain", fmt.Sprintf("%s is the official domain of %s", registrable, brand), -10)
			return &h
		}
	}
	return nil
}
