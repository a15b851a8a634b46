package correlation

import (
	"verdict-lab/internal/domain/models"
	"verdict-lab/internal/domain/services"
)

// evidence groups the rules look for
var (
	impersonation  = []string{"Brand Impersonation", "Homoglyph Impersonation", "Lookalike Domain", "Mixed Script Homograph"}
	credentialBait = []string{"Credential Harvesting Path", "Phishing Keywords", "Email in Query"}
	obfuscation    = []string{"Base64 Encoded Payload", "Double URL Encoding", "Encoded IP Address", "Escape Sequences", "Hidden Characters"}
	cheapHosting   = []string{"Suspicious TLD", "Free Hosting Provider", "URL Shortener"}
	youngArchive   = []string{"Archive Blindspot", "Short Archive History"}
	payloads       = []string{"Executable Download", "Double Extension", "Mobile Payload", "Enterprise App Install"}
)

// DefaultRules returns the built-in correlation rules
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:        "Multiple Threat Indicators",
			Status:      models.EvidenceFail,
			Description: "Three or more independent checks failed",
			Impact:      15,
			Match: func(ev []models.HeuristicResult, _ services.CorrelationContext) bool {
				return countStatus(ev, models.EvidenceFail) >= 3
			},
		},
		{
			Name:        "Fresh Disposable Domain",
			Status:      models.EvidenceFail,
			Description: "Domain is newly registered and has little or no archive history",
			Impact:      15,
			Match: func(ev []models.HeuristicResult, _ services.CorrelationContext) bool {
				return models.HasEvidence(ev, "Very New Domain", models.EvidenceFail) && anyOf(ev, youngArchive)
			},
		},
		{
			Name:        "Credential Phishing Pattern",
			Status:      models.EvidenceFail,
			Description: "Imitates a known brand while asking for credentials",
			Impact:      20,
			Match: func(ev []models.HeuristicResult, _ services.CorrelationContext) bool {
				return anyOf(ev, impersonation) && anyOf(ev, credentialBait)
			},
		},
		{
			Name:        "Evasive Infrastructure",
			Status:      models.EvidenceFail,
			Description: "Obfuscated input pointing at throwaway hosting",
			Impact:      15,
			Match: func(ev []models.HeuristicResult, _ services.CorrelationContext) bool {
				return anyOf(ev, obfuscation) && anyOf(ev, cheapHosting)
			},
		},
		{
			Name:        "Malware Delivery Pattern",
			Status:      models.EvidenceFail,
			Description: "Downloads a payload from a young or throwaway site",
			Impact:      20,
			Match: func(ev []models.HeuristicResult, cctx services.CorrelationContext) bool {
				return cctx.Type == models.InputTypeURL && anyOf(ev, payloads) &&
					(anyOf(ev, cheapHosting) || anyOf(ev, youngArchive) || models.HasEvidence(ev, "Very New Domain", ""))
			},
		},
		{
			Name:        "Abusive Residential Host",
			Status:      models.EvidenceFail,
			Description: "Reported for abuse and sitting in a consumer address range",
			Impact:      10,
			Match: func(ev []models.HeuristicResult, cctx services.CorrelationContext) bool {
				return cctx.Type == models.InputTypeIP &&
					models.HasEvidence(ev, "IP Reputation Score", models.EvidenceFail) &&
					models.HasEvidence(ev, "Residential Address", "")
			},
		},
		{
			Name:        "Established Trust",
			Status:      models.EvidencePass,
			Description: "Trusted domain with no failing checks",
			Impact:      -10,
			Match: func(ev []models.HeuristicResult, _ services.CorrelationContext) bool {
				return models.HasEvidence(ev, "Trusted Domain", models.EvidencePass) &&
					countStatus(ev, models.EvidenceFail) == 0
			},
		},
	}
}

func countStatus(ev []models.HeuristicResult, status models.EvidenceStatus) int {
	n := 0
	for _, h := range ev {
		if h.Status == status {
			n++
		}
	}
	return n
}

// anyOf reports whether any item carries one of the given names
func anyOf(ev []models.HeuristicResult, names []string) bool {
	for _, name := range names {
		if models.HasEvidence(ev, name, "") {
			return true
		}
	}
	return false
}
