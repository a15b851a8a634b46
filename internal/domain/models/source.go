package models

// SourceCategory represents the category of an intelligence source
type SourceCategory string

const (
	SourceCategoryAbuseCH     SourceCategory = "abuse_ch"
	SourceCategoryPhishing    SourceCategory = "phishing"
	SourceCategoryIPRep       SourceCategory = "ip_reputation"
	SourceCategoryGeolocation SourceCategory = "geolocation"
	SourceCategoryRegistry    SourceCategory = "registry"
	SourceCategoryArchive     SourceCategory = "archive"
	SourceCategoryAnalysis    SourceCategory = "analysis"
	SourceCategoryPremium     SourceCategory = "premium"
)

// SourceStatus represents the current status of a source
type SourceStatus string

const (
	SourceStatusActive       SourceStatus = "active"
	SourceStatusDisabled     SourceStatus = "disabled"
	SourceStatusUnconfigured SourceStatus = "unconfigured"
)

// SourceInfo describes a registered source adapter
type SourceInfo struct {
	Slug           string         `json:"slug"`
	Name           string         `json:"name"`
	Category       SourceCategory `json:"category"`
	Status         SourceStatus   `json:"status"`
	RequiresAPIKey bool           `json:"requires_api_key"`
	HasAPIKey      bool           `json:"has_api_key"`
}
