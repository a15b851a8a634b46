package models

import "time"

// IntelligenceSlot names one source lookup in a gather run
type IntelligenceSlot string

const (
	SlotAbuseDB          IntelligenceSlot = "abuse_db"
	SlotGeolocation      IntelligenceSlot = "geolocation"
	SlotWhois            IntelligenceSlot = "whois"
	SlotMalwareScan      IntelligenceSlot = "malware_scan"
	SlotURLScan          IntelligenceSlot = "url_scan"
	SlotArchiveHistory   IntelligenceSlot = "archive_history"
	SlotDetectionEngines IntelligenceSlot = "detection_engines"
	SlotURLIntelligence  IntelligenceSlot = "url_intelligence"
)

// IntelligenceBag holds everything gathered from external providers for one
// run. Nil pointers mean the lookup failed, timed out, or was not relevant.
type IntelligenceBag struct {
	AbuseDB          *AbuseReport            `json:"abuse_db"`
	Geolocation      *GeoLocation            `json:"geolocation"`
	Whois            *WhoisRecord            `json:"whois"`
	MalwareScan      *MalwareScan            `json:"malware_scan"`
	URLScan          *URLScanResult          `json:"url_scan"`
	ArchiveHistory   *ArchiveHistory         `json:"archive_history"`
	DetectionEngines []DetectionEngineResult `json:"detection_engines"`
	URLIntelligence  []URLThreatMatch        `json:"url_intelligence"`
}

// NewIntelligenceBag returns a bag with empty collections
func NewIntelligenceBag() IntelligenceBag {
	return IntelligenceBag{
		DetectionEngines: []DetectionEngineResult{},
		URLIntelligence:  []URLThreatMatch{},
	}
}

// AbuseReport is an AbuseIPDB check result
type AbuseReport struct {
	IPAddress            string     `json:"ip_address"`
	IsPublic             bool       `json:"is_public"`
	IsWhitelisted        bool       `json:"is_whitelisted"`
	AbuseConfidenceScore int        `json:"abuse_confidence_score"`
	CountryCode          string     `json:"country_code,omitempty"`
	UsageType            string     `json:"usage_type,omitempty"`
	ISP                  string     `json:"isp,omitempty"`
	Domain               string     `json:"domain,omitempty"`
	IsTor                bool       `json:"is_tor"`
	TotalReports         int        `json:"total_reports"`
	NumDistinctUsers     int        `json:"num_distinct_users"`
	LastReportedAt       *time.Time `json:"last_reported_at,omitempty"`
}

// GeoLocation is an ip-api.com lookup result
type GeoLocation struct {
	Country     string  `json:"country,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
	Region      string  `json:"region,omitempty"`
	City        string  `json:"city,omitempty"`
	Zip         string  `json:"zip,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Timezone    string  `json:"timezone,omitempty"`
	ISP         string  `json:"isp,omitempty"`
	Org         string  `json:"org,omitempty"`
	AS          string  `json:"as,omitempty"`
	Mobile      bool    `json:"mobile"`
	Proxy       bool    `json:"proxy"`
	Hosting     bool    `json:"hosting"`
}

// WhoisRecord carries registration data for a domain
type WhoisRecord struct {
	Domain       string     `json:"domain"`
	Registrar    string     `json:"registrar,omitempty"`
	RegisteredAt time.Time  `json:"registered_at"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	AgeDays      int        `json:"age_days"`
}

// MalwareScan is a multi-engine scan summary (VirusTotal)
type MalwareScan struct {
	Target       string     `json:"target"`
	Kind         string     `json:"kind"`
	Malicious    int        `json:"malicious"`
	Suspicious   int        `json:"suspicious"`
	Harmless     int        `json:"harmless"`
	Undetected   int        `json:"undetected"`
	Reputation   int        `json:"reputation"`
	Permalink    string     `json:"permalink"`
	LastAnalysis *time.Time `json:"last_analysis,omitempty"`
}

// URLScanResult is the most recent public urlscan.io scan of a URL
type URLScanResult struct {
	ScanID     string     `json:"scan_id"`
	URL        string     `json:"url"`
	Domain     string     `json:"domain,omitempty"`
	IP         string     `json:"ip,omitempty"`
	Country    string     `json:"country,omitempty"`
	Server     string     `json:"server,omitempty"`
	ResultURL  string     `json:"result_url,omitempty"`
	Screenshot string     `json:"screenshot,omitempty"`
	Malicious  bool       `json:"malicious"`
	Score      int        `json:"score"`
	ScannedAt  *time.Time `json:"scanned_at,omitempty"`
}

// ArchiveHistory reports whether a host appears in the Wayback Machine
type ArchiveHistory struct {
	HasHistory  bool   `json:"has_history"`
	FirstSeen   string `json:"first_seen,omitempty"` // YYYYMMDDhhmmss
	SnapshotURL string `json:"snapshot_url,omitempty"`
	Message     string `json:"message"`
}

// FirstSeenYear returns the year of the archived snapshot, or 0
func (h *ArchiveHistory) FirstSeenYear() int {
	if h == nil || len(h.FirstSeen) < 4 {
		return 0
	}
	year := 0
	for _, c := range h.FirstSeen[:4] {
		if c < '0' || c > '9' {
			return 0
		}
		year = year*10 + int(c-'0')
	}
	return year
}

// DetectionEngineResult is one blocklist engine's opinion on a target
type DetectionEngineResult struct {
	Engine     string `json:"engine"`
	Detected   bool   `json:"detected"`
	ThreatType string `json:"threat_type,omitempty"`
	Malware    string `json:"malware,omitempty"`
	Confidence int    `json:"confidence"`
	Reference  string `json:"reference,omitempty"`
}

// URLThreatMatch is a Safe Browsing list hit
type URLThreatMatch struct {
	URL          string `json:"url"`
	ThreatType   string `json:"threat_type"`
	PlatformType string `json:"platform_type"`
	Description  string `json:"description"`
}
