// Package app wires configuration, intelligence sources and the analysis
// pipeline together for the command entrypoints.
package app

import (
	"verdict-lab/internal/config"
	"verdict-lab/internal/domain/services"
	"verdict-lab/internal/domain/services/correlation"
	"verdict-lab/internal/domain/services/heuristics"
	"verdict-lab/internal/domain/services/preprocess"
	"verdict-lab/internal/sources"
	"verdict-lab/internal/sources/free/abusech"
	"verdict-lab/internal/sources/free/analysis"
	"verdict-lab/internal/sources/free/archive"
	"verdict-lab/internal/sources/free/ip"
	"verdict-lab/internal/sources/free/phishing"
	"verdict-lab/internal/sources/free/whois"
	"verdict-lab/internal/sources/premium"
	"verdict-lab/pkg/logger"
)

// Connectors are the concrete adapters behind the intelligence slots
type Connectors struct {
	AbuseIPDB    *ip.AbuseIPDBConnector
	IPAPI        *ip.IPAPIConnector
	RDAP         *whois.RDAPConnector
	VirusTotal   *premium.VirusTotalConnector
	URLScan      *analysis.URLScanConnector
	Wayback      *archive.WaybackConnector
	URLhaus      *abusech.URLhausConnector
	ThreatFox    *abusech.ThreatFoxConnector
	SafeBrowsing *phishing.SafeBrowsingConnector
}

// Pipeline bundles the configured analyzer with its source registry
type Pipeline struct {
	Registry    *sources.Registry
	Connectors  Connectors
	Correlation *correlation.Engine
	Analyzer    *services.Analyzer
}

// NewConnectors creates every adapter
func NewConnectors(log *logger.Logger) Connectors {
	return Connectors{
		AbuseIPDB:    ip.NewAbuseIPDBConnector(log),
		IPAPI:        ip.NewIPAPIConnector(log),
		RDAP:         whois.NewRDAPConnector(log),
		VirusTotal:   premium.NewVirusTotalConnector(log),
		URLScan:      analysis.NewURLScanConnector(log),
		Wayback:      archive.NewWaybackConnector(log),
		URLhaus:      abusech.NewURLhausConnector(log),
		ThreatFox:    abusech.NewThreatFoxConnector(log),
		SafeBrowsing: phishing.NewSafeBrowsingConnector(log),
	}
}

// Register adds the adapters to the registry
func (c Connectors) Register(registry *sources.Registry, log *logger.Logger) {
	adapters := []sources.Adapter{
		c.AbuseIPDB, c.IPAPI, c.RDAP, c.VirusTotal, c.URLScan,
		c.Wayback, c.URLhaus, c.ThreatFox, c.SafeBrowsing,
	}
	for _, a := range adapters {
		if err := registry.Register(a); err != nil {
			log.Warn().Err(err).Str("slug", a.Slug()).Msg("failed to register source")
		}
	}
}

// IntelligenceSources fills the gatherer slots. Adapters that are disabled
// or missing a required key leave their slot empty.
func (c Connectors) IntelligenceSources(log *logger.Logger) services.IntelligenceSources {
	var src services.IntelligenceSources

	if c.AbuseIPDB.IsConfigured() {
		src.AbuseDB = c.AbuseIPDB
	}
	if c.IPAPI.IsConfigured() {
		src.Geolocation = c.IPAPI
	}
	if c.RDAP.IsConfigured() {
		src.Whois = c.RDAP
	}
	if c.VirusTotal.IsConfigured() {
		src.MalwareScan = c.VirusTotal
	}
	if c.URLScan.IsConfigured() {
		src.URLScan = c.URLScan
	}
	if c.Wayback.IsConfigured() {
		src.ArchiveHistory = c.Wayback
	}
	if c.URLhaus.IsConfigured() || c.ThreatFox.IsConfigured() {
		src.DetectionEngines = abusech.NewDetectionEngines(c.URLhaus, c.ThreatFox, log)
	}
	if c.SafeBrowsing.IsConfigured() {
		src.URLIntelligence = c.SafeBrowsing
	}

	return src
}

// NewPipeline builds the analyzer from configuration
func NewPipeline(cfg *config.Config, log *logger.Logger) *Pipeline {
	connectors := NewConnectors(log)
	registry := sources.NewRegistry(log)
	connectors.Register(registry, log)
	registry.ConfigureFromSourcesConfig(cfg.Sources)

	var suiteOpts []heuristics.Option
	if connectors.Wayback.IsConfigured() {
		suiteOpts = append(suiteOpts, heuristics.WithArchive(connectors.Wayback))
	}

	engine := correlation.NewEngine(log)
	analyzer := services.NewAnalyzer(services.AnalyzerDeps{
		Preprocessor: preprocess.New(),
		Heuristics:   heuristics.New(log, suiteOpts...),
		Correlation:  engine,
		Sources:      connectors.IntelligenceSources(log),
	}, services.AnalyzerConfig{
		GatherDeadline: cfg.Analysis.GatherDeadline,
		EngineName:     cfg.Analysis.EngineName,
		EngineVersion:  cfg.Analysis.EngineVersion,
	}, log)

	return &Pipeline{
		Registry:    registry,
		Connectors:  connectors,
		Correlation: engine,
		Analyzer:    analyzer,
	}
}
