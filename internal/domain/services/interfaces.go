package services

import (
	"context"
	"net/url"

	"verdict-lab/internal/domain/models"
)

// Preprocessor normalizes raw input before analysis
type Preprocessor interface {
	Sanitize(raw string) models.SanitizeResult
	AnalyzeObfuscation(sanitized string) models.ObfuscationResult
}

// HeuristicSuite bundles the type-specific evaluators the accumulator
// sequences. Context-taking evaluators may do network work and can fail;
// the rest are pure.
type HeuristicSuite interface {
	EvaluateIP(ctx context.Context, ip string) (models.Evaluation, error)

	EvaluateIDN(host string) models.Evaluation
	EvaluateDomainReputation(host string) models.Evaluation
	// ReputationSignal returns nil when the host has no known reputation
	ReputationSignal(host string) *models.HeuristicResult
	// EvaluateHomoglyphs returns nil when the host imitates no known brand
	EvaluateHomoglyphs(host string) *models.HeuristicResult
	EvaluateDomain(ctx context.Context, host string) (models.Evaluation, error)
	// ArchiveMaturity uses the gathered history when present and looks it
	// up otherwise; nil means no signal.
	ArchiveMaturity(ctx context.Context, host string, history *models.ArchiveHistory) (*models.HeuristicResult, error)

	EvaluateURL(ctx context.Context, rawURL string) (models.Evaluation, error)
	EvaluatePath(path, query string) models.Evaluation
	EvaluatePort(u *url.URL) models.Evaluation
	EvaluateRedirects(u *url.URL) models.Evaluation
	EvaluateMobileThreats(u *url.URL) models.Evaluation
}

// CorrelationContext identifies the analyzed input for correlation rules
type CorrelationContext struct {
	Input string
	Type  models.InputType
}

// CorrelationResult is the replacement evidence plus a signed score boost
type CorrelationResult struct {
	Evidence   []models.HeuristicResult
	ScoreBoost int
}

// CorrelationEngine applies cross-evidence rules
type CorrelationEngine interface {
	Apply(evidence []models.HeuristicResult, cctx CorrelationContext) CorrelationResult
}

// Notifier receives finished reports
type Notifier interface {
	Notify(ctx context.Context, report *models.AnalysisReport) error
}

// Source lookups, one per intelligence slot. An error means "no data".

type AbuseLookup interface {
	CheckIP(ctx context.Context, ip string) (*models.AbuseReport, error)
}

type GeoLookup interface {
	Locate(ctx context.Context, ip string) (*models.GeoLocation, error)
}

type WhoisLookup interface {
	Lookup(ctx context.Context, host string) (*models.WhoisRecord, error)
}

type MalwareScanner interface {
	Lookup(ctx context.Context, target, kind string) (*models.MalwareScan, error)
}

type URLScanSearcher interface {
	Search(ctx context.Context, rawURL string) (*models.URLScanResult, error)
}

type ArchiveLookup interface {
	History(ctx context.Context, host string) (*models.ArchiveHistory, error)
}

type DetectionEngineRunner interface {
	Run(ctx context.Context, target string) ([]models.DetectionEngineResult, error)
}

type URLIntelligenceLookup interface {
	CheckHost(ctx context.Context, host string) ([]models.URLThreatMatch, error)
}

// IntelligenceSources holds the adapters the gatherer may call. A nil
// field is never queried.
type IntelligenceSources struct {
	AbuseDB          AbuseLookup
	Geolocation      GeoLookup
	Whois            WhoisLookup
	MalwareScan      MalwareScanner
	URLScan          URLScanSearcher
	ArchiveHistory   ArchiveLookup
	DetectionEngines DetectionEngineRunner
	URLIntelligence  URLIntelligenceLookup
}
