package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync/atomic"

	"verdict-lab/internal/domain/models"
)

// fakePreprocessor trims input and reports no obfuscation
type fakePreprocessor struct {
	evidence []models.HeuristicResult
	panics   bool
}

func (p fakePreprocessor) Sanitize(raw string) models.SanitizeResult {
	if p.panics {
		panic("sanitizer exploded")
	}
	return models.SanitizeResult{Sanitized: strings.TrimSpace(raw), Heuristics: p.evidence}
}

func (p fakePreprocessor) AnalyzeObfuscation(s string) models.ObfuscationResult {
	return models.ObfuscationResult{Level: models.ObfuscationNone, DecodedContent: s}
}

// fakeSuite returns one named item per evaluator unless a hook overrides it
type fakeSuite struct {
	ip         func(string) (models.Evaluation, error)
	domain     func(string) (models.Evaluation, error)
	reputation func(string) *models.HeuristicResult
	homoglyph  func(string) *models.HeuristicResult
	archive    func(*models.ArchiveHistory) (*models.HeuristicResult, error)

	homoglyphCalls atomic.Int32
}

func single(name string, impact int) models.Evaluation {
	return models.NewEvaluation(models.Warn(name, "", impact))
}

func (f *fakeSuite) EvaluateIP(_ context.Context, ip string) (models.Evaluation, error) {
	if f.ip != nil {
		return f.ip(ip)
	}
	return models.Evaluation{}, nil
}

func (f *fakeSuite) EvaluateIDN(string) models.Evaluation { return single("idn", 1) }

func (f *fakeSuite) EvaluateDomainReputation(string) models.Evaluation {
	return single("domain_reputation", 1)
}

func (f *fakeSuite) ReputationSignal(host string) *models.HeuristicResult {
	if f.reputation != nil {
		return f.reputation(host)
	}
	return nil
}

func (f *fakeSuite) EvaluateHomoglyphs(host string) *models.HeuristicResult {
	f.homoglyphCalls.Add(1)
	if f.homoglyph != nil {
		return f.homoglyph(host)
	}
	return nil
}

func (f *fakeSuite) EvaluateDomain(_ context.Context, host string) (models.Evaluation, error) {
	if f.domain != nil {
		return f.domain(host)
	}
	return single("domain", 1), nil
}

func (f *fakeSuite) ArchiveMaturity(_ context.Context, _ string, h *models.ArchiveHistory) (*models.HeuristicResult, error) {
	if f.archive != nil {
		return f.archive(h)
	}
	return nil, nil
}

func (f *fakeSuite) EvaluateURL(context.Context, string) (models.Evaluation, error) {
	return single("url", 1), nil
}

func (f *fakeSuite) EvaluatePath(string, string) models.Evaluation { return single("path", 1) }

func (f *fakeSuite) EvaluatePort(*url.URL) models.Evaluation { return single("port", 1) }

func (f *fakeSuite) EvaluateRedirects(*url.URL) models.Evaluation { return single("redirect", 1) }

func (f *fakeSuite) EvaluateMobileThreats(*url.URL) models.Evaluation { return single("mobile", 1) }

// fakeCorrelation appends a fixed item and boost
type fakeCorrelation struct {
	boost int
}

func (c fakeCorrelation) Apply(ev []models.HeuristicResult, _ CorrelationContext) CorrelationResult {
	if c.boost == 0 {
		return CorrelationResult{Evidence: ev}
	}
	out := append([]models.HeuristicResult(nil), ev...)
	out = append(out, models.Fail("correlated", "", c.boost))
	return CorrelationResult{Evidence: out, ScoreBoost: c.boost}
}

var errSourceDown = errors.New("source down")

// source fakes; a nil result with a nil error still counts as "no data"

type abuseFake struct {
	report *models.AbuseReport
	err    error
	calls  *atomic.Int32
}

func (f abuseFake) CheckIP(context.Context, string) (*models.AbuseReport, error) {
	if f.calls != nil {
		f.calls.Add(1)
	}
	return f.report, f.err
}

type geoFake struct {
	geo *models.GeoLocation
	err error
}

func (f geoFake) Locate(context.Context, string) (*models.GeoLocation, error) { return f.geo, f.err }

type whoisFake struct {
	record *models.WhoisRecord
	err    error
	calls  *atomic.Int32
}

func (f whoisFake) Lookup(context.Context, string) (*models.WhoisRecord, error) {
	if f.calls != nil {
		f.calls.Add(1)
	}
	return f.record, f.err
}

type scannerFake struct{ err error }

func (f scannerFake) Lookup(context.Context, string, string) (*models.MalwareScan, error) {
	return nil, f.err
}

type urlScanFake struct{ err error }

func (f urlScanFake) Search(context.Context, string) (*models.URLScanResult, error) {
	return nil, f.err
}

type archiveFake struct {
	history *models.ArchiveHistory
	err     error
}

func (f archiveFake) History(context.Context, string) (*models.ArchiveHistory, error) {
	return f.history, f.err
}

type enginesFake struct{ err error }

func (f enginesFake) Run(context.Context, string) ([]models.DetectionEngineResult, error) {
	return nil, f.err
}

type urlIntelFake struct{ err error }

func (f urlIntelFake) CheckHost(context.Context, string) ([]models.URLThreatMatch, error) {
	return nil, f.err
}

type panicGeo struct{}

func (panicGeo) Locate(context.Context, string) (*models.GeoLocation, error) { panic("geo exploded") }

// hangingAbuse ignores its context and only returns once released
type hangingAbuse struct {
	release <-chan struct{}
}

func (h hangingAbuse) CheckIP(context.Context, string) (*models.AbuseReport, error) {
	<-h.release
	return &models.AbuseReport{AbuseConfidenceScore: 100}, nil
}

func failingSources() IntelligenceSources {
	return IntelligenceSources{
		AbuseDB:          abuseFake{err: errSourceDown},
		Geolocation:      geoFake{err: errSourceDown},
		Whois:            whoisFake{err: errSourceDown},
		MalwareScan:      scannerFake{err: errSourceDown},
		URLScan:          urlScanFake{err: errSourceDown},
		ArchiveHistory:   archiveFake{err: errSourceDown},
		DetectionEngines: enginesFake{err: errSourceDown},
		URLIntelligence:  urlIntelFake{err: errSourceDown},
	}
}
