package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verdict-lab/internal/domain/models"
	"verdict-lab/pkg/logger"
)

func newTestAnalyzer(suite HeuristicSuite, sources IntelligenceSources, corr CorrelationEngine) *Analyzer {
	return NewAnalyzer(AnalyzerDeps{
		Preprocessor: fakePreprocessor{},
		Heuristics:   suite,
		Correlation:  corr,
		Sources:      sources,
	}, AnalyzerConfig{
		GatherDeadline: time.Second,
		EngineName:     "ThreatAnalyzer",
		EngineVersion:  "test",
	}, logger.Nop())
}

func evidenceNames(ev []models.HeuristicResult) []string {
	out := make([]string, 0, len(ev))
	for _, h := range ev {
		out = append(out, h.Name)
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score int
		want  models.RiskLevel
	}{
		{0, models.RiskLevelSafe},
		{29, models.RiskLevelSafe},
		{30, models.RiskLevelSuspicious},
		{69, models.RiskLevelSuspicious},
		{70, models.RiskLevelMalicious},
		{100, models.RiskLevelMalicious},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %d", tt.score)
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-50))
	assert.Equal(t, 100, ClampScore(500))
	assert.Equal(t, 42, ClampScore(42))
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, 0, Confidence(nil))
	assert.Equal(t, 0, Confidence([]models.HeuristicResult{models.Pass("a", "", 0)}))
	assert.Equal(t, 67, Confidence([]models.HeuristicResult{
		models.Pass("a", "", 0), models.Warn("b", "", 1), models.Fail("c", "", 1),
	}))
}

func TestAnalyze_IPAbuseConfidence(t *testing.T) {
	a := newTestAnalyzer(&fakeSuite{}, IntelligenceSources{
		AbuseDB: abuseFake{report: &models.AbuseReport{IPAddress: "203.0.113.7", AbuseConfidenceScore: 90}},
	}, nil)

	report, err := a.Analyze(context.Background(), models.AnalysisRequest{Type: models.InputTypeIP, Input: "203.0.113.7"})
	require.NoError(t, err)

	require.Len(t, report.Evidence, 1)
	item := report.Evidence[0]
	assert.Equal(t, "IP Reputation Score", item.Name)
	assert.Equal(t, models.EvidenceFail, item.Status)
	assert.Equal(t, 45, item.ScoreImpact)
	assert.Equal(t, 45, report.RiskScore)
	assert.Equal(t, models.RiskLevelSuspicious, report.RiskLevel)
	assert.Equal(t, 100, report.Confidence)
	assert.Equal(t, []string{"abuse_db"}, report.Metadata.SourcesCompleted)
}

func TestAnalyze_IPAbuseBelowThreshold(t *testing.T) {
	for _, conf := range []int{0, 25} {
		a := newTestAnalyzer(&fakeSuite{}, IntelligenceSources{
			AbuseDB: abuseFake{report: &models.AbuseReport{AbuseConfidenceScore: conf}},
		}, nil)
		report, err := a.Analyze(context.Background(), models.AnalysisRequest{Type: models.InputTypeIP, Input: "198.51.100.1"})
		require.NoError(t, err)
		assert.Empty(t, report.Evidence)
		assert.Equal(t, 0, report.Confidence)
	}

	a := newTestAnalyzer(&fakeSuite{}, IntelligenceSources{
		AbuseDB: abuseFake{report: &models.AbuseReport{AbuseConfidenceScore: 60}},
	}, nil)
	report, err := a.Analyze(context.Background(), models.AnalysisRequest{Type: models.InputTypeIP, Input: "198.51.100.1"})
	require.NoError(t, err)
	require.Len(t, report.Evidence, 1)
	assert.Equal(t, models.EvidenceWarn, report.Evidence[0].Status)
	assert.Equal(t, 30, report.Evidence[0].ScoreImpact)
}

func TestAnalyze_VeryNewDomain(t *testing.T) {
	a := newTestAnalyzer(&fakeSuite{}, IntelligenceSources{
		Whois: whoisFake{record: &models.WhoisRecord{Domain: "fresh-login.top", AgeDays: 5}},
	}, nil)

	report, err := a.Analyze(context.Background(), models.AnalysisRequest{Type: models.InputTypeDomain, Input: "fresh-login.top"})
	require.NoError(t, err)

	var found []models.HeuristicResult
	for _, h := range report.Evidence {
		if h.Name == "Very New Domain" {
			found = append(found, h)
		}
	}
	require.Len(t, found, 1)
	assert.Equal(t, 35, found[0].ScoreImpact)
	assert.Equal(t, models.EvidenceFail, found[0].Status)
}

func TestAnalyze_EvidenceOrderForURL(t *testing.T) {
	suite := &fakeSuite{
		archive: func(*models.ArchiveHistory) (*models.HeuristicResult, error) {
			h := models.Warn("archive", "", 1)
			return &h, nil
		},
	}
	a := NewAnalyzer(AnalyzerDeps{
		Preprocessor: fakePreprocessor{evidence: []models.HeuristicResult{models.Pass("Input Sanitization", "", 0)}},
		Heuristics:   suite,
		Sources: IntelligenceSources{
			Whois: whoisFake{record: &models.WhoisRecord{AgeDays: 2}},
		},
	}, AnalyzerConfig{}, logger.Nop())

	report, err := a.Analyze(context.Background(), models.AnalysisRequest{Type: models.InputTypeURL, Input: "https://shop.example/login?x=1"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Input Sanitization",
		"idn", "domain_reputation", "domain",
		"Very New Domain", "archive",
		"url", "path", "port", "redirect", "mobile",
	}, evidenceNames(report.Evidence))
	assert.Equal(t, 35+9, report.RiskScore)
	assert.Equal(t, models.SumImpact(report.Evidence), report.RiskScore)
	assert.Equal(t, int32(1), suite.homoglyphCalls.Load())
}

func TestAnalyze_ReputationSuppressesHomoglyph(t *testing.T) {
	suite := &fakeSuite{
		reputation: func(string) *models.HeuristicResult {
			h := models.Pass("Trusted Domain", "", -20)
			return &h
		},
		homoglyph: func(string) *models.HeuristicResult {
			h := models.Fail("Homoglyph Impersonation", "", 40)
			return &h
		},
	}
	a := newTestAnalyzer(suite, IntelligenceSources{}, nil)

	report, err := a.Analyze(context.Background(), models.AnalysisRequest{Type: models.InputTypeDomain, Input: "google.com"})
	require.NoError(t, err)

	assert.True(t, models.HasEvidence(report.Evidence, "Trusted Domain", models.EvidencePass))
	assert.False(t, models.HasEvidence(report.Evidence, "Homoglyph Impersonation", ""))
	assert.Zero(t, suite.homoglyphCalls.Load())

	suite.reputation = nil
	report, err = a.Analyze(context.Background(), models.AnalysisRequest{Type: models.InputTypeDomain, Input: "g00gle.com"})
	require.NoError(t, err)
	assert.True(t, models.HasEvidence(report.Evidence, "Homoglyph Impersonation", models.EvidenceFail))
	assert.False(t, models.HasEvidence(report.Evidence, "Trusted Domain", ""))
	assert.Equal(t, int32(1), suite.homoglyphCalls.Load())
}

func TestAnalyze_Idempotent(t *testing.T) {
	a := newTestAnalyzer(&fakeSuite{}, IntelligenceSources{
		AbuseDB:     abuseFake{report: &models.AbuseReport{AbuseConfidenceScore: 80}},
		Geolocation: geoFake{geo: &models.GeoLocation{CountryCode: "NL"}},
	}, fakeCorrelation{boost: 5})
	req := models.AnalysisRequest{Type: models.InputTypeIP, Input: "192.0.2.44"}

	first, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)

	first.Metadata.ProcessingTimeMs = 0
	second.Metadata.ProcessingTimeMs = 0
	assert.Equal(t, first, second)
}

func TestAnalyze_AllSourcesFail(t *testing.T) {
	a := newTestAnalyzer(&fakeSuite{}, failingSources(), nil)

	for _, req := range []models.AnalysisRequest{
		{Type: models.InputTypeIP, Input: "198.51.100.20"},
		{Type: models.InputTypeDomain, Input: "example.org"},
		{Type: models.InputTypeURL, Input: "https://example.org/a"},
	} {
		report, err := a.Analyze(context.Background(), req)
		require.NoError(t, err, req.Type)
		assert.Equal(t, models.NewIntelligenceBag(), report.Intelligence, req.Type)
		assert.Empty(t, report.Metadata.SourcesCompleted, req.Type)
		assert.False(t, report.Metadata.DeadlineExceeded, req.Type)
	}
}

func TestAnalyze_InvalidInput(t *testing.T) {
	var calls atomic.Int32
	a := newTestAnalyzer(&fakeSuite{}, IntelligenceSources{
		Whois: whoisFake{calls: &calls},
	}, nil)

	_, err := a.Analyze(context.Background(), models.AnalysisRequest{Type: models.InputTypeURL, Input: "https://"})
	var invalid *models.InvalidInputError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, models.InputTypeURL, invalid.Type)

	_, err = a.Analyze(context.Background(), models.AnalysisRequest{Type: "email", Input: "a@b.c"})
	require.True(t, errors.As(err, &invalid))

	assert.Zero(t, calls.Load(), "no source may be queried for invalid input")
}

func TestAnalyze_FailingCollaboratorsContributeNothing(t *testing.T) {
	suite := &fakeSuite{
		domain: func(string) (models.Evaluation, error) { panic("resolver exploded") },
		archive: func(*models.ArchiveHistory) (*models.HeuristicResult, error) {
			return nil, errors.New("archive down")
		},
	}
	a := NewAnalyzer(AnalyzerDeps{
		Preprocessor: fakePreprocessor{panics: true},
		Heuristics:   suite,
		Sources:      IntelligenceSources{Geolocation: panicGeo{}},
	}, AnalyzerConfig{}, logger.Nop())

	report, err := a.Analyze(context.Background(), models.AnalysisRequest{Type: models.InputTypeDomain, Input: "  example.net "})
	require.NoError(t, err)
	assert.Equal(t, []string{"idn", "domain_reputation"}, evidenceNames(report.Evidence))
	assert.Equal(t, "example.net", report.Metadata.SanitizedInput)
	assert.Equal(t, 2, report.RiskScore)

	report, err = a.Analyze(context.Background(), models.AnalysisRequest{Type: models.InputTypeIP, Input: "198.51.100.9"})
	require.NoError(t, err)
	assert.Nil(t, report.Intelligence.Geolocation)
}

func TestAnalyze_CorrelationBoostIsClamped(t *testing.T) {
	a := newTestAnalyzer(&fakeSuite{}, IntelligenceSources{}, fakeCorrelation{boost: 500})

	report, err := a.Analyze(context.Background(), models.AnalysisRequest{Type: models.InputTypeDomain, Input: "example.com"})
	require.NoError(t, err)
	assert.Equal(t, 100, report.RiskScore)
	assert.Equal(t, models.RiskLevelMalicious, report.RiskLevel)
	assert.True(t, report.Metadata.HasCorrelations)
	assert.Equal(t, "Analysis complete. Verdict: Malicious", report.Summary)

	a = newTestAnalyzer(&fakeSuite{}, IntelligenceSources{}, fakeCorrelation{boost: -500})
	report, err = a.Analyze(context.Background(), models.AnalysisRequest{Type: models.InputTypeDomain, Input: "example.com"})
	require.NoError(t, err)
	assert.Equal(t, 0, report.RiskScore)
	assert.Equal(t, models.RiskLevelSafe, report.RiskLevel)
}
