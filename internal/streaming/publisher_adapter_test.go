package streaming

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verdict-lab/internal/domain/models"
)

type recordingPublisher struct {
	events []*AnalysisEvent
	err    error
}

func (r *recordingPublisher) PublishAnalysisEvent(_ context.Context, event *AnalysisEvent) error {
	r.events = append(r.events, event)
	return r.err
}

func testReport() *models.AnalysisReport {
	return &models.AnalysisReport{
		ID:         models.NewReportID(models.InputTypeURL, "http://evil.example/login"),
		Input:      "http://evil.example/login",
		RiskScore:  85,
		RiskLevel:  models.RiskLevelMalicious,
		Confidence: 60,
		Summary:    "Malicious",
		Evidence: []models.HeuristicResult{
			{Name: "Insecure Protocol", Status: models.EvidenceWarn, ScoreImpact: 10},
			{Name: "Credential Harvesting Path", Status: models.EvidenceFail, ScoreImpact: 15},
			{Name: "Known Malware URL", Status: models.EvidenceFail, ScoreImpact: 50},
		},
		Metadata: models.ReportMetadata{InputType: models.InputTypeURL, Engine: "ThreatAnalyzer", EngineVersion: "2.1.0"},
	}
}

func TestNewAnalysisEvent(t *testing.T) {
	report := testReport()
	ev := NewAnalysisEvent(EventTypeHighRisk, report)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, EventTypeHighRisk, ev.Type)
	assert.Equal(t, report.ID.String(), ev.ReportID)
	assert.Equal(t, models.InputTypeURL, ev.InputType)
	assert.Equal(t, 85, ev.RiskScore)
	assert.Equal(t, []string{"Credential Harvesting Path", "Known Malware URL"}, ev.Findings)
	assert.False(t, ev.Timestamp.IsZero())
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "analysis.high_risk.url", Subject("analysis.high_risk", &AnalysisEvent{InputType: models.InputTypeURL}))
	assert.Equal(t, "analysis.high_risk.unknown", Subject("analysis.high_risk", &AnalysisEvent{}))
}

func TestReportPublisher_PublishHighRisk(t *testing.T) {
	rec := &recordingPublisher{}
	p := NewReportPublisher(rec)

	require.NoError(t, p.PublishHighRisk(context.Background(), testReport()))
	require.Len(t, rec.events, 1)
	assert.Equal(t, EventTypeHighRisk, rec.events[0].Type)

	rec.err = errors.New("stream unavailable")
	assert.EqualError(t, p.PublishHighRisk(context.Background(), testReport()), "stream unavailable")
}
