package streaming

import (
	"time"

	"github.com/google/uuid"

	"verdict-lab/internal/domain/models"
)

// EventType represents the type of analysis event
type EventType string

const (
	EventTypeHighRisk EventType = "high_risk"
)

// AnalysisEvent is published when an analysis crosses the alert threshold
type AnalysisEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	ReportID   string           `json:"report_id"`
	InputType  models.InputType `json:"input_type"`
	Input      string           `json:"input"`
	RiskScore  int              `json:"risk_score"`
	RiskLevel  models.RiskLevel `json:"risk_level"`
	Confidence int              `json:"confidence"`
	Summary    string           `json:"summary"`

	// Names of the failing evidence items
	Findings []string `json:"findings,omitempty"`

	Engine        string `json:"engine,omitempty"`
	EngineVersion string `json:"engine_version,omitempty"`
}

// NewAnalysisEvent creates an event from a finished report
func NewAnalysisEvent(eventType EventType, report *models.AnalysisReport) *AnalysisEvent {
	var findings []string
	for _, h := range report.Evidence {
		if h.Status == models.EvidenceFail {
			findings = append(findings, h.Name)
		}
	}

	return &AnalysisEvent{
		ID:            uuid.New().String(),
		Type:          eventType,
		Timestamp:     time.Now().UTC(),
		ReportID:      report.ID.String(),
		InputType:     report.Metadata.InputType,
		Input:         report.Input,
		RiskScore:     report.RiskScore,
		RiskLevel:     report.RiskLevel,
		Confidence:    report.Confidence,
		Summary:       report.Summary,
		Findings:      findings,
		Engine:        report.Metadata.Engine,
		EngineVersion: report.Metadata.EngineVersion,
	}
}
