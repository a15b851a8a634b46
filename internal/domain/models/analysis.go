package models

import (
	"strings"

	"github.com/google/uuid"
)

// InputType is the declared kind of the analyzed input
type InputType string

const (
	InputTypeIP     InputType = "ip"
	InputTypeDomain InputType = "domain"
	InputTypeURL    InputType = "url"
)

// Valid reports whether t is a supported input type
func (t InputType) Valid() bool {
	switch t {
	case InputTypeIP, InputTypeDomain, InputTypeURL:
		return true
	}
	return false
}

// ParseInputType normalizes a user supplied type name
func ParseInputType(s string) (InputType, bool) {
	t := InputType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// RiskLevel is the classified verdict
type RiskLevel string

const (
	RiskLevelSafe       RiskLevel = "Safe"
	RiskLevelSuspicious RiskLevel = "Suspicious"
	RiskLevelMalicious  RiskLevel = "Malicious"
)

// ObfuscationLevel grades how heavily the raw input was encoded
type ObfuscationLevel string

const (
	ObfuscationNone   ObfuscationLevel = "none"
	ObfuscationLow    ObfuscationLevel = "low"
	ObfuscationMedium ObfuscationLevel = "medium"
	ObfuscationHigh   ObfuscationLevel = "high"
)

// AnalysisRequest is the immutable input to the pipeline
type AnalysisRequest struct {
	Type  InputType `json:"type"`
	Input string    `json:"input"`
}

// AnalysisReport is the result of one analysis run
type AnalysisReport struct {
	ID           uuid.UUID         `json:"id"`
	Input        string            `json:"input"`
	RiskScore    int               `json:"risk_score"`
	RiskLevel    RiskLevel         `json:"risk_level"`
	Confidence   int               `json:"confidence"`
	Evidence     []HeuristicResult `json:"evidence"`
	Intelligence IntelligenceBag   `json:"intelligence"`
	Summary      string            `json:"summary"`
	Metadata     ReportMetadata    `json:"metadata"`
}

// ReportMetadata describes how a report was produced
type ReportMetadata struct {
	InputType        InputType        `json:"input_type"`
	SanitizedInput   string           `json:"sanitized_input"`
	AnalyzedInput    string           `json:"analyzed_input"`
	ObfuscationLevel ObfuscationLevel `json:"obfuscation_level"`
	Engine           string           `json:"engine"`
	EngineVersion    string           `json:"engine_version"`
	HasCorrelations  bool             `json:"has_correlations"`
	SourcesQueried   []string         `json:"sources_queried"`
	SourcesCompleted []string         `json:"sources_completed"`
	DeadlineExceeded bool             `json:"deadline_exceeded"`
	ProcessingTimeMs int64            `json:"processing_time_ms"`
}

// reportNamespace scopes name-based report IDs
var reportNamespace = uuid.MustParse("5b0f8a52-3c1e-4d8e-9a57-0f6b2c7d9e14")

// NewReportID derives a stable report ID from the request, so repeated
// analyses of the same input share an ID.
func NewReportID(t InputType, input string) uuid.UUID {
	return uuid.NewSHA1(reportNamespace, []byte(string(t)+":"+input))
}
