package streaming

import (
	"context"

	"verdict-lab/internal/domain/models"
)

// EventPublisher sends analysis events to a stream
type EventPublisher interface {
	PublishAnalysisEvent(ctx context.Context, event *AnalysisEvent) error
}

// ReportPublisher implements services.AlertPublisher on top of an event stream
type ReportPublisher struct {
	publisher EventPublisher
}

// NewReportPublisher creates a new publisher adapter
func NewReportPublisher(publisher EventPublisher) *ReportPublisher {
	return &ReportPublisher{publisher: publisher}
}

// PublishHighRisk publishes a high_risk event for the report
func (p *ReportPublisher) PublishHighRisk(ctx context.Context, report *models.AnalysisReport) error {
	return p.publisher.PublishAnalysisEvent(ctx, NewAnalysisEvent(EventTypeHighRisk, report))
}
