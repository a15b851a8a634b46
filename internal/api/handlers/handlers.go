package handlers

import (
	"verdict-lab/internal/domain/services"
	"verdict-lab/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health      *HealthHandler
	Analysis    *AnalysisHandler
	Sources     *SourcesHandler
	Correlation *CorrelationHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Analyzer    AnalysisRunner
	Notifier    services.Notifier
	Sources     SourceLister
	Correlation CorrelationStatsProvider
	Checks      []ReadinessCheck
	Version     string
	Logger      *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(deps.Version, deps.Checks, deps.Logger),
		Analysis:    NewAnalysisHandler(deps.Analyzer, deps.Notifier, deps.Logger),
		Sources:     NewSourcesHandler(deps.Sources, deps.Logger),
		Correlation: NewCorrelationHandler(deps.Correlation, deps.Logger),
	}
}
