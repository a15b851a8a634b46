package handlers

import (
	"net/http"

	"verdict-lab/internal/domain/services/correlation"
	"verdict-lab/pkg/logger"
)

// CorrelationStatsProvider reports how often each correlation rule fired
type CorrelationStatsProvider interface {
	Stats() correlation.Stats
}

// CorrelationHandler handles correlation endpoints
type CorrelationHandler struct {
	engine CorrelationStatsProvider
	logger *logger.Logger
}

// NewCorrelationHandler creates a new CorrelationHandler
func NewCorrelationHandler(engine CorrelationStatsProvider, log *logger.Logger) *CorrelationHandler {
	return &CorrelationHandler{
		engine: engine,
		logger: log.WithComponent("correlation"),
	}
}

// Stats handles GET /api/v1/correlation/stats
func (h *CorrelationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil {
		respondJSON(w, http.StatusOK, correlation.Stats{ByRule: map[string]int{}})
		return
	}
	respondJSON(w, http.StatusOK, h.engine.Stats())
}
