package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"verdict-lab/internal/sources"
	"verdict-lab/pkg/logger"
)

// SourceLister exposes the registered intelligence adapters
type SourceLister interface {
	Stats() sources.RegistryStats
}

// SourcesHandler handles source endpoints
type SourcesHandler struct {
	registry SourceLister
	logger   *logger.Logger
}

// NewSourcesHandler creates a new SourcesHandler
func NewSourcesHandler(registry SourceLister, log *logger.Logger) *SourcesHandler {
	return &SourcesHandler{
		registry: registry,
		logger:   log.WithComponent("sources"),
	}
}

// List handles GET /api/v1/sources
func (h *SourcesHandler) List(w http.ResponseWriter, r *http.Request) {
	stats := h.registry.Stats()
	respondJSON(w, http.StatusOK, map[string]any{
		"data":       stats.Sources,
		"total":      stats.Total,
		"configured": stats.Configured,
	})
}

// Get handles GET /api/v1/sources/{slug}
func (h *SourcesHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	for _, s := range h.registry.Stats().Sources {
		if s.Slug == slug {
			respondJSON(w, http.StatusOK, s)
			return
		}
	}

	respondError(w, http.StatusNotFound, "source not found")
}
