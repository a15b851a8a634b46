package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"verdict-lab/internal/domain/models"
	"verdict-lab/internal/domain/services"
	"verdict-lab/pkg/logger"
)

const maxRequestBody = 64 << 10

// AnalysisRunner runs the analysis pipeline, implemented by services.Analyzer
type AnalysisRunner interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisReport, error)
}

// AnalysisHandler handles analysis requests
type AnalysisHandler struct {
	analyzer AnalysisRunner
	notifier services.Notifier
	logger   *logger.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler. notifier may be nil.
func NewAnalysisHandler(analyzer AnalysisRunner, notifier services.Notifier, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		notifier: notifier,
		logger:   log.WithComponent("analysis-handler"),
	}
}

// AnalyzeRequest is the body of POST /api/v1/analyze
type AnalyzeRequest struct {
	Type  string `json:"type"`
	Input string `json:"input"`
}

// Analyze handles POST /api/v1/analyze
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Input) == "" {
		respondError(w, http.StatusBadRequest, "input is required")
		return
	}

	inputType, ok := models.ParseInputType(req.Type)
	if !ok {
		respondError(w, http.StatusBadRequest, "type must be one of ip, domain, url")
		return
	}

	report, err := h.analyzer.Analyze(r.Context(), models.AnalysisRequest{Type: inputType, Input: req.Input})
	if err != nil {
		var invalid *models.InvalidInputError
		if errors.As(err, &invalid) {
			respondError(w, http.StatusBadRequest, invalid.Error())
			return
		}
		h.logger.WithError(err).Error().Str("type", string(inputType)).Msg("analysis failed")
		respondError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	h.notify(r, report)

	respondJSON(w, http.StatusOK, report)
}

// notify hands the report to the notifier without holding up the response.
// The request context is detached so the alert survives the request.
func (h *AnalysisHandler) notify(r *http.Request, report *models.AnalysisReport) {
	if h.notifier == nil {
		return
	}

	ctx := context.WithoutCancel(r.Context())
	log := h.logger.WithRequestID(middleware.GetReqID(ctx)).WithAnalysis(report.ID.String(), string(report.Metadata.InputType))

	go func() {
		if err := h.notifier.Notify(ctx, report); err != nil {
			log.WithError(err).Warn().Int("risk_score", report.RiskScore).Msg("high risk notification failed")
		}
	}()
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
