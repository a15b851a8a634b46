package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"verdict-lab/internal/domain/models"
	"verdict-lab/pkg/logger"
)

// AnalyzerConfig holds pipeline settings
type AnalyzerConfig struct {
	GatherDeadline time.Duration
	EngineName     string
	EngineVersion  string
}

// AnalyzerDeps are the collaborators wired into the pipeline
type AnalyzerDeps struct {
	Preprocessor Preprocessor
	Heuristics   HeuristicSuite
	Correlation  CorrelationEngine
	Sources      IntelligenceSources
}

// Analyzer runs the full analysis pipeline: preprocess, gather, accumulate,
// correlate, classify
type Analyzer struct {
	preprocessor Preprocessor
	gatherer     *Gatherer
	accumulator  *Accumulator
	correlation  CorrelationEngine
	cfg          AnalyzerConfig
	logger       *logger.Logger
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(deps AnalyzerDeps, cfg AnalyzerConfig, log *logger.Logger) *Analyzer {
	if cfg.EngineName == "" {
		cfg.EngineName = "ThreatAnalyzer"
	}
	return &Analyzer{
		preprocessor: deps.Preprocessor,
		gatherer:     NewGatherer(deps.Sources, cfg.GatherDeadline, log),
		accumulator:  NewAccumulator(deps.Heuristics, log),
		correlation:  deps.Correlation,
		cfg:          cfg,
		logger:       log.WithComponent("analyzer"),
	}
}

// Analyze classifies one input. The only error it returns is
// *models.InvalidInputError, raised before any source is queried.
func (a *Analyzer) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisReport, error) {
	start := time.Now()

	if !req.Type.Valid() {
		return nil, &models.InvalidInputError{Type: req.Type, Input: req.Input, Reason: "unsupported input type"}
	}

	id := models.NewReportID(req.Type, req.Input)
	log := a.logger.WithAnalysis(id.String(), string(req.Type))
	log.Debug().Str("input", req.Input).Msg("analysis started")

	// 1. Preprocess
	sanitized, obfuscation := a.preprocess(req.Input)
	analyzed := sanitized.Sanitized
	if obfuscation.Level == models.ObfuscationHigh {
		analyzed = obfuscation.DecodedContent
	}
	preliminary := make([]models.HeuristicResult, 0, len(sanitized.Heuristics)+len(obfuscation.Heuristics))
	preliminary = append(preliminary, sanitized.Heuristics...)
	preliminary = append(preliminary, obfuscation.Heuristics...)

	if req.Type == models.InputTypeURL {
		if _, err := ParseTargetURL(analyzed); err != nil {
			return nil, &models.InvalidInputError{Type: req.Type, Input: req.Input, Reason: "unparsable URL", Err: err}
		}
	}

	// 2. Gather intelligence
	gathered := a.gatherer.Gather(ctx, req.Type, analyzed)

	// 3. Accumulate evidence
	acc, err := a.accumulator.Accumulate(ctx, req.Type, analyzed, preliminary, &gathered.Bag)
	if err != nil {
		return nil, err
	}

	// 4. Correlate and classify
	corr := a.correlate(acc.Evidence, CorrelationContext{Input: req.Input, Type: req.Type})
	score := ClampScore(acc.Score + corr.ScoreBoost)
	level := Classify(score)

	report := &models.AnalysisReport{
		ID:           id,
		Input:        req.Input,
		RiskScore:    score,
		RiskLevel:    level,
		Confidence:   Confidence(corr.Evidence),
		Evidence:     corr.Evidence,
		Intelligence: gathered.Bag,
		Summary:      fmt.Sprintf("Analysis complete. Verdict: %s", level),
		Metadata: models.ReportMetadata{
			InputType:        req.Type,
			SanitizedInput:   sanitized.Sanitized,
			AnalyzedInput:    analyzed,
			ObfuscationLevel: obfuscation.Level,
			Engine:           a.cfg.EngineName,
			EngineVersion:    a.cfg.EngineVersion,
			HasCorrelations:  corr.ScoreBoost != 0 || len(corr.Evidence) != len(acc.Evidence),
			SourcesQueried:   gathered.Queried,
			SourcesCompleted: gathered.Completed,
			DeadlineExceeded: gathered.DeadlineExceeded,
		},
	}
	report.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()

	log.Info().
		Int("risk_score", report.RiskScore).
		Str("risk_level", string(report.RiskLevel)).
		Int("evidence", len(report.Evidence)).
		Int64("duration_ms", report.Metadata.ProcessingTimeMs).
		Msg("analysis complete")

	return report, nil
}

// preprocess sanitizes and de-obfuscates raw input. A failing preprocessor
// degrades to the trimmed raw input with no preliminary evidence.
func (a *Analyzer) preprocess(raw string) (s models.SanitizeResult, o models.ObfuscationResult) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn().Interface("panic", r).Msg("preprocessor panicked, using raw input")
			s = models.SanitizeResult{Sanitized: strings.TrimSpace(raw)}
			o = models.ObfuscationResult{Level: models.ObfuscationNone, DecodedContent: s.Sanitized}
		}
	}()

	s = a.preprocessor.Sanitize(raw)
	o = a.preprocessor.AnalyzeObfuscation(s.Sanitized)
	return s, o
}

// correlate applies the correlation engine, keeping the evidence unchanged
// when the engine is absent or fails
func (a *Analyzer) correlate(evidence []models.HeuristicResult, cctx CorrelationContext) (res CorrelationResult) {
	res = CorrelationResult{Evidence: evidence}
	if a.correlation == nil {
		return res
	}

	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn().Interface("panic", r).Msg("correlation engine panicked, skipping")
			res = CorrelationResult{Evidence: evidence}
		}
	}()

	out := a.correlation.Apply(evidence, cctx)
	if out.Evidence == nil {
		out.Evidence = evidence
	}
	return out
}
