// Package correlation combines individual evidence items into compound
// findings. A rule fires when a set of signals appears together that is far
// more telling than any of them alone.
package correlation

import (
	"slices"
	"sync"

	"verdict-lab/internal/domain/models"
	"verdict-lab/internal/domain/services"
	"verdict-lab/pkg/logger"
)

// Rule is one cross-evidence pattern
type Rule struct {
	Name        string
	Status      models.EvidenceStatus
	Description string
	Impact      int
	Match       func(evidence []models.HeuristicResult, cctx services.CorrelationContext) bool
}

// Stats counts how often each rule fired
type Stats struct {
	Applied int            `json:"applied"`
	ByRule  map[string]int `json:"by_rule"`
}

// Engine implements services.CorrelationEngine
type Engine struct {
	rules  []Rule
	logger *logger.Logger

	statsMu sync.RWMutex
	applied int
	byRule  map[string]int
}

var _ services.CorrelationEngine = (*Engine)(nil)

// NewEngine creates an engine with the default rules, or with rules when given
func NewEngine(log *logger.Logger, rules ...Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Engine{
		rules:  rules,
		logger: log.WithComponent("correlation"),
		byRule: make(map[string]int),
	}
}

// Apply evaluates every rule against the evidence. Fired rules are appended as
// new items, in rule order; the boost is the sum of their impacts. The input
// slice is never modified.
func (e *Engine) Apply(evidence []models.HeuristicResult, cctx services.CorrelationContext) services.CorrelationResult {
	out := slices.Clone(evidence)
	boost := 0
	var fired []string

	for _, r := range e.rules {
		if !r.Match(evidence, cctx) {
			continue
		}
		out = append(out, models.HeuristicResult{
			Name:        r.Name,
			Status:      r.Status,
			Description: r.Description,
			ScoreImpact: r.Impact,
		})
		boost += r.Impact
		fired = append(fired, r.Name)
	}

	e.record(fired)
	if len(fired) > 0 {
		e.logger.Debug().
			Strs("rules", fired).
			Int("boost", boost).
			Str("type", string(cctx.Type)).
			Msg("correlation rules fired")
	}

	return services.CorrelationResult{Evidence: out, ScoreBoost: boost}
}

func (e *Engine) record(fired []string) {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	e.applied++
	for _, name := range fired {
		e.byRule[name]++
	}
}

// Stats returns a snapshot of the rule counters
func (e *Engine) Stats() Stats {
	e.statsMu.RLock()
	defer e.statsMu.RUnlock()
	byRule := make(map[string]int, len(e.byRule))
	for k, v := range e.byRule {
		byRule[k] = v
	}
	return Stats{Applied: e.applied, ByRule: byRule}
}
