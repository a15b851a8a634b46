package models

// Evaluation is what a heuristic evaluator returns: its evidence plus the
// score delta it contributes. Evaluators keep Score equal to the summed
// ScoreImpact of Heuristics.
type Evaluation struct {
	Heuristics []HeuristicResult `json:"heuristics"`
	Score      int               `json:"score"`
}

// NewEvaluation builds an Evaluation whose score is the sum of its evidence
func NewEvaluation(heuristics ...HeuristicResult) Evaluation {
	return Evaluation{Heuristics: heuristics, Score: SumImpact(heuristics)}
}

// Add appends evidence and folds its impact into the score
func (e *Evaluation) Add(h HeuristicResult) {
	e.Heuristics = append(e.Heuristics, h)
	e.Score += h.ScoreImpact
}

// SanitizeResult is the output of input sanitization
type SanitizeResult struct {
	Sanitized  string            `json:"sanitized"`
	Heuristics []HeuristicResult `json:"heuristics"`
}

// ObfuscationResult is the output of de-obfuscation
type ObfuscationResult struct {
	Level          ObfuscationLevel  `json:"level"`
	DecodedContent string            `json:"decoded_content"`
	Heuristics     []HeuristicResult `json:"heuristics"`
}
