package models

// EvidenceStatus is the verdict of a single observation
type EvidenceStatus string

const (
	EvidencePass EvidenceStatus = "pass"
	EvidenceWarn EvidenceStatus = "warn"
	EvidenceFail EvidenceStatus = "fail"
)

// IsBenign reports whether the status carries no risk signal
func (s EvidenceStatus) IsBenign() bool {
	return s == EvidencePass
}

// HeuristicResult is one named, scored observation about the analyzed input.
// Several results may share a name.
type HeuristicResult struct {
	Name        string         `json:"name"`
	Status      EvidenceStatus `json:"status"`
	Description string         `json:"description"`
	ScoreImpact int            `json:"score_impact"`
}

// Pass, Warn and Fail build evidence items with the matching status.
func Pass(name, description string, impact int) HeuristicResult {
	return HeuristicResult{Name: name, Status: EvidencePass, Description: description, ScoreImpact: impact}
}

func Warn(name, description string, impact int) HeuristicResult {
	return HeuristicResult{Name: name, Status: EvidenceWarn, Description: description, ScoreImpact: impact}
}

func Fail(name, description string, impact int) HeuristicResult {
	return HeuristicResult{Name: name, Status: EvidenceFail, Description: description, ScoreImpact: impact}
}

// SumImpact totals the score impact of the given evidence
func SumImpact(evidence []HeuristicResult) int {
	total := 0
	for _, e := range evidence {
		total += e.ScoreImpact
	}
	return total
}

// CountNonBenign returns how many items are not a plain pass
func CountNonBenign(evidence []HeuristicResult) int {
	n := 0
	for _, e := range evidence {
		if !e.Status.IsBenign() {
			n++
		}
	}
	return n
}

// HasEvidence reports whether an item with the given name and status is present.
// An empty status matches any status.
func HasEvidence(evidence []HeuristicResult, name string, status EvidenceStatus) bool {
	for _, e := range evidence {
		if e.Name == name && (status == "" || e.Status == status) {
			return true
		}
	}
	return false
}
