package services

import (
	"math"

	"verdict-lab/internal/domain/models"
)

// Score bounds and classification thresholds
const (
	MinRiskScore        = 0
	MaxRiskScore        = 100
	MaliciousThreshold  = 70
	SuspiciousThreshold = 30
)

// ClampScore bounds a raw score to [MinRiskScore, MaxRiskScore]
func ClampScore(score int) int {
	return min(MaxRiskScore, max(MinRiskScore, score))
}

// Classify maps a score to its risk level
func Classify(score int) models.RiskLevel {
	switch {
	case score >= MaliciousThreshold:
		return models.RiskLevelMalicious
	case score >= SuspiciousThreshold:
		return models.RiskLevelSuspicious
	default:
		return models.RiskLevelSafe
	}
}

// Confidence is the percentage of evidence that is not a plain pass. It
// measures how much of the trail points at risk, not statistical certainty,
// and is 0 when there is no evidence at all.
func Confidence(evidence []models.HeuristicResult) int {
	total := max(len(evidence), 1)
	return int(math.Round(100 * float64(models.CountNonBenign(evidence)) / float64(total)))
}
