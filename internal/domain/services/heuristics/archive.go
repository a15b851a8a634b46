package heuristics

import (
	"context"
	"fmt"

	"verdict-lab/internal/domain/models"
)

const matureArchiveYears = 5

// ArchiveMaturity turns web archive presence into a single trust or risk
// signal. A gathered history is used as is; without one the suite asks its
// own archive, if any.
func (s *Suite) ArchiveMaturity(ctx context.Context, host string, history *models.ArchiveHistory) (*models.HeuristicResult, error) {
	if history == nil && s.archive != nil {
		h, err := s.archive.History(ctx, host)
		if err != nil {
			return nil, fmt.Errorf("archive history for %s: %w", host, err)
		}
		history = h
	}
	if history == nil {
		return nil, nil
	}

	if !history.HasHistory {
		h := models.Warn(
			"Archive Blindspot",
			"No history in global web archives; likely a recently registered disposable domain",
			15,
		)
		return &h, nil
	}

	first := history.FirstSeenYear()
	if first == 0 {
		return nil, nil
	}
	age := s.now().Year() - first

	if age > matureArchiveYears {
		h := models.Pass(
			"Domain Maturity (Archives)",
			fmt.Sprintf("Stable presence in web archives since %d (%d years)", first, age),
			-15,
		)
		return &h, nil
	}

	h := models.Warn(
		"Short Archive History",
		fmt.Sprintf("Only appeared in web archives in %d", first),
		5,
	)
	return &h, nil
}
