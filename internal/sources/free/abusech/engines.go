package abusech

import (
	"context"
	"errors"

	"github.com/sourcegraph/conc"

	"verdict-lab/internal/domain/models"
	"verdict-lab/pkg/logger"
)

// DetectionEngines runs every Abuse.ch engine against one target
type DetectionEngines struct {
	urlhaus   *URLhausConnector
	threatfox *ThreatFoxConnector
	logger    *logger.Logger
}

// NewDetectionEngines groups the URLhaus and ThreatFox connectors
func NewDetectionEngines(urlhaus *URLhausConnector, threatfox *ThreatFoxConnector, log *logger.Logger) *DetectionEngines {
	return &DetectionEngines{
		urlhaus:   urlhaus,
		threatfox: threatfox,
		logger:    log.WithComponent("detection-engines"),
	}
}

// Run queries the engines concurrently and returns the verdicts that came
// back, in engine order. It fails only when every engine failed.
func (d *DetectionEngines) Run(ctx context.Context, target string) ([]models.DetectionEngineResult, error) {
	type lookup func(context.Context, string) (*models.DetectionEngineResult, error)
	engines := []lookup{d.urlhaus.CheckHost, d.threatfox.SearchIOC}

	results := make([]*models.DetectionEngineResult, len(engines))
	errs := make([]error, len(engines))

	var wg conc.WaitGroup
	for i, run := range engines {
		wg.Go(func() {
			results[i], errs[i] = run(ctx, target)
		})
	}
	wg.Wait()

	out := make([]models.DetectionEngineResult, 0, len(engines))
	for i, r := range results {
		if errs[i] != nil {
			d.logger.Debug().Err(errs[i]).Str("target", target).Msg("detection engine failed")
			continue
		}
		out = append(out, *r)
	}
	if len(out) == 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
