package services

import (
	"context"
	"fmt"

	"verdict-lab/internal/domain/models"
	"verdict-lab/pkg/logger"
)

// Evidence thresholds applied to gathered intelligence
const (
	abuseWarnThreshold = 25
	abuseFailThreshold = 75
	newDomainMaxDays   = 30
	newDomainImpact    = 35
)

// Accumulation is the ordered evidence and running score before correlation
type Accumulation struct {
	Evidence []models.HeuristicResult
	Score    int
}

func (a *Accumulation) add(h models.HeuristicResult) {
	a.Evidence = append(a.Evidence, h)
	a.Score += h.ScoreImpact
}

func (a *Accumulation) fold(e models.Evaluation) {
	a.Evidence = append(a.Evidence, e.Heuristics...)
	a.Score += e.Score
}

// Accumulator sequences the evaluators for an input type and folds them,
// together with the gathered intelligence, into one evidence list
type Accumulator struct {
	suite  HeuristicSuite
	logger *logger.Logger
}

// NewAccumulator creates an accumulator over the given evaluators
func NewAccumulator(suite HeuristicSuite, log *logger.Logger) *Accumulator {
	return &Accumulator{
		suite:  suite,
		logger: log.WithComponent("accumulator"),
	}
}

// Accumulate runs the evaluators in their fixed order. Evaluator failures
// contribute nothing; only an unparsable url input is returned as an error.
func (a *Accumulator) Accumulate(
	ctx context.Context,
	t models.InputType,
	input string,
	preliminary []models.HeuristicResult,
	bag *models.IntelligenceBag,
) (Accumulation, error) {
	acc := Accumulation{Evidence: make([]models.HeuristicResult, 0, len(preliminary)+16)}
	for _, h := range preliminary {
		acc.add(h)
	}

	switch t {
	case models.InputTypeIP:
		acc.fold(a.evaluateErr("ip", func() (models.Evaluation, error) {
			return a.suite.EvaluateIP(ctx, input)
		}))
		if abuse := bag.AbuseDB; abuse != nil && abuse.AbuseConfidenceScore > abuseWarnThreshold {
			acc.add(abuseEvidence(abuse.AbuseConfidenceScore))
		}

	case models.InputTypeDomain, models.InputTypeURL:
		host, err := TargetHostname(t, input)
		if err != nil {
			return acc, &models.InvalidInputError{Type: t, Input: input, Reason: "unparsable URL", Err: err}
		}
		a.accumulateDomain(ctx, &acc, host, bag)
	}

	if t == models.InputTypeURL {
		u, err := ParseTargetURL(input)
		if err != nil {
			return acc, &models.InvalidInputError{Type: t, Input: input, Reason: "unparsable URL", Err: err}
		}

		acc.fold(a.evaluateErr("url", func() (models.Evaluation, error) {
			return a.suite.EvaluateURL(ctx, input)
		}))
		acc.fold(a.evaluate("path", func() models.Evaluation { return a.suite.EvaluatePath(u.Path, u.RawQuery) }))
		acc.fold(a.evaluate("port", func() models.Evaluation { return a.suite.EvaluatePort(u) }))
		acc.fold(a.evaluate("redirect", func() models.Evaluation { return a.suite.EvaluateRedirects(u) }))
		acc.fold(a.evaluate("mobile", func() models.Evaluation { return a.suite.EvaluateMobileThreats(u) }))
	}

	return acc, nil
}

func (a *Accumulator) accumulateDomain(ctx context.Context, acc *Accumulation, host string, bag *models.IntelligenceBag) {
	acc.fold(a.evaluate("idn", func() models.Evaluation { return a.suite.EvaluateIDN(host) }))
	acc.fold(a.evaluate("domain_reputation", func() models.Evaluation { return a.suite.EvaluateDomainReputation(host) }))

	// A known reputation signal replaces the homoglyph check entirely.
	signal := a.signal("reputation", func() (*models.HeuristicResult, error) {
		return a.suite.ReputationSignal(host), nil
	})
	if signal != nil {
		acc.add(*signal)
	} else if h := a.signal("homoglyph", func() (*models.HeuristicResult, error) {
		return a.suite.EvaluateHomoglyphs(host), nil
	}); h != nil {
		acc.add(*h)
	}

	acc.fold(a.evaluateErr("domain", func() (models.Evaluation, error) {
		return a.suite.EvaluateDomain(ctx, host)
	}))

	if whois := bag.Whois; whois != nil && whois.AgeDays < newDomainMaxDays {
		acc.add(models.Fail(
			"Very New Domain",
			fmt.Sprintf("Registered %d days ago", whois.AgeDays),
			newDomainImpact,
		))
	}

	if archive := a.signal("archive", func() (*models.HeuristicResult, error) {
		return a.suite.ArchiveMaturity(ctx, host, bag.ArchiveHistory)
	}); archive != nil {
		acc.add(*archive)
	}
}

// abuseEvidence turns an abuse confidence above the warn threshold into evidence
func abuseEvidence(confidence int) models.HeuristicResult {
	status := models.EvidenceWarn
	if confidence > abuseFailThreshold {
		status = models.EvidenceFail
	}
	return models.HeuristicResult{
		Name:        "IP Reputation Score",
		Status:      status,
		Description: fmt.Sprintf("IP has abuse confidence score of %d%%", confidence),
		ScoreImpact: confidence / 2,
	}
}

func (a *Accumulator) evaluate(name string, fn func() models.Evaluation) models.Evaluation {
	return a.evaluateErr(name, func() (models.Evaluation, error) { return fn(), nil })
}

// evaluateErr runs one evaluator, turning an error or panic into an empty result
func (a *Accumulator) evaluateErr(name string, fn func() (models.Evaluation, error)) (ev models.Evaluation) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn().Str("evaluator", name).Interface("panic", r).Msg("evaluator panicked, ignoring")
			ev = models.Evaluation{}
		}
	}()

	ev, err := fn()
	if err != nil {
		a.logger.Debug().Err(err).Str("evaluator", name).Msg("evaluator failed, ignoring")
		return models.Evaluation{}
	}
	return ev
}

// signal runs an evaluator that yields at most one evidence item
func (a *Accumulator) signal(name string, fn func() (*models.HeuristicResult, error)) (h *models.HeuristicResult) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn().Str("evaluator", name).Interface("panic", r).Msg("evaluator panicked, ignoring")
			h = nil
		}
	}()

	h, err := fn()
	if err != nil {
		a.logger.Debug().Err(err).Str("evaluator", name).Msg("evaluator failed, ignoring")
		return nil
	}
	return h
}
