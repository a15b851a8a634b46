package correlation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verdict-lab/internal/domain/models"
	"verdict-lab/internal/domain/services"
	"verdict-lab/pkg/logger"
)

func ruleNames(ev []models.HeuristicResult, from int) []string {
	var out []string
	for _, h := range ev[from:] {
		out = append(out, h.Name)
	}
	return out
}

func TestApply_NoRulesFire(t *testing.T) {
	e := NewEngine(logger.Nop())
	in := []models.HeuristicResult{
		models.Pass("Valid IP Format", "", 0),
		models.Warn("No Reverse DNS", "", 5),
	}

	res := e.Apply(in, services.CorrelationContext{Input: "1.1.1.1", Type: models.InputTypeIP})
	assert.Equal(t, in, res.Evidence)
	assert.Zero(t, res.ScoreBoost)
}

func TestApply_Rules(t *testing.T) {
	tests := []struct {
		name     string
		typ      models.InputType
		evidence []models.HeuristicResult
		fired    []string
		boost    int
	}{
		{
			name: "three failures",
			typ:  models.InputTypeDomain,
			evidence: []models.HeuristicResult{
				models.Fail("A", "", 1), models.Fail("B", "", 1), models.Fail("C", "", 1),
			},
			fired: []string{"Multiple Threat Indicators"},
			boost: 15,
		},
		{
			name: "new domain without archive history",
			typ:  models.InputTypeDomain,
			evidence: []models.HeuristicResult{
				models.Fail("Very New Domain", "", 35),
				models.Warn("Archive Blindspot", "", 15),
			},
			fired: []string{"Fresh Disposable Domain"},
			boost: 15,
		},
		{
			name: "brand imitation asking for credentials",
			typ:  models.InputTypeURL,
			evidence: []models.HeuristicResult{
				models.Fail("Homoglyph Impersonation", "", 40),
				models.Warn("Credential Harvesting Path", "", 15),
			},
			fired: []string{"Credential Phishing Pattern"},
			boost: 20,
		},
		{
			name: "payload on throwaway hosting",
			typ:  models.InputTypeURL,
			evidence: []models.HeuristicResult{
				models.Fail("Executable Download", "", 25),
				models.Warn("Free Hosting Provider", "", 10),
			},
			fired: []string{"Malware Delivery Pattern"},
			boost: 20,
		},
		{
			name: "payload rule needs a url",
			typ:  models.InputTypeDomain,
			evidence: []models.HeuristicResult{
				models.Fail("Executable Download", "", 25),
				models.Warn("Free Hosting Provider", "", 10),
			},
			fired: nil,
			boost: 0,
		},
		{
			name: "trusted domain",
			typ:  models.InputTypeDomain,
			evidence: []models.HeuristicResult{
				models.Pass("Trusted Domain", "", -20),
				models.Warn("Phishing Keywords", "", 10),
			},
			fired: []string{"Established Trust"},
			boost: -10,
		},
		{
			name: "abusive residential ip",
			typ:  models.InputTypeIP,
			evidence: []models.HeuristicResult{
				models.Pass("Valid IP Format", "", 0),
				models.Warn("Residential Address", "", 5),
				models.Fail("IP Reputation Score", "", 45),
			},
			fired: []string{"Abusive Residential Host"},
			boost: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(logger.Nop())
			res := e.Apply(tt.evidence, services.CorrelationContext{Input: "x", Type: tt.typ})

			require.GreaterOrEqual(t, len(res.Evidence), len(tt.evidence))
			assert.Equal(t, tt.evidence, res.Evidence[:len(tt.evidence)], "existing evidence is kept in order")
			assert.Equal(t, tt.fired, ruleNames(res.Evidence, len(tt.evidence)))
			assert.Equal(t, tt.boost, res.ScoreBoost)
			assert.Equal(t, tt.boost, models.SumImpact(res.Evidence[len(tt.evidence):]))
		})
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	e := NewEngine(logger.Nop())
	in := make([]models.HeuristicResult, 3, 10)
	for i := range in {
		in[i] = models.Fail("F", "", 1)
	}

	res := e.Apply(in, services.CorrelationContext{Type: models.InputTypeDomain})
	require.Len(t, res.Evidence, 4)
	assert.Equal(t, models.HeuristicResult{}, in[:4][3], "spare capacity of the input must stay untouched")
}

func TestStats(t *testing.T) {
	e := NewEngine(logger.Nop(), Rule{
		Name:   "Always",
		Status: models.EvidenceWarn,
		Impact: 1,
		Match:  func([]models.HeuristicResult, services.CorrelationContext) bool { return true },
	})

	e.Apply(nil, services.CorrelationContext{})
	e.Apply(nil, services.CorrelationContext{})

	st := e.Stats()
	assert.Equal(t, 2, st.Applied)
	assert.Equal(t, map[string]int{"Always": 2}, st.ByRule)
}
