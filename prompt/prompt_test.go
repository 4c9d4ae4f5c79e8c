package prompt

import (
	"strings"
	"testing"

	"github.com/snow-ghost/advisor/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystem_EmbedsScenarioElements(t *testing.T) {
	text := System([]string{"x0", "x1", "x2"}, []string{"gt", "and_", "or_"})

	assert.Contains(t, text, "x0, x1, x2")
	assert.Contains(t, text, "gt, and_, or_")
	assert.Contains(t, text, `"and_(gt(x0, x2), or_(x1, x2))"`)
	assert.Contains(t, text, SchemaExample)
	assert.Contains(t, text, "maximum 3 suggestions")
}

func TestFirstRound_FormatsIndividuals(t *testing.T) {
	individuals := []core.Individual{
		{Expression: "gt(x0, x1)", Fitness: 0.81234567},
		{Expression: "and_(x0, x2)", Fitness: 0.75},
	}
	text := FirstRound(individuals)

	assert.Contains(t, text, "Individual 1: expression=gt(x0, x1), fitness=0.8123")
	assert.Contains(t, text, "Individual 2: expression=and_(x0, x2), fitness=0.7500")
	assert.Contains(t, text, "first round of interaction")
}

func TestFirstRound_EmptyIndividualsStillWellFormed(t *testing.T) {
	text := FirstRound(nil)

	require.NotEmpty(t, text)
	assert.NotContains(t, text, "Individual 1:")
	assert.Contains(t, text, "well-performing individuals")
	assert.Contains(t, text, SchemaExample)
}

func TestRoundPrompts_CarrySchemaSuffix(t *testing.T) {
	fitness := 0.9
	report := core.RoundReport{Suggestions: []core.RoundOutcome{
		{Expression: "x0", Status: core.OutcomeSuccess, Fitness: &fitness, Reason: "simpler"},
	}}

	for name, text := range map[string]string{
		"first":      FirstRound(nil),
		"subsequent": SubsequentRound(nil, report),
	} {
		assert.Contains(t, text, SchemaExample, name)
		assert.Contains(t, text, "don't wrap in code blocks", name)
	}
}

func TestSubsequentRound_RendersOutcomes(t *testing.T) {
	fitness := 0.8765
	report := core.RoundReport{Suggestions: []core.RoundOutcome{
		{Expression: "gt(x0, x1)", Status: core.OutcomeSuccess, Fitness: &fitness, Reason: "reduced depth"},
		{Expression: "bogus(x9)", Status: core.OutcomeFail, Error: "unknown symbol x9", Reason: "tried new variable"},
	}}
	text := SubsequentRound([]core.Individual{{Expression: "x0", Fitness: 0.5}}, report)

	assert.Contains(t, text, "Suggested Expression: gt(x0, x1)")
	assert.Contains(t, text, "Actual Fitness: 0.8765")
	assert.Contains(t, text, "Improvement Reason: reduced depth")
	assert.Contains(t, text, "Suggested Expression: bogus(x9)")
	assert.Contains(t, text, "Evaluation Failed: unknown symbol x9")
	assert.Contains(t, text, "Improvement Reason: tried new variable")
	assert.Contains(t, text, "previous round of interaction")
}

func TestSubsequentRound_FailedOutcomeWithoutFitness(t *testing.T) {
	report := core.RoundReport{Suggestions: []core.RoundOutcome{
		{Expression: "or_(x1)", Status: core.OutcomeFail, Error: "arity mismatch", Reason: "simplify"},
	}}
	text := SubsequentRound(nil, report)
	assert.NotContains(t, text, "Actual Fitness")
}

func TestErrorFeedback_RestatesSchemaAndError(t *testing.T) {
	text := ErrorFeedback("response missing 'suggestions' field")

	assert.Contains(t, text, SchemaExample)
	assert.Contains(t, text, "Error message: response missing 'suggestions' field")
	assert.Contains(t, text, "Don't wrap json data in markdown code blocks")
	assert.True(t, strings.HasPrefix(text, "I noticed your last response had formatting issues"))
}
