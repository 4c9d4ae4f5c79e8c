// Package prompt builds the text sent to the model backend. Every function
// is pure: population snapshots and prior-round outcomes in, prompt text out.
package prompt

import (
	"fmt"
	"strings"

	"github.com/snow-ghost/advisor/core"
)

// SchemaExample is the canonical output shape shown to the model in the
// system prompt, after every round prompt, and in every feedback turn.
const SchemaExample = `{
  "suggestions": [
    {
      "expression": "< Improved expression (please follow the given expression format) >",
      "reason": "< Reason for the suggested improvement >"
    }
  ],
  "anomaly_score": "< Your assessment score for the current scenario's anomaly level >",
  "reason": "< Reason for the anomaly score >"
}`

const systemTemplate = `You are a Visual Logic Architect and Logic Expression Optimizer. You can explain visual scene descriptions and help improve logical expressions to make them more accurate, efficient, and interpretable to meet the requirements of visual scene features and relationships.

Key Capabilities:
1. Expression Analysis: Evaluate the logical coherence, redundancy, and semantic consistency of current symbolic expressions.
2. Optimization Suggestions: Identify potential simplifications or adjustments (e.g., removing redundant terms, optimizing conditions) while maintaining or enhancing the descriptive power.
3. Task-Specific Optimization: Propose modifications based on specific scenario requirements (e.g., safety, target tracking) and apply symbolic regression optimization rules to improve task performance while minimizing performance loss.
4. Interpretability Enhancement: Make expressions more understandable through simplified relationships, context-aware labels, or reformatting to reflect intuitive conditional structures.

Current task scenario elements:
1. Available variable symbols: [%s]
2. Supported operators: [%s]
3. Example expression format: "and_(gt(x0, x2), or_(x1, x2))", where x0, x1, x2 are variable symbols, gt, or_, and_ are operators
4. Keep expressions concise, avoid overly complex expressions, minimize the use of operators and variable symbols.

Note: Ensure that variable symbols exist in the current task scenario and operators are supported in the current task scenario!

Please think carefully, but provide your suggestions in the following format (maximum 3 suggestions):
%s`

const firstRoundTemplate = `I've noticed the following well-performing individuals in the current population:

%s

As the first round of interaction, please carefully analyze the characteristics of these expressions and provide improvement suggestions. You can:
1. Analyze common patterns or unique features of these expressions
2. Identify potential optimization opportunities
3. Propose new expression combination methods

Please ensure your suggestions maintain the basic structure of expressions while trying to improve their performance.`

const subsequentRoundTemplate = `I've noticed the following well-performing individuals in the current population:

%s

In the previous round of interaction, your suggestions and their effects were as follows:

%s

Based on the above information, especially the effects of previous suggestions, please propose new improvement plans. You can:
1. Learn from successful suggestions
2. Analyze reasons for failed suggestions and avoid similar issues
3. Incorporate characteristics of excellent individuals in the current population
4. Provide maximum of 3 expressions in suggestions
5. Keep expressions concise, avoid overly complex expressions, minimize operators and variable symbols.`

const feedbackTemplate = `I noticed your last response had formatting issues. Please strictly follow this JSON format:

%s

Error message: %s

Please regenerate your suggestions, ensuring:
1. Response must be valid JSON format
2. Include all required fields
3. Expression field must use correct operators and variables
4. Don't wrap json data in markdown code blocks, just provide raw json data`

const roundSuffix = "\n\nPlease provide your suggestions in the following JSON format (give json data directly, don't wrap in code blocks):\n%s"

// System builds the system prompt for the scenario's variable symbols and
// operator set.
func System(labels, operators []string) string {
	return fmt.Sprintf(systemTemplate, strings.Join(labels, ", "), strings.Join(operators, ", "), SchemaExample)
}

// FirstRound builds the opening round prompt from the population snapshot.
// An empty snapshot renders as a list with zero entries.
func FirstRound(individuals []core.Individual) string {
	body := fmt.Sprintf(firstRoundTemplate, formatIndividuals(individuals))
	return body + fmt.Sprintf(roundSuffix, SchemaExample)
}

// SubsequentRound builds a later round prompt: the population snapshot plus
// the rendered outcomes of the previous round's suggestions.
func SubsequentRound(individuals []core.Individual, report core.RoundReport) string {
	body := fmt.Sprintf(subsequentRoundTemplate, formatIndividuals(individuals), formatOutcomes(report.Suggestions))
	return body + fmt.Sprintf(roundSuffix, SchemaExample)
}

// ErrorFeedback builds the corrective turn sent after a validation failure.
func ErrorFeedback(errText string) string {
	return fmt.Sprintf(feedbackTemplate, SchemaExample, errText)
}

func formatIndividuals(individuals []core.Individual) string {
	lines := make([]string, 0, len(individuals))
	for i, ind := range individuals {
		lines = append(lines, fmt.Sprintf("Individual %d: expression=%s, fitness=%.4f", i+1, ind.Expression, ind.Fitness))
	}
	return strings.Join(lines, "\n")
}

func formatOutcomes(outcomes []core.RoundOutcome) string {
	blocks := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Status == core.OutcomeSuccess {
			fitness := 0.0
			if o.Fitness != nil {
				fitness = *o.Fitness
			}
			blocks = append(blocks, fmt.Sprintf(
				"Suggested Expression: %s\n- Actual Fitness: %.4f\n- Improvement Reason: %s",
				o.Expression, fitness, o.Reason))
			continue
		}
		blocks = append(blocks, fmt.Sprintf(
			"Suggested Expression: %s\n- Evaluation Failed: %s\n- Improvement Reason: %s",
			o.Expression, o.Error, o.Reason))
	}
	return strings.Join(blocks, "\n\n")
}
