// Package validate turns raw model text into a structured suggestion batch.
// Parsing runs an ordered list of strategies (strict JSON first, then a
// permissive Python-literal reading); the first success wins and the schema
// check applies to whichever result parsed.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/snow-ghost/advisor/core"
)

type parseFunc func(text string) (map[string]any, error)

var strategies = []parseFunc{parseStrict, parsePermissive}

// Parse validates raw model text into a SuggestionBatch. It returns a
// *core.ParseError when no strategy can read the text and a
// *core.SchemaError when the payload is missing required fields.
func Parse(raw string) (core.SuggestionBatch, error) {
	text := strings.TrimSpace(raw)

	var payload map[string]any
	var lastErr error
	parsed := false
	for _, parse := range strategies {
		p, err := parse(text)
		if err == nil {
			payload = p
			parsed = true
			break
		}
		lastErr = err
	}
	if !parsed {
		return core.SuggestionBatch{}, &core.ParseError{Err: lastErr}
	}

	return checkSchema(payload)
}

func parseStrict(text string) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// parsePermissive tolerates Python-literal-like dictionary syntax: single
// quotes, True/False/None constants, trailing commas, and a surrounding
// markdown code fence the model was told not to emit.
func parsePermissive(text string) (map[string]any, error) {
	normalized := normalizeLiteral(stripFence(text))
	var payload map[string]any
	if err := json.Unmarshal([]byte(normalized), &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func checkSchema(payload map[string]any) (core.SuggestionBatch, error) {
	rawSuggestions, ok := payload["suggestions"]
	if !ok {
		return core.SuggestionBatch{}, &core.SchemaError{Constraint: "response missing 'suggestions' field"}
	}
	items, ok := rawSuggestions.([]any)
	if !ok {
		return core.SuggestionBatch{}, &core.SchemaError{Constraint: "'suggestions' field must be a list"}
	}

	batch := core.SuggestionBatch{
		Suggestions:  make([]core.Suggestion, 0, len(items)),
		AnomalyScore: payload["anomaly_score"],
	}
	if reason, ok := payload["reason"].(string); ok {
		batch.Reason = reason
	}

	for i, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return core.SuggestionBatch{}, &core.SchemaError{
				Constraint: fmt.Sprintf("suggestion %d is not an object", i+1),
			}
		}
		expression, ok := entry["expression"].(string)
		if !ok || expression == "" {
			return core.SuggestionBatch{}, &core.SchemaError{
				Constraint: "suggestion missing required fields 'expression' or 'reason'",
			}
		}
		reason, ok := entry["reason"].(string)
		if !ok || reason == "" {
			return core.SuggestionBatch{}, &core.SchemaError{
				Constraint: "suggestion missing required fields 'expression' or 'reason'",
			}
		}
		batch.Suggestions = append(batch.Suggestions, core.Suggestion{Expression: expression, Reason: reason})
	}

	return batch, nil
}

// stripFence removes a surrounding markdown code fence, with or without a
// language tag on the opening line.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	body := strings.TrimPrefix(text, "```")
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		body = body[idx+1:]
	}
	body = strings.TrimSpace(body)
	return strings.TrimSpace(strings.TrimSuffix(body, "```"))
}

// normalizeLiteral rewrites a Python-literal dictionary into JSON: single
// quoted strings become double quoted, bare constants are mapped, and
// trailing commas before a closing bracket are dropped.
func normalizeLiteral(text string) string {
	var out strings.Builder
	out.Grow(len(text))

	const (
		outside = iota
		inSingle
		inDouble
	)
	state := outside

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch state {
		case outside:
			switch r {
			case '\'':
				state = inSingle
				out.WriteByte('"')
			case '"':
				state = inDouble
				out.WriteByte('"')
			case ',':
				// drop trailing commas: lookahead to the next non-space rune
				j := i + 1
				for j < len(runes) && (runes[j] == ' ' || runes[j] == '\n' || runes[j] == '\t' || runes[j] == '\r') {
					j++
				}
				if j < len(runes) && (runes[j] == '}' || runes[j] == ']') {
					continue
				}
				out.WriteRune(r)
			default:
				if constant, width, ok := matchConstant(runes[i:]); ok {
					out.WriteString(constant)
					i += width - 1
					continue
				}
				out.WriteRune(r)
			}
		case inSingle:
			switch r {
			case '\\':
				if i+1 < len(runes) {
					next := runes[i+1]
					if next == '\'' {
						out.WriteByte('\'')
					} else {
						out.WriteRune(r)
						out.WriteRune(next)
					}
					i++
					continue
				}
				out.WriteRune(r)
			case '\'':
				state = outside
				out.WriteByte('"')
			case '"':
				out.WriteString(`\"`)
			default:
				out.WriteRune(r)
			}
		case inDouble:
			switch r {
			case '\\':
				out.WriteRune(r)
				if i+1 < len(runes) {
					out.WriteRune(runes[i+1])
					i++
				}
			case '"':
				state = outside
				out.WriteByte('"')
			default:
				out.WriteRune(r)
			}
		}
	}

	return out.String()
}

// matchConstant maps Python literal constants to their JSON spelling when
// they appear as standalone tokens.
func matchConstant(runes []rune) (string, int, bool) {
	for py, js := range map[string]string{"True": "true", "False": "false", "None": "null"} {
		if len(runes) < len(py) {
			continue
		}
		if string(runes[:len(py)]) != py {
			continue
		}
		if len(runes) > len(py) && isWordRune(runes[len(py)]) {
			continue
		}
		return js, len(py), true
	}
	return "", 0, false
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
