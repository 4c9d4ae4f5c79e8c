package validate

import (
	"errors"
	"testing"

	"github.com/snow-ghost/advisor/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_StrictJSON(t *testing.T) {
	raw := `{"suggestions":[{"expression":"gt(x0,x1)","reason":"simpler"}],"anomaly_score":0.2,"reason":"ok"}`

	batch, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, batch.Suggestions, 1)
	assert.Equal(t, "gt(x0,x1)", batch.Suggestions[0].Expression)
	assert.Equal(t, "simpler", batch.Suggestions[0].Reason)
	assert.Equal(t, 0.2, batch.AnomalyScore)
	assert.Equal(t, "ok", batch.Reason)
}

func TestParse_PermissivePythonLiteral(t *testing.T) {
	raw := `{'suggestions': [{'expression': 'and_(x0, x1)', 'reason': "it's shorter"},], 'anomaly_score': None, 'reason': 'fine'}`

	batch, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, batch.Suggestions, 1)
	assert.Equal(t, "and_(x0, x1)", batch.Suggestions[0].Expression)
	assert.Equal(t, "it's shorter", batch.Suggestions[0].Reason)
	assert.Nil(t, batch.AnomalyScore)
}

func TestParse_PermissiveConstantsAndFence(t *testing.T) {
	raw := "```json\n{'suggestions': [{'expression': 'x0', 'reason': 'base'}], 'anomaly_score': True, 'reason': 'fence'}\n```"

	batch, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, true, batch.AnomalyScore)
}

func TestParse_StringsContainingConstantsAreUntouched(t *testing.T) {
	raw := `{'suggestions': [{'expression': 'x0', 'reason': 'None of the terms were redundant'}], 'anomaly_score': 1, 'reason': 'ok'}`

	batch, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "None of the terms were redundant", batch.Suggestions[0].Reason)
}

func TestParse_UnparseableText(t *testing.T) {
	_, err := Parse("I think you should simplify the expression.")

	var pe *core.ParseError
	require.True(t, errors.As(err, &pe))
}

func TestParse_MissingSuggestionsField(t *testing.T) {
	_, err := Parse(`{"anomaly_score": 0.1, "reason": "forgot the list"}`)

	var se *core.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Error(), "'suggestions'")
}

func TestParse_SuggestionMissingReason(t *testing.T) {
	_, err := Parse(`{"suggestions":[{"expression":"gt(x0,x1)"}],"anomaly_score":0,"reason":"ok"}`)

	var se *core.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Error(), "'expression' or 'reason'")
}

func TestParse_SuggestionMissingExpression(t *testing.T) {
	_, err := Parse(`{"suggestions":[{"reason":"no expression given"}],"anomaly_score":0,"reason":"ok"}`)

	var se *core.SchemaError
	require.True(t, errors.As(err, &se))
}

func TestParse_SuggestionsNotAList(t *testing.T) {
	_, err := Parse(`{"suggestions": "gt(x0,x1)", "anomaly_score": 0, "reason": "ok"}`)

	var se *core.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Error(), "must be a list")
}

func TestParse_MultipleSuggestionsPreserveOrder(t *testing.T) {
	raw := `{"suggestions":[
		{"expression":"a","reason":"first"},
		{"expression":"b","reason":"second"},
		{"expression":"c","reason":"third"}
	],"anomaly_score":"low","reason":"ordered"}`

	batch, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, batch.Suggestions, 3)
	assert.Equal(t, "a", batch.Suggestions[0].Expression)
	assert.Equal(t, "b", batch.Suggestions[1].Expression)
	assert.Equal(t, "c", batch.Suggestions[2].Expression)
	assert.Equal(t, "low", batch.AnomalyScore)
}

func TestParse_SurroundingWhitespace(t *testing.T) {
	raw := "\n  {\"suggestions\":[{\"expression\":\"x1\",\"reason\":\"pad\"}],\"anomaly_score\":0,\"reason\":\"ok\"}  \n"

	_, err := Parse(raw)
	require.NoError(t, err)
}

func TestNormalizeLiteral_EscapedSingleQuote(t *testing.T) {
	out := normalizeLiteral(`{'reason': 'it\'s fine'}`)
	assert.Equal(t, `{"reason": "it's fine"}`, out)
}

func TestNormalizeLiteral_DoubleQuoteInsideSingle(t *testing.T) {
	out := normalizeLiteral(`{'reason': 'said "simplify"'}`)
	assert.Equal(t, `{"reason": "said \"simplify\""}`, out)
}

func TestStripFence_Variants(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFence(tt.in))
		})
	}
}
