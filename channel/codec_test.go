package channel

import (
	"errors"
	"testing"

	"github.com/snow-ghost/advisor/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Init(t *testing.T) {
	data := []byte(`{"type":"INIT","payload":{"labels":["x0","x1"],"operators":["gt","and_"]}}`)

	env, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, core.KindInit, env.Kind)

	p, ok := env.Payload.(*core.InitPayload)
	require.True(t, ok)
	assert.Equal(t, []string{"x0", "x1"}, p.Labels)
	assert.Equal(t, []string{"gt", "and_"}, p.Operators)
}

func TestDecode_Command(t *testing.T) {
	env, err := Decode([]byte(`{"type":"COMMAND","payload":{"command":"exit"}}`))
	require.NoError(t, err)

	p, ok := env.Payload.(*core.CommandPayload)
	require.True(t, ok)
	assert.Equal(t, "exit", p.Command)
}

func TestDecode_EvolutionUpdateFirstRound(t *testing.T) {
	data := []byte(`{"type":"EVOLUTION_UPDATE","payload":{"top_individuals":[{"expression":"gt(x0,x1)","fitness":0.81}]}}`)

	env, err := Decode(data)
	require.NoError(t, err)

	p, ok := env.Payload.(*core.EvolutionUpdatePayload)
	require.True(t, ok)
	require.Len(t, p.TopIndividuals, 1)
	assert.Equal(t, "gt(x0,x1)", p.TopIndividuals[0].Expression)
	assert.Nil(t, p.PreviousSuggestions)
}

func TestDecode_EvolutionUpdateWithPreviousSuggestions(t *testing.T) {
	data := []byte(`{"type":"EVOLUTION_UPDATE","payload":{
		"top_individuals":[{"expression":"x0","fitness":0.5}],
		"previous_suggestions":{"suggestions":[
			{"expression":"gt(x0,x1)","status":"success","fitness":0.9,"reason":"simpler"},
			{"expression":"bad(x9)","status":"fail","error":"unknown symbol","reason":"explore"}
		]}}}`)

	env, err := Decode(data)
	require.NoError(t, err)

	p := env.Payload.(*core.EvolutionUpdatePayload)
	require.NotNil(t, p.PreviousSuggestions)
	require.Len(t, p.PreviousSuggestions.Suggestions, 2)

	success := p.PreviousSuggestions.Suggestions[0]
	require.NotNil(t, success.Fitness)
	assert.Equal(t, 0.9, *success.Fitness)

	fail := p.PreviousSuggestions.Suggestions[1]
	assert.Nil(t, fail.Fitness)
	assert.Equal(t, "unknown symbol", fail.Error)
}

func TestDecode_ThresholdStart(t *testing.T) {
	env, err := Decode([]byte(`{"type":"THRESHOLD_START","payload":{"threshold":0.03,"train_size":180,"test_size":20}}`))
	require.NoError(t, err)

	p := env.Payload.(*core.ThresholdStartPayload)
	assert.Equal(t, 0.03, p.Threshold)
	assert.Equal(t, 180, p.TrainSize)
	assert.Equal(t, 20, p.TestSize)
}

func TestDecode_MalformedBytes(t *testing.T) {
	_, err := Decode([]byte(`{"type": "INIT", "payload": `))

	var de *core.DecodeError
	require.True(t, errors.As(err, &de))
}

func TestDecode_PayloadShapeMismatch(t *testing.T) {
	_, err := Decode([]byte(`{"type":"THRESHOLD_START","payload":{"threshold":"not a number"}}`))

	var de *core.DecodeError
	require.True(t, errors.As(err, &de))
}

func TestDecode_UnknownKindIsNotAnError(t *testing.T) {
	env, err := Decode([]byte(`{"type":"HEARTBEAT","payload":{}}`))
	require.NoError(t, err)
	assert.Equal(t, core.MessageKind("HEARTBEAT"), env.Kind)
	assert.Nil(t, env.Payload)
}

func TestEncodeDecode_RoundTripOutbound(t *testing.T) {
	suggestion := core.Envelope{
		Kind: core.KindSuggestion,
		Payload: &core.SuggestionPayload{SuggestionBatch: core.SuggestionBatch{
			Suggestions:  []core.Suggestion{{Expression: "gt(x0,x1)", Reason: "simpler"}},
			AnomalyScore: 0.2,
			Reason:       "ok",
		}},
	}
	data, err := Encode(suggestion)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	p, ok := decoded.Payload.(*core.SuggestionPayload)
	require.True(t, ok)
	require.Len(t, p.Suggestions, 1)
	assert.Equal(t, "gt(x0,x1)", p.Suggestions[0].Expression)

	errEnv := core.Envelope{
		Kind:    core.KindError,
		Payload: &core.ErrorPayload{Error: "retries exhausted", Retries: 3},
	}
	data, err = Encode(errEnv)
	require.NoError(t, err)

	decoded, err = Decode(data)
	require.NoError(t, err)
	ep, ok := decoded.Payload.(*core.ErrorPayload)
	require.True(t, ok)
	assert.Equal(t, 3, ep.Retries)
}
