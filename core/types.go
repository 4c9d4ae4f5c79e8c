package core

// MessageKind discriminates envelopes exchanged with the GP driver.
type MessageKind string

const (
	KindInit            MessageKind = "INIT"
	KindCommand         MessageKind = "COMMAND"
	KindEvolutionUpdate MessageKind = "EVOLUTION_UPDATE"
	KindThresholdStart  MessageKind = "THRESHOLD_START"
	KindSuggestion      MessageKind = "SUGGESTION"
	KindError           MessageKind = "ERROR"
)

// Role is the sender type of a dialog turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DialogTurn is one entry of the conversation held with the model backend.
type DialogTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Individual is a read-only population snapshot supplied by the driver.
type Individual struct {
	Expression string  `json:"expression"`
	Fitness    float64 `json:"fitness"`
}

// Outcome status values reported by the driver for a prior suggestion.
const (
	OutcomeSuccess = "success"
	OutcomeFail    = "fail"
)

// RoundOutcome describes how one suggestion from a previous round fared
// when the driver evaluated it.
type RoundOutcome struct {
	Expression string   `json:"expression"`
	Status     string   `json:"status"`
	Fitness    *float64 `json:"fitness,omitempty"`
	Error      string   `json:"error,omitempty"`
	Reason     string   `json:"reason"`
}

// RoundReport groups the outcomes of the previous advisory round.
type RoundReport struct {
	Suggestions []RoundOutcome `json:"suggestions"`
}

// Suggestion is one proposed expression improvement. Both fields are
// mandatory; the validator rejects payloads missing either.
type Suggestion struct {
	Expression string `json:"expression"`
	Reason     string `json:"reason"`
}

// SuggestionBatch is the validated payload of one model response.
// AnomalyScore is kept as the model produced it (number or string).
type SuggestionBatch struct {
	Suggestions  []Suggestion `json:"suggestions"`
	AnomalyScore any          `json:"anomaly_score"`
	Reason       string       `json:"reason"`
}

// Envelope is one typed message on the channel. Payload is decoded once
// at the channel boundary into the variant matching Kind.
type Envelope struct {
	Kind    MessageKind
	Payload Payload
}

// Payload is implemented by every envelope payload variant.
type Payload interface {
	MessageKind() MessageKind
}

// InitPayload configures the advisory scenario.
type InitPayload struct {
	Labels    []string `json:"labels"`
	Operators []string `json:"operators"`
}

// CommandPayload carries a control command; only "exit" is recognized.
type CommandPayload struct {
	Command string `json:"command"`
}

// EvolutionUpdatePayload carries the current top individuals and, after the
// first round, the outcomes of the previous round's suggestions.
type EvolutionUpdatePayload struct {
	TopIndividuals      []Individual `json:"top_individuals"`
	PreviousSuggestions *RoundReport `json:"previous_suggestions,omitempty"`
}

// ThresholdStartPayload marks an epoch boundary in the threshold sweep.
type ThresholdStartPayload struct {
	Threshold float64 `json:"threshold"`
	TrainSize int     `json:"train_size"`
	TestSize  int     `json:"test_size"`
}

// SuggestionPayload is the outbound payload of a successful round.
type SuggestionPayload struct {
	SuggestionBatch
}

// ErrorPayload is the outbound payload of an exhausted round.
type ErrorPayload struct {
	Error   string `json:"error"`
	Retries int    `json:"retries"`
}

func (InitPayload) MessageKind() MessageKind            { return KindInit }
func (CommandPayload) MessageKind() MessageKind         { return KindCommand }
func (EvolutionUpdatePayload) MessageKind() MessageKind { return KindEvolutionUpdate }
func (ThresholdStartPayload) MessageKind() MessageKind  { return KindThresholdStart }
func (SuggestionPayload) MessageKind() MessageKind      { return KindSuggestion }
func (ErrorPayload) MessageKind() MessageKind           { return KindError }

// Usage reports token consumption of one model backend call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
