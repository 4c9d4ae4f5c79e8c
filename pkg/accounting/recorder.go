package accounting

import (
	"context"
	"log/slog"

	"github.com/snow-ghost/advisor/core"
)

// Recorder adapts a Store to the core.UsageRecorder port consumed by the
// model backend client. Recording failures are logged, never propagated;
// usage accounting must not break an advisory round.
type Recorder struct {
	store Store
}

// NewRecorder wraps a store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// RecordUsage persists the usage of one model call.
func (r *Recorder) RecordUsage(ctx context.Context, model string, usage core.Usage) {
	err := r.store.Record(ctx, UsageRecord{
		Model:            model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
	})
	if err != nil {
		slog.WarnContext(ctx, "record usage failed", "model", model, "error", err)
	}
}

var _ core.UsageRecorder = (*Recorder)(nil)
