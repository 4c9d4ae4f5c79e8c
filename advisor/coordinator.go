package advisor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/snow-ghost/advisor/channel"
	"github.com/snow-ghost/advisor/convo"
	"github.com/snow-ghost/advisor/core"
	"github.com/snow-ghost/advisor/pkg/cache"
	"github.com/snow-ghost/advisor/pkg/logging"
	"github.com/snow-ghost/advisor/pkg/metrics"
	"github.com/snow-ghost/advisor/pkg/tokens"
	"github.com/snow-ghost/advisor/pkg/tracing"
	"github.com/snow-ghost/advisor/prompt"
	"github.com/snow-ghost/advisor/validate"
)

// Coordinator drives the bounded model/validate loop for one advisory
// round. Every round ends in exactly one outbound envelope: SUGGESTION on
// the first validated response, ERROR when the budget is exhausted or the
// backend gives up.
//
// Failure classes are kept apart: parse and schema failures consume the
// content budget and feed corrective turns back into the conversation,
// while transport failures are retried silently with backoff inside the
// model client and never grow the conversation.
type Coordinator struct {
	model      core.ModelClient
	modelName  string
	out        core.Sender
	maxRetries int

	cache   *cache.ResponseCache
	metrics *metrics.Metrics
	encoder tokens.Encoder
	tracer  *tracing.Tracer
	logger  *logging.Logger
}

// CoordinatorOption configures optional coordinator behavior.
type CoordinatorOption func(*Coordinator)

// WithCache reuses recent raw responses for identical conversation states.
func WithCache(c *cache.ResponseCache) CoordinatorOption {
	return func(co *Coordinator) { co.cache = c }
}

// WithMetrics records round metrics.
func WithMetrics(m *metrics.Metrics) CoordinatorOption {
	return func(co *Coordinator) { co.metrics = m }
}

// WithTokenEncoder observes prompt sizes.
func WithTokenEncoder(enc tokens.Encoder) CoordinatorOption {
	return func(co *Coordinator) { co.encoder = enc }
}

// WithTracer opens spans around model attempts.
func WithTracer(t *tracing.Tracer) CoordinatorOption {
	return func(co *Coordinator) { co.tracer = t }
}

// WithModelName labels model metrics with the backend model identifier.
func WithModelName(name string) CoordinatorOption {
	return func(co *Coordinator) { co.modelName = name }
}

// WithLogger reports model call outcomes through the structured logger.
func WithLogger(l *logging.Logger) CoordinatorOption {
	return func(co *Coordinator) { co.logger = l }
}

// NewCoordinator creates a coordinator with at most maxRetries content
// attempts per round.
func NewCoordinator(model core.ModelClient, out core.Sender, maxRetries int, opts ...CoordinatorOption) *Coordinator {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	c := &Coordinator{
		model:      model,
		out:        out,
		maxRetries: maxRetries,
		tracer:     tracing.NewNoopTracer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes the retry loop over state. Every attempt appends the raw
// model response as an assistant turn, and every retriable content failure
// additionally appends a corrective user turn, so the conversation records
// the full exchange regardless of outcome.
func (c *Coordinator) Run(ctx context.Context, state *convo.State) (core.SuggestionBatch, error) {
	retries := 0
	var lastErr error

	for retries < c.maxRetries {
		raw, key, cached, err := c.invoke(ctx, state.Turns(), retries)
		if err != nil {
			// Backend unreachable after its own backoff budget: abort the
			// round without touching the conversation.
			slog.ErrorContext(ctx, "model backend failed", "error", err, "attempts", retries)
			c.emitError(ctx, err.Error(), retries)
			return core.SuggestionBatch{}, &core.ExhaustedError{LastErr: err, Retries: retries}
		}

		state.Append(core.RoleAssistant, raw)
		slog.InfoContext(ctx, "model response received", "attempt", retries+1, "max_attempts", c.maxRetries, "bytes", len(raw))

		batch, verr := validate.Parse(raw)
		if verr == nil {
			// Only validated responses enter the cache; replaying known-bad
			// text would burn a content retry without a backend call.
			if c.cache != nil && !cached {
				c.cache.Put(key, raw)
			}
			c.emitSuggestion(ctx, batch)
			return batch, nil
		}

		lastErr = verr
		retries++
		c.countValidationFailure(verr)
		slog.WarnContext(ctx, "response validation failed", "error", verr, "attempt", retries)

		if retries < c.maxRetries {
			state.Append(core.RoleUser, prompt.ErrorFeedback(verr.Error()))
			if c.metrics != nil {
				c.metrics.ModelRetriesTotal.WithLabelValues("content").Inc()
			}
		}
	}

	c.emitError(ctx, lastErr.Error(), retries)
	return core.SuggestionBatch{}, &core.ExhaustedError{LastErr: lastErr, Retries: retries}
}

// invoke obtains one raw response, from the cache when the conversation
// state was seen recently, otherwise from the model backend. It reports the
// cache key and whether the response came from the cache; the caller stores
// validated responses under that key.
func (c *Coordinator) invoke(ctx context.Context, turns []core.DialogTurn, attempt int) (string, cache.Key, bool, error) {
	var key cache.Key
	if c.cache != nil {
		key = cache.KeyFor(turns)
		if raw, ok := c.cache.Get(key); ok {
			if c.metrics != nil {
				c.metrics.CacheHitsTotal.Inc()
			}
			slog.DebugContext(ctx, "response cache hit")
			return raw, key, true, nil
		}
		if c.metrics != nil {
			c.metrics.CacheMissesTotal.Inc()
		}
	}

	promptTokens := 0
	if c.encoder != nil {
		promptTokens = tokens.CountTurns(c.encoder, turns)
		if c.metrics != nil {
			c.metrics.PromptTokens.Observe(float64(promptTokens))
		}
	}

	ctx, span := c.tracer.StartModelSpan(ctx, attempt+1)
	defer span.End()

	// The backend call blocks without a per-call deadline; only the
	// channel poll timeout bounds worst-case unresponsiveness.
	start := time.Now()
	raw, err := c.model.Complete(ctx, turns)
	elapsed := time.Since(start)
	if c.metrics != nil {
		c.metrics.ObserveModelCall(c.modelName, elapsed)
	}
	if c.logger != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		c.logger.LogModelRequest(c.modelName, status, elapsed, promptTokens)
	}
	if err != nil {
		return "", key, false, err
	}
	return raw, key, false, nil
}

func (c *Coordinator) countValidationFailure(err error) {
	if c.metrics == nil {
		return
	}
	stage := "schema"
	var pe *core.ParseError
	if errors.As(err, &pe) {
		stage = "parse"
	}
	c.metrics.ValidationFailed.WithLabelValues(stage).Inc()
}

func (c *Coordinator) emitSuggestion(ctx context.Context, batch core.SuggestionBatch) {
	env := core.Envelope{
		Kind:    core.KindSuggestion,
		Payload: &core.SuggestionPayload{SuggestionBatch: batch},
	}
	if c.send(ctx, env) && c.metrics != nil {
		c.metrics.SuggestionsTotal.Inc()
	}
}

func (c *Coordinator) emitError(ctx context.Context, message string, retries int) {
	env := core.Envelope{
		Kind:    core.KindError,
		Payload: &core.ErrorPayload{Error: message, Retries: retries},
	}
	if c.send(ctx, env) && c.metrics != nil {
		c.metrics.ErrorsTotal.Inc()
	}
}

func (c *Coordinator) send(ctx context.Context, env core.Envelope) bool {
	data, err := channel.Encode(env)
	if err != nil {
		slog.ErrorContext(ctx, "encode outbound envelope", "kind", env.Kind, "error", err)
		return false
	}
	if err := c.out.Send(data); err != nil {
		slog.ErrorContext(ctx, "send outbound envelope", "kind", env.Kind, "error", err)
		return false
	}
	return true
}
