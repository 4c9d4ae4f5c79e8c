// Package advisor implements the LLM advisor worker: a single cooperative
// consumer that drains the driver channel, maintains the conversation with
// the model backend, and answers population updates with validated
// improvement suggestions.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/snow-ghost/advisor/channel"
	"github.com/snow-ghost/advisor/convo"
	"github.com/snow-ghost/advisor/core"
	"github.com/snow-ghost/advisor/pkg/logging"
	"github.com/snow-ghost/advisor/pkg/metrics"
	"github.com/snow-ghost/advisor/pkg/tracing"
	"github.com/snow-ghost/advisor/prompt"
)

// Dispatcher is the top-level loop. It processes one envelope to full
// completion, including every retry attempt of a round, before polling for
// the next; the poll timeout is the sole suspension point.
type Dispatcher struct {
	rx          core.Receiver
	coord       *Coordinator
	state       *convo.State
	transcript  *convo.Transcript
	pollTimeout time.Duration

	metrics *metrics.Metrics
	tracer  *tracing.Tracer
	logger  *logging.Logger
}

// DispatcherOption configures optional dispatcher behavior.
type DispatcherOption func(*Dispatcher)

// WithDispatcherMetrics records envelope metrics.
func WithDispatcherMetrics(m *metrics.Metrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithDispatcherTracer opens spans around envelope handling.
func WithDispatcherTracer(t *tracing.Tracer) DispatcherOption {
	return func(d *Dispatcher) { d.tracer = t }
}

// WithDispatcherLogger records envelope receipt through the structured
// logger, tagged with the per-envelope request ID.
func WithDispatcherLogger(l *logging.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher creates the worker loop. transcript may be nil when no
// conversation dump is wanted.
func NewDispatcher(rx core.Receiver, coord *Coordinator, transcript *convo.Transcript, pollTimeout time.Duration, opts ...DispatcherOption) *Dispatcher {
	if pollTimeout <= 0 {
		pollTimeout = time.Second
	}
	d := &Dispatcher{
		rx:          rx,
		coord:       coord,
		state:       convo.NewState(),
		transcript:  transcript,
		pollTimeout: pollTimeout,
		tracer:      tracing.NewNoopTracer(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State exposes the conversation for tests and the embedding process.
func (d *Dispatcher) State() *convo.State {
	return d.state
}

// Run polls the channel until COMMAND("exit") arrives or ctx is canceled.
// Both paths flush the accumulated turns to the transcript; nothing
// received afterwards is processed.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.flushTranscript(ctx)
			return ctx.Err()
		default:
		}

		data, err := d.rx.Recv(d.pollTimeout)
		if errors.Is(err, core.ErrTimeout) {
			continue
		}
		if err != nil {
			slog.WarnContext(ctx, "channel receive failed", "error", err)
			continue
		}

		env, err := channel.Decode(data)
		if err != nil {
			slog.WarnContext(ctx, "failed to decode envelope", "error", err)
			d.countDiscard("decode")
			continue
		}

		if exit := d.dispatch(ctx, env); exit {
			return nil
		}
	}
}

// dispatch handles one decoded envelope; it reports true on exit.
func (d *Dispatcher) dispatch(ctx context.Context, env core.Envelope) bool {
	requestID := uuid.NewString()
	ctx, span := d.tracer.StartEnvelopeSpan(ctx, string(env.Kind), requestID)
	defer span.End()

	if d.logger != nil {
		d.logger.WithRequestID(requestID).LogEnvelope(string(env.Kind))
	}
	if d.metrics != nil {
		d.metrics.EnvelopesTotal.WithLabelValues(string(env.Kind)).Inc()
	}

	switch p := env.Payload.(type) {
	case *core.InitPayload:
		d.handleInit(ctx, p)
	case *core.CommandPayload:
		if p.Command == "exit" {
			slog.InfoContext(ctx, "exit command received, ending conversation")
			d.flushTranscript(ctx)
			return true
		}
		slog.WarnContext(ctx, "unrecognized command", "command", p.Command)
		d.countDiscard("unknown_command")
	case *core.EvolutionUpdatePayload:
		d.handleUpdate(ctx, p)
	case *core.ThresholdStartPayload:
		d.handleThresholdStart(ctx, p)
	default:
		slog.WarnContext(ctx, "unrecognized message kind", "kind", env.Kind)
		d.countDiscard("unknown_kind")
	}
	return false
}

func (d *Dispatcher) handleInit(ctx context.Context, p *core.InitPayload) {
	system := prompt.System(p.Labels, p.Operators)
	d.state.SetPrefix([]core.DialogTurn{{Role: core.RoleSystem, Content: system}})
	slog.InfoContext(ctx, "system initialized",
		"labels", p.Labels,
		"operators", p.Operators,
	)
}

func (d *Dispatcher) handleUpdate(ctx context.Context, p *core.EvolutionUpdatePayload) {
	var text string
	if p.PreviousSuggestions == nil {
		text = prompt.FirstRound(p.TopIndividuals)
	} else {
		text = prompt.SubsequentRound(p.TopIndividuals, *p.PreviousSuggestions)
	}
	d.state.Append(core.RoleUser, text)

	// Coordinator failure is non-fatal: the driver already received an
	// ERROR envelope, the loop keeps draining.
	if _, err := d.coord.Run(ctx, d.state); err != nil {
		slog.WarnContext(ctx, "advisory round failed", "error", err)
	}
}

func (d *Dispatcher) handleThresholdStart(ctx context.Context, p *core.ThresholdStartPayload) {
	d.state.Reset()
	info := fmt.Sprintf("Threshold experiment started: threshold=%g, train_size=%d, test_size=%d",
		p.Threshold, p.TrainSize, p.TestSize)
	slog.InfoContext(ctx, "epoch boundary",
		"threshold", p.Threshold,
		"train_size", p.TrainSize,
		"test_size", p.TestSize,
	)
	if d.transcript != nil {
		if err := d.transcript.WriteNote(info); err != nil {
			slog.WarnContext(ctx, "write epoch note failed", "error", err)
		}
	}
}

func (d *Dispatcher) flushTranscript(ctx context.Context) {
	if d.transcript == nil {
		return
	}
	if err := d.transcript.Flush(d.state.Turns()); err != nil {
		slog.WarnContext(ctx, "transcript flush failed", "error", err)
	}
}

func (d *Dispatcher) countDiscard(reason string) {
	if d.metrics != nil {
		d.metrics.DiscardedTotal.WithLabelValues(reason).Inc()
	}
}
