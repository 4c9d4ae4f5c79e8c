package core

import (
	"context"
	"time"
)

// Receiver is the inbound side of the driver channel. Recv blocks for at
// most timeout and returns ErrTimeout when nothing arrived.
type Receiver interface {
	Recv(timeout time.Duration) ([]byte, error)
}

// Sender is the outbound side of the driver channel.
type Sender interface {
	Send(data []byte) error
}

// ModelClient produces one textual completion for the full ordered turn
// list. Implementations return *TransportError for backend failures so the
// retry coordinator can tell them apart from content errors.
type ModelClient interface {
	Complete(ctx context.Context, turns []DialogTurn) (string, error)
}

// UsageRecorder receives token usage after each model backend call.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, model string, usage Usage)
}
