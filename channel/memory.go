package channel

import (
	"errors"
	"time"

	"github.com/snow-ghost/advisor/core"
)

// ErrFull is returned by Send when the queue has no capacity left. The
// worker logs and drops rather than blocking the dispatch loop.
var ErrFull = errors.New("channel queue full")

// Memory is a bounded in-memory byte channel satisfying both sides of the
// driver channel contract. Multiple producers may Send; the dispatcher is
// the single consumer.
type Memory struct {
	ch chan []byte
}

// NewMemory creates a memory channel holding at most size messages.
func NewMemory(size int) *Memory {
	if size <= 0 {
		size = 64
	}
	return &Memory{ch: make(chan []byte, size)}
}

// Recv blocks for at most timeout and returns core.ErrTimeout when no
// message arrived inside the window.
func (m *Memory) Recv(timeout time.Duration) ([]byte, error) {
	select {
	case data := <-m.ch:
		return data, nil
	case <-time.After(timeout):
		return nil, core.ErrTimeout
	}
}

// Send enqueues one message without blocking.
func (m *Memory) Send(data []byte) error {
	select {
	case m.ch <- data:
		return nil
	default:
		return ErrFull
	}
}

// TryRecv drains one message without waiting, for outbound consumers.
func (m *Memory) TryRecv() ([]byte, bool) {
	select {
	case data := <-m.ch:
		return data, true
	default:
		return nil, false
	}
}

var (
	_ core.Receiver = (*Memory)(nil)
	_ core.Sender   = (*Memory)(nil)
)
