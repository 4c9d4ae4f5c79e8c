package core

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned by Receiver.Recv when the poll window elapsed
// without a message. The dispatcher treats it as a no-op re-poll.
var ErrTimeout = errors.New("channel receive timeout")

// DecodeError wraps a failure to decode envelope bytes from the channel.
// The dispatcher logs and discards the message; the loop never crashes.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode envelope: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// ParseError means the raw model text survived neither the strict nor the
// permissive parse. It is retried with corrective feedback.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("cannot parse response format: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError means the parsed payload is missing a required field.
// Constraint names the violated requirement verbatim for model feedback.
type SchemaError struct {
	Constraint string
}

func (e *SchemaError) Error() string { return e.Constraint }

// TransportError marks a model backend failure (unreachable endpoint,
// 5xx, empty completion). It is retried with backoff against a separate
// budget and never generates corrective conversation turns.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("model backend: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// ExhaustedError is returned when the retry budget is consumed without a
// valid suggestion batch.
type ExhaustedError struct {
	LastErr error
	Retries int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Retries, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsContent reports whether err is a content-level validation failure
// (parse or schema) that warrants corrective feedback to the model.
func IsContent(err error) bool {
	var pe *ParseError
	var se *SchemaError
	return errors.As(err, &pe) || errors.As(err, &se)
}
