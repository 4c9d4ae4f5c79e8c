package channel

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/snow-ghost/advisor/core"
)

// Ingestor exposes the driver channel over HTTP: the driver POSTs envelopes
// in, and drains the worker's outbound envelopes with GET.
type Ingestor struct {
	in  core.Sender
	out *Memory
}

// NewIngestor wires an ingestor to the inbound sender and outbound queue.
func NewIngestor(in core.Sender, out *Memory) *Ingestor {
	return &Ingestor{in: in, out: out}
}

// ServeHTTP handles POST (enqueue one envelope) and GET (drain outbound).
func (i *Ingestor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		i.enqueue(w, r)
	case http.MethodGet:
		i.drain(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (i *Ingestor) enqueue(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	// Reject malformed envelopes at the door; the dispatcher discards them
	// anyway, so there is no point queuing garbage.
	if _, err := Decode(body); err != nil {
		slog.WarnContext(r.Context(), "rejected malformed envelope", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := i.in.Send(body); err != nil {
		slog.WarnContext(r.Context(), "inbound queue full", "error", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (i *Ingestor) drain(w http.ResponseWriter, r *http.Request) {
	var envelopes []json.RawMessage
	for {
		data, ok := i.out.TryRecv()
		if !ok {
			break
		}
		envelopes = append(envelopes, json.RawMessage(data))
	}
	if envelopes == nil {
		envelopes = []json.RawMessage{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(envelopes); err != nil {
		slog.WarnContext(r.Context(), "write outbound envelopes", "error", err)
	}
}
