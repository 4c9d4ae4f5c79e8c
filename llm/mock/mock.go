// Package mock provides a scripted model backend for tests and for running
// the worker with LLM_MODE=mock.
package mock

import (
	"context"
	"sync"

	"github.com/snow-ghost/advisor/core"
)

// Reply is one scripted completion: either text or an error.
type Reply struct {
	Text string
	Err  error
}

// Client implements core.ModelClient, replaying scripted replies in order
// and recording the turn list of every call.
type Client struct {
	mu      sync.Mutex
	script  []Reply
	next    int
	calls   [][]core.DialogTurn
	defText string
}

// NewClient creates a scripted client. When the script runs out, Complete
// returns the default reply.
func NewClient(script ...Reply) *Client {
	return &Client{
		script:  script,
		defText: `{"suggestions":[{"expression":"x0","reason":"fallback"}],"anomaly_score":0,"reason":"mock default"}`,
	}
}

// WithDefault overrides the text returned once the script is exhausted.
func (c *Client) WithDefault(text string) *Client {
	c.defText = text
	return c
}

// Complete pops the next scripted reply.
func (c *Client) Complete(ctx context.Context, turns []core.DialogTurn) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make([]core.DialogTurn, len(turns))
	copy(snapshot, turns)
	c.calls = append(c.calls, snapshot)

	if c.next < len(c.script) {
		reply := c.script[c.next]
		c.next++
		if reply.Err != nil {
			return "", reply.Err
		}
		return reply.Text, nil
	}
	return c.defText, nil
}

// Calls returns the turn lists seen so far, one per Complete invocation.
func (c *Client) Calls() [][]core.DialogTurn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]core.DialogTurn, len(c.calls))
	copy(out, c.calls)
	return out
}

// CallCount reports how many times Complete was invoked.
func (c *Client) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

var _ core.ModelClient = (*Client)(nil)
