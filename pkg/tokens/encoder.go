// Package tokens counts prompt tokens for logging and metrics.
package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	"github.com/snow-ghost/advisor/core"
)

// Encoder counts tokens in text.
type Encoder interface {
	Count(text string) (int, error)
}

// TiktokenEncoder implements Encoder using tiktoken-go.
type TiktokenEncoder struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenEncoder creates an encoder for the named encoding
// (cl100k_base when empty).
func NewTiktokenEncoder(encodingName string) (*TiktokenEncoder, error) {
	if encodingName == "" {
		encodingName = "cl100k_base"
	}
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("get encoding %s: %w", encodingName, err)
	}
	return &TiktokenEncoder{encoding: encoding}, nil
}

// Count returns the number of tokens in text.
func (e *TiktokenEncoder) Count(text string) (int, error) {
	return len(e.encoding.Encode(text, nil, nil)), nil
}

// MockEncoder approximates tokens as characters over four, for tests and
// for environments where the encoding files are unavailable.
type MockEncoder struct{}

// Count returns a character-based estimate.
func (MockEncoder) Count(text string) (int, error) {
	n := len(text) / 4
	if n < 1 && len(text) > 0 {
		n = 1
	}
	return n, nil
}

// CountTurns sums the token counts of every turn's content.
func CountTurns(enc Encoder, turns []core.DialogTurn) int {
	if enc == nil {
		return 0
	}
	total := 0
	for _, turn := range turns {
		if n, err := enc.Count(turn.Content); err == nil {
			total += n
		}
	}
	return total
}
