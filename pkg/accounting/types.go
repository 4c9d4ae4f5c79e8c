// Package accounting records token usage of model backend calls.
package accounting

import (
	"context"
	"time"
)

// UsageRecord is one model call's token consumption.
type UsageRecord struct {
	ID               int64     `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	Model            string    `json:"model"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
}

// Summary aggregates usage over a time window.
type Summary struct {
	TotalRecords          int64 `json:"total_records"`
	TotalPromptTokens     int64 `json:"total_prompt_tokens"`
	TotalCompletionTokens int64 `json:"total_completion_tokens"`
	TotalTokens           int64 `json:"total_tokens"`
}

// Store persists usage records.
type Store interface {
	Record(ctx context.Context, rec UsageRecord) error
	Summarize(ctx context.Context, from, to time.Time) (Summary, error)
	Close() error
}
