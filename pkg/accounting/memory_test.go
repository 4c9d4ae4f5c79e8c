package accounting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/advisor/core"
)

func TestMemoryStore_RecordAssignsIDsAndTimestamps(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, UsageRecord{Model: "m", PromptTokens: 10}))
	require.NoError(t, store.Record(ctx, UsageRecord{Model: "m", PromptTokens: 20}))

	records := store.Records()
	require.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, int64(2), records[1].ID)
	assert.False(t, records[0].Timestamp.IsZero())
}

func TestMemoryStore_SummarizeWindow(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Record(ctx, UsageRecord{
			Timestamp:        base.Add(time.Duration(i) * time.Hour),
			Model:            "qwen",
			PromptTokens:     100,
			CompletionTokens: 50,
			TotalTokens:      150,
		}))
	}

	all, err := store.Summarize(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.TotalRecords)
	assert.Equal(t, int64(300), all.TotalPromptTokens)
	assert.Equal(t, int64(150), all.TotalCompletionTokens)
	assert.Equal(t, int64(450), all.TotalTokens)

	window, err := store.Summarize(ctx, base.Add(30*time.Minute), base.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), window.TotalRecords)
	assert.Equal(t, int64(150), window.TotalTokens)
}

func TestRecorder_PersistsModelUsage(t *testing.T) {
	store := NewMemoryStore()
	rec := NewRecorder(store)

	rec.RecordUsage(context.Background(), "qwen", core.Usage{
		PromptTokens:     42,
		CompletionTokens: 8,
		TotalTokens:      50,
	})

	records := store.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "qwen", records[0].Model)
	assert.Equal(t, 42, records[0].PromptTokens)
	assert.Equal(t, 8, records[0].CompletionTokens)
	assert.Equal(t, 50, records[0].TotalTokens)
}
