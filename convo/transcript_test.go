package convo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/snow-ghost/advisor/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscript_FlushWritesBlocksInArrivalOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.txt")
	tr, err := OpenTranscript(path)
	require.NoError(t, err)
	defer tr.Close()

	turns := []core.DialogTurn{
		{Role: core.RoleSystem, Content: "system prompt"},
		{Role: core.RoleUser, Content: "round prompt"},
		{Role: core.RoleAssistant, Content: "raw response"},
	}
	require.NoError(t, tr.Flush(turns))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	sysIdx := strings.Index(text, "System:\n\nsystem prompt")
	userIdx := strings.Index(text, "User:\n\nround prompt")
	asstIdx := strings.Index(text, "Assistant:\n\nraw response")
	require.GreaterOrEqual(t, sysIdx, 0)
	assert.Greater(t, userIdx, sysIdx)
	assert.Greater(t, asstIdx, userIdx)
	assert.Equal(t, 3, strings.Count(text, separator))
}

func TestTranscript_NotesPrecedeFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.txt")
	tr, err := OpenTranscript(path)
	require.NoError(t, err)
	defer tr.Close()

	require.NoError(t, tr.WriteNote("Threshold experiment started: threshold=0.03"))
	require.NoError(t, tr.Flush([]core.DialogTurn{{Role: core.RoleUser, Content: "prompt"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Less(t, strings.Index(text, "Threshold experiment started"), strings.Index(text, "User:"))
}

func TestOpenTranscript_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale content"), 0o644))

	tr, err := OpenTranscript(path)
	require.NoError(t, err)
	require.NoError(t, tr.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}
