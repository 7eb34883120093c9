// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feedback

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/referee-engine/pkg/types"
)

func TestAppendAndReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "feedback.jsonl")
	l := Open(path, nil)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, l.Append(types.FeedbackRecord{Journal: "SICON", ManuscriptID: "M-1", Decision: "reject", RecordedAt: at}))
	require.NoError(t, l.Append(types.FeedbackRecord{Journal: " MAFE ", ManuscriptID: "M-2", Decision: "declined", Referee: "Jane Doe"}))

	got, err := l.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "reject", got[0].Decision)
	assert.True(t, at.Equal(got[0].RecordedAt))
	assert.Equal(t, "MAFE", got[1].Journal)
	assert.Equal(t, "Jane Doe", got[1].Referee)
	assert.False(t, got[1].RecordedAt.IsZero())
}

func TestAppend_Validates(t *testing.T) {
	l := Open(filepath.Join(t.TempDir(), "f.jsonl"), nil)
	assert.Error(t, l.Append(types.FeedbackRecord{Journal: "SICON", Decision: "reject"}))
	assert.Error(t, l.Append(types.FeedbackRecord{Journal: "SICON", ManuscriptID: "M-1"}))

	l.Record(types.FeedbackRecord{ManuscriptID: "M-1"})
	_, err := os.Stat(l.Path())
	assert.True(t, os.IsNotExist(err), "invalid records are never written")
}

func TestReadAll_SkipsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.jsonl")
	content := `{"journal":"SICON","manuscript_id":"M-1","decision":"accept","recorded_at":"2026-01-01T00:00:00Z"}
not json
{"journal":"SICON","decision":"accept"}

{"journal":"SICON","manuscript_id":"M-2","decision":"reject","recorded_at":"2026-01-02T00:00:00Z"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := Open(path, nil).ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "M-1", got[0].ManuscriptID)
	assert.Equal(t, "M-2", got[1].ManuscriptID)
}

func TestReadAll_Missing(t *testing.T) {
	got, err := Open(filepath.Join(t.TempDir(), "none.jsonl"), nil).ReadAll()
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestAppend_Concurrent(t *testing.T) {
	l := Open(filepath.Join(t.TempDir(), "f.jsonl"), nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Record(types.FeedbackRecord{Journal: "SICON", ManuscriptID: "M", Decision: "accept"})
		}()
	}
	wg.Wait()

	got, err := l.ReadAll()
	require.NoError(t, err)
	assert.Len(t, got, 20)
}
