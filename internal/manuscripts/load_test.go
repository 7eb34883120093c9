// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package manuscripts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/referee-engine/pkg/types"
)

func TestLoadDir_MixedFormats(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(filepath.Join(dir, "M-1.json"), types.ManuscriptRecord{
		ID: "M-1", Title: "Jump diffusions", Keywords: []string{"stochastic control"},
		Referees: []types.RefereeRecord{{Person: types.Person{Name: "Jane Doe", Email: "jd@x.org"}, Status: "Agreed"}},
	}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "M-2.yaml"), []byte(`
title: Optimal stopping
journal_code: SICON
referees:
  - name: John Smith
    email: js@y.edu
    status: Declined
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))

	records, failed, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Len(t, failed, 1)
	assert.Equal(t, filepath.Join(dir, "broken.json"), failed[0].Path)

	assert.Equal(t, "M-1", records[0].ID)
	assert.Equal(t, "jd@x.org", records[0].Referees[0].Email)

	assert.Equal(t, "M-2", records[1].ID, "missing id falls back to file name")
	assert.Equal(t, "John Smith", records[1].Referees[0].Name)
	assert.Equal(t, "Declined", records[1].Referees[0].Status)
}

func TestLoadDir_Missing(t *testing.T) {
	records, failed, err := LoadDir(filepath.Join(t.TempDir(), "absent"))
	assert.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, failed)
}

func TestIsRecordFile(t *testing.T) {
	assert.True(t, IsRecordFile("a.JSON"))
	assert.True(t, IsRecordFile("a.yml"))
	assert.False(t, IsRecordFile("a.md"))
}
