// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/referee-engine/pkg/types"
)

func TestNewWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWriter(types.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("catalog failed", zap.String("catalog", "openalex"))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"catalog failed"`)
	assert.Contains(t, out, `"catalog":"openalex"`)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestNewWriter_ConsoleDefault(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWriter(types.LogConfig{}, &buf)
	require.NoError(t, err)
	log.Debug("hidden")
	log.Info("ready")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "ready")
}

func TestNewWriter_Invalid(t *testing.T) {
	_, err := NewWriter(types.LogConfig{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
	_, err = NewWriter(types.LogConfig{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
