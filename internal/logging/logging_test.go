package logging_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmendiboure/hicstuff/internal/logging"
)

func TestNew(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	logger, runID := logging.New(&out, slog.LevelInfo)

	_, err := uuid.Parse(runID)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("digest done", "contigs", 3)

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "msg=\"digest done\"")
	assert.Contains(t, out.String(), "contigs=3")
	assert.Contains(t, out.String(), logging.RunIDKey+"="+runID)

	_, other := logging.New(&out, slog.LevelInfo)
	assert.NotEqual(t, runID, other)
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	assert.False(t, logging.Discard().Enabled(t.Context(), slog.LevelError))
}
