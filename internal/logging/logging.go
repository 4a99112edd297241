// Package logging builds the structured logger shared by every command.
package logging

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// RunIDKey is the attribute carrying the id of the current run.
const RunIDKey = "run_id"

// New returns a text logger writing to w at level, tagged with a fresh run id.
func New(w io.Writer, level slog.Level) (*slog.Logger, string) {
	runID := uuid.NewString()

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})

	return slog.New(handler).With(slog.String(RunIDKey, runID)), runID
}

// Discard returns a logger dropping everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
