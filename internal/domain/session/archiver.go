package session

import (
	"context"
	"io"
	"log/slog"

	"github.com/zoobzio/clockz"

	"github.com/ganot/laptrack/internal/domain/stopwatch"
)

// HistoryAppender persists archived sessions.
type HistoryAppender interface {
	Append(ctx context.Context, sess Session) error
}

// Archiver turns finished timer runs into Sessions and hands them to
// the history store. It never reports failure to its caller: a reset
// must complete from the user's point of view whether or not the
// session could be persisted.
type Archiver struct {
	clock   clockz.Clock
	history HistoryAppender
	logger  *slog.Logger
}

// NewArchiver creates an archiver writing through the given history.
func NewArchiver(clock clockz.Clock, history HistoryAppender, logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Archiver{
		clock:   clock,
		history: history,
		logger:  logger,
	}
}

// Archive persists the run if it is non-trivial. A reset on an
// untouched timer (zero elapsed, no laps) produces no session.
func (a *Archiver) Archive(ctx context.Context, total stopwatch.Millis, laps []stopwatch.Lap, title string) {
	if total <= 0 && len(laps) == 0 {
		return
	}
	sess := New(a.clock.Now(), total, laps, title)
	if err := a.history.Append(ctx, sess); err != nil {
		a.logger.Error("failed to archive session", "session_id", sess.ID, "error", err)
		return
	}
	a.logger.Info("session archived", "session_id", sess.ID, "total_ms", int64(sess.TotalTime), "laps", sess.LapCount)
}
