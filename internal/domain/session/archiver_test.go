package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"

	"github.com/ganot/laptrack/internal/domain/session"
	"github.com/ganot/laptrack/internal/domain/stopwatch"
)

type fakeHistory struct {
	appended []session.Session
	err      error
}

func (h *fakeHistory) Append(_ context.Context, sess session.Session) error {
	if h.err != nil {
		return h.err
	}
	h.appended = append(h.appended, sess)
	return nil
}

func TestArchiver_SkipsUntouchedRun(t *testing.T) {
	hist := &fakeHistory{}
	arch := session.NewArchiver(clockz.NewFakeClock(), hist, nil)

	arch.Archive(context.Background(), 0, nil, "")
	require.Empty(t, hist.appended)
}

func TestArchiver_BuildsSessionFromRun(t *testing.T) {
	clock := clockz.NewFakeClock()
	hist := &fakeHistory{}
	arch := session.NewArchiver(clock, hist, nil)

	laps := []stopwatch.Lap{
		{Number: 1, LapTime: 2000, TotalTime: 2000},
		{Number: 2, LapTime: 3000, TotalTime: 5000},
	}
	arch.Archive(context.Background(), 5000, laps, "intervals")

	require.Len(t, hist.appended, 1)
	sess := hist.appended[0]
	require.Equal(t, clock.Now().UnixMilli(), sess.ID)
	require.Equal(t, "intervals", sess.Title)
	require.Equal(t, clock.Now().Format(session.DateFormat), sess.Date)
	require.Equal(t, stopwatch.Millis(5000), sess.TotalTime)
	require.Equal(t, laps, sess.Laps)
	require.Equal(t, 2, sess.LapCount)
}

func TestArchiver_ZeroElapsedWithLapsIsArchived(t *testing.T) {
	hist := &fakeHistory{}
	arch := session.NewArchiver(clockz.NewFakeClock(), hist, nil)

	arch.Archive(context.Background(), 0, []stopwatch.Lap{{Number: 1}}, "")
	require.Len(t, hist.appended, 1)
}

func TestArchiver_SwallowsPersistenceFailure(t *testing.T) {
	hist := &fakeHistory{err: errors.New("backend down")}
	arch := session.NewArchiver(clockz.NewFakeClock(), hist, nil)

	// Must not panic or propagate; the reset that triggered this has
	// already completed.
	arch.Archive(context.Background(), 1000, nil, "")
	require.Empty(t, hist.appended)
}

func TestSession_JSONShape(t *testing.T) {
	now := time.Date(2025, 3, 9, 14, 30, 5, 0, time.UTC)
	sess := session.New(now, 5000, []stopwatch.Lap{{Number: 1, LapTime: 5000, TotalTime: 5000}}, "run")

	data, err := json.Marshal(sess)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, field := range []string{"id", "title", "date", "totalTime", "laps", "lapCount"} {
		require.Contains(t, decoded, field)
	}
	require.Equal(t, "09/03/2025, 14:30:05", decoded["date"])

	laps := decoded["laps"].([]any)
	lap := laps[0].(map[string]any)
	for _, field := range []string{"number", "lapTime", "totalTime"} {
		require.Contains(t, lap, field)
	}
}

func TestSession_EmptyLapsMarshalsAsArray(t *testing.T) {
	sess := session.New(time.Now(), 100, nil, "")
	data, err := json.Marshal(sess)
	require.NoError(t, err)
	require.Contains(t, string(data), `"laps":[]`)
	require.Equal(t, 0, sess.LapCount)
}
