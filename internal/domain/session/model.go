package session

import (
	"time"

	"github.com/ganot/laptrack/internal/domain/stopwatch"
)

// DateFormat is the human-readable timestamp layout recorded on a
// session at creation time. It is formatted once and never reparsed.
const DateFormat = "02/01/2006, 15:04:05"

// Session is one completed, archived timer run. It is constructed
// exactly once, when a non-trivial run is reset, and never mutated
// afterwards.
type Session struct {
	ID        int64            `json:"id"`
	Title     string           `json:"title"`
	Date      string           `json:"date"`
	TotalTime stopwatch.Millis `json:"totalTime"`
	Laps      []stopwatch.Lap  `json:"laps"`
	LapCount  int              `json:"lapCount"`
}

// New builds a session for a run that ended at the given instant. The
// ID is the creation instant in Unix milliseconds, effectively unique
// per device-moment.
func New(now time.Time, total stopwatch.Millis, laps []stopwatch.Lap, title string) Session {
	if laps == nil {
		laps = []stopwatch.Lap{}
	}
	return Session{
		ID:        now.UnixMilli(),
		Title:     title,
		Date:      now.Format(DateFormat),
		TotalTime: total,
		Laps:      laps,
		LapCount:  len(laps),
	}
}
