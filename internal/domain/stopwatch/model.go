package stopwatch

import (
	"fmt"
	"time"
)

// Millis is a duration in whole milliseconds, the unit laps and
// sessions are stored and persisted in.
type Millis int64

// Duration converts m back to a time.Duration.
func (m Millis) Duration() time.Duration {
	return time.Duration(m) * time.Millisecond
}

// String formats m as mm:ss.cc for display.
func (m Millis) String() string {
	totalSeconds := m / 1000
	minutes := totalSeconds / 60
	seconds := totalSeconds % 60
	centis := (m % 1000) / 10
	return fmt.Sprintf("%02d:%02d.%02d", minutes, seconds, centis)
}

func millisBetween(from, to time.Time) Millis {
	return Millis(to.Sub(from).Milliseconds())
}

// Lap is one recorded split within a timer run. TotalTime is the
// elapsed time since the run started; LapTime is the time since the
// previous lap boundary, so TotalTime is always the running sum of
// LapTime values.
type Lap struct {
	Number    int    `json:"number"`
	LapTime   Millis `json:"lapTime"`
	TotalTime Millis `json:"totalTime"`
}
