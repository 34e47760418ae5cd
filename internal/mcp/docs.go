package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `laptrack is a stopwatch with lap timing and a session history.

Core concepts:
- Stopwatch: one timer with millisecond precision. start/stop/reset, plus lap marks while running.
- Lap: numbered split; lapTime is the time since the previous mark, totalTime the elapsed at the mark.
- Session: an archived run. Resetting a non-trivial run (elapsed > 0 or laps taken) archives it automatically.
- History: the 50 most recent sessions, newest first. Stored on this device while anonymous, in the account's cloud collection once signed in.

Typical flow:
1) stopwatch_start, then stopwatch_lap at each split, stopwatch_stop to pause.
2) Optionally set_title before resetting so the archived session is named.
3) stopwatch_reset archives the run and zeroes the timer.
4) history_list / history_get to review past sessions.
5) sign_up or sign_in to keep history in the account; local sessions migrate over automatically.

Notes:
- stopwatch_stop records a final lap covering the time since the last mark, but only if laps were already taken.
- history_clear empties the visible history and the device copy; cloud sessions reappear on the next sign-in.
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "laptrack://docs/usage",
		Name:        "docs_usage",
		Title:       "laptrack usage guide",
		Description: "How the stopwatch, laps, archiving, and history interact.",
		Content: `# laptrack usage

## Timer lifecycle

The stopwatch is a three-way state machine: zeroed, running, stopped.

- ` + "`stopwatch_start`" + ` runs the timer; starting again while running is a no-op.
- ` + "`stopwatch_stop`" + ` freezes the elapsed time. If laps were taken, a final lap is
  recorded covering the stretch since the last mark, so lap times always sum to the total.
- ` + "`stopwatch_reset`" + ` zeroes everything. A run with any elapsed time or laps is
  archived to history first; resetting an untouched timer archives nothing.

## Laps

` + "`stopwatch_lap`" + ` only works while running. Laps are numbered from 1. Each lap
carries two times: ` + "`lapTime`" + ` (since the previous mark) and ` + "`totalTime`" + `
(elapsed at the mark).

## History

History keeps the 50 most recent sessions, newest first; older ones fall off.

- Anonymous: sessions live on this device only.
- Signed in: sessions live in the account's cloud collection and follow you across devices.
- On sign-in, device sessions are moved into the account once, then removed locally.
- ` + "`history_clear`" + ` drops the visible list and the device copy. Cloud sessions are
  kept and load again on the next sign-in.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
