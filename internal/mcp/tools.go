package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ganot/laptrack/internal/domain/session"
	"github.com/ganot/laptrack/internal/domain/stopwatch"
)

type emptyInput struct{}

// TimerStatus is the result of every stopwatch tool.
type TimerStatus struct {
	Running bool            `json:"running"`
	Elapsed string          `json:"elapsed"`
	Millis  int64           `json:"millis"`
	Title   string          `json:"title,omitempty"`
	Laps    []stopwatch.Lap `json:"laps"`
}

type setTitleInput struct {
	Title string `json:"title"`
}

type historyListResult struct {
	Sessions []session.Session `json:"sessions"`
	Count    int               `json:"count"`
}

type historyGetInput struct {
	ID int64 `json:"id"`
}

type historyClearResult struct {
	Cleared bool `json:"cleared"`
}

type credentialsInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountResult struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type signOutResult struct {
	SignedOut bool `json:"signedOut"`
}

type whoamiResult struct {
	SignedIn bool   `json:"signedIn"`
	UserID   string `json:"userId,omitempty"`
	Email    string `json:"email,omitempty"`
}

func statusOf(snap stopwatch.Snapshot) TimerStatus {
	laps := snap.Laps
	if laps == nil {
		laps = []stopwatch.Lap{}
	}
	return TimerStatus{
		Running: snap.Running,
		Elapsed: snap.Elapsed.String(),
		Millis:  int64(snap.Elapsed),
		Title:   snap.Title,
		Laps:    laps,
	}
}

// registerTools registers all laptrack tools on the server.
func registerTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "stopwatch_start",
		Description: "Start or resume the stopwatch. No-op if already running.",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, TimerStatus, error) {
		svc.Timer.Start()
		return nil, statusOf(svc.Timer.State()), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "stopwatch_stop",
		Description: "Stop the stopwatch, freezing the elapsed time. Records a final lap if any laps were taken. No-op if not running.",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, TimerStatus, error) {
		svc.Timer.Stop()
		return nil, statusOf(svc.Timer.State()), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "stopwatch_lap",
		Description: "Record a lap at the current elapsed time. No-op unless the stopwatch is running.",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, TimerStatus, error) {
		svc.Timer.Lap()
		return nil, statusOf(svc.Timer.State()), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "stopwatch_reset",
		Description: "Reset the stopwatch to zero. A non-trivial run is archived to history before clearing.",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, TimerStatus, error) {
		svc.Timer.Reset(ctx)
		return nil, statusOf(svc.Timer.State()), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "stopwatch_status",
		Description: "Get the current stopwatch state: running flag, elapsed time, title, and laps.",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, TimerStatus, error) {
		return nil, statusOf(svc.Timer.State()), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_title",
		Description: "Set the title recorded on the session when the current run is archived.",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in setTitleInput) (*sdkmcp.CallToolResult, TimerStatus, error) {
		svc.Timer.SetTitle(in.Title)
		return nil, statusOf(svc.Timer.State()), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "history_list",
		Description: "List archived sessions, newest first. Holds at most the 50 most recent sessions.",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, historyListResult, error) {
		sessions := svc.History.Sessions()
		return nil, historyListResult{Sessions: sessions, Count: len(sessions)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "history_get",
		Description: "Get one archived session by id, including its laps.",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in historyGetInput) (*sdkmcp.CallToolResult, session.Session, error) {
		sess, err := svc.History.Get(in.ID)
		if err != nil {
			return nil, session.Session{}, MapError(err)
		}
		return nil, sess, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "history_clear",
		Description: "Clear the visible history. Sessions stored in the cloud are kept and reappear on the next sign-in.",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, historyClearResult, error) {
		if err := svc.History.Clear(ctx); err != nil {
			return nil, historyClearResult{}, MapError(err)
		}
		return nil, historyClearResult{Cleared: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "sign_up",
		Description: "Create an account with email and password, then sign in. Local history is migrated to the account.",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in credentialsInput) (*sdkmcp.CallToolResult, accountResult, error) {
		acct, err := svc.Identity.SignUp(ctx, in.Email, in.Password)
		if err != nil {
			return nil, accountResult{}, MapError(err)
		}
		return nil, accountResult{UserID: acct.ID, Email: acct.Email}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "sign_in",
		Description: "Sign in with email and password. Local history is migrated to the account on first sign-in.",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in credentialsInput) (*sdkmcp.CallToolResult, accountResult, error) {
		acct, err := svc.Identity.SignIn(ctx, in.Email, in.Password)
		if err != nil {
			return nil, accountResult{}, MapError(err)
		}
		return nil, accountResult{UserID: acct.ID, Email: acct.Email}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "sign_out",
		Description: "Sign out of the current account. History reverts to what is stored on this device.",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, signOutResult, error) {
		svc.Identity.SignOut()
		return nil, signOutResult{SignedOut: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "whoami",
		Description: "Report the signed-in account, if any.",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, whoamiResult, error) {
		userID := svc.Identity.CurrentUserID()
		if userID == "" {
			return nil, whoamiResult{SignedIn: false}, nil
		}
		return nil, whoamiResult{SignedIn: true, UserID: userID, Email: svc.Identity.CurrentEmail()}, nil
	})
}
