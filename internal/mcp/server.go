package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ganot/laptrack/internal/domain/identity"
	"github.com/ganot/laptrack/internal/domain/session"
	"github.com/ganot/laptrack/internal/domain/stopwatch"
)

// TimerService defines stopwatch operations needed by MCP.
type TimerService interface {
	Start()
	Stop()
	Lap()
	Reset(ctx context.Context)
	SetTitle(title string)
	State() stopwatch.Snapshot
}

// HistoryService defines history operations needed by MCP.
type HistoryService interface {
	Sessions() []session.Session
	Get(id int64) (session.Session, error)
	Clear(ctx context.Context) error
}

// IdentityService defines account operations needed by MCP.
type IdentityService interface {
	SignUp(ctx context.Context, email, password string) (*identity.Account, error)
	SignIn(ctx context.Context, email, password string) (*identity.Account, error)
	SignOut()
	CurrentUserID() string
	CurrentEmail() string
}

// Services contains all domain services needed by MCP.
type Services struct {
	Timer    TimerService
	History  HistoryService
	Identity IdentityService
}

// Config contains server configuration.
type Config struct {
	Services Services
	Logger   *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "laptrack",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services)

	return server
}
