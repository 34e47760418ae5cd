package testserver

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"

	"github.com/ganot/laptrack/internal/domain/history"
	"github.com/ganot/laptrack/internal/domain/identity"
	"github.com/ganot/laptrack/internal/domain/session"
	"github.com/ganot/laptrack/internal/domain/stopwatch"
	"github.com/ganot/laptrack/internal/localstore"
	"github.com/ganot/laptrack/internal/mcp"
	"github.com/ganot/laptrack/internal/sqlite"
)

// TestServer wires a complete laptrack stack behind an HTTP JSON-RPC
// endpoint: in-memory database, temp-dir local store, and a fake clock
// so elapsed times are deterministic.
type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Clock    *clockz.FakeClock
	Engine   *stopwatch.Engine
	History  *history.Store
	Identity *identity.Service
}

func New(t *testing.T) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	clock := clockz.NewFakeClock()
	local := localstore.New(t.TempDir())
	store := history.NewStore(local, sqlite.NewSessionRepository(db), nil, nil)
	archiver := session.NewArchiver(clock, store, nil)
	engine := stopwatch.New(clock, archiver, nil)
	identitySvc := identity.NewService(sqlite.NewAccountRepository(db), nil)
	identitySvc.Subscribe(func(userID string) {
		store.OnIdentityChange(context.Background(), userID)
	})
	require.NoError(t, store.Load(context.Background()))

	mcpServer := mcp.NewServer(mcp.Config{Services: mcp.Services{
		Timer:    engine,
		History:  store,
		Identity: identitySvc,
	}})

	handler, err := mcp.NewHTTPHandler(mcpServer, nil)
	require.NoError(t, err)
	server := httptest.NewServer(handler)

	ts := &TestServer{
		Server:   server,
		DB:       db,
		Clock:    clock,
		Engine:   engine,
		History:  store,
		Identity: identitySvc,
	}

	t.Cleanup(func() {
		server.Close()
		engine.Close()
		_ = db.Close()
	})

	return ts
}
