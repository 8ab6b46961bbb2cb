// Package testserver runs the full HTTP stack over an in-memory database.
package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/joaodperes/stardust/internal/domain/economy"
	"github.com/joaodperes/stardust/internal/engine"
	"github.com/joaodperes/stardust/internal/mcp"
	"github.com/joaodperes/stardust/internal/sqlite"
	"github.com/joaodperes/stardust/internal/ticker"
	"github.com/joaodperes/stardust/internal/transport"
	"github.com/joaodperes/stardust/internal/tuning"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// Clock is a settable time source shared by every service of the server.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type TestServer struct {
	Server *httptest.Server
	DB     *sqlite.DB
	Engine *engine.Engine
	Keys   *sqlite.APIKeyRepository
	Clock  *Clock
}

// New starts a server with auth enabled. Every player starts with a
// generous stock so tests aren't limited by fuel.
func New(t *testing.T) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	clock := &Clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	tun := tuning.Defaults()
	tun.Starter.Resources = economy.Resources{Metal: 20000, Crystal: 20000, Deuterium: 20000}
	tun.Starter.Buildings[economy.CommandCenter] = 3

	eng := engine.New(sqlite.NewKVStore(db), nil, engine.Options{
		Tuning: tun,
		Now:    clock.Now,
		Roll:   func() float64 { return 0.99 },
	})
	keys := sqlite.NewAPIKeyRepository(db)

	handler := mcp.NewHandler(eng.Services(), nil)
	mcpServer := mcp.NewServerWithHandler(mcp.Config{
		Resolver:      keys,
		AuthEnabled:   true,
		TransportMode: "http",
	}, handler)
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		nil,
	)

	server := httptest.NewServer(transport.NewServer(handler, transport.Options{
		Auth: transport.AuthMiddleware(keys),
		MCP:  mcpHandler,
	}))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server: server,
		DB:     db,
		Engine: eng,
		Keys:   keys,
		Clock:  clock,
	}
}

// AddPlayer registers token for playerID.
func (ts *TestServer) AddPlayer(t *testing.T, token, playerID string) {
	t.Helper()
	require.NoError(t, ts.Keys.Add(context.Background(), token, playerID, "test"))
}

// Tick advances the clock by d and runs one mission processing pass.
func (ts *TestServer) Tick(t *testing.T, d time.Duration) {
	t.Helper()
	ts.Clock.Advance(d)
	_, err := ts.Engine.Driver(ticker.Config{Workers: 2}).Tick(context.Background())
	require.NoError(t, err)
}
