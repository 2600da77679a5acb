package testserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rpggio/grantmate/internal/ai"
	"github.com/rpggio/grantmate/internal/collab"
	"github.com/rpggio/grantmate/internal/domain/collaborator"
	"github.com/rpggio/grantmate/internal/domain/history"
	"github.com/rpggio/grantmate/internal/domain/proposal"
	"github.com/rpggio/grantmate/internal/mcp"
	"github.com/rpggio/grantmate/internal/sqlite"
	"github.com/rpggio/grantmate/internal/transport"
	"github.com/stretchr/testify/require"
)

// Options tunes the stack. The zero value runs offline with no cache.
type Options struct {
	AI     ai.Config
	Cache  ai.Cache
	Logger *slog.Logger
}

type TestServer struct {
	Server    *httptest.Server
	DB        *sqlite.DB
	Hub       *collab.Hub
	Proposals *proposal.Service
	Roster    *collaborator.Service
	History   *history.Service
}

// New starts the full HTTP, WebSocket and MCP stack on an in-memory database.
func New(t *testing.T, opts Options) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	proposalRepo := sqlite.NewProposalRepository(db)
	generator := ai.NewGenerator(opts.AI, opts.Cache, opts.Logger)

	proposalSvc := proposal.NewService(proposalRepo, generator, opts.Logger)
	rosterSvc := collaborator.NewService(sqlite.NewCollaboratorRepository(db), proposalRepo, opts.Logger)
	historySvc := history.NewService(sqlite.NewUpdateRepository(db), opts.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	hub := collab.NewHub(collab.NewProtocol(collab.NewRegistry(), rosterSvc, historySvc, opts.Logger), opts.Logger)
	go hub.Run(ctx)

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Proposals: proposalSvc,
			Roster:    rosterSvc,
			Updates:   historySvc,
		},
		Logger: opts.Logger,
	})

	server := httptest.NewServer(transport.NewServer(transport.Deps{
		Proposals: proposalSvc,
		Roster:    rosterSvc,
		Updates:   historySvc,
		Announcer: hub,
		WebSocket: collab.NewHandler(hub, nil, opts.Logger),
		MCP:       mcp.NewHTTPHandler(mcpServer),
		Logger:    opts.Logger,
	}))

	t.Cleanup(func() {
		cancel()
		<-hub.Done()
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:    server,
		DB:        db,
		Hub:       hub,
		Proposals: proposalSvc,
		Roster:    rosterSvc,
		History:   historySvc,
	}
}

// WebSocketURL is the ws:// address of the live editing endpoint.
func (ts *TestServer) WebSocketURL() string {
	return "ws" + strings.TrimPrefix(ts.Server.URL, "http") + "/ws"
}

// MCPURL is the streamable HTTP endpoint of the MCP server.
func (ts *TestServer) MCPURL() string {
	return ts.Server.URL + "/mcp"
}
