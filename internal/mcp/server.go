package mcp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/grantmate/internal/domain/collaborator"
	"github.com/rpggio/grantmate/internal/domain/history"
	"github.com/rpggio/grantmate/internal/domain/proposal"
)

// ProposalService defines proposal operations needed by MCP.
type ProposalService interface {
	Get(ctx context.Context, id int64) (*proposal.Proposal, error)
	GetByShareToken(ctx context.Context, token string) (*proposal.Proposal, error)
	Draft(ctx context.Context, fields proposal.Fields) (string, error)
	Generate(ctx context.Context, id int64) (*proposal.Proposal, error)
}

// RosterService defines collaborator operations needed by MCP.
type RosterService interface {
	List(ctx context.Context, proposalID int64) ([]collaborator.Collaborator, error)
}

// UpdateLog defines history operations needed by MCP.
type UpdateLog interface {
	Recent(ctx context.Context, proposalID int64, limit int) ([]history.Update, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Proposals ProposalService
	Roster    RosterService
	Updates   UpdateLog
}

// Config contains server configuration.
type Config struct {
	Services Services
	Version  string
	Logger   *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "grantmate",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	registerTools(server, cfg.Services)

	return server
}

// NewHTTPHandler serves the MCP server over the streamable HTTP transport.
func NewHTTPHandler(server *sdkmcp.Server) http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{
			SessionTimeout: 30 * time.Minute,
		},
	)
}
