// Package transport exposes the REST API, the /ws endpoint and the optional
// MCP endpoint on one chi router.
package transport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/grantmate/internal/domain/collaborator"
	"github.com/rpggio/grantmate/internal/domain/history"
	"github.com/rpggio/grantmate/internal/domain/identity"
	"github.com/rpggio/grantmate/internal/domain/proposal"
)

// apiTimeout bounds REST requests; generation can wait on a slow model.
const apiTimeout = 6 * time.Minute

// ProposalService is the proposal surface the API uses.
type ProposalService interface {
	Create(ctx context.Context, req proposal.CreateRequest) (*proposal.Proposal, error)
	Get(ctx context.Context, id int64) (*proposal.Proposal, error)
	GetByShareToken(ctx context.Context, token string) (*proposal.Proposal, error)
	ListByUser(ctx context.Context, userID int64) ([]proposal.Proposal, error)
	Update(ctx context.Context, id int64, patch proposal.Patch) (*proposal.Proposal, error)
	Delete(ctx context.Context, id int64) error
	Draft(ctx context.Context, fields proposal.Fields) (string, error)
	Generate(ctx context.Context, id int64) (*proposal.Proposal, error)
}

// RosterService is the collaborator surface the API uses.
type RosterService interface {
	Join(ctx context.Context, req collaborator.JoinRequest) (*collaborator.Collaborator, error)
	List(ctx context.Context, proposalID int64) ([]collaborator.Collaborator, error)
	Leave(ctx context.Context, proposalID int64, ident identity.Identity) (bool, error)
}

// UpdateLog is the history surface the API uses.
type UpdateLog interface {
	Recent(ctx context.Context, proposalID int64, limit int) ([]history.Update, error)
}

// Announcer pushes roster additions to live sessions.
type Announcer interface {
	AnnounceCollaborator(ctx context.Context, c collaborator.Collaborator) error
}

// Deps are the handlers' collaborators. WebSocket, MCP and Announcer are optional.
type Deps struct {
	Proposals      ProposalService
	Roster         RosterService
	Updates        UpdateLog
	Announcer      Announcer
	WebSocket      http.Handler
	MCP            http.Handler
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Server holds the REST handlers.
type Server struct {
	proposals ProposalService
	roster    RosterService
	updates   UpdateLog
	announcer Announcer
	logger    *slog.Logger
}

// NewServer creates the HTTP router with middleware.
func NewServer(deps Deps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srv := &Server{
		proposals: deps.Proposals,
		roster:    deps.Roster,
		updates:   deps.Updates,
		announcer: deps.Announcer,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)

	if deps.WebSocket != nil {
		r.Handle("/ws", deps.WebSocket)
	}
	if deps.MCP != nil {
		r.Handle("/mcp", deps.MCP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(CORS(deps.AllowedOrigins))
		r.Use(middleware.Timeout(apiTimeout))

		r.Route("/grant-proposals", func(r chi.Router) {
			r.Post("/", srv.handleCreateProposal)
			r.Get("/", srv.handleListProposals)
			r.Get("/{id}", srv.handleGetProposal)
			r.Put("/{id}", srv.handleUpdateProposal)
			r.Delete("/{id}", srv.handleDeleteProposal)
			r.Post("/{id}/generate", srv.handleGenerateProposal)
		})
		r.Post("/generate-proposal", srv.handleDraftProposal)

		r.Get("/proposals/shared/{shareToken}", srv.handleGetShared)
		r.Get("/proposals/{id}/collaborators", srv.handleListCollaborators)
		r.Post("/proposals/{id}/collaborators", srv.handleAddCollaborator)
		r.Delete("/proposals/{id}/collaborators", srv.handleRemoveCollaborator)
		r.Get("/proposals/{id}/updates", srv.handleListUpdates)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
