package transport

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/grantmate/internal/domain/collaborator"
	"github.com/rpggio/grantmate/internal/domain/history"
	"github.com/rpggio/grantmate/internal/domain/identity"
	"github.com/rpggio/grantmate/internal/domain/proposal"
)

type sharedProposalResponse struct {
	Proposal      *proposal.Proposal          `json:"proposal"`
	Collaborators []collaborator.Collaborator `json:"collaborators"`
}

type addCollaboratorRequest struct {
	UserID    *int64            `json:"userId"`
	GuestName *string           `json:"guestName"`
	Role      collaborator.Role `json:"role"`
}

func (s *Server) handleGetShared(w http.ResponseWriter, r *http.Request) {
	p, err := s.proposals.GetByShareToken(r.Context(), chi.URLParam(r, "shareToken"))
	if err != nil {
		s.writeError(w, r, err, "Shared proposal not found", "Failed to fetch shared proposal")
		return
	}

	roster, err := s.roster.List(r.Context(), p.ID)
	if err != nil {
		s.writeError(w, r, err, "Shared proposal not found", "Failed to fetch shared proposal")
		return
	}
	writeJSON(w, http.StatusOK, sharedProposalResponse{Proposal: p, Collaborators: roster})
}

func (s *Server) handleListCollaborators(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusOK, []collaborator.Collaborator{})
		return
	}

	roster, err := s.roster.List(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "Proposal not found", "Failed to fetch collaborators")
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

func (s *Server) handleAddCollaborator(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Proposal not found")
		return
	}

	var req addCollaboratorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	ident := identity.Resolve(req.UserID, req.GuestName)
	if ident.IsAnonymous() {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: "Validation error",
			Errors:  []proposal.FieldError{{Field: "guestName", Message: "Either userId or guestName is required"}},
		})
		return
	}
	if req.Role != "" && !req.Role.Valid() {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: "Validation error",
			Errors:  []proposal.FieldError{{Field: "role", Message: "Role must be owner, editor or viewer"}},
		})
		return
	}

	c, err := s.roster.Join(r.Context(), collaborator.JoinRequest{ProposalID: id, Identity: ident, Role: req.Role})
	if err != nil {
		s.writeError(w, r, err, "Proposal not found", "Failed to add collaborator")
		return
	}

	if s.announcer != nil {
		if err := s.announcer.AnnounceCollaborator(r.Context(), *c); err != nil {
			s.logger.Warn("announce collaborator failed", "proposal_id", id, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleRemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Collaborator not found")
		return
	}

	userID, err := queryInt64(r, "userId")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid userId")
		return
	}
	var guestName *string
	if name := r.URL.Query().Get("guestName"); name != "" {
		guestName = &name
	}

	removed, err := s.roster.Leave(r.Context(), id, identity.Resolve(userID, guestName))
	if err != nil {
		s.writeError(w, r, err, "Collaborator not found", "Failed to remove collaborator")
		return
	}
	if !removed {
		writeMessage(w, http.StatusNotFound, "Collaborator not found")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Collaborator removed"})
}

func (s *Server) handleListUpdates(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusOK, []history.Update{})
		return
	}

	limit := history.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	updates, err := s.updates.Recent(r.Context(), id, limit)
	if err != nil {
		s.writeError(w, r, err, "Proposal not found", "Failed to fetch updates")
		return
	}
	writeJSON(w, http.StatusOK, updates)
}
