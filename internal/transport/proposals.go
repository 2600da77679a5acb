package transport

import (
	"net/http"

	"github.com/rpggio/grantmate/internal/domain/proposal"
)

type createProposalRequest struct {
	proposal.Fields
	UserID   *int64 `json:"userId"`
	IsPublic bool   `json:"isPublic"`
}

type draftResponse struct {
	GeneratedProposal string `json:"generatedProposal"`
}

func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	var req createProposalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	p, err := s.proposals.Create(r.Context(), proposal.CreateRequest{
		Fields:   req.Fields,
		UserID:   req.UserID,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		s.writeError(w, r, err, "Proposal not found", "Failed to create proposal")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	userID, err := queryInt64(r, "userId")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid userId")
		return
	}
	if userID == nil {
		writeJSON(w, http.StatusOK, []proposal.Proposal{})
		return
	}

	list, err := s.proposals.ListByUser(r.Context(), *userID)
	if err != nil {
		s.writeError(w, r, err, "Proposal not found", "Failed to fetch proposals")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Proposal not found")
		return
	}

	p, err := s.proposals.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "Proposal not found", "Failed to fetch proposal")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Proposal not found")
		return
	}

	var patch proposal.Patch
	if err := decodeJSON(r, &patch); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	p, err := s.proposals.Update(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, err, "Proposal not found", "Failed to update proposal")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Proposal not found")
		return
	}

	if err := s.proposals.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, "Proposal not found", "Failed to delete proposal")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Proposal deleted successfully"})
}

func (s *Server) handleGenerateProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Proposal not found")
		return
	}

	p, err := s.proposals.Generate(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "Proposal not found", "Failed to generate proposal")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDraftProposal(w http.ResponseWriter, r *http.Request) {
	var fields proposal.Fields
	if err := decodeJSON(r, &fields); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	text, err := s.proposals.Draft(r.Context(), fields)
	if err != nil {
		s.writeError(w, r, err, "Proposal not found", "Failed to generate proposal")
		return
	}
	writeJSON(w, http.StatusOK, draftResponse{GeneratedProposal: text})
}
