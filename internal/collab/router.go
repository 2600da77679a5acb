package collab

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Router fans messages out to the sessions joined to a proposal.
type Router struct {
	registry *Registry
	logger   *slog.Logger
}

// NewRouter creates a router over registry.
func NewRouter(registry *Registry, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Router{registry: registry, logger: logger}
}

// Broadcast sends msg to every session joined to proposalID except exclude and
// returns how many accepted it. Sessions that cannot take the frame are skipped.
func (r *Router) Broadcast(proposalID int64, msg any, exclude *Session) (int, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return 0, fmt.Errorf("encode broadcast: %w", err)
	}

	delivered := 0
	for _, s := range r.registry.Joined(proposalID) {
		if s == exclude {
			continue
		}
		if !s.send(data) {
			r.logger.Debug("skipping unwritable session", "session_id", s.id, "proposal_id", proposalID)
			continue
		}
		delivered++
	}
	return delivered, nil
}
