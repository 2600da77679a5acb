package collab

// Registry tracks live sessions in connection order. It is not safe for
// concurrent use; the Hub goroutine owns it.
type Registry struct {
	sessions map[string]*Session
	order    []*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add inserts a session.
func (r *Registry) Add(s *Session) {
	if _, ok := r.sessions[s.id]; ok {
		return
	}
	r.sessions[s.id] = s
	r.order = append(r.order, s)
}

// Remove drops a session and reports whether it was present.
func (r *Registry) Remove(s *Session) bool {
	if _, ok := r.sessions[s.id]; !ok {
		return false
	}
	delete(r.sessions, s.id)
	for i, cur := range r.order {
		if cur == s {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get looks a session up by id.
func (r *Registry) Get(id string) (*Session, bool) {
	s, ok := r.sessions[id]
	return s, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return len(r.order)
}

// Joined returns the sessions bound to proposalID.
func (r *Registry) Joined(proposalID int64) []*Session {
	var out []*Session
	for _, s := range r.order {
		if s.state == StateJoined && s.proposalID == proposalID {
			out = append(out, s)
		}
	}
	return out
}

// All returns every live session.
func (r *Registry) All() []*Session {
	out := make([]*Session, len(r.order))
	copy(out, r.order)
	return out
}
