package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rpggio/grantmate/internal/domain/collaborator"
)

const (
	// DefaultReconnectDelay is the pause between a lost connection and the next dial.
	DefaultReconnectDelay = 3 * time.Second
	recentUpdatesKept     = 10
)

// ErrNotConnected is returned by Client.SendFieldUpdate while no connection is open.
var ErrNotConnected = errors.New("not connected")

// ClientConfig configures a Client.
type ClientConfig struct {
	URL            string
	ProposalID     int64
	UserID         *int64
	GuestName      *string
	ReconnectDelay time.Duration
	Dialer         *websocket.Dialer
	Logger         *slog.Logger

	// OnFieldChanged is called from the read loop for every field_changed event.
	OnFieldChanged func(FieldChanged)
}

// RecentUpdate is a peer edit as seen by a client.
type RecentUpdate struct {
	Field     string
	UpdatedBy string
	Timestamp time.Time
}

// Client keeps a connection to /ws joined to one proposal, dialing again
// after a fixed delay whenever the connection drops. Each new connection
// joins from scratch; events missed while disconnected are not replayed.
type Client struct {
	cfg    ClientConfig
	logger *slog.Logger

	mu            sync.Mutex
	conn          *websocket.Conn
	collaborators []collaborator.Collaborator
	recent        []RecentUpdate
}

// NewClient creates a client. Call Run to connect.
func NewClient(cfg ClientConfig) *Client {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{cfg: cfg, logger: logger}
}

// Run connects and reconnects until ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := c.session(ctx); err != nil {
			c.logger.Debug("collaboration connection ended", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.ReconnectDelay):
		}
	}
}

func (c *Client) session(ctx context.Context) error {
	ws, _, err := c.cfg.Dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { ws.Close() })
	defer stop()
	defer c.detach(ws)

	c.mu.Lock()
	c.conn = ws
	err = ws.WriteJSON(JoinProposal{
		Type:       TypeJoinProposal,
		ProposalID: c.cfg.ProposalID,
		UserID:     c.cfg.UserID,
		GuestName:  c.cfg.GuestName,
	})
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		c.handle(data)
	}
}

func (c *Client) detach(ws *websocket.Conn) {
	c.mu.Lock()
	if c.conn == ws {
		c.conn = nil
	}
	c.mu.Unlock()
	ws.Close()
}

func (c *Client) handle(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Warn("malformed server frame", "error", err)
		return
	}

	switch env.Type {
	case TypeCollaboratorsUpdate:
		var msg CollaboratorsUpdate
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("malformed collaborators_update", "error", err)
			return
		}
		c.mu.Lock()
		c.collaborators = msg.Collaborators
		c.mu.Unlock()

	case TypeCollaboratorJoined:
		var msg CollaboratorJoined
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("malformed collaborator_joined", "error", err)
			return
		}
		c.mu.Lock()
		c.collaborators = mergeCollaborator(c.collaborators, msg.Collaborator)
		c.mu.Unlock()

	case TypeFieldChanged:
		var msg FieldChanged
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("malformed field_changed", "error", err)
			return
		}
		if c.cfg.OnFieldChanged != nil {
			c.cfg.OnFieldChanged(msg)
		}
		c.mu.Lock()
		c.recent = append([]RecentUpdate{{Field: msg.Field, UpdatedBy: msg.UpdatedBy, Timestamp: time.Now()}}, c.recent...)
		if len(c.recent) > recentUpdatesKept {
			c.recent = c.recent[:recentUpdatesKept]
		}
		c.mu.Unlock()
	}
}

// mergeCollaborator replaces the entry with the same id, or appends a new one.
func mergeCollaborator(roster []collaborator.Collaborator, c collaborator.Collaborator) []collaborator.Collaborator {
	for i := range roster {
		if roster[i].ID == c.ID {
			roster[i] = c
			return roster
		}
	}
	return append(roster, c)
}

// SendFieldUpdate reports a local edit.
func (c *Client) SendFieldUpdate(field, oldValue, newValue string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	return c.conn.WriteJSON(FieldUpdate{
		Type:     TypeFieldUpdate,
		Field:    field,
		OldValue: oldValue,
		NewValue: newValue,
	})
}

// Connected reports whether a connection is currently open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Collaborators returns the roster as last reported by the server.
func (c *Client) Collaborators() []collaborator.Collaborator {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]collaborator.Collaborator, len(c.collaborators))
	copy(out, c.collaborators)
	return out
}

// RecentUpdates returns up to ten peer edits, newest first.
func (c *Client) RecentUpdates() []RecentUpdate {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]RecentUpdate, len(c.recent))
	copy(out, c.recent)
	return out
}
