package collab

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rpggio/grantmate/internal/domain/collaborator"
)

// ErrHubStopped is returned when submitting work to a hub that is not running.
var ErrHubStopped = errors.New("collaboration hub stopped")

type connectRequest struct {
	conn  Conn
	reply chan *Session
}

// inboundFrame carries either a frame or, when closing is set, the end of
// the session. Both share one queue so a close never overtakes earlier frames.
type inboundFrame struct {
	session *Session
	data    []byte
	closing bool
}

// Hub serializes every session event through one goroutine, so broadcasts for
// a proposal follow the order in which updates were accepted.
type Hub struct {
	protocol   *Protocol
	connect    chan connectRequest
	inbound  chan inboundFrame
	announce chan collaborator.Collaborator
	done     chan struct{}
	logger   *slog.Logger
}

// NewHub creates a hub around protocol. Call Run to start it.
func NewHub(protocol *Protocol, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		protocol: protocol,
		connect:  make(chan connectRequest),
		inbound:  make(chan inboundFrame, 256),
		announce: make(chan collaborator.Collaborator, 16),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Run processes events until ctx is cancelled, then closes every session.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	h.logger.Info("collaboration hub started")

	for {
		select {
		case <-ctx.Done():
			h.protocol.Shutdown()
			h.logger.Info("collaboration hub stopped")
			return
		case req := <-h.connect:
			req.reply <- h.protocol.Connect(req.conn)
		case frame := <-h.inbound:
			if frame.closing {
				h.protocol.Disconnect(frame.session)
				continue
			}
			h.protocol.Handle(ctx, frame.session, frame.data)
		case c := <-h.announce:
			h.protocol.AnnounceCollaborator(c)
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) stopped() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Connect registers conn and returns its session.
func (h *Hub) Connect(ctx context.Context, conn Conn) (*Session, error) {
	req := connectRequest{conn: conn, reply: make(chan *Session, 1)}
	select {
	case h.connect <- req:
	case <-h.done:
		return nil, ErrHubStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case s := <-req.reply:
		return s, nil
	case <-h.done:
		return nil, ErrHubStopped
	}
}

// Deliver queues an inbound frame from s.
func (h *Hub) Deliver(s *Session, data []byte) error {
	if h.stopped() {
		return ErrHubStopped
	}
	select {
	case h.inbound <- inboundFrame{session: s, data: data}:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// Disconnect queues the close of s behind every frame already delivered for it.
func (h *Hub) Disconnect(s *Session) {
	if h.stopped() {
		return
	}
	select {
	case h.inbound <- inboundFrame{session: s, closing: true}:
	case <-h.done:
	}
}

// AnnounceCollaborator broadcasts collaborator_joined for c to the sessions
// joined to its proposal.
func (h *Hub) AnnounceCollaborator(ctx context.Context, c collaborator.Collaborator) error {
	if h.stopped() {
		return ErrHubStopped
	}
	select {
	case h.announce <- c:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
