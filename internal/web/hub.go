package web

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"richrain/internal/game"
)

const writeWait = 5 * time.Second

// Event is one server-to-client websocket frame.
type Event struct {
	Seq     uint64             `json:"seq"`
	Kind    game.AnimationKind `json:"kind"`
	Payload any                `json:"payload"`
}

// Frames sent outside the animation sequence. They carry seq 0 and need no
// acknowledgement.
const (
	// KindSnapshot is sent once on connect.
	KindSnapshot game.AnimationKind = "snapshot"
	// KindRejected answers a roll or rank the match cannot take now.
	KindRejected game.AnimationKind = "rejected"
)

// Rejection is the payload of a KindRejected frame.
type Rejection struct {
	Type     string     `json:"type"`
	PlayerID string     `json:"playerId,omitempty"`
	Phase    game.Phase `json:"phase"`
}

// Hub is the presenter for one match. It pushes every animation to the
// attached websocket clients and returns once any client acknowledges it,
// or once the pacing for that kind has elapsed. A zero pacing waits for an
// acknowledgement, unless no client is attached.
type Hub struct {
	pacing func(game.AnimationKind) time.Duration
	log    *zap.Logger

	mu      sync.Mutex
	seq     uint64
	clients map[*client]struct{}

	acks chan uint64
	left chan struct{}
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func NewHub(pacing func(game.AnimationKind) time.Duration, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		pacing:  pacing,
		log:     log,
		clients: make(map[*client]struct{}),
		acks:    make(chan uint64, 16),
		left:    make(chan struct{}, 1),
	}
}

// Animate implements game.Presenter.
func (h *Hub) Animate(ctx context.Context, a game.Animation) error {
	h.mu.Lock()
	h.seq++
	seq := h.seq
	targets := h.snapshotClients()
	h.mu.Unlock()

	ev := Event{Seq: seq, Kind: a.Kind, Payload: a.Payload}
	for _, c := range targets {
		if err := c.send(ev); err != nil {
			h.log.Debug("websocket send failed", zap.Error(err))
			h.detach(c)
		}
	}

	d := time.Duration(0)
	if h.pacing != nil {
		d = h.pacing(a.Kind)
	}
	var timeout <-chan time.Time
	if d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		timeout = t.C
	}
	for {
		if timeout == nil && h.Clients() == 0 {
			return nil
		}
		select {
		case got := <-h.acks:
			if got == seq {
				return nil
			}
		case <-timeout:
			return nil
		case <-h.left:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Ack acknowledges the animation with the given sequence number. Stale
// acknowledgements are ignored.
func (h *Hub) Ack(seq uint64) {
	select {
	case h.acks <- seq:
	default:
	}
}

// Clients returns the number of attached clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) attach(conn *websocket.Conn) *client {
	c := &client{conn: conn}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) detach(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if !ok {
		return
	}
	_ = c.conn.Close()
	select {
	case h.left <- struct{}{}:
	default:
	}
}

func (h *Hub) snapshotClients() []*client {
	out := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

// inbound is one client-to-server websocket frame.
type inbound struct {
	Type     string `json:"type"` // "ack" | "roll" | "rank"
	Seq      uint64 `json:"seq,omitempty"`
	PlayerID string `json:"playerId,omitempty"`
}

func decodeInbound(b []byte) (inbound, error) {
	var in inbound
	err := json.Unmarshal(b, &in)
	return in, err
}
