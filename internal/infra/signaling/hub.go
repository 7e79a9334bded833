package signaling

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	DefaultRoom = "interview-room"

	writeWait = 10 * time.Second
	readWait  = 120 * time.Second
)

// PeerGauge is told how many peers are connected after every change.
type PeerGauge interface {
	PeersChanged(connected int)
}

type message struct {
	Type string `json:"type"`
	Room string `json:"room,omitempty"`
}

type peer struct {
	id   string
	conn *websocket.Conn
	room string

	writeMu sync.Mutex
}

func (p *peer) send(payload []byte) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub relays WebRTC offers, answers and ICE candidates between the peers of a
// room. It never inspects the session descriptions it forwards.
type Hub struct {
	upgrader websocket.Upgrader
	gauge    PeerGauge
	logger   *slog.Logger

	mu    sync.Mutex
	rooms map[string]map[*peer]struct{}
	peers int
}

func NewHub(gauge PeerGauge, logger *slog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		gauge:  gauge,
		logger: logger,
		rooms:  make(map[string]map[*peer]struct{}),
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("signaling upgrade failed", "error", err)
		return
	}

	p := &peer{id: uuid.NewString(), conn: conn}
	h.connected(1)
	h.logger.Debug("signaling peer connected", "peer", p.id)

	defer func() {
		h.leave(p, false)
		conn.Close()
		h.connected(-1)
		h.logger.Debug("signaling peer disconnected", "peer", p.id)
	}()

	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("signaling read failed", "peer", p.id, "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readWait))

		h.handle(p, payload)
	}
}

func (h *Hub) handle(p *peer, payload []byte) {
	var msg message
	if err := json.Unmarshal(payload, &msg); err != nil {
		h.logger.Warn("ignoring malformed signaling message", "peer", p.id, "error", err)
		return
	}

	switch msg.Type {
	case "join":
		room := msg.Room
		if room == "" {
			room = DefaultRoom
		}
		h.join(p, room)
	case "offer", "answer", "ice-candidate":
		h.broadcast(p, p.room, payload)
	case "leave":
		h.leave(p, true)
	default:
		h.logger.Debug("ignoring signaling message", "peer", p.id, "type", msg.Type)
	}
}

func (h *Hub) join(p *peer, room string) {
	if p.room != "" && p.room != room {
		h.leave(p, true)
	}

	h.mu.Lock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*peer]struct{})
		h.rooms[room] = members
	}
	members[p] = struct{}{}
	p.room = room
	h.mu.Unlock()

	h.logger.Info("peer joined room", "peer", p.id, "room", room)

	notice, _ := json.Marshal(message{Type: "user-joined", Room: room})
	h.broadcast(p, room, notice)
}

// leave removes p from its room and deletes the room once empty. The remaining
// members are told only when notify is set; a dropped connection leaves
// silently.
func (h *Hub) leave(p *peer, notify bool) {
	room := p.room
	if room == "" {
		return
	}

	h.mu.Lock()
	if members, ok := h.rooms[room]; ok {
		delete(members, p)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	p.room = ""
	h.mu.Unlock()

	if notify {
		notice, _ := json.Marshal(message{Type: "user-left", Room: room})
		h.broadcast(p, room, notice)
	}
}

// broadcast sends payload to every member of room except the sender.
func (h *Hub) broadcast(from *peer, room string, payload []byte) {
	if room == "" {
		return
	}

	h.mu.Lock()
	targets := make([]*peer, 0, len(h.rooms[room]))
	for member := range h.rooms[room] {
		if member != from {
			targets = append(targets, member)
		}
	}
	h.mu.Unlock()

	for _, target := range targets {
		if err := target.send(payload); err != nil {
			h.logger.Warn("signaling relay failed", "peer", target.id, "error", err)
		}
	}
}

func (h *Hub) connected(delta int) {
	h.mu.Lock()
	h.peers += delta
	n := h.peers
	h.mu.Unlock()

	if h.gauge != nil {
		h.gauge.PeersChanged(n)
	}
}

// Rooms reports the number of members in every non-empty room.
func (h *Hub) Rooms() map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]int, len(h.rooms))
	for name, members := range h.rooms {
		out[name] = len(members)
	}
	return out
}
