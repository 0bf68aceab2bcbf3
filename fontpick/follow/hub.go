// Package follow keeps viewers of a room on the same font.
//
// Peers connect over websocket to /follow?room=<name>. Every frame a peer
// sends is relayed to the other peers of its room, and a peer that joins
// is greeted with the room's current font.
package follow

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/stdiopt/gowasm-fontpick/fontpick/catalog"
)

// Message is the only frame exchanged with peers. An empty FontID in the
// greeting means nothing was shown in the room yet.
type Message struct {
	Room   string `json:"room"`
	FontID string `json:"fontId"`
}

type peer struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

func (p *peer) send(m Message) error {
	p.wmu.Lock()
	defer p.wmu.Unlock()
	return p.conn.WriteJSON(m)
}

// Hub relays font changes between peers of the same room.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	rooms map[string]map[*peer]struct{}
	last  map[string]string
}

// NewHub returns an empty hub. A nil log means slog.Default().
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		rooms: map[string]map[*peer]struct{}{},
		last:  map[string]string{},
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	if room == "" {
		http.Error(w, "missing room", http.StatusBadRequest)
		return
	}
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	p := &peer{conn: c}
	last := h.join(room, p)
	defer func() {
		h.leave(room, p)
		c.Close()
	}()
	h.log.Info("peer joined", "room", room, "remote", r.RemoteAddr)

	if err := p.send(Message{Room: room, FontID: last}); err != nil {
		h.log.Warn("greeting failed", "room", room, "err", err)
		return
	}

	for {
		var m Message
		if err := c.ReadJSON(&m); err != nil {
			h.log.Info("peer left", "room", room, "remote", r.RemoteAddr)
			return
		}
		if _, ok := catalog.ByID(m.FontID); !ok {
			h.log.Warn("ignoring unknown font", "room", room, "font", m.FontID)
			continue
		}
		m.Room = room
		h.publish(p, m)
	}
}

func (h *Hub) join(room string, p *peer) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	peers, ok := h.rooms[room]
	if !ok {
		peers = map[*peer]struct{}{}
		h.rooms[room] = peers
	}
	peers[p] = struct{}{}
	return h.last[room]
}

func (h *Hub) leave(room string, p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[room], p)
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
		delete(h.last, room)
	}
}

// publish records m as the room's font and relays it to everyone but from.
func (h *Hub) publish(from *peer, m Message) {
	h.mu.Lock()
	h.last[m.Room] = m.FontID
	var others []*peer
	for p := range h.rooms[m.Room] {
		if p != from {
			others = append(others, p)
		}
	}
	h.mu.Unlock()

	for _, p := range others {
		if err := p.send(m); err != nil {
			h.log.Warn("relay failed", "room", m.Room, "err", err)
		}
	}
}

// Peers returns how many peers are connected to room.
func (h *Hub) Peers(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}
