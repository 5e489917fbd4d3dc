package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
}

type subscriber struct {
	userID string
	conn   *websocket.Conn
	send   chan todo.PushMessage
}

// Hub keeps the push connections of every user and fans messages out to them.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*subscriber]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: map[string]map[*subscriber]struct{}{}}
}

// Publish sends msg to every connection of the user. A subscriber that is not keeping up is
// disconnected so its client redials and does a full refresh.
func (h *Hub) Publish(userID string, msg todo.PushMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.clients[userID] {
		h.deliver(sub, msg)
	}
}

// Broadcast sends msg to every connection.
func (h *Hub) Broadcast(msg todo.PushMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, subs := range h.clients {
		for sub := range subs {
			h.deliver(sub, msg)
		}
	}
}

// deliver must be called with h.mu held.
func (h *Hub) deliver(sub *subscriber, msg todo.PushMessage) {
	select {
	case sub.send <- msg:
	default:
		log.Warn().Str("user", sub.userID).Str("event", msg.Event).Msg("evicting slow push subscriber")
		h.remove(sub)
	}
}

// Connections returns how many push connections the user has open.
func (h *Hub) Connections(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients[userID])
}

// Close drops every connection.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, subs := range h.clients {
		for sub := range subs {
			sub.conn.Close()
		}
	}
}

func (h *Hub) register(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[sub.userID] == nil {
		h.clients[sub.userID] = map[*subscriber]struct{}{}
	}

	h.clients[sub.userID][sub] = struct{}{}
}

func (h *Hub) unregister(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.remove(sub)
}

// remove drops sub and closes its send channel, which makes writePump close the connection.
// A subscriber that was already removed is ignored. Callers hold h.mu.
func (h *Hub) remove(sub *subscriber) {
	if _, ok := h.clients[sub.userID][sub]; !ok {
		return
	}

	delete(h.clients[sub.userID], sub)

	if len(h.clients[sub.userID]) == 0 {
		delete(h.clients, sub.userID)
	}

	close(sub.send)
}

// ServeWS upgrades the request and streams push messages for the user until the connection
// drops.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("websocket upgrade failed")

		return
	}

	sub := &subscriber{
		userID: userID,
		conn:   conn,
		send:   make(chan todo.PushMessage, sendBuffer),
	}

	h.register(sub)

	log.Debug().Str("user", userID).Msg("push subscriber connected")

	go sub.writePump()

	sub.readPump()
	h.unregister(sub)

	log.Debug().Str("user", userID).Msg("push subscriber disconnected")
}

// readPump only exists to process control frames and notice when the peer goes away.
func (s *subscriber) readPump() {
	defer s.conn.Close()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}

			if err := s.conn.WriteJSON(msg); err != nil {
				log.Warn().Err(err).Str("user", s.userID).Msg("error writing push message")

				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
