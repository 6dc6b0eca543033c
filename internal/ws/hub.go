package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

const broadcastBuffer = 256

// Message is the envelope every websocket client receives.
type Message struct {
	Type    string    `json:"type"`
	Payload any       `json:"payload"`
	SentAt  time.Time `json:"sent_at"`
}

type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	mutex      sync.Mutex
	logger     *zap.Logger
	done       chan struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, broadcastBuffer),
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Join registers a connection unless the hub has stopped.
func (h *Hub) Join(conn *websocket.Conn) bool {
	select {
	case h.Register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters a connection unless the hub has stopped.
func (h *Hub) Leave(conn *websocket.Conn) {
	select {
	case h.Unregister <- conn:
	case <-h.done:
	}
}

// Publish queues a message for every client. It never blocks: when the
// queue is full the message is dropped.
func (h *Hub) Publish(msgType string, payload any) {
	msg, err := json.Marshal(Message{Type: msgType, Payload: payload, SentAt: time.Now().UTC()})
	if err != nil {
		h.logger.Error("failed to encode ws message", zap.String("type", msgType), zap.Error(err))
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
		h.logger.Warn("ws broadcast queue full, dropping message", zap.String("type", msgType))
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			h.logger.Debug("ws client connected", zap.Int("clients", h.ClientCount()))

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
