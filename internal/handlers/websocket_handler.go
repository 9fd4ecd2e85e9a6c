package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"liturgy-live/internal/models"
	"liturgy-live/internal/services"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	clientSendSize = 256
)

// WebSocketHandler bridges output windows onto a session's sync channel
type WebSocketHandler struct {
	sessions *services.SessionManager
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(sessions *services.SessionManager) *WebSocketHandler {
	return &WebSocketHandler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Output windows run on other machines in the venue
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// outputClient is one connected output window. It owns its own instance
// of the session channel, so it never sees its own messages echoed back.
type outputClient struct {
	conn    *websocket.Conn
	channel *services.SyncChannel
	send    chan []byte
	done    chan struct{}
}

// ServeOutput upgrades the connection and joins it to the session channel
// GET /ws/{id}
func (h *WebSocketHandler) ServeOutput(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &outputClient{
		conn:    conn,
		channel: h.sessions.Hub().Open(session.ChannelName()),
		send:    make(chan []byte, clientSendSize),
		done:    make(chan struct{}),
	}
	unsubscribe := client.channel.Subscribe(client.forward)
	log.Printf("Output connected to session %s (%s)", session.ID, r.RemoteAddr)

	go client.writePump()
	client.readPump()

	unsubscribe()
	client.channel.Close()
	close(client.done)
	log.Printf("Output disconnected from session %s", session.ID)
}

// forward queues a channel message for the socket, dropping it if the client is slow
func (c *outputClient) forward(msg models.SyncMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal %s: %v", msg.Type, err)
		return
	}
	select {
	case <-c.done:
	case c.send <- data:
	default:
		log.Printf("Output client too slow, dropping %s", msg.Type)
	}
}

// readPump relays messages from the output window (REQUEST_STATE and friends)
func (c *outputClient) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		var msg models.SyncMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Ignoring malformed message: %v", err)
			continue
		}
		if err := msg.Validate(); err != nil {
			log.Printf("Ignoring invalid message: %v", err)
			continue
		}
		c.channel.Send(msg)
	}
}

func (c *outputClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("WebSocket write error: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
