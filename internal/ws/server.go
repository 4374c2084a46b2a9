package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"card-duel/internal/room"
)

const sendBuffer = 32

// Server upgrades HTTP requests to websocket connections and bridges
// them to the room coordinator.
type Server struct {
	coord    *room.Coordinator
	upgrader websocket.Upgrader
}

func NewServer(coord *room.Coordinator) *Server {
	return &Server{
		coord:    coord,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Client is one websocket connection. It implements room.Conn: Send
// buffers into a channel drained by writeLoop and drops the frame when
// the buffer is full, so a stalled peer never blocks the room.
type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	id        string
	closeOnce sync.Once
}

func (c *Client) ID() string { return c.id }

func (c *Client) Send(payload any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("conn_id", c.id).Msg("marshal outbound event failed")
		return
	}
	select {
	case c.send <- msg:
	default:
		log.Warn().Str("conn_id", c.id).Msg("send buffer full, dropping event")
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		id:   uuid.NewString(),
	}
	go client.writeLoop()
	s.coord.Attach(client)
	s.readLoop(client)
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		s.coord.Detach(c)
		c.close()
	}()
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if room.IsHeartbeat(msg) {
			continue
		}
		s.coord.Dispatch(c, msg)
	}
}

func (c *Client) writeLoop() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
	_ = c.conn.Close()
}
