package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"notegraph/application/collab"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512 * 1024

	// Send buffer size
	sendBufferSize = 256
)

// Client is one websocket connection bound to one editing session. The
// write pump drains a buffered channel so the coordinator's broadcast
// never blocks on a slow peer; a peer that cannot keep up loses messages
// and recovers through catch-up on reconnect.
type Client struct {
	sessionID string
	conn      *websocket.Conn
	send      chan collab.Envelope
	logger    *zap.Logger
}

// NewClient wraps an upgraded connection
func NewClient(sessionID string, conn *websocket.Conn, logger *zap.Logger) *Client {
	return &Client{
		sessionID: sessionID,
		conn:      conn,
		send:      make(chan collab.Envelope, sendBufferSize),
		logger:    logger.With(zap.String("session_id", sessionID)),
	}
}

// Send queues an envelope without blocking, the contract the coordinator's
// broadcast requires. A full buffer drops the message; the session will
// resynchronize through catch-up.
func (c *Client) Send(env collab.Envelope) {
	select {
	case c.send <- env:
	default:
		c.logger.Warn("Send buffer full, dropping message",
			zap.String("type", env.Type))
	}
}

// writePump pumps queued envelopes to the connection and keeps the ping
// cycle going
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(env)
			if err != nil {
				c.logger.Error("Failed to marshal envelope", zap.Error(err))
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("Write failed", zap.Error(err))
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

// readPump reads envelopes from the connection and hands them to handle
// until the peer goes away. Pongs refresh the read deadline and count as
// heartbeats.
func (c *Client) readPump(handle func(collab.Envelope), heartbeat func()) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		heartbeat()
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("Read error", zap.Error(err))
			}
			return
		}
		var env collab.Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.Send(mustEnvelope(collab.MessageError, collab.ErrorMessage{
				Kind:    "MALFORMED_OPERATION",
				Message: "malformed envelope",
			}))
			continue
		}
		handle(env)
	}
}

// Close stops the write pump
func (c *Client) Close() {
	close(c.send)
}

func mustEnvelope(msgType string, payload interface{}) collab.Envelope {
	env, err := collab.NewEnvelope(msgType, payload)
	if err != nil {
		return collab.Envelope{Type: msgType}
	}
	return env
}
