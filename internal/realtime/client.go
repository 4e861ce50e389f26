package realtime

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client is the middleman between one websocket connection and the hub.
// Its lifecycle is Connecting (upgrade) -> Open (pumps running) -> Closed
// (unregistered, send channel closed); nothing about the session survives
// a close.
type Client struct {
	hub     *Hub
	gateway *Gateway
	conn    *websocket.Conn
	send    chan Message
	logger  zerolog.Logger
}

// NewClient creates a client for an upgraded connection
func NewClient(hub *Hub, gateway *Gateway, conn *websocket.Conn, logger zerolog.Logger) *Client {
	return &Client{
		hub:     hub,
		gateway: gateway,
		conn:    conn,
		send:    make(chan Message, 64),
		logger:  logger.With().Str("component", "realtime-client").Logger(),
	}
}

// Start registers the client and begins its read and write pumps. A hub
// that is already shut down rejects the connection outright.
func (c *Client) Start() {
	if !c.hub.add(c) {
		_ = c.conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// readPump decodes inbound frames and hands each one to the gateway in its
// own goroutine, so a slow store call never blocks the connection from
// reading further events.
func (c *Client) readPump() {
	defer func() {
		c.hub.drop(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error().Err(err).Msg("unexpected websocket close")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.logger.Warn().Err(err).Msg("discarding malformed frame")
			continue
		}
		go c.gateway.Dispatch(context.Background(), env)
	}
}

// writePump drains the send queue to the connection and keeps it alive with
// pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			payload, err := json.Marshal(message)
			if err != nil {
				c.logger.Error().Err(err).Msg("failed to encode outbound message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
