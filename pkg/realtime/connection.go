package realtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/musicstore/pkg/identity"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
)

// Connection is one browser attached to a hub.
type Connection struct {
	id        string
	hub       *Hub
	ws        *websocket.Conn
	send      chan []byte
	principal *identity.Principal

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func (c *Connection) ID() string { return c.id }

// Principal returns the user that opened the connection, or an anonymous
// principal.
func (c *Connection) Principal() *identity.Principal { return c.principal }

// Context is cancelled when the connection closes.
func (c *Connection) Context() context.Context { return c.ctx }

// Send queues an invocation for this connection only.
func (c *Connection) Send(method string, args ...any) error {
	data, err := encode(c.hub.name, method, args)
	if err != nil {
		return err
	}
	return c.enqueue(data)
}

func (c *Connection) enqueue(data []byte) error {
	select {
	case <-c.ctx.Done():
		return ErrClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	default:
		c.close()
		return ErrSlowClient
	}
}

func (c *Connection) close() {
	c.once.Do(func() {
		c.cancel()
		c.hub.remove(c)
	})
}

// readPump dispatches incoming invocations until the socket fails.
func (c *Connection) readPump() {
	defer func() {
		c.close()
		_ = c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var in Incoming
		if err := c.ws.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn("realtime connection dropped",
					slog.String("connection_id", c.id),
					slog.Any("error", err),
				)
			}
			return
		}
		if err := c.hub.dispatch(c, in); err != nil {
			c.hub.log.Warn("realtime invocation failed",
				slog.String("connection_id", c.id),
				slog.String("method", in.Method),
				slog.Any("error", err),
			)
			_ = c.Send("error", err.Error())
		}
	}
}

// writePump drains the send queue and keeps the socket alive with pings.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.ctx.Done():
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
				c.hub.log.Debug("realtime close frame failed", slog.Any("error", err))
			}
			return
		}
	}
}
