package main

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"foodarena/protocol"
	"foodarena/world"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufSize    = 256
	commandTimeout = 2 * time.Second
)

// Client represents a WebSocket connection. It implements arena.Conn.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	closed     chan struct{}
	closeOnce  sync.Once
	id         string
	codec      protocol.Codec
	remoteAddr string
	log        *zap.SugaredLogger
	// Owned by ReadPump
	msgCount   int
	msgResetAt time.Time
}

// NewClient creates a new Client with a fresh player id
func NewClient(hub *Hub, conn *websocket.Conn, codec protocol.Codec, remoteAddr string) *Client {
	id := uuid.NewString()
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		closed:     make(chan struct{}),
		id:         id,
		codec:      codec,
		remoteAddr: remoteAddr,
		log:        hub.log.With("id", id, "ip", remoteAddr),
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Infow("ws error", "err", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.hub.maxMsgsPerSec > 0 && c.msgCount > c.hub.maxMsgsPerSec {
			c.log.Warn("rate limit exceeded, disconnecting")
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	msgType := websocket.TextMessage
	if c.codec.Binary() {
		msgType = websocket.BinaryMessage
	}

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(msgType, message); err != nil {
				return
			}

		case <-c.closed:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Send encodes env with the negotiated codec and queues it. A full buffer
// drops the frame for this connection only.
func (c *Client) Send(env protocol.Envelope) {
	data, err := c.codec.Encode(env)
	if err != nil {
		c.log.Errorw("encode", "type", env.T, "err", err)
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.Debugw("send buffer full, dropping frame", "type", env.T)
	}
}

// Close asks the write pump to close the connection
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.closed) })
}

func (c *Client) sendError(msg string) {
	c.Send(protocol.Envelope{T: protocol.MsgError, Data: protocol.ErrorMsg{Msg: msg}})
}

// handleMessage routes incoming messages. Client frames are always JSON.
func (c *Client) handleMessage(raw []byte) {
	t, payload, err := protocol.JSON.Decode(raw)
	if err != nil {
		c.log.Warnw("unmarshal error", "err", err)
		return
	}

	switch t {
	case protocol.MsgJoin:
		c.handleJoin(payload)
	case protocol.MsgInput:
		c.handleInput(payload)
	default:
		c.log.Debugw("unknown message type", "type", t)
	}
}

func (c *Client) handleJoin(data []byte) {
	var msg protocol.JoinMsg
	if len(data) > 0 {
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("malformed join")
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := c.hub.room.Join(ctx, c.id, msg.Name, c); err != nil {
		if errors.Is(err, world.ErrDuplicatePlayer) {
			c.sendError("already joined")
			return
		}
		c.log.Warnw("join failed", "err", err)
		c.sendError("join failed")
	}
}

// handleInput replaces the stored input. Malformed payloads leave the
// previous input untouched.
func (c *Client) handleInput(data json.RawMessage) {
	in, err := protocol.DecodeInput(data)
	if err != nil {
		c.hub.room.Metrics().IncRejected()
		c.log.Warnw("input rejected", "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := c.hub.room.SetInput(ctx, c.id, in); err != nil {
		c.log.Debugw("input not delivered", "err", err)
	}
}
