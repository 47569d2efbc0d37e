package client

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"foodarena/protocol"
)

// Message is one decoded server frame with its payload still encoded
type Message struct {
	T       string
	Payload []byte
}

// Conn is a websocket connection to the arena server. Reads run on their
// own goroutine; Send must be called from one goroutine at a time.
type Conn struct {
	ws       *websocket.Conn
	codec    protocol.Codec
	incoming chan Message
	closed   chan struct{}
	once     sync.Once

	mu  sync.Mutex
	err error
}

// Dial connects to rawURL (ws:// or wss://, path /ws) and asks the server
// to encode frames with codec.
func Dial(ctx context.Context, rawURL string, codec protocol.Codec) (*Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	q.Set("codec", codec.Name())
	u.RawQuery = q.Encode()

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}
	c := &Conn{ws: ws, codec: codec, incoming: make(chan Message, 64), closed: make(chan struct{})}
	go c.readLoop()
	return c, nil
}

func (c *Conn) Codec() protocol.Codec { return c.codec }

// Messages is closed when the connection fails; Err then reports why
func (c *Conn) Messages() <-chan Message { return c.incoming }

func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Conn) readLoop() {
	defer close(c.incoming)
	for {
		_, frame, err := c.ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			c.err = err
			c.mu.Unlock()
			return
		}
		t, payload, err := c.codec.Decode(frame)
		if err != nil {
			continue
		}
		select {
		case c.incoming <- Message{T: t, Payload: payload}:
		case <-c.closed:
			return
		}
	}
}

// Send writes a JSON text frame; the server always reads JSON
func (c *Conn) Send(t string, payload interface{}) error {
	frame, err := protocol.JSON.Encode(protocol.Envelope{T: t, Data: payload})
	if err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, frame)
}

func (c *Conn) Join(name string) error {
	return c.Send(protocol.MsgJoin, protocol.JoinMsg{Name: name})
}

func (c *Conn) SendInput(in protocol.InputMsg) error {
	return c.Send(protocol.MsgInput, in)
}

func (c *Conn) Close() error {
	c.once.Do(func() { close(c.closed) })
	_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.ws.Close()
}
