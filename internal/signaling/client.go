// Package signaling owns the one persistent websocket channel a room session
// speaks over, plus the Envelope wire format it carries.
package signaling

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mvidakovic/pricaona/internal/dns"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client manages the WebSocket connection to the signaling relay for one
// room. Reconnect is never attempted; when the connection drops, Incoming()
// is closed and the session treats it as a disconnect.
type Client struct {
	conn     *websocket.Conn
	joinURL  string
	incoming chan *Envelope
	outgoing chan *Envelope
	done     chan struct{}

	closeOnce sync.Once
}

// NewClient creates a signaling client for one room.
// wsBase is ws(s)://host; the join path carries the room id and the
// participant's id and display name as connection parameters.
func NewClient(wsBase, roomID, participantID, username string) *Client {
	q := url.Values{}
	q.Set("userID", participantID)
	q.Set("username", username)
	joinURL := fmt.Sprintf("%s/websocket/joinRoom/%s?%s", wsBase, url.PathEscape(roomID), q.Encode())

	return &Client{
		joinURL:  joinURL,
		incoming: make(chan *Envelope, 16),
		outgoing: make(chan *Envelope, 16),
		done:     make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection and starts the pumps.
func (c *Client) Connect() error {
	u, err := url.Parse(c.joinURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	// Custom dialer with robust DNS lookup
	dialer := websocket.DefaultDialer
	dialer.NetDial = func(network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}

		resolved, err := dns.Lookup(host)
		if err != nil {
			return nil, fmt.Errorf("dns lookup failed: %w", err)
		}

		return net.Dial(network, net.JoinHostPort(resolved, port))
	}

	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.conn = conn
	c.conn.SetReadLimit(maxMessageSize)

	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.readPump()
	go c.writePump()

	return nil
}

// readPump reads envelopes from the WebSocket connection. Closing incoming
// is the disconnect notification to the consumer.
func (c *Client) readPump() {
	defer func() {
		c.conn.Close()
		close(c.incoming)
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("signaling read failed", "err", err)
			}
			return
		}

		select {
		case c.incoming <- &env:
		case <-c.done:
			return
		}
	}
}

// writePump writes envelopes to the WebSocket connection and sends periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case env := <-c.outgoing:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// Send queues an envelope for delivery. Envelopes queued after the
// connection dropped are discarded with a log line.
func (c *Client) Send(env *Envelope) {
	select {
	case c.outgoing <- env:
	case <-c.done:
		slog.Debug("send after close dropped", "type", env.Type)
	}
}

// Incoming returns the channel of relayed envelopes. It is closed when the
// connection drops or Close is called.
func (c *Client) Incoming() <-chan *Envelope {
	return c.incoming
}

// Close shuts the connection down. Safe to call multiple times.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
