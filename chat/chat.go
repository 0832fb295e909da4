// Package chat is the websocket helper behind the chat placeholder page:
// connect, exchange JSON messages, and keep the connection alive with a
// fixed-interval ping. There is no reconnect logic; a dropped connection is
// surfaced by the closed message channel and Err.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// defaultPingInterval matches the keep-alive cadence of the original helper.
const defaultPingInterval = 30 * time.Second

// Message is the JSON frame exchanged with the chat endpoint.
type Message struct {
	Type   string    `json:"type"`
	Sender string    `json:"sender,omitempty"`
	Body   string    `json:"body,omitempty"`
	SentAt time.Time `json:"sent_at,omitempty"`
}

// Conn is one live chat connection.
type Conn struct {
	ws     *websocket.Conn
	logger *slog.Logger

	// writeMu serializes sends against keep-alive pings; gorilla allows only
	// one concurrent writer.
	writeMu sync.Mutex

	incoming chan Message
	done     chan struct{}

	closeOnce sync.Once

	errMu   sync.Mutex
	lastErr error
}

// Option configures Dial.
type Option func(*dialConfig)

type dialConfig struct {
	pingInterval time.Duration
	accessToken  string
	logger       *slog.Logger
}

// WithPingInterval overrides the keep-alive cadence.
func WithPingInterval(d time.Duration) Option {
	return func(c *dialConfig) { c.pingInterval = d }
}

// WithAccessToken attaches a bearer token to the websocket handshake.
func WithAccessToken(token string) Option {
	return func(c *dialConfig) { c.accessToken = token }
}

// WithLogger sets the connection logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *dialConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Dial connects to a ws:// or wss:// chat endpoint and starts the read and
// keep-alive loops.
func Dial(ctx context.Context, rawURL string, opts ...Option) (*Conn, error) {
	cfg := dialConfig{
		pingInterval: defaultPingInterval,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	header := http.Header{}
	if cfg.accessToken != "" {
		header.Set("Authorization", "Bearer "+cfg.accessToken)
	}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, rawURL, header)
	if err != nil {
		return nil, fmt.Errorf("dial chat endpoint: %w", err)
	}

	c := &Conn{
		ws:       ws,
		logger:   cfg.logger,
		incoming: make(chan Message, 16),
		done:     make(chan struct{}),
	}

	go c.readLoop()
	go c.keepAlive(cfg.pingInterval)
	return c, nil
}

// Send writes one message frame.
func (c *Conn) Send(msg Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.WriteJSON(msg); err != nil {
		return fmt.Errorf("send chat message: %w", err)
	}
	return nil
}

// Messages returns the incoming frames; the channel closes when the
// connection ends.
func (c *Conn) Messages() <-chan Message {
	return c.incoming
}

// Err returns the error that ended the connection, if any.
func (c *Conn) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.lastErr
}

// Close sends a close frame and tears the connection down. Safe to call more
// than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.ws.Close()
	})
	return err
}

// readLoop delivers frames until the connection fails or closes.
func (c *Conn) readLoop() {
	defer close(c.incoming)
	for {
		var msg Message
		if err := c.ws.ReadJSON(&msg); err != nil {
			select {
			case <-c.done:
				// Deliberate close; not an error.
			default:
				c.setErr(err)
				c.logger.Debug("chat connection ended", slog.String("error", err.Error()))
			}
			return
		}
		select {
		case c.incoming <- msg:
		case <-c.done:
			return
		}
	}
}

// keepAlive pings on a fixed interval until the connection closes.
func (c *Conn) keepAlive(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			c.writeMu.Unlock()
			if err != nil {
				c.setErr(err)
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Conn) setErr(err error) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.lastErr == nil {
		c.lastErr = err
	}
}
