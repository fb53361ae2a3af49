// Package hotreload implements the client side of the hot-reload contract:
// it receives update notifications from a connection, dispatches them to
// per-module handles, and asks the runtime to re-import accepted modules.
// The wire protocol and its update-batching logic live on the other side of
// the Connection interface.
package hotreload

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrClientClosed is returned when a hot-reload handle is requested after
// the client has been torn down.
var ErrClientClosed = errors.New("hotreload: client has been cleared")

// Update describes one changed module as reported by the connection.
type Update struct {
	// Type is the connection's update classification, e.g. "js-update".
	Type string
	// Path is the module identity the update applies to.
	Path string
	// Timestamp is the server-side change time in milliseconds.
	Timestamp int64
}

// Connection is the transport surface the client consumes. The same
// physical connection usually also backs the module transport.
type Connection interface {
	// OnUpdate registers the handler invoked for every incoming update.
	OnUpdate(handler func(Update))
	// Send pushes a client-originated event to the server.
	Send(event string, payload any) error
	// Close tears down the connection.
	Close() error
}

// AcceptFunc is called when an updated module should be re-imported.
type AcceptFunc func(ctx context.Context, path string) error

// Client coordinates hot-reload updates for one runtime.
type Client struct {
	logger *slog.Logger
	conn   Connection
	accept AcceptFunc

	mu       sync.Mutex
	closed   bool
	contexts map[string]*HotContext
}

// NewClient wires a client to a connection. The accept callback is invoked
// for every update whose module either registered an accept handler or has
// no handle at all.
func NewClient(logger *slog.Logger, conn Connection, accept AcceptFunc) *Client {
	c := &Client{
		logger:   logger,
		conn:     conn,
		accept:   accept,
		contexts: make(map[string]*HotContext),
	}
	conn.OnUpdate(c.handleUpdate)
	return c
}

// ContextFor returns the hot-reload handle for a module identity, creating
// it on first use. It fails after Clear.
func (c *Client) ContextFor(id string) (*HotContext, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClientClosed
	}
	hc, ok := c.contexts[id]
	if !ok {
		hc = newHotContext(id)
		c.contexts[id] = hc
	}
	return hc, nil
}

// Send forwards a client event to the server.
func (c *Client) Send(event string, payload any) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClientClosed
	}
	return c.conn.Send(event, payload)
}

// Clear disposes every handle and detaches the client. It is idempotent.
// The connection itself is not closed here; its owner does that.
func (c *Client) Clear() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	contexts := c.contexts
	c.contexts = nil
	c.mu.Unlock()

	for _, hc := range contexts {
		hc.dispose()
	}
	c.logger.Debug("Hot-reload client cleared.", "handles", len(contexts))
}

func (c *Client) handleUpdate(u Update) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	hc := c.contexts[u.Path]
	c.mu.Unlock()

	c.logger.Debug("Hot-reload update received.", "path", u.Path, "type", u.Type)

	if hc != nil {
		hc.notify(u)
	}
	if c.accept == nil {
		return
	}
	if err := c.accept(context.Background(), u.Path); err != nil {
		c.logger.Error("Hot-reload re-import failed.", "path", u.Path, "error", err)
	}
}
