// Package siotransport implements the module transport and the hot-reload
// connection over a single Socket.IO client socket. Fetches are
// request/response pairs correlated by a sequence number; updates arrive
// as server-pushed events on the same socket.
package siotransport

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/modrunnergo/internal/hotreload"
	"github.com/vk/modrunnergo/internal/transport"
)

const (
	fetchEvent  = "module:fetch"
	resultEvent = "module:result"
	updateEvent = "module:update"
)

// Options configures a dial.
type Options struct {
	// URL is the server base URL, including the engine path.
	URL string
	// Namespace is the Socket.IO namespace to join. Empty means "/".
	Namespace string
	// ConnectTimeout bounds the initial connection. Zero means 10s.
	ConnectTimeout time.Duration
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
	// Logger receives connection diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client is a transport.Transport and hotreload.Connection backed by one
// Socket.IO socket.
type Client struct {
	logger *slog.Logger
	io     *socket.Socket

	seq atomic.Uint64

	mu            sync.Mutex
	pending       map[uint64]chan map[string]any
	updateHandler func(hotreload.Update)
}

// Dial connects to a module server and waits for the socket to come up.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.ConnectTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("siotransport: parsing URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	sioOpts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		sioOpts.SetPath(parsedURL.Path)
	}
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sioOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sioOpts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, sioOpts)
	io := manager.Socket(opts.Namespace, sioOpts)

	c := &Client{
		logger:  logger,
		io:      io,
		pending: make(map[uint64]chan map[string]any),
	}

	connected := make(chan error, 1)
	io.On(types.EventName("connect"), func(...any) {
		logger.Debug("Module server connected.", "namespace", opts.Namespace, "sid", io.Id())
		select {
		case connected <- nil:
		default:
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err, _ := errs[0].(error)
		if err == nil {
			err = fmt.Errorf("siotransport: connect error: %v", errs[0])
		}
		select {
		case connected <- err:
		default:
		}
	})
	io.On(types.EventName(resultEvent), c.handleResult)
	io.On(types.EventName(updateEvent), c.handleUpdate)

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	io.Connect()
	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, err
		}
	case <-dialCtx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("siotransport: timed out waiting for initial connection: %w", dialCtx.Err())
	}
	return c, nil
}

// FetchModule implements transport.Transport as a correlated
// request/response round trip.
func (c *Client) FetchModule(ctx context.Context, moduleURL, importer string, opts transport.FetchOptions) (transport.FetchResult, error) {
	seq := c.seq.Add(1)
	reply := make(chan map[string]any, 1)

	c.mu.Lock()
	c.pending[seq] = reply
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, seq)
		c.mu.Unlock()
	}()

	c.io.Emit(fetchEvent, map[string]any{
		"seq":      seq,
		"url":      moduleURL,
		"importer": importer,
		"cached":   opts.Cached,
	})

	select {
	case payload := <-reply:
		return decodeFetchResult(payload)
	case <-ctx.Done():
		return transport.FetchResult{}, fmt.Errorf("siotransport: fetching %q: %w", moduleURL, ctx.Err())
	}
}

// OnUpdate implements hotreload.Connection.
func (c *Client) OnUpdate(handler func(hotreload.Update)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateHandler = handler
}

// Send implements hotreload.Connection.
func (c *Client) Send(event string, payload any) error {
	c.io.Emit(event, payload)
	return nil
}

// Close disconnects the socket.
func (c *Client) Close() error {
	c.logger.Debug("Disconnecting module server socket.")
	c.io.Disconnect()
	return nil
}

func (c *Client) handleResult(data ...any) {
	payload, ok := firstMap(data)
	if !ok {
		c.logger.Warn("Dropping malformed fetch result payload.")
		return
	}
	seq, ok := numberField(payload, "seq")
	if !ok {
		c.logger.Warn("Dropping fetch result without a sequence number.")
		return
	}

	c.mu.Lock()
	reply, ok := c.pending[uint64(seq)]
	c.mu.Unlock()
	if !ok {
		// Late answer for an abandoned request.
		return
	}
	select {
	case reply <- payload:
	default:
	}
}

func (c *Client) handleUpdate(data ...any) {
	payload, ok := firstMap(data)
	if !ok {
		c.logger.Warn("Dropping malformed update payload.")
		return
	}
	c.mu.Lock()
	handler := c.updateHandler
	c.mu.Unlock()
	if handler == nil {
		return
	}
	handler(decodeUpdate(payload))
}
