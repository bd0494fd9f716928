package remote

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vk/bndl/internal/builder"
	"github.com/vk/bndl/internal/ctxlog"
	"github.com/vk/bndl/internal/plan"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const (
	opEvent     = "bndl:op"
	resultEvent = "bndl:result"

	defaultTimeout = 10 * time.Second
	connectTimeout = 15 * time.Second
)

// HostError is a failure reported by the host for one operation.
type HostError struct {
	Op  string
	Msg string
}

func (e *HostError) Error() string {
	return fmt.Sprintf("host rejected %s: %s", e.Op, e.Msg)
}

// Client is a builder.Applier backed by a socket.io connection.
type Client struct {
	io      *socket.Socket
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[string]chan reply
}

type reply struct {
	errMsg string
}

// Dial connects to the host at opts.URL. A path in the URL selects the
// socket.io endpoint path.
func Dial(ctx context.Context, opts builder.Options) (*Client, error) {
	logger := ctxlog.FromContext(ctx).With("builder", "remote", "url", opts.URL)
	logger.Info("Connecting to host builder...")

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("builder URL %q needs a scheme and host", opts.URL)
	}

	sopts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		sopts.SetPath(parsedURL.Path)
	}
	if parsedURL.Scheme == "https" && parsedURL.Query().Get("insecure") == "1" {
		logger.Warn("Skipping TLS certificate verification")
		sopts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sopts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sopts)
	io := manager.Socket(opts.Namespace, sopts)

	c := &Client{
		io:      io,
		timeout: opts.Timeout,
		logger:  logger,
		pending: make(map[string]chan reply),
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to host builder", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})
	io.On(types.EventName(resultEvent), func(args ...any) {
		c.dispatch(args...)
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return c, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", connectTimeout)
	}
}

// Factory adapts Dial to builder.Factory.
func Factory(ctx context.Context, opts builder.Options) (builder.Applier, func() error, error) {
	c, err := Dial(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}

// Apply implements builder.Applier. It waits for the host's result event for
// this operation, up to the configured timeout.
func (c *Client) Apply(ctx context.Context, op plan.Operation) error {
	if !c.io.Connected() {
		return fmt.Errorf("socket.io client is not connected")
	}
	payload, err := encodeOp(op)
	if err != nil {
		return err
	}

	id := uuid.NewString()
	ch := c.register(id)
	defer c.unregister(id)

	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug("Emitting operation", "id", id, "op", op.String())
	c.io.Emit(opEvent, map[string]any{"id": id, "op": payload})

	select {
	case r := <-ch:
		if r.errMsg != "" {
			return &HostError{Op: op.String(), Msg: r.errMsg}
		}
		return nil
	case <-opCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("timed out after %v waiting for %s result", c.timeout, op.String())
	}
}

// Close disconnects from the host.
func (c *Client) Close() error {
	c.logger.Info("Disconnecting from host builder", "sid", c.io.Id())
	c.io.Disconnect()
	return nil
}

func (c *Client) register(id string) chan reply {
	ch := make(chan reply, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	return ch
}

func (c *Client) unregister(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// dispatch routes a result event to the waiting Apply call.
func (c *Client) dispatch(args ...any) {
	id, r, err := decodeResult(args)
	if err != nil {
		c.logger.Warn("Ignoring malformed result event", "error", err)
		return
	}
	c.mu.Lock()
	ch, ok := c.pending[id]
	c.mu.Unlock()
	if !ok {
		c.logger.Debug("Result for unknown request", "id", id)
		return
	}
	select {
	case ch <- r:
	default:
	}
}

// encodeOp converts op into the generic form the socket.io encoder expects.
func encodeOp(op plan.Operation) (map[string]any, error) {
	raw, err := json.Marshal(op)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", op.String(), err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", op.String(), err)
	}
	return out, nil
}

func decodeResult(args []any) (string, reply, error) {
	if len(args) == 0 {
		return "", reply{}, fmt.Errorf("result event without payload")
	}
	m, ok := args[0].(map[string]any)
	if !ok {
		return "", reply{}, fmt.Errorf("result payload is %T, want an object", args[0])
	}
	id, ok := m["id"].(string)
	if !ok || id == "" {
		return "", reply{}, fmt.Errorf("result payload has no id")
	}
	var r reply
	switch e := m["error"].(type) {
	case nil:
	case string:
		r.errMsg = e
	default:
		r.errMsg = fmt.Sprint(e)
	}
	return id, r, nil
}
