// Package channel keeps the push channel to the service open and hands every
// inbound event to the handler registered for its type.
package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matheus3301/wtox/internal/api"
	"github.com/matheus3301/wtox/internal/bus"
	"github.com/matheus3301/wtox/internal/config"
	"github.com/matheus3301/wtox/internal/errs"
	"github.com/matheus3301/wtox/internal/status"
	"go.uber.org/zap"
)

const (
	maxFrameSize     = 1 << 20
	handshakeTimeout = 10 * time.Second
)

// Event is one decoded frame. Data holds the whole record, type included.
type Event struct {
	Type string
	Data json.RawMessage
}

// Decode unmarshals the full record into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// Handler processes one event. Handlers run on the read loop, one at a time,
// in arrival order; anything slow must be started in its own goroutine.
type Handler func(ctx context.Context, evt Event)

// Registrar installs handlers by event type.
type Registrar interface {
	RegisterHandler(eventType string, h Handler)
}

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Options tunes a Channel. Zero values pick the defaults.
type Options struct {
	Delay   time.Duration
	Machine *status.Machine
	Bus     *bus.Bus
	Logger  *zap.Logger
	Wait    WaitFunc
}

// Channel is a receive-only websocket to the service's events endpoint.
type Channel struct {
	url     *url.URL
	client  *api.Client
	dialer  *websocket.Dialer
	delay   time.Duration
	machine *status.Machine
	bus     *bus.Bus
	logger  *zap.Logger
	wait    WaitFunc

	mu       sync.RWMutex
	handlers map[string]Handler
}

// New creates a channel that authenticates like client.
func New(client *api.Client, opts Options) *Channel {
	if opts.Delay <= 0 {
		opts.Delay = config.DefaultReconnectDelay
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Machine == nil {
		opts.Machine = status.NewMachine(opts.Bus)
	}
	if opts.Wait == nil {
		opts.Wait = sleep
	}
	return &Channel{
		url:    client.EventsURL(),
		client: client,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
			TLSClientConfig:  client.TLSConfig(),
			Jar:              client.Jar(),
		},
		delay:    opts.Delay,
		machine:  opts.Machine,
		bus:      opts.Bus,
		logger:   opts.Logger.Named("channel"),
		wait:     opts.Wait,
		handlers: make(map[string]Handler),
	}
}

// RegisterHandler installs h for eventType. The last registration wins.
func (c *Channel) RegisterHandler(eventType string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[eventType] = h
}

// State returns the connection state.
func (c *Channel) State() status.State {
	return c.machine.Current()
}

// Run connects and keeps reconnecting until ctx is cancelled. onOpen runs
// after every successful connect, onClose after every lost connection or
// failed attempt; either may be nil. A URL the transport cannot serve
// returns errs.ErrTransportUnavailable at once. Cancellation returns nil.
func (c *Channel) Run(ctx context.Context, onOpen func(), onClose func(error)) error {
	if c.machine.Current() == status.Closed {
		c.transition(status.Idle)
	}
	if c.url.Scheme != "ws" && c.url.Scheme != "wss" {
		c.transition(status.Unavailable)
		c.logger.Error("push channel unavailable", zap.String("url", c.url.String()))
		return fmt.Errorf("events url scheme %q: %w", c.url.Scheme, errs.ErrTransportUnavailable)
	}

	for {
		c.transition(status.Connecting)
		conn, err := c.dial(ctx)
		if err == nil {
			c.transition(status.Online)
			c.bus.Emit(bus.ChannelConnected, nil)
			c.logger.Info("push channel open", zap.String("url", c.url.String()))
			if onOpen != nil {
				onOpen()
			}
			err = c.read(ctx, conn)
		}
		if ctx.Err() != nil {
			c.transition(status.Closed)
			return nil
		}

		c.transition(status.Reconnecting)
		c.bus.Emit(bus.ChannelDisconnected, err)
		c.logger.Warn("push channel lost, reconnecting", zap.Error(err), zap.Duration("delay", c.delay))
		if onClose != nil {
			onClose(err)
		}
		if err := c.wait(ctx, c.delay); err != nil {
			c.transition(status.Closed)
			return nil
		}
	}
}

// dial reads the credentials on every attempt so a reconnect after
// UpdateCredentials authenticates with the new ones.
func (c *Channel) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.url.String(), c.client.AuthHeader())
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial events: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial events: %w", err)
	}
	conn.SetReadLimit(maxFrameSize)
	return conn, nil
}

// read dispatches frames until the connection fails or ctx is done.
func (c *Channel) read(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	defer func() { _ = conn.Close() }()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("push channel read error", zap.Error(err))
			}
			return err
		}
		c.dispatch(ctx, data)
	}
}

func (c *Channel) dispatch(ctx context.Context, data []byte) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil || head.Type == "" {
		c.logger.Warn("dropping undecodable frame", zap.ByteString("frame", data), zap.Error(err))
		return
	}

	c.mu.RLock()
	h, ok := c.handlers[head.Type]
	c.mu.RUnlock()
	if !ok {
		c.logger.Debug("dropping unhandled event", zap.String("type", head.Type))
		return
	}
	h(ctx, Event{Type: head.Type, Data: json.RawMessage(data)})
}

func (c *Channel) transition(to status.State) {
	if err := c.machine.Transition(to); err != nil {
		c.logger.Debug("state transition rejected", zap.Error(err))
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
