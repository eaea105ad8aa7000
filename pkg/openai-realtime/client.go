package openairealtime

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

// DefaultHandshakeTimeout bounds the WebSocket upgrade.
const DefaultHandshakeTimeout = 30 * time.Second

// Client connects realtime sessions. It holds no per-session state.
type Client struct {
	auth   *openai.AuthProvider
	config *clientConfig
}

// clientConfig holds the client configuration.
type clientConfig struct {
	logger           *zap.Logger
	dialer           *websocket.Dialer
	handshakeTimeout time.Duration
	writeTimeout     time.Duration
	header           http.Header
}

// Option configures the Client.
type Option func(*clientConfig)

// NewClient creates a realtime client that authenticates with auth.
func NewClient(auth *openai.AuthProvider, opts ...Option) *Client {
	cfg := &clientConfig{
		logger:           zap.NewNop(),
		handshakeTimeout: DefaultHandshakeTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	return &Client{auth: auth, config: cfg}
}

// WithLogger sets the logger. Nil disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithDialer replaces the WebSocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *clientConfig) {
		c.dialer = d
	}
}

// WithHandshakeTimeout bounds the WebSocket upgrade.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.handshakeTimeout = d
	}
}

// WithWriteTimeout bounds each outbound frame. Zero means no limit; a
// send then blocks until the socket accepts the frame.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.writeTimeout = d
	}
}

// WithHeader adds a header to the upgrade request.
func WithHeader(key, value string) Option {
	return func(c *clientConfig) {
		if c.header == nil {
			c.header = http.Header{}
		}
		c.header.Add(key, value)
	}
}

// Connect opens a session. It returns once session.created has arrived and,
// when cfg.Session is non-empty, session.update has been sent.
func (c *Client) Connect(ctx context.Context, cfg *ConnectConfig) (*Session, error) {
	if cfg == nil {
		cfg = &ConnectConfig{}
	}
	if c.auth == nil || c.auth.APIKey() == "" {
		return nil, configErrorf("realtime requires an api key")
	}
	model := cfg.Model
	if model == "" {
		model = ModelGPT4oRealtimePreview
	}
	if !cfg.Session.Empty() {
		if err := cfg.Session.validate(); err != nil {
			return nil, err
		}
	}

	header := http.Header{}
	for k, vs := range c.config.header {
		header[k] = append([]string(nil), vs...)
	}
	if err := c.auth.ApplyHeaders(header); err != nil {
		return nil, err
	}
	header.Set("OpenAI-Beta", "realtime=v1")

	dialer := websocket.Dialer{Proxy: http.ProxyFromEnvironment}
	if c.config.dialer != nil {
		dialer = *c.config.dialer
	}
	if dialer.HandshakeTimeout == 0 {
		dialer.HandshakeTimeout = c.config.handshakeTimeout
	}

	url := c.auth.RealtimeURL(model)
	log := c.config.logger.With(zap.String("model", model))
	log.Debug("realtime dial", zap.String("url", url))

	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		herr := handshakeError(resp, err)
		if resp != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
		return nil, herr
	}

	s := newSession(conn, log, c.config.writeTimeout)
	ev, err := s.recv(ctx)
	if err != nil {
		s.Close()
		if err == io.EOF {
			if cause := s.Err(); cause != nil {
				return nil, cause
			}
			return nil, transportError("handshake", io.ErrUnexpectedEOF)
		}
		return nil, err
	}
	switch ev.Type {
	case EventTypeSessionCreated:
		if ev.Session != nil {
			s.id = ev.Session.ID
		}
	case EventTypeError:
		s.Close()
		if ev.Error == nil {
			return nil, &openai.APIError{Message: "realtime error before session.created"}
		}
		return nil, ev.Error
	default:
		s.Close()
		return nil, configErrorf("unexpected pre-session event %q", ev.Type)
	}
	log.Debug("realtime session created", zap.String("session_id", s.id))

	if !cfg.Session.Empty() {
		if err := s.UpdateSession(cfg.Session); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}
