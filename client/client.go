package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.uber.org/zap"

	"github.com/spektr-org/nexus/assistant"
	"github.com/spektr-org/nexus/engine"
	"github.com/spektr-org/nexus/identity"
)

// DefaultTimeout bounds each request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// ErrStatus matches every *StatusError through errors.Is.
var ErrStatus = errors.New("unexpected HTTP status")

// StatusError is a non-2xx reply.
type StatusError struct {
	Op     string
	Code   int
	Detail string // FastAPI-style {"detail": ...} when present
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s failed with HTTP status %d: %s", e.Op, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s failed with HTTP status %d", e.Op, e.Code)
}

// Is makes errors.Is(err, ErrStatus) true.
func (e *StatusError) Is(target error) bool { return target == ErrStatus }

// LoginRequest is the body of a login call. The demo backend ignores the
// password.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// APIClient wraps a Hertz client for the dashboard backend. It serves as
// dashboard.Fetcher and assistant.Backend.
type APIClient struct {
	client  *client.Client
	server  string
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures an APIClient.
type Option func(*APIClient)

// WithTimeout bounds every request. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *APIClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *APIClient) {
		if l != nil {
			c.logger = l.Named("client")
		}
	}
}

// New creates a client for server.
func New(server string, opts ...Option) (*APIClient, error) {
	normalized, err := NormalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	hc, err := client.NewClient(
		client.WithDialTimeout(10*time.Second),
		client.WithMaxIdleConnDuration(60*time.Second),
		client.WithDialer(standard.NewDialer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	c := &APIClient{
		client:  hc,
		server:  normalized,
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Server returns the normalized base URL.
func (c *APIClient) Server() string { return c.server }

// NormalizeServerURL prepends https:// to a bare host and drops trailing
// slashes. Paths are kept so the backend can sit under a prefix.
func NormalizeServerURL(server string) (string, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return "", errors.New("empty server URL")
	}
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "https://" + server
	}
	server = strings.TrimRight(server, "/")

	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL %q", server)
	}
	return server, nil
}

// Login exchanges an email for the backend's identity.
func (c *APIClient) Login(ctx context.Context, email, password string) (*identity.Identity, error) {
	var id identity.Identity
	if err := c.do(ctx, "login", consts.MethodPost, endpointLogin, LoginRequest{Email: email, Password: password}, &id); err != nil {
		return nil, err
	}
	id.Role = identity.NormalizeRole(id.Role)
	return &id, nil
}

// Dashboard fetches the payload for role.
func (c *APIClient) Dashboard(ctx context.Context, role string) (*engine.Payload, error) {
	path := fmt.Sprintf(endpointDashboard, url.PathEscape(role))
	var payload engine.Payload
	if err := c.do(ctx, "dashboard", consts.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Chat sends one assistant turn.
func (c *APIClient) Chat(ctx context.Context, req assistant.Request) (*assistant.Response, error) {
	var resp assistant.Response
	if err := c.do(ctx, "chat", consts.MethodPost, endpointChat, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) do(ctx context.Context, op, method, path string, body, out any) error {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(method)
	req.SetRequestURI(c.server + path)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(data)
	}

	start := time.Now()
	if err := c.client.DoTimeout(ctx, req, resp, c.timeout); err != nil {
		c.logger.Warn("request failed", zap.String("op", op), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s request failed: %w", op, err)
	}

	status := resp.StatusCode()
	c.logger.Debug("request done",
		zap.String("op", op),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("elapsed", time.Since(start)))

	if status < 200 || status >= 300 {
		return &StatusError{Op: op, Code: status, Detail: detail(resp.Body())}
	}
	if err := sonic.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", op, err)
	}
	return nil
}

// detail extracts {"detail": "..."} from an error body.
func detail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var e struct {
		Detail any `json:"detail"`
	}
	if err := sonic.Unmarshal(body, &e); err != nil || e.Detail == nil {
		return ""
	}
	if s, ok := e.Detail.(string); ok {
		return s
	}
	return fmt.Sprint(e.Detail)
}
