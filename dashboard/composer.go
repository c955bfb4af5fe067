package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spektr-org/nexus/engine"
	"github.com/spektr-org/nexus/schema"
)

// ============================================================================
// COMPOSER — Role-scoped dashboard load with last-request-wins
// ============================================================================
// Every load takes a ticket stamped with a generation number. A completion
// is applied only when its ticket is still the newest one; anything older is
// dropped. The view therefore always shows exactly one of: the loading
// text, the error text, or the payload of the most recent request.
// ============================================================================

// Fixed texts shown in place of the dashboard body.
const (
	LoadingText = "Loading Dashboard..."
	ErrorText   = "Failed to load dashboard data."
)

// ErrSuperseded is returned by Load when a newer request replaced this one
// before it completed.
var ErrSuperseded = errors.New("dashboard request superseded")

// Fetcher retrieves the dashboard payload for a role.
type Fetcher interface {
	Dashboard(ctx context.Context, role string) (*engine.Payload, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, role string) (*engine.Payload, error)

// Dashboard calls f.
func (f FetcherFunc) Dashboard(ctx context.Context, role string) (*engine.Payload, error) {
	return f(ctx, role)
}

// State of the composer.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Ticket identifies one load request.
type Ticket struct {
	Generation uint64
	Role       string
}

// Composer owns the displayed dashboard for one session. Safe for
// concurrent use.
type Composer struct {
	fetcher Fetcher
	logger  *zap.Logger
	render  []engine.Option

	mu         sync.Mutex
	generation uint64
	state      State
	role       string
	payload    *engine.Payload
	err        error
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the logger. nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.logger = l.Named("composer")
		}
	}
}

// WithRenderOptions passes options through to engine.Render for View.
func WithRenderOptions(opts ...engine.Option) Option {
	return func(c *Composer) {
		c.render = append(c.render, opts...)
	}
}

// New creates an idle composer.
func New(fetcher Fetcher, opts ...Option) *Composer {
	c := &Composer{fetcher: fetcher, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Begin starts a load for role: the generation advances, the composer
// enters Loading and the previous payload is dropped. Any earlier ticket
// becomes stale.
func (c *Composer) Begin(role string) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.state = StateLoading
	c.role = role
	c.payload = nil
	c.err = nil

	c.logger.Debug("dashboard load started",
		zap.String("role", role), zap.Uint64("generation", c.generation))
	return Ticket{Generation: c.generation, Role: role}
}

// Complete applies the outcome of t. It reports false, changing nothing,
// when t is stale. On success the payload replaces the previous one
// wholesale; on error the composer enters Failed and withholds all content.
func (c *Composer) Complete(t Ticket, payload *engine.Payload, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.Generation != c.generation || c.state != StateLoading {
		c.logger.Debug("stale dashboard result dropped",
			zap.String("role", t.Role),
			zap.Uint64("generation", t.Generation),
			zap.Uint64("current", c.generation))
		return false
	}

	if err == nil && payload == nil {
		err = errors.New("empty dashboard response")
	}
	if err != nil {
		c.state = StateFailed
		c.payload = nil
		c.err = err
		c.logger.Warn("dashboard load failed",
			zap.String("role", t.Role), zap.Uint64("generation", t.Generation), zap.Error(err))
		return true
	}

	c.state = StateLoaded
	c.payload = payload
	c.err = nil
	c.lint(t, payload)
	c.logger.Info("dashboard loaded",
		zap.String("role", t.Role),
		zap.Int("kpis", len(payload.KPIs)),
		zap.Int("charts", len(payload.Charts)),
		zap.Int("actions", len(payload.Actions)))
	return true
}

// Load runs Begin, fetches, then Complete. It returns ErrSuperseded when a
// newer request overtook this one, in which case the result was discarded.
func (c *Composer) Load(ctx context.Context, role string) (*engine.Payload, error) {
	t := c.Begin(role)
	payload, err := c.Fetch(ctx, t)
	if !c.Complete(t, payload, err) {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// Fetch performs the network half of a load without touching composer
// state. Event loops call it off the UI goroutine and hand the result back
// through Complete.
func (c *Composer) Fetch(ctx context.Context, t Ticket) (*engine.Payload, error) {
	if c.fetcher == nil {
		return nil, errors.New("no dashboard fetcher configured")
	}
	payload, err := c.fetcher.Dashboard(ctx, t.Role)
	if err != nil {
		return nil, fmt.Errorf("fetch dashboard for %s: %w", t.Role, err)
	}
	return payload, nil
}

// Reset discards everything on logout. In-flight tickets become stale.
func (c *Composer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.state = StateIdle
	c.role = ""
	c.payload = nil
	c.err = nil
}

// State returns the current state.
func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Role returns the role of the most recent request.
func (c *Composer) Role() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.role
}

// Err returns the failure of the most recent request, if it failed.
func (c *Composer) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Payload returns the displayed payload, nil unless Loaded.
func (c *Composer) Payload() *engine.Payload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payload
}

func (c *Composer) lint(t Ticket, payload *engine.Payload) {
	for _, issue := range schema.LintAll(payload.Charts) {
		c.logger.Debug("chart lint",
			zap.String("role", t.Role),
			zap.String("chart", issue.Chart),
			zap.String("field", issue.Field),
			zap.Int("record", issue.Record),
			zap.String("severity", string(issue.Severity)),
			zap.String("message", issue.Message))
	}
}
