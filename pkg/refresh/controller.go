package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"bpdash/pkg/models"
)

// DefaultInterval is the automatic refresh period.
const DefaultInterval = 60 * time.Second

// ErrStopped is returned by RefreshManual after Stop.
var ErrStopped = errors.New("refresh controller stopped")

// Phase is the lifecycle stage of the dashboard data.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is a copy of the controller's state.
//
// Snapshot holds the last successfully fetched snapshot in every phase. It is
// what to render only when Phase is PhaseReady; in PhaseLoading and PhaseFailed
// the presentation shows the indicator or Message instead.
type State struct {
	Phase                Phase                     `json:"phase"`
	Snapshot             *models.PortfolioSnapshot `json:"snapshot,omitempty"`
	Message              string                    `json:"message,omitempty"`
	LastSuccessfulUpdate *time.Time                `json:"last_successful_update,omitempty"`
}

// Provider fetches the current portfolio snapshot.
type Provider interface {
	FetchSnapshot(ctx context.Context) (*models.PortfolioSnapshot, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (*models.PortfolioSnapshot, error)

func (f ProviderFunc) FetchSnapshot(ctx context.Context) (*models.PortfolioSnapshot, error) {
	return f(ctx)
}

// Diagnostics records refresh activity that is not shown to the user.
type Diagnostics struct {
	ManualRequests       uint64     `json:"manual_requests"`
	AutomaticRequests    uint64     `json:"automatic_requests"`
	AutomaticFailures    uint64     `json:"automatic_failures"`
	Discarded            uint64     `json:"discarded"`
	LastAutomaticError   string     `json:"last_automatic_error,omitempty"`
	LastAutomaticErrorAt *time.Time `json:"last_automatic_error_at,omitempty"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithInterval sets the automatic refresh period. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger used for swallowed failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

type trigger int

const (
	manual trigger = iota
	automatic
)

func (t trigger) String() string {
	if t == manual {
		return "manual"
	}
	return "automatic"
}

// Controller owns the refresh lifecycle of one dashboard instance.
type Controller struct {
	provider Provider
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu            sync.RWMutex
	state         State
	diag          Diagnostics
	seq           uint64 // last issued request number
	appliedSeq    uint64 // request number of the last committed completion
	lastManualSeq uint64
	started       bool
	stopped       bool

	subscribers []Subscriber
	stopChan    chan struct{}
	stopOnce    sync.Once
}

// NewController creates a controller in PhaseIdle.
func NewController(provider Provider, opts ...Option) *Controller {
	c := &Controller{
		provider: provider,
		interval: DefaultInterval,
		now:      time.Now,
		logger:   slog.Default(),
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Interval returns the automatic refresh period.
func (c *Controller) Interval() time.Duration {
	return c.interval
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Diagnostics returns a copy of the diagnostic counters.
func (c *Controller) Diagnostics() Diagnostics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.diag
}

// Subscribe adds a new subscriber and returns a channel to receive events.
func (c *Controller) Subscribe() Subscriber {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(Subscriber, 100)
	c.subscribers = append(c.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (c *Controller) Unsubscribe(ch Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, sub := range c.subscribers {
		if sub == ch {
			c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// notifyLocked must be called with mu held.
func (c *Controller) notifyLocked(event Event) {
	for _, sub := range c.subscribers {
		select {
		case sub <- event:
		default:
			// slow subscriber, drop
		}
	}
}

// RefreshManual shows the loading state, fetches, and commits the outcome.
// The returned error is the provider error, if any.
func (c *Controller) RefreshManual(ctx context.Context) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return ErrStopped
	}
	c.seq++
	seq := c.seq
	c.lastManualSeq = seq
	c.diag.ManualRequests++
	c.state.Phase = PhaseLoading
	c.state.Message = ""
	c.notifyLocked(Event{Type: EventLoading, State: c.state})
	c.mu.Unlock()

	snapshot, err := c.fetch(ctx)
	c.complete(seq, manual, snapshot, err)
	return err
}

// RefreshAutomatic fetches in the background. The visible state only changes
// on success; failures are logged and counted.
func (c *Controller) RefreshAutomatic(ctx context.Context) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.seq++
	seq := c.seq
	c.diag.AutomaticRequests++
	c.mu.Unlock()

	snapshot, err := c.fetch(ctx)
	c.complete(seq, automatic, snapshot, err)
}

func (c *Controller) fetch(ctx context.Context) (*models.PortfolioSnapshot, error) {
	snapshot, err := c.provider.FetchSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, errors.New("provider returned no snapshot")
	}
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (c *Controller) complete(seq uint64, t trigger, snapshot *models.PortfolioSnapshot, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		c.logger.Debug("discarding refresh result after stop", "trigger", t, "seq", seq)
		return
	}

	if t == automatic && err != nil {
		now := c.now()
		c.diag.AutomaticFailures++
		c.diag.LastAutomaticError = err.Error()
		c.diag.LastAutomaticErrorAt = &now
		c.logger.Warn("automatic refresh failed", "seq", seq, "error", err)
		return
	}

	if seq < c.appliedSeq || (t == automatic && seq < c.lastManualSeq) {
		c.diag.Discarded++
		c.logger.Debug("discarding stale refresh result", "trigger", t, "seq", seq, "applied", c.appliedSeq)
		return
	}
	c.appliedSeq = seq

	if err != nil {
		c.state.Phase = PhaseFailed
		c.state.Message = fmt.Sprintf("failed to load portfolio data: %v", err)
		c.notifyLocked(Event{Type: EventFailed, State: c.state})
		return
	}

	now := c.now()
	c.state.Phase = PhaseReady
	c.state.Snapshot = snapshot
	c.state.Message = ""
	c.state.LastSuccessfulUpdate = &now
	c.notifyLocked(Event{Type: EventUpdated, State: c.state})
}

// Start launches the periodic automatic refresh. Only the first call has an
// effect; the timer runs until Stop or ctx is done.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started || c.stopped {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	go c.pollingLoop(ctx)
}

// Stop cancels the timer and tears the controller down. Results of requests
// still in flight are discarded. Safe to call more than once.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
		c.mu.Lock()
		c.stopped = true
		c.notifyLocked(Event{Type: EventStopped, State: c.state})
		c.mu.Unlock()
	})
}

// Stopped reports whether Stop has been called.
func (c *Controller) Stopped() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stopped
}

func (c *Controller) pollingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.RefreshAutomatic(ctx)
		case <-c.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}
