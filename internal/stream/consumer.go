package stream

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Source opens the event stream of a run. Implementations must honour ctx
// cancellation while the connection is being established.
type Source interface {
	OpenRunStream(ctx context.Context, token, runID string) (io.ReadCloser, error)
}

// State is a consistent view of the consumer
type State struct {
	RunID  string
	Events []Event
	Active bool
}

// Consumer owns at most one subscription to a run's event stream and keeps
// the append-only event log of that subscription.
type Consumer struct {
	source Source
	logger *slog.Logger

	mu      sync.Mutex
	gen     uint64
	token   string
	runID   string
	cancel  context.CancelFunc
	done    chan struct{}
	events  []Event
	active  bool
	changes chan struct{}
}

// NewConsumer creates a consumer reading from source
func NewConsumer(source Source, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		source:  source,
		logger:  logger,
		changes: make(chan struct{}, 1),
	}
}

// Subscribe points the consumer at runID. It is a no-op when the target is
// unchanged. Any in-flight connection is cancelled first, and nothing it
// delivers afterwards reaches the log. An empty token or runID only stops the
// current subscription and keeps the log as it was.
func (c *Consumer) Subscribe(token, runID string) {
	c.mu.Lock()
	if token == c.token && runID == c.runID {
		c.mu.Unlock()
		return
	}
	c.start(token, runID)
}

// start must be called with c.mu held; it releases it.
func (c *Consumer) start(token, runID string) {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	c.token, c.runID = token, runID

	if token == "" || runID == "" {
		c.active = false
		c.mu.Unlock()
		c.notify()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	prev := c.done
	done := make(chan struct{})
	gen := c.gen

	c.cancel = cancel
	c.done = done
	c.events = nil
	c.active = true
	c.mu.Unlock()
	c.notify()

	go c.run(ctx, gen, token, runID, prev, done)
}

func (c *Consumer) run(ctx context.Context, gen uint64, token, runID string, prev, done chan struct{}) {
	defer close(done)

	// one connection at a time: the cancelled predecessor releases its transport first
	if prev != nil {
		<-prev
	}

	logger := c.logger.With("run_id", runID)

	body, err := c.source.OpenRunStream(ctx, token, runID)
	if err != nil {
		if ctx.Err() == nil {
			logger.Debug("run stream unavailable", "error", err)
		}
		c.finish(gen)
		return
	}

	logger.Debug("run stream attached")
	for ev := range Produce(ctx, body, logger) {
		if !c.append(gen, ev) {
			break
		}
	}
	c.finish(gen)
	logger.Debug("run stream ended")
}

// append adds ev to the log if gen is still the current subscription
func (c *Consumer) append(gen uint64, ev Event) bool {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return false
	}
	c.events = append(c.events, ev)
	c.mu.Unlock()
	c.notify()
	return true
}

func (c *Consumer) finish(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.active = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	c.notify()
}

// Close cancels the current subscription and waits for its reader to exit
func (c *Consumer) Close() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	c.token, c.runID = "", ""
	c.active = false
	done := c.done
	c.mu.Unlock()

	if done != nil {
		<-done
	}
	c.notify()
}

// Events returns a copy of the event log
func (c *Consumer) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

// Active reports whether the subscription is still reading
func (c *Consumer) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// State returns the run id, event log and status under one lock
func (c *Consumer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		RunID:  c.runID,
		Events: append([]Event(nil), c.events...),
		Active: c.active,
	}
}

// Changes signals, coalesced, that the log or status changed
func (c *Consumer) Changes() <-chan struct{} {
	return c.changes
}

func (c *Consumer) notify() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}
