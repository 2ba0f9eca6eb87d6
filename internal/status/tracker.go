package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/specialistvlad/framedeploy/internal/ctxlog"
)

// ErrNotRegistered is returned when an entry is used before Initialize.
var ErrNotRegistered = errors.New("status entry not registered")

// DefaultReportInterval is the reporter's default tick.
const DefaultReportInterval = 30 * time.Second

// Entry is a named state, as returned by Snapshot.
type Entry struct {
	Name  string `json:"name"`
	State State  `json:"state"`
}

// Tracker is a concurrency-safe store of named deployment states scoped to
// one hierarchy level.
type Tracker struct {
	scope string

	mu      sync.Mutex
	entries map[string]State
	order   []string
	changed chan struct{}

	reportInterval time.Duration
	out            io.Writer
	colors         bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithReportInterval sets the reporter tick.
func WithReportInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.reportInterval = d
		}
	}
}

// WithOutput sets the sink the reporter writes to.
func WithOutput(w io.Writer) Option {
	return func(t *Tracker) { t.out = w }
}

// WithColors enables or disables ANSI colours in reporter output.
func WithColors(enabled bool) Option {
	return func(t *Tracker) { t.colors = enabled }
}

// New creates an empty tracker. scope labels reporter output.
func New(scope string, opts ...Option) *Tracker {
	t := &Tracker{
		scope:          scope,
		entries:        make(map[string]State),
		changed:        make(chan struct{}),
		reportInterval: DefaultReportInterval,
		out:            os.Stdout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// notifyLocked wakes every WaitTerminal caller. Must hold t.mu.
func (t *Tracker) notifyLocked() {
	close(t.changed)
	t.changed = make(chan struct{})
}

// Initialize registers name as pending. Re-initializing an existing entry
// overwrites it and logs a warning.
func (t *Tracker) Initialize(ctx context.Context, name string) {
	t.mu.Lock()
	prev, existed := t.entries[name]
	t.entries[name] = State{Code: Pending}
	if !existed {
		t.order = append(t.order, name)
	}
	t.notifyLocked()
	t.mu.Unlock()

	if existed {
		ctxlog.FromContext(ctx).Warn("Status entry re-initialized.", "scope", t.scope, "name", name, "previous", prev.String())
	}
}

// Write updates the state of a registered entry.
func (t *Tracker) Write(ctx context.Context, name string, code Code, message string) error {
	t.mu.Lock()
	if _, ok := t.entries[name]; !ok {
		t.mu.Unlock()
		return fmt.Errorf("write %q in %s: %w", name, t.scope, ErrNotRegistered)
	}
	t.entries[name] = State{Code: code, Message: message}
	t.notifyLocked()
	t.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Status written.", "scope", t.scope, "name", name, "code", code, "message", message)
	return nil
}

// Read returns a copy of the state of name.
func (t *Tracker) Read(name string) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.entries[name]
	if !ok {
		return State{}, fmt.Errorf("read %q in %s: %w", name, t.scope, ErrNotRegistered)
	}
	return s, nil
}

// Names returns a snapshot of the registered names in registration order.
func (t *Tracker) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.order...)
}

// Snapshot returns a copy of every entry in registration order.
func (t *Tracker) Snapshot() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, Entry{Name: name, State: t.entries[name]})
	}
	return out
}

// Assess folds every entry into one verdict. Messages of non-success
// entries are prefixed with the entry name.
func (t *Tracker) Assess() State {
	return t.AssessWith(func(name string) string { return name })
}

// AssessWith is Assess with the message prefix computed by label.
func (t *Tracker) AssessWith(label func(name string) string) State {
	snapshot := t.Snapshot()
	states := make([]State, 0, len(snapshot))
	for _, e := range snapshot {
		s := e.State
		if s.Code != Success {
			s.Message = label(e.Name) + ": " + describe(s)
		}
		states = append(states, s)
	}
	return Assess(states...)
}

// WaitTerminal blocks until every named entry holds a terminal state, or
// until ctx is done. Every name must already be registered.
func (t *Tracker) WaitTerminal(ctx context.Context, names ...string) error {
	for {
		t.mu.Lock()
		done := true
		for _, name := range names {
			s, ok := t.entries[name]
			if !ok {
				t.mu.Unlock()
				return fmt.Errorf("wait %q in %s: %w", name, t.scope, ErrNotRegistered)
			}
			if !s.Code.Terminal() {
				done = false
			}
		}
		changed := t.changed
		t.mu.Unlock()

		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}
