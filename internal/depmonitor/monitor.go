// Package depmonitor gates a frame on the completion of the sibling frames
// it depends on.
//
// The protocol distinguishes a dependency that has not started yet from one
// that will never start: registration is polled with a bounded attempt
// budget, completion is awaited with a timeout, and only an all-success
// verdict lets the frame proceed.
package depmonitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/specialistvlad/framedeploy/internal/ctxlog"
	"github.com/specialistvlad/framedeploy/internal/iterctx"
	"github.com/specialistvlad/framedeploy/internal/status"
)

const (
	DefaultPollInterval = 10 * time.Second
	DefaultMaxAttempts  = 20
	DefaultTimeout      = 2 * time.Hour
)

// Monitor holds the wait budgets. Zero fields fall back to the defaults.
type Monitor struct {
	PollInterval time.Duration
	MaxAttempts  int
	Timeout      time.Duration
}

// New returns a Monitor with the default budgets.
func New() *Monitor {
	return &Monitor{
		PollInterval: DefaultPollInterval,
		MaxAttempts:  DefaultMaxAttempts,
		Timeout:      DefaultTimeout,
	}
}

func (m *Monitor) pollInterval() time.Duration {
	if m.PollInterval > 0 {
		return m.PollInterval
	}
	return DefaultPollInterval
}

func (m *Monitor) maxAttempts() int {
	if m.MaxAttempts > 0 {
		return m.MaxAttempts
	}
	return DefaultMaxAttempts
}

func (m *Monitor) timeout() time.Duration {
	if m.Timeout > 0 {
		return m.Timeout
	}
	return DefaultTimeout
}

// Wait blocks until every frame in dependsOn has succeeded. current is the
// waiting frame's iteration context and must already be registered in
// tracker, which holds the frame-level states of its siblings.
//
// On success current is set to in_progress and nil is returned. When the
// frame must not run, current is set to failed or cancelled and a
// *TerminatedError is returned. If ctx is cancelled, current is set to
// cancelled and ctx.Err() is returned unchanged.
func (m *Monitor) Wait(ctx context.Context, current iterctx.IterationContext, dependsOn []string, tracker *status.Tracker) error {
	self := current.String()
	if _, err := tracker.Read(self); err != nil {
		return fmt.Errorf("dependency wait: %w", err)
	}
	if len(dependsOn) == 0 {
		return nil
	}

	ctx, logger := ctxlog.With(ctx, "waiting_on", dependsOn)

	addrs := make([]string, len(dependsOn))
	byAddr := make(map[string]string, len(dependsOn))
	for i, dep := range dependsOn {
		addr := current.Sibling(dep).String()
		addrs[i] = addr
		byAddr[addr] = dep
	}

	// Registration: the sibling goroutines may not have initialized their
	// entries yet.
	for attempt := 1; ; attempt++ {
		missing := missingNames(tracker.Names(), addrs, byAddr)
		if len(missing) == 0 {
			break
		}
		if attempt >= m.maxAttempts() {
			logger.Error("Dependencies never registered.", "missing", missing, "attempts", attempt)
			m.write(ctx, tracker, self, status.Failed,
				fmt.Sprintf("dependency %s never registered after %d attempts", strings.Join(missing, ", "), attempt))
			return &TerminatedError{Context: self, Reason: ReasonNeverRegistered, Dependencies: missing}
		}

		m.write(ctx, tracker, self, status.Pending,
			fmt.Sprintf("waiting for dependency %s to start (attempt %d/%d)", strings.Join(missing, ", "), attempt, m.maxAttempts()))
		logger.Debug("Dependencies not registered yet.", "missing", missing, "attempt", attempt)

		select {
		case <-ctx.Done():
			m.write(ctx, tracker, self, status.Cancelled, "cancelled while waiting for dependencies")
			return ctx.Err()
		case <-time.After(m.pollInterval()):
		}
	}

	// Completion.
	waitCtx, cancel := context.WithTimeout(ctx, m.timeout())
	err := tracker.WaitTerminal(waitCtx, addrs...)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			m.write(ctx, tracker, self, status.Cancelled, "cancelled while waiting for dependencies")
			return ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			pending := m.unfinished(tracker, addrs, byAddr)
			logger.Error("Timed out waiting for dependencies.", "pending", pending, "timeout", m.timeout())
			m.write(ctx, tracker, self, status.Cancelled,
				fmt.Sprintf("timed out after %s waiting for dependency %s", m.timeout(), strings.Join(pending, ", ")))
			return &TerminatedError{Context: self, Reason: ReasonTimeout, Dependencies: pending}
		}
		return fmt.Errorf("dependency wait for %s: %w", self, err)
	}

	// Verdict.
	var failed []string
	var details []string
	for _, addr := range addrs {
		s, err := tracker.Read(addr)
		if err != nil {
			return fmt.Errorf("dependency wait for %s: %w", self, err)
		}
		if s.Code != status.Success {
			failed = append(failed, byAddr[addr])
			details = append(details, byAddr[addr]+" "+s.String())
		}
	}
	if len(failed) > 0 {
		logger.Warn("Dependencies did not succeed, frame will not run.", "failed", failed)
		m.write(ctx, tracker, self, status.Cancelled, "dependency did not succeed: "+strings.Join(details, "; "))
		return &TerminatedError{Context: self, Reason: ReasonDependencyFailed, Dependencies: failed}
	}

	m.write(ctx, tracker, self, status.InProgress, "")
	logger.Debug("Dependencies satisfied.")
	return nil
}

// write records a state for the waiting frame. The entry was checked on
// entry and trackers never drop names, so a failure is only logged.
func (m *Monitor) write(ctx context.Context, tracker *status.Tracker, name string, code status.Code, message string) {
	if err := tracker.Write(ctx, name, code, message); err != nil {
		ctxlog.FromContext(ctx).Error("Failed to write frame status.", "name", name, "error", err)
	}
}

func (m *Monitor) unfinished(tracker *status.Tracker, addrs []string, byAddr map[string]string) []string {
	var out []string
	for _, addr := range addrs {
		s, err := tracker.Read(addr)
		if err != nil || !s.Code.Terminal() {
			out = append(out, byAddr[addr])
		}
	}
	return out
}

func missingNames(registered, addrs []string, byAddr map[string]string) []string {
	present := make(map[string]struct{}, len(registered))
	for _, n := range registered {
		present[n] = struct{}{}
	}
	var missing []string
	for _, addr := range addrs {
		if _, ok := present[addr]; !ok {
			missing = append(missing, byAddr[addr])
		}
	}
	return missing
}
