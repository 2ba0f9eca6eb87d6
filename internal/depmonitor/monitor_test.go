package depmonitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/specialistvlad/framedeploy/internal/iterctx"
	"github.com/specialistvlad/framedeploy/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unit = iterctx.New("sys1-c1-r1", "sub1", "l1")

func fastMonitor() *Monitor {
	return &Monitor{PollInterval: 5 * time.Millisecond, MaxAttempts: 5, Timeout: 500 * time.Millisecond}
}

func setup(t *testing.T, frames ...string) (context.Context, *status.Tracker) {
	t.Helper()
	ctx := context.Background()
	tr := status.New("frames")
	for _, f := range frames {
		tr.Initialize(ctx, unit.Child(f).String())
	}
	return ctx, tr
}

func read(t *testing.T, tr *status.Tracker, frame string) status.State {
	t.Helper()
	s, err := tr.Read(unit.Child(frame).String())
	require.NoError(t, err)
	return s
}

func TestWait_NoDependencies(t *testing.T) {
	ctx, tr := setup(t, "f1")

	err := fastMonitor().Wait(ctx, unit.Child("f1"), nil, tr)

	require.NoError(t, err)
	assert.Equal(t, status.Pending, read(t, tr, "f1").Code)
}

func TestWait_CurrentNotRegistered(t *testing.T) {
	ctx, tr := setup(t)

	err := fastMonitor().Wait(ctx, unit.Child("f1"), []string{"f0"}, tr)

	assert.ErrorIs(t, err, status.ErrNotRegistered)
}

func TestWait_DependencySucceeds(t *testing.T) {
	ctx, tr := setup(t, "a", "b")
	a := unit.Child("a").String()
	require.NoError(t, tr.Write(ctx, a, status.InProgress, ""))

	result := make(chan error, 1)
	go func() { result <- fastMonitor().Wait(ctx, unit.Child("b"), []string{"a"}, tr) }()

	select {
	case <-result:
		t.Fatal("Wait returned before the dependency was terminal")
	case <-time.After(30 * time.Millisecond):
	}

	require.NoError(t, tr.Write(ctx, a, status.Success, ""))

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return")
	}
	assert.Equal(t, status.InProgress, read(t, tr, "b").Code)
}

func TestWait_LateRegistration(t *testing.T) {
	ctx, tr := setup(t, "b")

	go func() {
		time.Sleep(12 * time.Millisecond)
		a := unit.Child("a").String()
		tr.Initialize(ctx, a)
		_ = tr.Write(ctx, a, status.Success, "")
	}()

	m := &Monitor{PollInterval: 5 * time.Millisecond, MaxAttempts: 400, Timeout: time.Second}
	err := m.Wait(ctx, unit.Child("b"), []string{"a"}, tr)

	require.NoError(t, err)
	assert.Equal(t, status.InProgress, read(t, tr, "b").Code)
}

func TestWait_Terminations(t *testing.T) {
	testCases := []struct {
		name       string
		depState   *status.State
		wantReason Reason
		wantCode   status.Code
		wantMsg    string
	}{
		{
			name:       "dependency never registers",
			wantReason: ReasonNeverRegistered,
			wantCode:   status.Failed,
			wantMsg:    "never registered",
		},
		{
			name:       "dependency failed",
			depState:   &status.State{Code: status.Failed, Message: "boom"},
			wantReason: ReasonDependencyFailed,
			wantCode:   status.Cancelled,
			wantMsg:    "boom",
		},
		{
			name:       "dependency cancelled",
			depState:   &status.State{Code: status.Cancelled},
			wantReason: ReasonDependencyFailed,
			wantCode:   status.Cancelled,
			wantMsg:    "a cancelled",
		},
		{
			name:       "dependency never finishes",
			depState:   &status.State{Code: status.InProgress},
			wantReason: ReasonTimeout,
			wantCode:   status.Cancelled,
			wantMsg:    "timed out",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, tr := setup(t, "b")
			if tc.depState != nil {
				a := unit.Child("a").String()
				tr.Initialize(ctx, a)
				require.NoError(t, tr.Write(ctx, a, tc.depState.Code, tc.depState.Message))
			}
			m := &Monitor{PollInterval: 2 * time.Millisecond, MaxAttempts: 3, Timeout: 30 * time.Millisecond}

			start := time.Now()
			err := m.Wait(ctx, unit.Child("b"), []string{"a"}, tr)
			assert.Less(t, time.Since(start), 2*time.Second)

			var terr *TerminatedError
			require.True(t, errors.As(err, &terr), "expected *TerminatedError, got %v", err)
			assert.Equal(t, tc.wantReason, terr.Reason)
			assert.Equal(t, []string{"a"}, terr.Dependencies)

			got := read(t, tr, "b")
			assert.Equal(t, tc.wantCode, got.Code)
			assert.Contains(t, got.Message, tc.wantMsg)
		})
	}
}

func TestWait_ExternalCancellation(t *testing.T) {
	testCases := []struct {
		name     string
		register bool
	}{
		{name: "during registration poll"},
		{name: "during completion wait", register: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, tr := setup(t, "b")
			ctx, cancel := context.WithCancel(context.Background())
			if tc.register {
				tr.Initialize(ctx, unit.Child("a").String())
			}
			m := &Monitor{PollInterval: time.Hour, MaxAttempts: 100, Timeout: time.Hour}

			result := make(chan error, 1)
			go func() { result <- m.Wait(ctx, unit.Child("b"), []string{"a"}, tr) }()
			time.Sleep(10 * time.Millisecond)
			cancel()

			select {
			case err := <-result:
				assert.ErrorIs(t, err, context.Canceled)
			case <-time.After(2 * time.Second):
				t.Fatal("Wait ignored cancellation")
			}
			assert.Equal(t, status.Cancelled, read(t, tr, "b").Code)
		})
	}
}

func TestTerminatedError_Message(t *testing.T) {
	err := &TerminatedError{Context: "x.f2", Reason: ReasonNeverRegistered, Dependencies: []string{"f9"}}
	assert.Equal(t, "deployment terminated for x.f2: dependency f9 never registered", err.Error())
}
