package status

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
)

// palette maps codes to their console colour.
type palette map[Code]*color.Color

func newPalette(enabled bool) palette {
	p := palette{
		Pending:    color.New(color.FgYellow),
		InProgress: color.New(color.FgCyan),
		Success:    color.New(color.FgGreen),
		Failed:     color.New(color.FgRed, color.Bold),
		Cancelled:  color.New(color.FgMagenta),
	}
	for _, c := range p {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) code(c Code) string {
	if col, ok := p[c]; ok {
		return col.Sprint(string(c))
	}
	return string(c)
}

// StartMonitor launches the periodic reporter. Every tick it prints one
// line per entry, or a placeholder when nothing is registered yet. It stops
// after the first report in which every entry is terminal, or when ctx is
// done. The returned channel is closed when the reporter has stopped.
func (t *Tracker) StartMonitor(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	colors := newPalette(t.colors)

	go func() {
		defer close(done)

		ticker := time.NewTicker(t.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if t.report(colors) {
				return
			}
		}
	}()

	return done
}

// report writes one report and tells whether every entry is terminal.
func (t *Tracker) report(colors palette) bool {
	entries := t.Snapshot()
	if len(entries) == 0 {
		fmt.Fprintf(t.out, "[%s] no entries yet\n", t.scope)
		return false
	}

	var b strings.Builder
	allTerminal := true
	for _, e := range entries {
		if !e.State.Code.Terminal() {
			allTerminal = false
		}
		fmt.Fprintf(&b, "[%s] %s: %s", t.scope, e.Name, colors.code(e.State.Code))
		if e.State.Message != "" {
			fmt.Fprintf(&b, " (%s)", e.State.Message)
		}
		b.WriteByte('\n')
	}
	fmt.Fprint(t.out, b.String())
	return allTerminal
}
