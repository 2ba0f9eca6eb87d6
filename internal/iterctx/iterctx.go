package iterctx

import "strings"

// Separator joins segments in the canonical string form.
const Separator = "."

// IterationContext is an ordered, immutable list of path segments.
type IterationContext struct {
	segments []string
}

// New builds a context from the given segments. The slice is copied.
func New(segments ...string) IterationContext {
	return IterationContext{segments: append([]string(nil), segments...)}
}

// String serializes the context into its canonical dotted form.
func (c IterationContext) String() string {
	return strings.Join(c.segments, Separator)
}

// Segments returns a copy of the path segments.
func (c IterationContext) Segments() []string {
	return append([]string(nil), c.segments...)
}

// Child returns a new context one level deeper. The receiver is untouched.
func (c IterationContext) Child(segment string) IterationContext {
	next := make([]string, len(c.segments), len(c.segments)+1)
	copy(next, c.segments)
	return IterationContext{segments: append(next, segment)}
}

// Sibling returns a new context sharing every ancestor segment with the
// receiver but ending in name. Sibling frames address each other this way.
func (c IterationContext) Sibling(name string) IterationContext {
	if len(c.segments) == 0 {
		return New(name)
	}
	next := c.Segments()
	next[len(next)-1] = name
	return IterationContext{segments: next}
}
