// Package crashdetail captures context for hard pipeline failures.
//
// The rewrite pipeline aborts on internal-invariant violations by
// panicking. This package converts such panics into structured details:
// the message, the stack, and the source span the pipeline was working
// on at the moment of failure. The span is tracked through an explicit
// Recorder object threaded by reference through the call chain, without
// any process-global state, and updated with scoped guards that
// restore the previous value on every exit path.
package crashdetail

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/sirkon/deraw/internal/span"
)

// Detail is the structured description of one hard failure.
type Detail struct {
	Msg   string
	Stack []byte
	Span  span.Span

	// RelevantFrame is the first frame of the stack that belongs to the
	// rewrite pipeline itself, skipping runtime and helper frames. Used
	// by the short rendering.
	RelevantFrame string
}

// Error renders the short, one-line form.
func (d *Detail) Error() string {
	frame := d.RelevantFrame
	if frame == "" {
		frame = "[unknown]"
	}
	return fmt.Sprintf("%s: %s", frame, strings.TrimSpace(d.Msg))
}

// StringFull renders everything known about the failure, the complete
// stack included.
func (d *Detail) StringFull() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "failure: %s\n", d.Msg)
	if d.RelevantFrame != "" {
		fmt.Fprintf(&sb, "related frame: %s\n", d.RelevantFrame)
	}
	if !d.Span.IsZero() {
		fmt.Fprintf(&sb, "source location: %s\n", d.Span)
	}
	if len(d.Stack) != 0 {
		sb.Write(d.Stack)
	}
	return sb.String()
}

// Recorder tracks the current source span and the most recent failure
// for one rewrite session.
type Recorder struct {
	current span.Span
	last    *Detail
}

// NewRecorder is the [Recorder] constructor.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// SpanGuard restores the previously current span when released.
type SpanGuard struct {
	r   *Recorder
	old span.Span
}

// Release restores the span that was current before the guard was
// taken. Meant for defer.
func (g *SpanGuard) Release() {
	g.r.current = g.old
}

// SetCurrentSpan sets the span the pipeline is working on and returns a
// guard restoring the previous one.
func (r *Recorder) SetCurrentSpan(sp span.Span) *SpanGuard {
	g := &SpanGuard{r: r, old: r.current}
	r.current = sp
	return g
}

// CurrentSpan is the span the pipeline is working on right now.
func (r *Recorder) CurrentSpan() span.Span {
	return r.current
}

// Catch runs fn and converts a panic into a *Detail error enriched with
// the current span and the stack. Non-panic errors pass through.
func (r *Recorder) Catch(fn func() error) (err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}

		stack := debug.Stack()
		detail := &Detail{
			Msg:           panicMessage(p),
			Stack:         stack,
			Span:          r.current,
			RelevantFrame: guessRelevantFrame(stack),
		}
		r.last = detail
		err = detail
	}()

	return fn()
}

// TakeLast returns the detail of the most recent caught failure and
// clears it; a second call without an intervening failure returns nil.
func (r *Recorder) TakeLast() *Detail {
	d := r.last
	r.last = nil
	return d
}

func panicMessage(p any) string {
	switch v := p.(type) {
	case string:
		return v
	case error:
		return v.Error()
	default:
		return fmt.Sprintf("unknown failure: %v", v)
	}
}

// guessRelevantFrame scans the textual stack for the first frame inside
// the rewrite pipeline packages, skipping panic machinery and this
// package itself.
func guessRelevantFrame(stack []byte) string {
	var candidate string
	for _, line := range strings.Split(string(stack), "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.Contains(trimmed, "github.com/sirkon/deraw/internal/") {
			continue
		}
		if strings.Contains(trimmed, "internal/crashdetail") {
			continue
		}
		candidate = trimmed
		break
	}
	return candidate
}
