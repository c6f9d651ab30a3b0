package crashdetail

import (
	"errors"
	"strings"
	"testing"

	"github.com/sirkon/deraw/internal/span"
)

func TestSpanGuardRestores(t *testing.T) {
	r := NewRecorder()
	outer := span.New("lib.rs", 0, 100)
	inner := span.New("lib.rs", 10, 20)

	g1 := r.SetCurrentSpan(outer)
	g2 := r.SetCurrentSpan(inner)

	if r.CurrentSpan() != inner {
		t.Fatal("inner span must be current")
	}
	g2.Release()
	if r.CurrentSpan() != outer {
		t.Fatal("outer span must be restored")
	}
	g1.Release()
	if !r.CurrentSpan().IsZero() {
		t.Fatal("releasing all guards must restore the zero span")
	}
}

func TestSpanGuardRestoresOnPanicPath(t *testing.T) {
	r := NewRecorder()

	err := r.Catch(func() error {
		defer r.SetCurrentSpan(span.New("lib.rs", 5, 9)).Release()
		panic("boom")
	})
	if err == nil {
		t.Fatal("panic must surface as an error")
	}
	if !r.CurrentSpan().IsZero() {
		t.Fatal("the guard must restore the span on the failure path too")
	}
}

func TestCatchCapturesDetail(t *testing.T) {
	r := NewRecorder()
	sp := span.New("lib.rs", 3, 17)

	err := r.Catch(func() error {
		g := r.SetCurrentSpan(sp)
		_ = g // held for the duration of the failing work
		panic("unsupported construct")
	})

	var detail *Detail
	if !errors.As(err, &detail) {
		t.Fatalf("error must be a *Detail, got %T", err)
	}
	if detail.Span != sp {
		t.Fatalf("captured span: %s, want %s", detail.Span, sp)
	}
	if !strings.Contains(detail.Msg, "unsupported construct") {
		t.Fatalf("captured message: %q", detail.Msg)
	}
	if len(detail.Stack) == 0 {
		t.Fatal("the stack must be captured")
	}
	if !strings.Contains(detail.StringFull(), "lib.rs[3..17)") {
		t.Fatal("full rendering must mention the span")
	}

	if got := r.TakeLast(); got != detail {
		t.Fatal("TakeLast must return the captured detail")
	}
	if r.TakeLast() != nil {
		t.Fatal("a second TakeLast must return nil")
	}
}

func TestCatchPassesErrorsThrough(t *testing.T) {
	r := NewRecorder()
	want := errors.New("plain failure")

	err := r.Catch(func() error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("got %v", err)
	}
	if r.TakeLast() != nil {
		t.Fatal("plain errors must not be recorded as crash details")
	}
}

func TestCatchNil(t *testing.T) {
	r := NewRecorder()
	if err := r.Catch(func() error { return nil }); err != nil {
		t.Fatal(err)
	}
}
