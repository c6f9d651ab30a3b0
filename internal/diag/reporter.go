package diag

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirkon/deraw/internal/span"
)

// Reporter collects and classifies soft failures discovered during a
// rewrite session.
type Reporter struct {
	mu      sync.Mutex
	reports []Report
}

// Report represents a single diagnostic entry.
type Report struct {
	Phase   Phase
	Code    Code
	Span    span.Span
	Message string
	Details any
}

// Phase marks the pipeline stage where a report was generated.
type Phase int

const (
	phaseInvalid Phase = iota
	PhaseAnnotate
	PhaseUnlower
	PhaseLift
	PhaseApply
)

func (p Phase) String() string {
	switch p {
	case PhaseAnnotate:
		return "annotate"
	case PhaseUnlower:
		return "unlower"
	case PhaseLift:
		return "lift"
	case PhaseApply:
		return "apply"
	default:
		return fmt.Sprintf("unknown-phase(%d)", int(p))
	}
}

// NewReporter is the [Reporter] constructor.
func NewReporter() *Reporter {
	return &Reporter{}
}

// PhaseReporter binds a Reporter to a fixed phase. It is used during an
// entire pipeline stage to record failures without specifying the phase
// repeatedly.
type PhaseReporter struct {
	parent *Reporter
	phase  Phase
}

// Phase returns a pointer to a phase-bound reporter that automatically
// sets the given phase for all reports produced through it.
func (r *Reporter) Phase(p Phase) *PhaseReporter {
	return &PhaseReporter{parent: r, phase: p}
}

// Report adds a new record to the reporter.
func (r *Reporter) Report(rep Report) {
	r.mu.Lock()
	r.reports = append(r.reports, rep)
	r.mu.Unlock()
}

// Report records a new soft failure under the bound phase. An empty
// message falls back to the code's description.
func (rp *PhaseReporter) Report(code Code, message string, sp span.Span) {
	if message == "" {
		message = code.Description()
	}
	rp.parent.Report(Report{
		Phase:   rp.phase,
		Code:    code,
		Message: message,
		Span:    sp,
	})
}

// Reports returns a snapshot of all collected records.
func (r *Reporter) Reports() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Report, len(r.reports))
	copy(out, r.reports)
	return out
}

// Summary writes all collected reports in a compact, human-readable form.
func (r *Reporter) Summary(w io.Writer) {
	for _, rep := range r.Reports() {
		fmt.Fprintf(w, "[%s] %s: %s (%s)\n",
			rep.Phase,
			rep.Code,
			rep.Message,
			rep.Span,
		)
	}
}
