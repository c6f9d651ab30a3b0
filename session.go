package deraw

import (
	"io"
	"log/slog"

	"github.com/sirkon/deraw/internal/annotate"
	"github.com/sirkon/deraw/internal/crashdetail"
	"github.com/sirkon/deraw/internal/diag"
	"github.com/sirkon/deraw/internal/fact"
	"github.com/sirkon/deraw/internal/irl"
	"github.com/sirkon/deraw/internal/rewrite"
	"github.com/sirkon/deraw/internal/srcast"
	"github.com/sirkon/deraw/internal/unlower"
)

// Config tunes one rewrite session.
type Config struct {
	// Logger receives progress and soft-failure details. Nil discards
	// them; the report stream is not affected.
	Logger *slog.Logger

	// Callees adds custom entries to the callee registry on top of the
	// built-in offset and accessor functions.
	Callees *irl.CalleeTable

	// DumpUnlower, when set, receives the per-function unlowering map
	// in program order.
	DumpUnlower io.Writer

	// DumpLocalTypes, when set, receives the rewritten local type
	// annotations per function.
	DumpLocalTypes io.Writer

	// TypesOnly computes and dumps type rewrites without touching the
	// source text.
	TypesOnly bool
}

// Function is one unit of work: a lowered body paired with the
// expression tree of its source.
type Function struct {
	Body *irl.Body
	Tree *srcast.Tree
}

// LocalType is one rewritten local type annotation.
type LocalType struct {
	Function string
	Local    string
	Old      string
	New      string
}

// Report is one soft failure of the pipeline.
type Report struct {
	Phase   string
	Code    string
	Span    string
	Message string
}

// Result is the output of one session run.
type Result struct {
	// Files holds the rewritten content of every input file,
	// byte-identical where no edit applied.
	Files map[string]string

	// LocalTypes lists the rewritten type annotations, function by
	// function in input order.
	LocalTypes []LocalType

	// Reports lists the soft failures encountered; the rewrites they
	// refer to were dropped or skipped.
	Reports []Report
}

// Session drives the rewrite pipeline over a set of functions sharing
// one permission table.
type Session struct {
	facts *fact.Table
	cfg   Config
	log   *slog.Logger
}

// New is the [Session] constructor.
func New(facts *fact.Table, cfg Config) *Session {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Session{
		facts: facts,
		cfg:   cfg,
		log:   log,
	}
}

// Run processes every function and splices the resulting edits into
// files. A returned error is a [*crashdetail.Detail]: an instruction
// kind the pipeline does not cover aborted the session.
func (s *Session) Run(funcs []Function, files map[string]string) (*Result, error) {
	callees := s.cfg.Callees
	if callees == nil {
		callees = irl.NewCalleeTable(nil)
	}

	rep := diag.NewReporter()
	rec := crashdetail.NewRecorder()

	var res *Result
	err := rec.Catch(func() error {
		var (
			edits      []rewrite.Edit
			localTypes []LocalType
		)

		for _, fn := range funcs {
			s.log.Debug("processing function", slog.String("name", fn.Body.Name))

			ops := annotate.Gen(s.facts, callees, fn.Body, rep, s.log, rec)

			origins := unlower.Build(fn.Body, fn.Tree, rep, s.log)
			if s.cfg.DumpUnlower != nil {
				origins.Dump(s.cfg.DumpUnlower, fn.Body)
			}

			rws, tyEdits := rewrite.GenTypeRewrites(s.facts, fn.Body)
			if s.cfg.DumpLocalTypes != nil {
				rewrite.DumpLocalTypes(s.cfg.DumpLocalTypes, fn.Body, rws)
			}
			for _, rw := range rws {
				name := rw.Name
				if name == "" {
					name = rw.Local.String()
				}
				localTypes = append(localTypes, LocalType{
					Function: fn.Body.Name,
					Local:    name,
					Old:      rw.Old,
					New:      rewrite.Print(rw.New),
				})
			}

			if s.cfg.TypesOnly {
				continue
			}

			edits = append(edits, rewrite.Lift(ops, origins, fn.Tree, rep, s.log)...)
			edits = append(edits, tyEdits...)
		}

		res = &Result{
			Files:      rewrite.Apply(files, edits),
			LocalTypes: localTypes,
			Reports:    convertReports(rep),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

func convertReports(rep *diag.Reporter) []Report {
	snapshot := rep.Reports()
	out := make([]Report, 0, len(snapshot))
	for _, r := range snapshot {
		out = append(out, Report{
			Phase:   r.Phase.String(),
			Code:    r.Code.String(),
			Span:    r.Span.String(),
			Message: r.Message,
		})
	}
	return out
}
