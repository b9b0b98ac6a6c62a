// Package replay drives an allocator through a parsed trace and reports what
// happened. Allocation failures are recorded, not fatal: a trace that runs an
// arena out of memory still produces a full report.
package replay

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/joshuapare/memkit/alloc"
	"github.com/joshuapare/memkit/internal/trace"
)

var (
	errDuplicateID = errors.New("id already live")
	errUnknownID   = errors.New("id not live")
	errUnknownMark = errors.New("marker not set")
	errNoMarkers   = errors.New("strategy has no markers")
)

// Failure is one trace operation that did not take effect.
type Failure struct {
	Line  int    `json:"line"`
	Op    string `json:"op"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

// Report summarizes a replay.
type Report struct {
	Strategy Strategy `json:"strategy"`
	Ops      int      `json:"ops"`

	Allocs  int `json:"allocs"`
	Frees   int `json:"frees"`
	Resets  int `json:"resets"`
	Rewinds int `json:"rewinds"`

	// Ignored counts frees the allocator logged and dropped: every free on
	// linear and stack.
	Ignored int `json:"ignored"`

	Failures     []Failure      `json:"failures,omitempty"`
	FailuresByOp map[string]int `json:"failures_by_op,omitempty"`

	// Leaked lists ids still live when the trace ended, sorted.
	Leaked      []string `json:"leaked,omitempty"`
	LeakedBytes int      `json:"leaked_bytes"`

	Stats alloc.Stats `json:"stats"`
}

type liveAlloc struct {
	ref  alloc.Ref
	size int
	seq  int
}

type mark struct {
	marker alloc.Marker
	seq    int
}

// Runner owns one allocator for the duration of a replay.
type Runner struct {
	strategy Strategy
	t        target
	stack    *alloc.StackAllocator

	live  map[string]liveAlloc
	marks map[string]mark
	seq   int

	report Report
}

// New constructs the allocator described by cfg.
func New(cfg Config) (*Runner, error) {
	t, stack, err := build(cfg)
	if err != nil {
		return nil, err
	}
	return &Runner{
		strategy: cfg.Strategy,
		t:        t,
		stack:    stack,
		live:     make(map[string]liveAlloc),
		marks:    make(map[string]mark),
		report:   Report{Strategy: cfg.Strategy},
	}, nil
}

// Run applies ops in order.
func (r *Runner) Run(ops []trace.Op) {
	for _, op := range ops {
		r.apply(op)
	}
}

func (r *Runner) apply(op trace.Op) {
	r.report.Ops++
	switch op.Kind {
	case trace.Alloc:
		if _, ok := r.live[op.ID]; ok {
			r.fail(op, errDuplicateID)
			return
		}
		ref, err := r.t.allocate(op.Size, op.Align)
		if err != nil {
			r.fail(op, err)
			return
		}
		r.seq++
		r.live[op.ID] = liveAlloc{ref: ref, size: op.Size, seq: r.seq}
		r.report.Allocs++

	case trace.Free:
		a, ok := r.live[op.ID]
		if !ok {
			r.fail(op, errUnknownID)
			return
		}
		before := r.t.stats()
		r.t.free(a.ref)
		after := r.t.stats()
		if after.Frees > before.Frees {
			delete(r.live, op.ID)
			r.report.Frees++
			return
		}
		// Linear and stack keep the bytes until a reset or rewind; the id
		// stays live so it is released, or reported, with them.
		r.report.Ignored++

	case trace.Reset:
		r.t.reset()
		clear(r.live)
		clear(r.marks)
		r.report.Resets++

	case trace.Mark:
		if r.stack == nil {
			r.fail(op, errNoMarkers)
			return
		}
		r.marks[op.ID] = mark{marker: r.stack.Marker(), seq: r.seq}

	case trace.Rewind:
		if r.stack == nil {
			r.fail(op, errNoMarkers)
			return
		}
		m, ok := r.marks[op.ID]
		if !ok {
			r.fail(op, errUnknownMark)
			return
		}
		r.stack.Rewind(m.marker)
		r.live = lo.OmitBy(r.live, func(_ string, a liveAlloc) bool { return a.seq > m.seq })
		r.marks = lo.OmitBy(r.marks, func(_ string, other mark) bool { return other.seq > m.seq })
		r.report.Rewinds++

	default:
		r.fail(op, fmt.Errorf("unsupported operation %v", op.Kind))
	}
}

func (r *Runner) fail(op trace.Op, err error) {
	r.report.Failures = append(r.report.Failures, Failure{
		Line:  op.Line,
		Op:    op.Kind.String(),
		ID:    op.ID,
		Error: err.Error(),
	})
}

// Finish snapshots the report, then closes the allocator. The allocator logs
// its own leak diagnostic on close.
func (r *Runner) Finish() (Report, error) {
	rep := r.report
	rep.Stats = r.t.stats()

	rep.Leaked = lo.Keys(r.live)
	slices.Sort(rep.Leaked)
	rep.LeakedBytes = lo.SumBy(lo.Values(r.live), func(a liveAlloc) int { return a.size })

	if len(rep.Failures) > 0 {
		rep.FailuresByOp = lo.CountValuesBy(rep.Failures, func(f Failure) string { return f.Op })
	}

	if err := r.t.close(); err != nil {
		return rep, fmt.Errorf("closing %s allocator: %w", r.strategy, err)
	}
	return rep, nil
}

// Replay runs ops against a fresh allocator built from cfg.
func Replay(cfg Config, ops []trace.Op) (Report, error) {
	r, err := New(cfg)
	if err != nil {
		return Report{}, err
	}
	r.Run(ops)
	return r.Finish()
}
