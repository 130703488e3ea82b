package sink

import (
	"sync"

	"github.com/poiesic/titlelens/core"
)

// OpKind identifies a recorded sink call.
type OpKind int

const (
	OpClear OpKind = iota
	OpAppend
	OpFlush
	OpCommit
)

func (k OpKind) String() string {
	switch k {
	case OpClear:
		return "clear"
	case OpAppend:
		return "append"
	case OpFlush:
		return "flush"
	case OpCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// Op is one recorded call. Row is set only for OpAppend.
type Op struct {
	Kind OpKind
	Row  core.ResultRow
}

// Recorder is a Sink that logs every call.
type Recorder struct {
	mu  sync.Mutex
	ops []Op
}

var _ Sink = (*Recorder)(nil)

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Clear() {
	r.record(Op{Kind: OpClear})
}

func (r *Recorder) Append(row core.ResultRow) {
	r.record(Op{Kind: OpAppend, Row: row})
}

func (r *Recorder) FlushBatch() {
	r.record(Op{Kind: OpFlush})
}

func (r *Recorder) Commit() {
	r.record(Op{Kind: OpCommit})
}

func (r *Recorder) record(op Op) {
	r.mu.Lock()
	r.ops = append(r.ops, op)
	r.mu.Unlock()
}

// Ops returns a copy of every recorded call.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// Kinds returns the kinds of every recorded call, in order.
func (r *Recorder) Kinds() []OpKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]OpKind, len(r.ops))
	for i, op := range r.ops {
		kinds[i] = op.Kind
	}
	return kinds
}

// Rows returns every appended row in order, across clears.
func (r *Recorder) Rows() []core.ResultRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []core.ResultRow
	for _, op := range r.ops {
		if op.Kind == OpAppend {
			rows = append(rows, op.Row)
		}
	}
	return rows
}

// Visible returns the rows appended since the last Clear.
func (r *Recorder) Visible() []core.ResultRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []core.ResultRow
	for _, op := range r.ops {
		switch op.Kind {
		case OpClear:
			rows = rows[:0]
		case OpAppend:
			rows = append(rows, op.Row)
		}
	}
	return rows
}

// Count returns how many calls of kind were recorded.
func (r *Recorder) Count(kind OpKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, op := range r.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Reset forgets every recorded call.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.ops = nil
	r.mu.Unlock()
}
