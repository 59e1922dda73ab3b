package crane

import (
	"fmt"

	errs "github.com/matzehuels/cranestack/pkg/errors"
)

// Checkpoint is an independent copy of an engine's layout and pending
// instructions. Nothing done to the engine after the checkpoint was taken
// affects it.
type Checkpoint struct {
	layout  Layout
	queue   Queue
	applied int
}

// Layout returns a copy of the checkpointed layout.
func (c Checkpoint) Layout() Layout { return c.layout.Clone() }

// Pending returns a copy of the checkpointed instruction queue.
func (c Checkpoint) Pending() Queue { return c.queue.Clone() }

// Engine holds the live layout, the pending instruction queue, and at most
// one snapshot.
//
// Replays consume the queue from the front. Each instruction either moves
// all of its crates or fails without changing anything, so the layout is
// never observed with an instruction half applied.
//
// Engine is not safe for concurrent use.
type Engine struct {
	layout   Layout
	queue    Queue
	applied  int
	snapshot *Checkpoint
}

// New creates an engine over copies of layout and queue.
func New(layout Layout, queue Queue) *Engine {
	return &Engine{
		layout: layout.Clone(),
		queue:  queue.Clone(),
	}
}

// Layout returns a copy of the current layout.
func (e *Engine) Layout() Layout { return e.layout.Clone() }

// Pending returns a copy of the instructions not yet applied.
func (e *Engine) Pending() Queue { return e.queue.Clone() }

// Applied returns how many instructions have been applied since the engine
// was created or last restored.
func (e *Engine) Applied() int { return e.applied }

// Done reports whether the instruction queue is empty.
func (e *Engine) Done() bool { return len(e.queue) == 0 }

// Tops returns the top crate of every column in ascending ID order, with a
// space for each empty column.
func (e *Engine) Tops() string { return e.layout.Tops() }

// Checkpoint captures the current layout and queue without storing it.
func (e *Engine) Checkpoint() Checkpoint {
	return Checkpoint{
		layout:  e.layout.Clone(),
		queue:   e.queue.Clone(),
		applied: e.applied,
	}
}

// Snapshot stores a checkpoint of the current state in the engine's single
// snapshot slot. It fails with [errs.ErrCodeSnapshotHeld] if a snapshot is
// already held; call [Engine.Restore] first.
func (e *Engine) Snapshot() error {
	if e.snapshot != nil {
		return errs.New(errs.ErrCodeSnapshotHeld, "a snapshot is already held, restore it before taking another")
	}
	cp := e.Checkpoint()
	e.snapshot = &cp
	return nil
}

// HasSnapshot reports whether a snapshot is held.
func (e *Engine) HasSnapshot() bool { return e.snapshot != nil }

// Restore replaces the live state with a copy of the held snapshot and
// clears the slot. Without a snapshot it does nothing.
func (e *Engine) Restore() {
	if e.snapshot == nil {
		return
	}
	e.layout = e.snapshot.layout.Clone()
	e.queue = e.snapshot.queue.Clone()
	e.applied = e.snapshot.applied
	e.snapshot = nil
}

// Step applies the next pending instruction with m. It returns the applied
// instruction and true, or false when the queue is empty.
//
// On error the instruction stays at the front of the queue and the layout
// is unchanged.
func (e *Engine) Step(m Mover) (Instruction, bool, error) {
	if len(e.queue) == 0 {
		return Instruction{}, false, nil
	}
	in := e.queue[0]
	if err := m(e.layout, in); err != nil {
		return in, false, fmt.Errorf("instruction %d: %w", e.applied+1, err)
	}
	e.queue = e.queue[1:]
	e.applied++
	return in, true, nil
}

// Replay applies every pending instruction with m, in order, until the
// queue is empty or an instruction fails. Replaying a drained engine is a
// no-op.
func (e *Engine) Replay(m Mover) error {
	for {
		_, ok, err := e.Step(m)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// ReplaySingle drains the queue moving one crate at a time.
func (e *Engine) ReplaySingle() error { return e.Replay(MoveSingle) }

// ReplayBlock drains the queue moving each instruction's crates as one block.
func (e *Engine) ReplayBlock() error { return e.Replay(MoveBlock) }

// ReplayMode drains the queue with the strategy of the named mode.
func (e *Engine) ReplayMode(mode Mode) error {
	m := mode.Mover()
	if m == nil {
		return errs.New(errs.ErrCodeInvalidInput, "unknown mode %q", mode)
	}
	return e.Replay(m)
}

// Validate checks the pending instructions against the current layout
// without changing either. See [Validate].
func (e *Engine) Validate() error {
	return Validate(e.layout, e.queue)
}

// Validate dry-runs q against l, tracking only column heights, and reports
// the first instruction that names an unknown column or takes more crates
// than its source holds. Heights evolve identically in every mode, so a
// queue that validates replays cleanly under both.
func Validate(l Layout, q Queue) error {
	heights := make([]int, len(l))
	for i, c := range l {
		heights[i] = c.Len()
	}
	height := func(id int) int { return heights[id-1] }

	for i, in := range q {
		if err := checkInstruction(in, len(heights), height); err != nil {
			return fmt.Errorf("instruction %d: %w", i+1, err)
		}
		heights[in.From-1] -= in.Amount
		heights[in.To-1] += in.Amount
	}
	return nil
}
