package crane

import (
	errs "github.com/matzehuels/cranestack/pkg/errors"
)

// Mover applies one instruction to a layout. It either moves all
// in.Amount crates or returns an error without touching the layout.
type Mover func(l Layout, in Instruction) error

// MoveSingle moves crates one at a time. The crate lifted first ends up
// deepest at the destination, so the moved group arrives reversed.
func MoveSingle(l Layout, in Instruction) error {
	from, to, err := endpoints(l, in)
	if err != nil {
		return err
	}
	for range in.Amount {
		to.pushTop(from.popTop())
	}
	return nil
}

// MoveBlock lifts the top in.Amount crates as one group and sets them down
// on the destination in the same order.
func MoveBlock(l Layout, in Instruction) error {
	from, to, err := endpoints(l, in)
	if err != nil {
		return err
	}
	to.putBlock(from.takeBlock(in.Amount))
	return nil
}

// endpoints resolves and checks both columns of an instruction.
func endpoints(l Layout, in Instruction) (from, to *Column, err error) {
	if err := checkInstruction(in, len(l), func(id int) int { return l[id-1].Len() }); err != nil {
		return nil, nil, err
	}
	from, _ = l.Column(in.From)
	to, _ = l.Column(in.To)
	return from, to, nil
}

// checkInstruction validates in against a layout of n columns whose
// current heights are reported by height.
func checkInstruction(in Instruction, n int, height func(id int) int) error {
	if in.Amount < 1 {
		return errs.NewAt(errs.ErrCodeInvalidInstruction, in.Line,
			"%s: amount must be positive", in)
	}
	for _, id := range [...]int{in.From, in.To} {
		if id < 1 || id > n {
			return errs.NewAt(errs.ErrCodeUnknownColumn, in.Line,
				"%s: column %d does not exist (layout has %d columns)", in, id, n)
		}
	}
	if have := height(in.From); have < in.Amount {
		return errs.NewAt(errs.ErrCodeStackUnderflow, in.Line,
			"%s: column %d holds only %d crates", in, in.From, have)
	}
	return nil
}

// Mode names a replay semantics.
type Mode string

const (
	// ModeSingle moves crates one at a time (see [MoveSingle]).
	ModeSingle Mode = "single"
	// ModeBlock moves crates as one ordered group (see [MoveBlock]).
	ModeBlock Mode = "block"
)

// Modes lists every mode in the order a full run replays them.
var Modes = []Mode{ModeSingle, ModeBlock}

// ParseMode converts a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeSingle, ModeBlock:
		return m, nil
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "unknown mode %q (want single or block)", s)
}

// Mover returns the transfer strategy of the mode, or nil for an unknown mode.
func (m Mode) Mover() Mover {
	switch m {
	case ModeSingle:
		return MoveSingle
	case ModeBlock:
		return MoveBlock
	}
	return nil
}
