// Package crane simulates a warehouse crane rearranging stacks of crates.
//
// # Overview
//
// The input is a text file with two blocks separated by a blank line. The
// first is an ASCII drawing of the stacks, one fixed-width field per column,
// closed by a line that numbers the columns:
//
//	    [D]
//	[N] [C]
//	[Z] [M] [P]
//	 1   2   3
//
// The second lists relocation instructions, applied in file order:
//
//	move 1 from 2 to 1
//	move 3 from 1 to 3
//
// [Parse] turns such an input into an [Engine]. [ParseDiagram] and
// [ParseInstructions] parse each block on its own.
//
// # Columns and Layouts
//
// A [Column] is one stack. Its exported views are ordered top-to-bottom:
// the first crate of [Column.Crates] is the one the crane reaches first.
// A [Layout] is the list of columns; column IDs are 1-based, so ID n is
// index n-1. [Layout.Render] draws a layout back in the input format.
//
// # Replay Modes
//
// The same instruction stream can be replayed with two transfer strategies,
// both expressed as a [Mover]:
//
//   - [MoveSingle]: crates move one at a time, so a moved group arrives
//     reversed ("ABC" on top of the source becomes "CBA" on the destination)
//   - [MoveBlock]: crates move as one group and keep their order
//
// [Engine.Replay] drives either strategy over the queue; [Engine.ReplaySingle]
// and [Engine.ReplayBlock] are shorthands. [Engine.Step] applies a single
// instruction, which is what interactive viewers and per-instruction hooks use.
//
// # Snapshots
//
// To replay the same start state under both modes without parsing twice,
// take a snapshot first and restore it in between:
//
//	e, err := crane.ParseString(input)
//	if err != nil {
//	    return err
//	}
//	_ = e.Snapshot()
//	_ = e.ReplaySingle()
//	single := e.Tops()
//	e.Restore()
//	_ = e.ReplayBlock()
//	block := e.Tops()
//
// A snapshot is a deep copy; only one may be held at a time.
//
// # Errors
//
// Malformed input yields parse errors (INVALID_DIAGRAM, INVALID_INSTRUCTION,
// INVALID_NUMBER) carrying the input line. Instructions that name a missing
// column or take more crates than a column holds yield invariant errors
// (UNKNOWN_COLUMN, STACK_UNDERFLOW), as does a second snapshot
// (SNAPSHOT_HELD). Use the helpers in the errors package to classify them.
// [Validate] finds invariant errors before anything is moved.
//
// # Concurrency
//
// Engines are single-owner values with no internal locking.
package crane
