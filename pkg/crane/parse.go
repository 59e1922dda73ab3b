package crane

import (
	"bufio"
	"io"
	"strings"

	errs "github.com/matzehuels/cranestack/pkg/errors"
)

// maxLineSize bounds a single input line. Diagrams with this many columns
// are far outside anything a crane plan describes.
const maxLineSize = 1 << 20

// Parse reads a complete input (diagram block, blank line, instruction
// block) and returns an engine holding the parsed layout and queue.
//
// Lines up to the column header (or the first blank line after a crate
// row) form the diagram. After that, every non-blank line must be an
// instruction; anything else is an [errs.ErrCodeInvalidInstruction] error.
// Both "\n" and "\r\n" line endings are accepted.
//
// Parse does not check the instructions against the layout. Use
// [Validate] or [Engine.Validate] for that before replaying.
func Parse(r io.Reader) (*Engine, error) {
	var (
		diagram   diagramParser
		queue     Queue
		inDiagram = true
		lineNo    int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSuffix(sc.Text(), "\r")

		switch {
		case strings.TrimSpace(line) == "":
			if diagram.rows > 0 {
				inDiagram = false
			}

		case isInstructionLine(line):
			inDiagram = false
			in, err := ParseInstruction(line, lineNo)
			if err != nil {
				return nil, err
			}
			queue = append(queue, in)

		case inDiagram:
			n, isHeader, err := parseHeader(line, lineNo)
			if err != nil {
				return nil, err
			}
			if isHeader {
				diagram.setHeader(n, lineNo)
				inDiagram = false
				continue
			}
			if err := diagram.addRow(line, lineNo); err != nil {
				return nil, err
			}

		default:
			return nil, errs.NewAt(errs.ErrCodeInvalidInstruction, lineNo,
				"unexpected text in instruction block: %q", strings.TrimSpace(line))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read input")
	}

	layout, err := diagram.finish()
	if err != nil {
		return nil, err
	}
	return New(layout, queue), nil
}

// ParseString is [Parse] over an in-memory input.
func ParseString(s string) (*Engine, error) {
	return Parse(strings.NewReader(s))
}
