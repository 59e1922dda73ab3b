package crane

import (
	"fmt"
	"strconv"
	"strings"

	errs "github.com/matzehuels/cranestack/pkg/errors"
)

// fieldWidth is the width of one column in a diagram row: "[X] ".
const fieldWidth = 4

// diagramParser accumulates diagram rows into a layout. Rows arrive top
// row first, so each crate found goes underneath the ones already seen.
type diagramParser struct {
	columns    Layout
	rows       int
	declared   int // column count from the header line, 0 if none seen
	headerLine int
}

// addRow parses one fixed-width row. Fields are read at a stride of
// fieldWidth runes; a field is either three spaces (no crate) or "[X]".
// Trailing spaces may be missing.
func (p *diagramParser) addRow(line string, lineNo int) error {
	cells := []rune(line)
	for start := 0; start < len(cells); start += fieldWidth {
		col := start / fieldWidth
		field := cells[start:min(start+fieldWidth-1, len(cells))]

		if sep := start + fieldWidth - 1; sep < len(cells) && cells[sep] != ' ' {
			return errs.NewAt(errs.ErrCodeInvalidDiagram, lineNo,
				"column %d: expected a space after %q, got %q", col+1, string(field), cells[sep])
		}
		if strings.TrimSpace(string(field)) == "" {
			continue
		}
		if len(field) != 3 || field[0] != '[' || field[2] != ']' || !isLabel(field[1]) {
			return errs.NewAt(errs.ErrCodeInvalidDiagram, lineNo,
				"column %d: malformed crate %q", col+1, string(field))
		}

		for len(p.columns) <= col {
			p.columns = append(p.columns, Column{})
		}
		p.columns[col].pushBottom(field[1])
	}
	p.rows++
	return nil
}

func isLabel(r rune) bool {
	return r != ' ' && r != '[' && r != ']'
}

// parseHeader recognises the column-number line (" 1   2   3 ").
// It returns ok=false for anything that is not made of integers; an
// all-integer line that does not count 1..n is an error.
func parseHeader(line string, lineNo int) (n int, ok bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, false, nil
	}
	for i, f := range fields {
		id, convErr := strconv.Atoi(f)
		if convErr != nil {
			return 0, false, nil
		}
		if id != i+1 {
			return 0, true, errs.NewAt(errs.ErrCodeInvalidDiagram, lineNo,
				"column header must number columns 1..n, found %d at position %d", id, i+1)
		}
	}
	return len(fields), true, nil
}

func (p *diagramParser) setHeader(n, lineNo int) {
	p.declared = n
	p.headerLine = lineNo
}

// finish returns the layout. When a header was seen it fixes the column
// count: columns it declares that never held a crate exist but are empty.
func (p *diagramParser) finish() (Layout, error) {
	if p.declared == 0 {
		return p.columns, nil
	}
	if len(p.columns) > p.declared {
		return nil, errs.NewAt(errs.ErrCodeInvalidDiagram, p.headerLine,
			"rows hold crates in column %d but the header declares %d columns", len(p.columns), p.declared)
	}
	for len(p.columns) < p.declared {
		p.columns = append(p.columns, Column{})
	}
	return p.columns, nil
}

// ParseDiagram parses the crate diagram block of an input into a layout
// whose columns are ordered top-to-bottom as drawn.
//
// Leading blank lines are skipped. Parsing stops at the column-number
// header, at the first blank line after a row, or at the first instruction
// line, whichever comes first. A malformed crate is an
// [errs.ErrCodeInvalidDiagram] error carrying the 1-based line number.
func ParseDiagram(text string) (Layout, error) {
	var p diagramParser
	for i, line := range splitLines(text) {
		lineNo := i + 1
		if strings.TrimSpace(line) == "" {
			if p.rows > 0 {
				break
			}
			continue
		}
		if isInstructionLine(line) {
			break
		}
		n, isHeader, err := parseHeader(line, lineNo)
		if err != nil {
			return nil, err
		}
		if isHeader {
			p.setHeader(n, lineNo)
			break
		}
		if err := p.addRow(line, lineNo); err != nil {
			return nil, err
		}
	}
	return p.finish()
}

// Render draws the layout as a fixed-width diagram followed by the
// column-number header, the same format [ParseDiagram] reads. Trailing
// spaces are trimmed from every line.
func (l Layout) Render() string {
	if len(l) == 0 {
		return ""
	}

	var b strings.Builder
	height := l.Height()
	fields := make([]string, len(l))
	for row := range height {
		for i, c := range l {
			depth := row - (height - c.Len())
			if depth < 0 {
				fields[i] = "   "
				continue
			}
			fields[i] = "[" + string(c.Crates()[depth]) + "]"
		}
		b.WriteString(strings.TrimRight(strings.Join(fields, " "), " "))
		b.WriteByte('\n')
	}

	for i := range l {
		fields[i] = fmt.Sprintf(" %-2d", i+1)
	}
	b.WriteString(strings.TrimRight(strings.Join(fields, " "), " "))
	b.WriteByte('\n')
	return b.String()
}
