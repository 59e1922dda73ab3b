package crane

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	errs "github.com/matzehuels/cranestack/pkg/errors"
)

// Instruction relocates Amount crates from column From to column To.
//
// Line is the 1-based input line the instruction was read from, or 0 when
// the instruction was built in code. It only feeds error reports.
type Instruction struct {
	Amount int `json:"amount"`
	From   int `json:"from"`
	To     int `json:"to"`
	Line   int `json:"line,omitempty"`
}

// String renders the instruction in its input form.
func (in Instruction) String() string {
	return fmt.Sprintf("move %d from %d to %d", in.Amount, in.From, in.To)
}

// Queue is an ordered, first-in-first-out list of instructions.
type Queue []Instruction

// Clone returns an independent copy of q.
func (q Queue) Clone() Queue {
	if q == nil {
		return nil
	}
	return slices.Clone(q)
}

// Total returns the number of crates moved by the whole queue.
func (q Queue) Total() int {
	n := 0
	for _, in := range q {
		n += in.Amount
	}
	return n
}

var (
	// instructionPattern matches one instruction line. Fields are captured
	// loosely so that "move x from 1 to 2" reports INVALID_NUMBER instead of
	// a non-matching line.
	instructionPattern = regexp.MustCompile(`^move\s+(\S+)\s+from\s+(\S+)\s+to\s+(\S+)$`)

	instructionFields = [...]string{"amount", "source column", "destination column"}
)

// isInstructionLine reports whether a line claims to be an instruction.
func isInstructionLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "move")
}

// ParseInstruction parses a single "move <amount> from <src> to <dst>" line.
// All three fields must be positive decimal integers.
//
// lineNo is recorded on the instruction and on any returned error; pass 0
// when parsing text that does not come from a file.
func ParseInstruction(line string, lineNo int) (Instruction, error) {
	m := instructionPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Instruction{}, errs.NewAt(errs.ErrCodeInvalidInstruction, lineNo,
			"expected \"move <amount> from <src> to <dst>\", got %q", strings.TrimSpace(line))
	}

	var vals [3]int
	for i, field := range m[1:] {
		n, err := strconv.Atoi(field)
		if err != nil || n < 1 || !isDigits(field) {
			return Instruction{}, errs.NewAt(errs.ErrCodeInvalidNumber, lineNo,
				"%s %q is not a positive integer", instructionFields[i], field)
		}
		vals[i] = n
	}

	return Instruction{Amount: vals[0], From: vals[1], To: vals[2], Line: lineNo}, nil
}

// ParseInstructions parses every instruction line in text, in order.
// Lines that do not start with "move" (blank lines, diagram rows, the
// column header) are ignored. A line that starts with "move" but is
// malformed is an error.
func ParseInstructions(text string) (Queue, error) {
	var q Queue
	for i, line := range splitLines(text) {
		if !isInstructionLine(line) {
			continue
		}
		in, err := ParseInstruction(line, i+1)
		if err != nil {
			return nil, err
		}
		q = append(q, in)
	}
	return q, nil
}

func isDigits(s string) bool {
	return strings.Trim(s, "0123456789") == ""
}

// splitLines splits text on newlines and drops carriage returns.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
