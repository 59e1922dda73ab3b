package crane

import (
	"encoding/json"
	"slices"
	"strings"
)

// Column is one vertical stack of single-character crates.
//
// Crates are stored bottom-first so that the top of the stack, the end the
// crane works on, is the end of the slice. All exported views ([Column.Crates],
// [Column.String]) are ordered top-to-bottom, the way the stack is drawn.
//
// The zero value is an empty column.
type Column struct {
	crates []rune
}

// NewColumn builds a column from crates listed top-to-bottom.
func NewColumn(topToBottom ...rune) Column {
	c := Column{crates: make([]rune, len(topToBottom))}
	for i, r := range topToBottom {
		c.crates[len(topToBottom)-1-i] = r
	}
	return c
}

// ColumnFromString builds a column from a top-to-bottom string such as "NZ".
func ColumnFromString(s string) Column {
	return NewColumn([]rune(s)...)
}

// Len returns the number of crates in the column.
func (c Column) Len() int { return len(c.crates) }

// Top returns the crate on top of the column, or false if it is empty.
func (c Column) Top() (rune, bool) {
	if len(c.crates) == 0 {
		return 0, false
	}
	return c.crates[len(c.crates)-1], true
}

// Crates returns a copy of the crates ordered top-to-bottom.
func (c Column) Crates() []rune {
	out := slices.Clone(c.crates)
	slices.Reverse(out)
	return out
}

// String returns the crates top-to-bottom as a string.
func (c Column) String() string {
	return string(c.Crates())
}

// Equal reports whether both columns hold the same crates in the same order.
func (c Column) Equal(o Column) bool {
	return slices.Equal(c.crates, o.crates)
}

// MarshalJSON encodes the column as its top-to-bottom string.
func (c Column) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a top-to-bottom string.
func (c *Column) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = ColumnFromString(s)
	return nil
}

func (c Column) clone() Column {
	return Column{crates: slices.Clone(c.crates)}
}

// pushBottom slides a crate under the current stack. The diagram parser
// reads rows top-down, so every new crate it sees belongs below the others.
func (c *Column) pushBottom(r rune) {
	c.crates = slices.Insert(c.crates, 0, r)
}

// pushTop places a single crate on top.
func (c *Column) pushTop(r rune) {
	c.crates = append(c.crates, r)
}

// popTop removes the top crate. Callers check Len first.
func (c *Column) popTop() rune {
	r := c.crates[len(c.crates)-1]
	c.crates = c.crates[:len(c.crates)-1]
	return r
}

// takeBlock removes the top n crates as one group, keeping their stacked
// order: the returned slice is bottom-first like the column itself.
func (c *Column) takeBlock(n int) []rune {
	cut := len(c.crates) - n
	block := slices.Clone(c.crates[cut:])
	c.crates = c.crates[:cut]
	return block
}

// putBlock stacks a bottom-first block on top without reordering it.
func (c *Column) putBlock(block []rune) {
	c.crates = append(c.crates, block...)
}

// Layout is the complete set of columns. Column identifiers are 1-based and
// dense: the column with ID n lives at index n-1.
//
// Columns may become empty during a replay but are never removed.
type Layout []Column

// NewLayout returns a layout of n empty columns.
func NewLayout(n int) Layout {
	return make(Layout, n)
}

// LayoutFromStrings builds a layout from top-to-bottom column strings,
// the inverse of [Layout.Strings].
func LayoutFromStrings(cols []string) Layout {
	l := make(Layout, len(cols))
	for i, s := range cols {
		l[i] = ColumnFromString(s)
	}
	return l
}

// Column returns the column with the given 1-based identifier.
func (l Layout) Column(id int) (*Column, bool) {
	if id < 1 || id > len(l) {
		return nil, false
	}
	return &l[id-1], true
}

// Clone returns a deep copy that shares no storage with l.
func (l Layout) Clone() Layout {
	if l == nil {
		return nil
	}
	out := make(Layout, len(l))
	for i, c := range l {
		out[i] = c.clone()
	}
	return out
}

// Equal reports whether both layouts have the same columns with the same crates.
func (l Layout) Equal(o Layout) bool {
	return slices.EqualFunc(l, o, Column.Equal)
}

// Height returns the size of the tallest column.
func (l Layout) Height() int {
	h := 0
	for _, c := range l {
		h = max(h, c.Len())
	}
	return h
}

// Crates returns the total number of crates across all columns.
func (l Layout) Crates() int {
	n := 0
	for _, c := range l {
		n += c.Len()
	}
	return n
}

// Tops returns the top crate of every column in ascending ID order.
// Empty columns contribute a single space.
func (l Layout) Tops() string {
	var b strings.Builder
	for _, c := range l {
		if r, ok := c.Top(); ok {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// Strings returns every column as a top-to-bottom string.
func (l Layout) Strings() []string {
	out := make([]string, len(l))
	for i, c := range l {
		out[i] = c.String()
	}
	return out
}
