package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/cranestack/pkg/crane"
)

type plan struct {
	Columns      []string      `json:"columns"`
	Instructions []instruction `json:"instructions"`
}

type instruction struct {
	Amount int `json:"amount"`
	From   int `json:"from"`
	To     int `json:"to"`
}

// WriteJSON encodes a layout and instruction queue as JSON and writes it to w.
// This format can be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(l crane.Layout, q crane.Queue, w io.Writer) error {
	out := plan{
		Columns:      l.Strings(),
		Instructions: make([]instruction, len(q)),
	}
	for i, in := range q {
		out.Instructions[i] = instruction{Amount: in.Amount, From: in.From, To: in.To}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a plan to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(l crane.Layout, q crane.Queue, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(l, q, f)
}

// WriteText writes a plan in the text input format: the rendered diagram,
// a blank line, then one instruction per line.
func WriteText(l crane.Layout, q crane.Queue, w io.Writer) error {
	if _, err := io.WriteString(w, l.Render()+"\n"); err != nil {
		return err
	}
	for _, in := range q {
		if _, err := fmt.Fprintln(w, in); err != nil {
			return err
		}
	}
	return nil
}
