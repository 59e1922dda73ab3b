// Package io reads crane plans from disk and converts them to and from JSON.
//
// # Overview
//
// A crane plan is a starting layout plus an ordered instruction queue. Plans
// are normally written in the text format parsed by [crane.Parse]. This
// package adds:
//
//   - File and stdin helpers for the text format ([ImportInput], [ReadAll])
//   - A JSON format for tools that would rather not emit ASCII diagrams
//   - [Import], which picks the format from the file extension
//
// # JSON Format
//
// Columns are listed in ID order as top-to-bottom strings; instructions are
// listed in the order they are applied:
//
//	{
//	  "columns": ["NZ", "DCM", "P"],
//	  "instructions": [
//	    {"amount": 1, "from": 2, "to": 1},
//	    {"amount": 3, "from": 1, "to": 3}
//	  ]
//	}
//
// An empty column is the empty string. Labels must be single characters, so
// the string form is lossless.
//
// # Import
//
//	e, err := io.Import("plan.txt")   // text format
//	e, err := io.Import("plan.json")  // JSON format
//	e, err := io.Import("-")          // text format from stdin
//
// # Export
//
// Use [ExportJSON] to write a plan to a file, or [WriteJSON] to write to any
// io.Writer. [WriteJSON] followed by [ReadJSON] reproduces the same layout
// and queue.
//
// [crane.Parse]: github.com/matzehuels/cranestack/pkg/crane.Parse
package io
