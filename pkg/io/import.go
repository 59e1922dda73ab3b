package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/cranestack/pkg/crane"
	errs "github.com/matzehuels/cranestack/pkg/errors"
)

// Stdin is the path that [Import], [ImportInput], and [ReadFile] treat as
// standard input.
const Stdin = "-"

// ReadJSON decodes a JSON plan from r into an engine.
//
// The input must be a JSON object with "columns" and "instructions" arrays
// (see the package documentation). Every instruction field must be a
// positive integer; otherwise ReadJSON returns an INVALID_NUMBER error
// naming the instruction. Column references are not checked here, use
// [crane.Validate].
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*crane.Engine, error) {
	var data plan
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode plan")
	}

	q := make(crane.Queue, len(data.Instructions))
	for i, in := range data.Instructions {
		if in.Amount < 1 || in.From < 1 || in.To < 1 {
			return nil, errs.New(errs.ErrCodeInvalidNumber,
				"instruction %d: amount, from and to must be positive, got %d/%d/%d", i+1, in.Amount, in.From, in.To)
		}
		q[i] = crane.Instruction{Amount: in.Amount, From: in.From, To: in.To}
	}

	return crane.New(crane.LayoutFromStrings(data.Columns), q), nil
}

// ImportJSON reads a JSON plan file at path and returns the decoded engine.
func ImportJSON(path string) (*crane.Engine, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON(f)
}

// ImportInput reads a text-format plan at path ("-" for stdin) and parses it
// with [crane.Parse].
func ImportInput(path string) (*crane.Engine, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return crane.Parse(bytes.NewReader(data))
}

// Import reads a plan in either format. Files ending in ".json" are decoded
// with [ReadJSON]; everything else, including stdin, is parsed as text.
func Import(path string) (*crane.Engine, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ImportJSON(path)
	}
	return ImportInput(path)
}

// ReadFile returns the raw bytes at path, reading stdin for "-". Missing
// files are reported as FILE_NOT_FOUND.
func ReadFile(path string) ([]byte, error) {
	if path == Stdin {
		return ReadAll(os.Stdin)
	}
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAll(f)
}

// ReadAll reads r to the end, tagging failures as INVALID_INPUT.
func ReadAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read input")
	}
	return data, nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
