package cli

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cranestack/pkg/crane"
	pkgio "github.com/matzehuels/cranestack/pkg/io"
)

// readInput returns the text-format input at path. "-" reads the command's
// stdin; JSON plans are converted to the text format so every command feeds
// the same parser.
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	switch {
	case path == pkgio.Stdin:
		return pkgio.ReadAll(cmd.InOrStdin())
	case strings.EqualFold(filepath.Ext(path), ".json"):
		e, err := pkgio.ImportJSON(path)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := pkgio.WriteText(e.Layout(), e.Pending(), &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return pkgio.ReadFile(path)
	}
}

// loadEngine reads and parses the input at path.
func loadEngine(cmd *cobra.Command, path string) (*crane.Engine, error) {
	if path != pkgio.Stdin {
		return pkgio.Import(path)
	}
	data, err := pkgio.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	return crane.Parse(bytes.NewReader(data))
}
