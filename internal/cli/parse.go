package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cranestack/pkg/crane"
	pkgio "github.com/matzehuels/cranestack/pkg/io"
)

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	jsonOut bool   // write the plan as JSON instead of a diagram
	output  string // output file path (stdout if empty)
}

// parseCommand creates the parse command, which shows what the parser read
// without replaying anything.
func (c *CLI) parseCommand() *cobra.Command {
	var opts parseOpts

	cmd := &cobra.Command{
		Use:   "parse <input>",
		Short: "Parse an input and show the starting layout",
		Long: `Parse an input file and print the starting layout as a crate diagram,
followed by the number of instructions.

With --json the layout and instructions are written as a JSON plan that
"run" and "step" accept in place of the text format. Instructions are
checked against the layout; the first one that would fail is reported.

Examples:
  cranestack parse input.txt
  cranestack parse input.txt --json -o plan.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "write the plan as JSON")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

func (c *CLI) runParse(cmd *cobra.Command, path string, opts parseOpts) error {
	logger := loggerFromContext(cmd.Context())

	e, err := loadEngine(cmd, path)
	if err != nil {
		return err
	}
	layout, queue := e.Layout(), e.Pending()
	logger.Debug("parsed input", "columns", len(layout), "crates", layout.Crates(), "instructions", len(queue))

	if opts.output != "" {
		if err := writePlan(opts.output, layout, queue, opts.jsonOut); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Parsed %d columns, %d instructions", len(layout), len(queue))
		printFile(cmd.OutOrStdout(), opts.output)
		return nil
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		return pkgio.WriteJSON(layout, queue, out)
	}

	fmt.Fprint(out, renderLayout(layout))
	fmt.Fprintln(out)
	printDetail(out, "%d columns · %d crates · %d instructions (%d crates moved)",
		len(layout), layout.Crates(), len(queue), queue.Total())

	if err := e.Validate(); err != nil {
		printDetail(out, "replay would fail: %v", err)
		return nil
	}
	printNextStep(out, "Replay it", fmt.Sprintf("%s run %s", appName, path))
	return nil
}

func writePlan(path string, layout crane.Layout, queue crane.Queue, asJSON bool) error {
	if asJSON {
		return pkgio.ExportJSON(layout, queue, path)
	}
	var buf bytes.Buffer
	if err := pkgio.WriteText(layout, queue, &buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
