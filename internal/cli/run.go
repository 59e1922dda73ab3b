package cli

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cranestack/pkg/observability"
	"github.com/matzehuels/cranestack/pkg/pipeline"
)

// runOpts holds the command-line flags for the run command.
type runOpts struct {
	modes   []string // replay modes, in output order
	jsonOut bool     // print the full pipeline.Result as JSON
	noCache bool     // disable the result cache
	refresh bool     // skip the cache lookup
}

// runCommand creates the run command, the main entry point: parse, validate
// and replay an input in every requested mode.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run <input>",
		Short: "Replay instructions and print the top crate of every column",
		Long: `Replay the instructions of an input file and print the top crate of every
column after each replay mode.

The input is a crate diagram followed by a blank line and "move N from A to B"
lines. Files ending in .json are read as plans written by "parse --json".
Use "-" to read from stdin.

Examples:
  cranestack run input.txt                 # single: CMZ / block: MCD
  cranestack run input.txt --mode block    # block crane only
  cat input.txt | cranestack run - --json  # full result as JSON`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("json") {
				opts.jsonOut = c.Config.Output.Format == formatJSON
			}
			return c.runRun(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.modes, "mode", "m", nil, "replay mode(s): single, block (default both)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached result exists")

	return cmd
}

func (c *CLI) runRun(cmd *cobra.Command, path string, opts runOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	input, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(logger)
	var spin *Spinner
	if !opts.jsonOut {
		spin = newSpinner(ctx, cmd.ErrOrStderr(), "Parsing...")
		// Verbose runs log every instruction instead.
		if c.Logger.GetLevel() > log.DebugLevel {
			prev := observability.Pipeline()
			observability.SetPipelineHooks(&spinnerHooks{spin: spin})
			defer observability.SetPipelineHooks(prev)
		}
		spin.Start()
	}
	result, err := runner.Execute(ctx, input, pipeline.Options{
		Modes:    opts.modes,
		Refresh:  opts.refresh,
		CacheTTL: c.Config.Cache.TTL,
		Logger:   logger,
	})
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Replayed %d instructions", result.Instructions))

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	for _, mode := range outputModes(opts.modes) {
		printTops(out, mode, result.Tops[mode])
	}
	printStats(out, result.Columns, result.Instructions, result.CacheHit)
	return nil
}

// outputModes returns the modes in the order they were requested, without
// duplicates. No modes means every mode.
func outputModes(modes []string) []string {
	if len(modes) == 0 {
		return pipeline.DefaultModes()
	}
	var out []string
	for _, m := range modes {
		if !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}
