package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cranestack/pkg/buildinfo"
	"github.com/matzehuels/cranestack/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Before any subcommand runs, the root command:
//   - applies --verbose (debug level, per-instruction replay logging)
//   - loads config.toml from --config or the XDG config directory
//   - attaches the logger to the command context (see loggerFromContext)
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   appName,
		Short: "Cranestack simulates a warehouse crane rearranging crate stacks",
		Long: `Cranestack parses a crate diagram and a list of "move N from A to B"
instructions, replays them with a single-crate crane and a block crane,
and reports the top crate of every column.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(LogDebug)
				observability.SetPipelineHooks(newLogHooks(c.Logger))
			}
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/cranestack/config.toml)")

	// Register all subcommands
	root.AddCommand(c.runCommand())
	root.AddCommand(c.parseCommand())
	root.AddCommand(c.stepCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	path := c.configFile
	if path == "" {
		var err error
		if path, err = configPath(); err != nil {
			return nil // no home directory: defaults only
		}
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path)
	return nil
}
