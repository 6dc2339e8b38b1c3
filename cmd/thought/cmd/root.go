// Package cmd provides the CLI commands for thought.
package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// cfgFile is the path to the manifest file specified via --config flag.
	cfgFile string

	// workspaceRoot is the workspace root directory (defaults to cwd).
	workspaceRoot string

	// verbose enables debug-level logging.
	verbose bool

	log zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "thought",
	Short: "A sandboxed content pipeline and plugin runtime",
	Long: `Thought turns a workspace of markdown articles and TOML sidecars into a
static site through sandboxed WASM guest plugins, with an incremental
render cache and a full-text search index.

Example usage:
  thought generate             # render the workspace into build/
  thought serve                # serve the last build, rendering on demand
  thought plugin resolve       # resolve and build every declared plugin`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Str("component", "thought").Logger()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "workspace manifest path (default: auto-discover Thought.toml)")
	rootCmd.PersistentFlags().StringVarP(&workspaceRoot, "workspace", "w", ".", "workspace root directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug) logging")
}
