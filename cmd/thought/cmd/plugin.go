package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thought-cms/thought/internal/pluginresolve"
	"github.com/thought-cms/thought/internal/workspace"
)

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Inspect and resolve declared plugins",
}

var pluginResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve and build every plugin declared in the workspace manifest",
	Long: `Resolve fetches (registry/git/local/artifact-url) every plugin declared
in Thought.toml into the workspace cache directory and builds it,
without running a full generate.`,
	RunE: runPluginResolve,
}

func init() {
	rootCmd.AddCommand(pluginCmd)
	pluginCmd.AddCommand(pluginResolveCmd)
}

func runPluginResolve(_ *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	resolver := pluginresolve.Resolver{Log: log}
	manifest := ws.Manifest()

	for name, locator := range manifest.Plugins {
		rp, err := resolver.Resolve(context.Background(), ws, name, locator)
		if err != nil {
			return fmt.Errorf("resolve plugin %q: %w", name, err)
		}
		if err := rp.Build(locator.Kind == workspace.LocatorLocal); err != nil {
			return fmt.Errorf("build plugin %q: %w", name, err)
		}
		log.Info().Str("plugin", name).Str("kind", string(rp.Manifest.Kind)).Str("dir", rp.Dir).Msg("plugin resolved")
	}
	return nil
}
