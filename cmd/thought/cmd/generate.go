package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thought-cms/thought/internal/config"
	"github.com/thought-cms/thought/internal/engine"
	"github.com/thought-cms/thought/internal/workspace"
)

var generateOutputDir string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render the workspace into a static site",
	Long: `Generate runs the full render pipeline: resolves and builds every
declared plugin, renders every article through the hook chain and
theme, writes the site index, and (re)builds the search index and its
client-side bundle.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&generateOutputDir, "output", "o", "build", "output directory, relative to the workspace root")
}

func runGenerate(_ *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	outputDir := generateOutputDir
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(ws.Root(), outputDir)
	}

	e := &engine.Engine{Log: log}
	if err := e.Generate(context.Background(), ws, outputDir); err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	log.Info().Str("output", outputDir).Msg("generate complete")
	return nil
}

// openWorkspace resolves the workspace root and manifest, applying
// internal/config's discover-then-env-override pipeline before handing
// the result to internal/workspace.
func openWorkspace() (*workspace.Workspace, error) {
	manifest, err := config.Load(workspaceRoot, cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load workspace manifest: %w", err)
	}
	return workspace.OpenWithManifest(workspaceRoot, manifest)
}
