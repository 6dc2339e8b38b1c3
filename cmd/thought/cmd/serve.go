package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thought-cms/thought/internal/preview"
)

var (
	servePort     int
	serveAutoPort bool
	serveOutput   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the last build, rendering articles on demand",
	Long: `Serve starts a local HTTP server over the output directory. Requests for
an article not yet present on disk are rendered on demand under a
per-article lock; the site index and search bundle are regenerated
lazily once any on-demand render invalidates them.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to serve on (0 selects an auto-probed port when --auto-port is set)")
	serveCmd.Flags().BoolVar(&serveAutoPort, "auto-port", false, "probe for a free port starting at 2006 instead of failing on a bound port")
	serveCmd.Flags().StringVarP(&serveOutput, "output", "o", "build", "output directory to serve, relative to the workspace root")
}

func runServe(_ *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	outputDir := serveOutput
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(ws.Root(), outputDir)
	}

	port := servePort
	if port == 0 {
		if !serveAutoPort {
			return fmt.Errorf("--port is required unless --auto-port is set")
		}
		port, err = preview.ProbePort()
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	srv := preview.New(ws, outputDir, log)
	if err := srv.Watch(ctx); err != nil {
		log.Warn().Err(err).Msg("content watch disabled")
	}

	addr := fmt.Sprintf("localhost:%d", port)
	log.Info().Str("addr", addr).Msg("serving")
	return srv.ListenAndServe(ctx, addr)
}
