// Package preview implements a stdlib net/http server that serves the
// last full build and lazily renders any article requested on demand
// under per-article mutual exclusion, reusing the render engine for the
// actual work. A content-directory watch invalidates the in-memory
// dirty flags on change rather than triggering a full rebuild.
package preview

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/thought-cms/thought/internal/engine"
	"github.com/thought-cms/thought/internal/workspace"
)

// DefaultPort is the first candidate probed under --auto-port.
const DefaultPort = 2006

// autoPortCandidates is how many successive ports are probed before
// giving up.
const autoPortCandidates = 50

// Server serves a workspace's last full build, rendering individual
// articles on demand.
type Server struct {
	ws        *workspace.Workspace
	outputDir string
	log       zerolog.Logger

	engine *engine.Engine

	articleLocksMu sync.Mutex
	articleLocks   map[string]*sync.Mutex

	indexMu    sync.Mutex
	indexDirty bool

	bundleMu    sync.Mutex
	bundleDirty bool

	watcher *fsnotify.Watcher
}

// New builds a preview server bound to ws, serving files out of
// outputDir, the last full `generate` output.
func New(ws *workspace.Workspace, outputDir string, log zerolog.Logger) *Server {
	return &Server{
		ws:           ws,
		outputDir:    outputDir,
		log:          log,
		engine:       &engine.Engine{Log: log},
		articleLocks: map[string]*sync.Mutex{},
	}
}

// articleLock returns (creating if absent) the mutex guarding renders
// of the article identified by key, inserted lazily under a single
// outer mutex.
func (s *Server) articleLock(key string) *sync.Mutex {
	s.articleLocksMu.Lock()
	defer s.articleLocksMu.Unlock()
	m, ok := s.articleLocks[key]
	if !ok {
		m = &sync.Mutex{}
		s.articleLocks[key] = m
	}
	return m
}

// markDirty flips both the index and search-bundle dirty flags,
// called whenever a render invalidates the previously-built index.
func (s *Server) markDirty() {
	s.indexMu.Lock()
	s.indexDirty = true
	s.indexMu.Unlock()

	s.bundleMu.Lock()
	s.bundleDirty = true
	s.bundleMu.Unlock()
}

// Handler builds the server's http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	return withRequestLogging(s.log, mux)
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	upath := r.URL.Path
	if upath == "/" {
		upath = "/index.html"
	}

	if upath == "/index.html" {
		s.serveIndex(ctx, w, r)
		return
	}

	clean := strings.TrimPrefix(path.Clean(upath), "/")
	if fullPath := filepath.Join(s.outputDir, clean); fileExists(fullPath) {
		http.ServeFile(w, r, fullPath)
		return
	}

	candidate := upath
	if filepath.Ext(candidate) == "" {
		candidate += ".html"
	}
	if !strings.HasSuffix(candidate, ".html") {
		http.NotFound(w, r)
		return
	}

	if err := s.renderOnDemand(ctx, candidate); err != nil {
		s.log.Error().Err(err).Str("path", upath).Msg("on-demand render failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	full := filepath.Join(s.outputDir, strings.TrimPrefix(candidate, "/"))
	http.ServeFile(w, r, full)
}

// serveIndex runs a full engine Generate (pages, index and search
// bundle) iff the index is dirty, holding indexMu for the check and the
// regeneration so concurrent requests never regenerate at once, then
// serves the index.
func (s *Server) serveIndex(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	s.indexMu.Lock()
	if s.indexDirty {
		if err := s.engine.Generate(ctx, s.ws, s.outputDir); err != nil {
			s.indexMu.Unlock()
			s.log.Error().Err(err).Msg("index regeneration failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.indexDirty = false
		s.bundleMu.Lock()
		s.bundleDirty = false
		s.bundleMu.Unlock()
	}
	s.indexMu.Unlock()

	http.ServeFile(w, r, filepath.Join(s.outputDir, "index.html"))
}

// renderOnDemand resolves htmlPath back to (segments, locale), renders
// it under the per-article lock, writes the file, and marks the index
// dirty.
func (s *Server) renderOnDemand(ctx context.Context, htmlPath string) error {
	segments, locale := resolveArticleURL(htmlPath)
	if len(segments) == 0 {
		return fmt.Errorf("cannot resolve article from path %q", htmlPath)
	}

	key := strings.Join(segments, "/")
	lock := s.articleLock(key)
	lock.Lock()
	defer lock.Unlock()

	if err := s.engine.RenderOne(ctx, s.ws, s.outputDir, segments, locale); err != nil {
		return err
	}
	s.markDirty()
	return nil
}

// resolveArticleURL splits an html request path into article segments
// and a requested locale.
func resolveArticleURL(htmlPath string) (segments []string, locale string) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(htmlPath, "/"), ".html")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		return nil, ""
	}
	last := parts[len(parts)-1]
	if idx := strings.LastIndex(last, "."); idx >= 0 {
		locale = last[idx+1:]
		parts[len(parts)-1] = last[:idx]
	}
	return parts, locale
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// withRequestLogging wraps h with a per-request structured log line
// carrying a correlation id.
func withRequestLogging(log zerolog.Logger, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		h.ServeHTTP(w, r)
		log.Debug().
			Str("request_id", reqID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("served request")
	})
}

// ListenAndServe binds addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Watch starts an fsnotify watch over the workspace content directory,
// marking the server dirty on every write/create/remove/rename event
// until ctx is cancelled.
func (s *Server) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start content watcher: %w", err)
	}
	s.watcher = watcher

	if err := filepath.Walk(s.ws.ContentDir(), func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(p)
		}
		return nil
	}); err != nil {
		watcher.Close()
		return fmt.Errorf("watch content tree: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					s.log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("content change detected")
					s.markDirty()
				}
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn().Err(watchErr).Msg("content watcher error")
			}
		}
	}()
	return nil
}

// ProbePort finds the first bindable port starting at DefaultPort,
// trying up to autoPortCandidates successive ports.
func ProbePort() (int, error) {
	for port := DefaultPort; port < DefaultPort+autoPortCandidates; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err == nil {
			ln.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no free port found in range %d-%d", DefaultPort, DefaultPort+autoPortCandidates-1)
}

