package pluginhost

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/thought-cms/thought/internal/thoughterr"
	"github.com/thought-cms/thought/internal/workspace"
)

// Grants describes the capabilities a guest instance is allowed:
// theme plugins get none of these; hook plugins get a fixed,
// non-negotiable set of preopened directories plus random/clock
// access.
type Grants struct {
	AllowRandom bool
	AllowClock  bool

	// PreopenDirs maps a guest-visible path (e.g. "/tmp") to a host
	// directory. Empty for theme plugins.
	PreopenDirs map[string]string
}

// ThemeGrants is the capability set given to theme plugins: none. A
// theme's generate_page/generate_index must be a pure function of its
// arguments.
var ThemeGrants = Grants{}

// HookGrants returns the capability set given to a hook plugin, rooted
// at the workspace's cache directory. The build directory is mounted at
// /build only when withBuild is non-empty.
func HookGrants(ws *workspace.Workspace, withBuild string) (Grants, error) {
	cacheDir, err := ws.CacheDir()
	if err != nil {
		return Grants{}, err
	}
	dirs := map[string]string{
		"/tmp":    "", // populated lazily per call by the caller via a fresh temp dir
		"/cache":  cacheDir,
		"/assets": ws.ContentDir(),
	}
	if withBuild != "" {
		dirs["/build"] = withBuild
	}
	return Grants{AllowRandom: true, AllowClock: true, PreopenDirs: dirs}, nil
}

// Host owns a single process-wide wazero runtime and a cache of
// compiled modules keyed by wasm artifact path, so a plugin resolved
// once is compiled once regardless of how many articles invoke it.
type Host struct {
	runtime wazero.Runtime

	mu       sync.Mutex
	compiled map[string]wazero.CompiledModule
}

// NewHost constructs the runtime and links the WASI preview1 host
// module.
func NewHost(ctx context.Context) (*Host, error) {
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCompilationCache(wazero.NewCompilationCache()))
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("pluginhost: link wasi: %w", err)
	}
	return &Host{runtime: rt, compiled: map[string]wazero.CompiledModule{}}, nil
}

// Close releases the runtime and every compiled module it holds.
func (h *Host) Close(ctx context.Context) error {
	return h.runtime.Close(ctx)
}

func (h *Host) compile(ctx context.Context, wasmPath string) (wazero.CompiledModule, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cm, ok := h.compiled[wasmPath]; ok {
		return cm, nil
	}
	data, err := os.ReadFile(wasmPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", thoughterr.ErrArtifactMissing, wasmPath, err)
	}
	cm, err := h.runtime.CompileModule(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", thoughterr.ErrPluginTrap, wasmPath, err)
	}
	h.compiled[wasmPath] = cm
	return cm, nil
}

// instantiate creates a fresh module instance for a single call. Guests
// are stateless, so every invocation gets its own instance rather than
// reusing one across calls.
func (h *Host) instantiate(ctx context.Context, pluginName string, cm wazero.CompiledModule, grants Grants) (api.Module, error) {
	// Every call gets a uniquely named instance: wazero requires distinct
	// module names for concurrently live instances.
	cfg := wazero.NewModuleConfig().WithName(pluginName + "#" + uuid.NewString())
	if grants.AllowClock {
		cfg = cfg.WithSysWalltime().WithSysNanosleep()
	}
	if grants.AllowRandom {
		cfg = cfg.WithRandSource(rand.Reader)
	}

	fsConfig := wazero.NewFSConfig()
	mounted := false
	for guestPath, hostPath := range grants.PreopenDirs {
		if hostPath == "" {
			continue
		}
		fsConfig = fsConfig.WithDirMount(hostPath, guestPath)
		mounted = true
	}
	if mounted {
		cfg = cfg.WithFSConfig(fsConfig)
	}

	mod, err := h.runtime.InstantiateModule(ctx, cm, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: instantiate: %v", thoughterr.ErrPluginTrap, pluginName, err)
	}
	return mod, nil
}
