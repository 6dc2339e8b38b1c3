package pluginresolve

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/thought-cms/thought/internal/thoughterr"
)

// ComponentTarget is the guest toolchain's component-model build target.
const ComponentTarget = "wasm32-wasip2"

// BuildCommand names the external toolchain invocation used to build a
// plugin. Defaults to cargo, since guest plugins are Rust component-model
// crates.
var BuildCommand = []string{"cargo", "build", "--release"}

// Build builds the plugin's main.wasm if it does not already exist, or
// unconditionally when force is set.
func (r *ResolvedPlugin) Build(force bool) error {
	if !force {
		if _, err := os.Stat(r.WasmPath()); err == nil {
			r.Built = true
			return nil
		}
	}

	if err := checkToolchain(); err != nil {
		return err
	}

	if err := runBuild(r.Dir); err != nil {
		return err
	}

	if _, err := os.Stat(r.WasmPath()); err != nil {
		artifact, err := locateComponentArtifact(r.Dir)
		if err != nil {
			return fmt.Errorf("%w: %v", thoughterr.ErrArtifactMissing, err)
		}
		if err := copyFile(artifact, r.WasmPath()); err != nil {
			return err
		}
	}

	r.Built = true
	return nil
}

// checkToolchain verifies that BuildCommand[0] is found on PATH. It does
// not check whether ComponentTarget is installed for that toolchain.
func checkToolchain() error {
	if len(BuildCommand) == 0 {
		return fmt.Errorf("%w: %s", thoughterr.ErrToolchainMissing, ComponentTarget)
	}
	if _, err := exec.LookPath(BuildCommand[0]); err != nil {
		return fmt.Errorf("%w: %s (%v)", thoughterr.ErrToolchainMissing, ComponentTarget, err)
	}
	return nil
}

func runBuild(dir string) error {
	cmd := exec.Command(BuildCommand[0], append(append([]string{}, BuildCommand[1:]...), "--manifest-path", filepath.Join(dir, "Cargo.toml"))...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s: %v: %s", thoughterr.ErrBuildFailed, dir, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// locateComponentArtifact finds the single built .wasm artifact under
// target/<ComponentTarget>/{release,debug}.
func locateComponentArtifact(dir string) (string, error) {
	candidates := []string{
		filepath.Join(dir, "target", ComponentTarget, "release"),
		filepath.Join(dir, "target", ComponentTarget, "debug"),
	}
	for _, candidate := range candidates {
		entries, err := os.ReadDir(candidate)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".wasm") {
				return filepath.Join(candidate, e.Name()), nil
			}
		}
	}
	return "", fmt.Errorf("no .wasm artifact found under target/%s", ComponentTarget)
}
