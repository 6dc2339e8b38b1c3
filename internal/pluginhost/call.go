package pluginhost

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/thought-cms/thought/internal/thoughterr"
)

// call marshals req, writes it into the guest's linear memory via its
// exported alloc, invokes the named export, reads back the packed
// result pointer/length, frees both buffers, and unmarshals resp.
//
// The packed-result convention (a single u64 return value whose high
// 32 bits are the pointer and low 32 bits are the length) mirrors the
// shape used by wazero's own TinyGo/Rust hosted-function examples for
// returning variable-length data across the memory boundary, since the
// guest ABI exposed here is a JSON handshake rather than a generated
// component binding (see abi.go's package doc).
func call(ctx context.Context, mod api.Module, plugin, export string, req, resp any) error {
	reqBytes, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", thoughterr.ErrMarshalFailure, plugin, err)
	}

	alloc := mod.ExportedFunction("alloc")
	dealloc := mod.ExportedFunction("dealloc")
	fn := mod.ExportedFunction(export)
	if alloc == nil || dealloc == nil || fn == nil {
		return thoughterr.WithContext(thoughterr.ErrExportMissing, "plugin", plugin, "export", export)
	}

	allocRes, err := alloc.Call(ctx, uint64(len(reqBytes)))
	if err != nil {
		return fmt.Errorf("%w: %s: alloc: %v", thoughterr.ErrPluginTrap, plugin, err)
	}
	reqPtr := uint32(allocRes[0])

	if !mod.Memory().Write(reqPtr, reqBytes) {
		return thoughterr.WithContext(thoughterr.ErrPluginTrap, "plugin", plugin, "reason", "request write out of bounds")
	}

	packed, err := fn.Call(ctx, uint64(reqPtr), uint64(len(reqBytes)))
	if err != nil {
		return fmt.Errorf("%w: %s: %s: %v", thoughterr.ErrPluginTrap, plugin, export, err)
	}
	if _, err := dealloc.Call(ctx, uint64(reqPtr), uint64(len(reqBytes))); err != nil {
		return fmt.Errorf("%w: %s: dealloc request: %v", thoughterr.ErrPluginTrap, plugin, err)
	}

	respPtr := uint32(packed[0] >> 32)
	respLen := uint32(packed[0])

	respBytes, ok := mod.Memory().Read(respPtr, respLen)
	if !ok {
		return thoughterr.WithContext(thoughterr.ErrPluginTrap, "plugin", plugin, "reason", "response read out of bounds")
	}
	// Copy before freeing: Read returns a view into guest memory that
	// dealloc may invalidate or the next call may overwrite.
	owned := append([]byte(nil), respBytes...)
	if _, err := dealloc.Call(ctx, uint64(respPtr), uint64(respLen)); err != nil {
		return fmt.Errorf("%w: %s: dealloc response: %v", thoughterr.ErrPluginTrap, plugin, err)
	}

	if resp == nil {
		return nil
	}
	if err := json.Unmarshal(owned, resp); err != nil {
		return fmt.Errorf("%w: %s: %s: %v", thoughterr.ErrMarshalFailure, plugin, export, err)
	}
	return nil
}
