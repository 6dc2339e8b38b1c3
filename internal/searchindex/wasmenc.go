package searchindex

// wasmenc assembles the tiny fixed WASM module shape the search bundle
// needs: a module exporting `memory`, `thought_search_data_ptr`, and
// `thought_search_data_len`, with the JSON payload spliced into a data
// segment at offset 0. No guest toolchain is available at host-run
// time, so the module is built directly from the WebAssembly binary
// format rather than compiled from source. This encoder is
// self-contained; internal/pluginhost only compiles and loads guest
// modules through wazero and shares no code with it.

const wasmPageSize = 65536

func uleb128(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			break
		}
	}
	return out
}

func sleb128(v int64) []byte {
	var out []byte
	more := true
	for more {
		b := byte(v & 0x7F)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}

func section(id byte, content []byte) []byte {
	out := []byte{id}
	out = append(out, uleb128(uint64(len(content)))...)
	out = append(out, content...)
	return out
}

func vec(count int, items ...[]byte) []byte {
	out := uleb128(uint64(count))
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func wasmName(s string) []byte {
	b := []byte(s)
	out := uleb128(uint64(len(b)))
	return append(out, b...)
}

// buildSearchBundleWasm returns a complete module exposing the search
// bundle ABI the client theme's wasm loader expects, carrying payload
// at memory offset 0.
func buildSearchBundleWasm(payload []byte) []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

	// Type section: one func type () -> (i32), shared by both exports.
	functype := []byte{0x60, 0x00, 0x01, 0x7F}
	out = append(out, section(1, vec(1, functype))...)

	// Function section: two functions, both of type 0.
	out = append(out, section(3, vec(2, []byte{0x00}, []byte{0x00}))...)

	// Memory section: enough pages to hold payload at offset 0.
	pages := (len(payload) + wasmPageSize - 1) / wasmPageSize
	if pages < 1 {
		pages = 1
	}
	memtype := append([]byte{0x00}, uleb128(uint64(pages))...)
	out = append(out, section(5, vec(1, memtype))...)

	// Export section: memory, ptr func, len func.
	exportMemory := append(wasmName("memory"), 0x02, 0x00)
	exportPtr := append(wasmName("thought_search_data_ptr"), 0x00, 0x00)
	exportLen := append(wasmName("thought_search_data_len"), 0x00, 0x01)
	out = append(out, section(7, vec(3, exportMemory, exportPtr, exportLen))...)

	// Code section: ptr() returns i32.const 0; len() returns i32.const payloadLen.
	ptrBody := append([]byte{0x00, 0x41}, sleb128(0)...)
	ptrBody = append(ptrBody, 0x0B)
	lenBody := append([]byte{0x00, 0x41}, sleb128(int64(len(payload)))...)
	lenBody = append(lenBody, 0x0B)
	ptrCode := append(uleb128(uint64(len(ptrBody))), ptrBody...)
	lenCode := append(uleb128(uint64(len(lenBody))), lenBody...)
	out = append(out, section(10, vec(2, ptrCode, lenCode))...)

	// Data section: active segment at memory 0, offset i32.const 0.
	dataOffset := append([]byte{0x41}, sleb128(0)...)
	dataOffset = append(dataOffset, 0x0B)
	dataEntry := append([]byte{0x00}, dataOffset...)
	dataEntry = append(dataEntry, uleb128(uint64(len(payload)))...)
	dataEntry = append(dataEntry, payload...)
	out = append(out, section(11, vec(1, dataEntry))...)

	return out
}
