package searchindex

import (
	"bytes"
	"testing"
)

// readULEB128 decodes a single unsigned LEB128 value starting at off,
// returning the value and the index just past it.
func readULEB128(b []byte, off int) (uint64, int) {
	var result uint64
	var shift uint
	for {
		v := b[off]
		off++
		result |= uint64(v&0x7F) << shift
		if v&0x80 == 0 {
			break
		}
		shift += 7
	}
	return result, off
}

func findDataSectionPayload(t *testing.T, module []byte) []byte {
	t.Helper()
	if !bytes.Equal(module[:4], []byte{0x00, 0x61, 0x73, 0x6D}) {
		t.Fatalf("missing wasm magic header")
	}
	off := 8 // past magic + version
	for off < len(module) {
		id := module[off]
		off++
		size, next := readULEB128(module, off)
		off = next
		content := module[off : off+int(size)]
		if id == 11 {
			// data section: count, then one active segment:
			// flags(uleb) + offset-expr(i32.const + sleb + end) + size(uleb) + bytes
			_, p := readULEB128(content, 0) // segment count
			_, p = readULEB128(content, p)  // flags
			// offset expr: 0x41 <sleb128> 0x0B
			p++ // skip 0x41
			for content[p]&0x80 != 0 {
				p++
			}
			p++ // consume final sleb byte
			p++ // skip 0x0B end opcode
			dataLen, p2 := readULEB128(content, p)
			return content[p2 : p2+int(dataLen)]
		}
		off += int(size)
	}
	t.Fatal("no data section found")
	return nil
}

func TestBuildSearchBundleWasm_RoundTripsPayload(t *testing.T) {
	payload := []byte(`[{"title":"Hello","slug":"hello"}]`)
	module := buildSearchBundleWasm(payload)

	got := findDataSectionPayload(t, module)
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: got %q want %q", got, payload)
	}
}

func TestBuildSearchBundleWasm_EmptyPayload(t *testing.T) {
	module := buildSearchBundleWasm([]byte(`[]`))
	got := findDataSectionPayload(t, module)
	if string(got) != "[]" {
		t.Fatalf("unexpected payload: %q", got)
	}
}

func TestULEB128_RoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 20}
	for _, v := range cases {
		enc := uleb128(v)
		got, _ := readULEB128(enc, 0)
		if got != v {
			t.Fatalf("uleb128(%d) round-trip got %d", v, got)
		}
	}
}

func TestSLEB128_EncodesSmallValues(t *testing.T) {
	if got := sleb128(0); len(got) != 1 || got[0] != 0x00 {
		t.Fatalf("sleb128(0) = %v, want [0x00]", got)
	}
	// -1 encodes as the single two's-complement byte 0x7F.
	if got := sleb128(-1); len(got) != 1 || got[0] != 0x7F {
		t.Fatalf("sleb128(-1) = %v, want [0x7F]", got)
	}
}
