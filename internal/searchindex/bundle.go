package searchindex

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BundleDirName is the asset directory the emitted search bundle lives
// under.
const BundleDirName = "thought-search"

// bundleRecord is one entry of the JSON payload spliced into the
// emitted wasm module's data section.
type bundleRecord struct {
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	Category      string `json:"category"`
	Description   string `json:"description"`
	Permalink     string `json:"permalink"`
	Locale        string `json:"locale"`
	DefaultLocale string `json:"default_locale"`
}

// EmitBundle marshals docs into the bundle's JSON payload, assembles
// the wasm module and its JavaScript shim, and writes both under
// <outputDir>/assets/thought-search/.
func EmitBundle(outputDir string, docs []SourceDoc) error {
	records := make([]bundleRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, bundleRecord{
			Title:         d.Title,
			Slug:          d.Slug,
			Category:      strings.Join(d.CategorySegs, "/"),
			Description:   d.Description,
			Permalink:     d.Permalink,
			Locale:        d.Locale,
			DefaultLocale: d.DefaultLocale,
		})
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal search bundle payload: %w", err)
	}

	bundleDir := filepath.Join(outputDir, "assets", BundleDirName)
	if err := os.MkdirAll(bundleDir, 0o755); err != nil {
		return err
	}

	wasmBytes := buildSearchBundleWasm(payload)
	if err := os.WriteFile(filepath.Join(bundleDir, "thought-search.wasm"), wasmBytes, 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(bundleDir, "thought-search.js"), []byte(searchShimJS), 0o644); err != nil {
		return err
	}
	return nil
}

// searchShimJS is the small client-side loader: instantiate the
// module, read its memory window, decode the JSON payload, and
// perform client-side substring search.
const searchShimJS = `// thought-search.js: loads thought-search.wasm and performs
// client-side substring search over its embedded article records.
(function () {
  async function loadRecords() {
    const resp = await fetch("thought-search.wasm");
    const bytes = await resp.arrayBuffer();
    const { instance } = await WebAssembly.instantiate(bytes, {});
    const ptr = instance.exports.thought_search_data_ptr();
    const len = instance.exports.thought_search_data_len();
    const memory = instance.exports.memory;
    const view = new Uint8Array(memory.buffer, ptr, len);
    const json = new TextDecoder("utf-8").decode(view);
    return JSON.parse(json);
  }

  function search(records, query) {
    const needle = query.trim().toLowerCase();
    if (!needle) return [];
    return records.filter((r) =>
      r.title.toLowerCase().includes(needle) ||
      r.description.toLowerCase().includes(needle)
    );
  }

  window.thoughtSearch = { loadRecords, search };
})();
`
