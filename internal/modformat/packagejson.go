package modformat

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"tsload/internal/options"
)

type packageJSON struct {
	Type string `json:"type"`
}

// ImpliedNodeFormat is the module kind node16/nodenext assign to path: the
// extension decides for .mts/.mjs and .cts/.cjs, otherwise the "type" field of
// the nearest package.json does. A package.json that cannot be decoded counts
// as one without "type".
func ImpliedNodeFormat(path string) options.ModuleKind {
	switch filepath.Ext(path) {
	case ".mts", ".mjs":
		return options.ModuleESNext
	case ".cts", ".cjs":
		return options.ModuleCommonJS
	}
	dir := filepath.Dir(path)
	for {
		data, err := os.ReadFile(filepath.Join(dir, "package.json"))
		if err == nil {
			var pkg packageJSON
			if json.Unmarshal(data, &pkg) == nil && pkg.Type == "module" {
				return options.ModuleESNext
			}
			return options.ModuleCommonJS
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return options.ModuleCommonJS
		}
		dir = parent
	}
}
