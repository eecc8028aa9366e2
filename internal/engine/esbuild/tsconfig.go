package esbuild

import (
	"github.com/goccy/go-json"

	"tsload/internal/options"
)

// transformKeys are the compilerOptions esbuild reads from a raw tsconfig.
var transformKeys = []string{
	"alwaysStrict",
	"baseUrl",
	"experimentalDecorators",
	"importsNotUsedAsValues",
	"jsx",
	"jsxFactory",
	"jsxFragmentFactory",
	"jsxImportSource",
	"paths",
	"preserveValueImports",
	"strict",
	"target",
	"useDefineForClassFields",
	"verbatimModuleSyntax",
}

func tsconfigRaw(opts *options.CompilerOptions) (string, error) {
	all, err := opts.ToMap()
	if err != nil {
		return "", err
	}
	subset := make(map[string]any, len(transformKeys))
	for _, k := range transformKeys {
		if v, ok := all[k]; ok {
			subset[k] = v
		}
	}
	data, err := json.Marshal(map[string]any{"compilerOptions": subset})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
