package buildpipeline

import (
	"path/filepath"
	"slices"
	"strings"
)

var (
	sourceExtensions = []string{".ts", ".mts", ".cts"}
	scriptExtensions = []string{".js", ".mjs", ".cjs"}
)

// HasSourceExtension reports whether s ends in .ts, .mts or .cts. It works on
// URLs as well as paths and does not exclude declaration files.
func HasSourceExtension(s string) bool {
	return slices.ContainsFunc(sourceExtensions, func(ext string) bool {
		return strings.HasSuffix(s, ext)
	})
}

// IsDeclarationFile reports names like a.d.ts, a.d.mts and a.d.cts.
func IsDeclarationFile(name string) bool {
	ext := filepath.Ext(name)
	return slices.Contains(sourceExtensions, ext) && strings.HasSuffix(strings.TrimSuffix(name, ext), ".d")
}

// IsSourceFile reports a compilable source: .ts, .mts or .cts but not a
// declaration file.
func IsSourceFile(name string) bool {
	return slices.Contains(sourceExtensions, filepath.Ext(name)) && !IsDeclarationFile(name)
}

// IsScriptOutput reports whether name is a JavaScript artifact worth capturing.
func IsScriptOutput(name string) bool {
	return slices.Contains(scriptExtensions, filepath.Ext(name))
}
