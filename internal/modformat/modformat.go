// Package modformat decides whether compiled output runs as an ES module or
// as a CommonJS script.
package modformat

import (
	"fmt"
	"path/filepath"

	"tsload/internal/engine"
	"tsload/internal/options"
)

// Format is the module format handed back to the host loader.
type Format string

const (
	Module   Format = "module"
	CommonJS Format = "commonjs"
)

func (f Format) String() string { return string(f) }

// Parse accepts the host's format names. The empty string yields ("", nil).
func Parse(s string) (Format, error) {
	switch Format(s) {
	case "":
		return "", nil
	case Module, CommonJS:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown module format %q", s)
}

// Infer returns the format of file's output under opts. The boolean is false
// when the options leave it undecided and the caller has to fall back.
func Infer(file *engine.SourceFile, opts *options.CompilerOptions) (Format, bool) {
	if opts.Module == nil {
		return "", false
	}
	mod := *opts.Module
	switch {
	case mod.IsES():
		return Module, true
	case mod == options.ModuleCommonJS:
		return CommonJS, true
	case mod.IsNode():
		if file.ImpliedFormat != nil {
			return fromKind(*file.ImpliedFormat)
		}
		switch filepath.Ext(file.FileName) {
		case ".mts":
			return Module, true
		case ".cts":
			return CommonJS, true
		}
	}
	return "", false
}

func fromKind(k options.ModuleKind) (Format, bool) {
	switch {
	case k.IsES():
		return Module, true
	case k == options.ModuleCommonJS:
		return CommonJS, true
	}
	return "", false
}
