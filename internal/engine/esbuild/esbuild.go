// Package esbuild implements engine.Engine on top of esbuild's Go API.
//
// esbuild strips types instead of checking them, so pre-emit diagnostics are
// limited to config and option problems.
package esbuild

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.uber.org/zap"

	"tsload/internal/diag"
	"tsload/internal/engine"
	"tsload/internal/modformat"
	"tsload/internal/options"
)

// Engine is stateless; one value can serve concurrent requests.
type Engine struct{}

// New returns the esbuild engine.
func New() *Engine { return &Engine{} }

var _ engine.Engine = (*Engine)(nil)

type program struct {
	req     engine.ProgramRequest
	files   map[string]*engine.SourceFile
	missing []diag.Diagnostic
}

// NewProgram reads the root files. Roots that cannot be read become program
// diagnostics rather than an error, matching a compiler that reports missing
// inputs.
func (e *Engine) NewProgram(ctx context.Context, req engine.ProgramRequest) (engine.Program, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Options == nil {
		return nil, errors.New("esbuild: program options are required")
	}
	p := &program{req: req, files: make(map[string]*engine.SourceFile, len(req.RootNames))}
	nodeFormats := req.Options.EffectiveModule().IsNode()
	for _, name := range req.RootNames {
		data, err := os.ReadFile(name)
		if err != nil {
			p.missing = append(p.missing, diag.Errorf(diag.CfgFileNotFound, "File '%s' not found.", name))
			continue
		}
		sf := &engine.SourceFile{FileName: name, Text: string(data)}
		if nodeFormats {
			sf.ImpliedFormat = options.Ptr(modformat.ImpliedNodeFormat(name))
		}
		p.files[name] = sf
	}
	return p, nil
}

func (p *program) SourceFile(name string) (*engine.SourceFile, bool) {
	sf, ok := p.files[name]
	return sf, ok
}

func (p *program) PreEmitDiagnostics(_ context.Context, _ *engine.SourceFile) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(p.req.ConfigDiagnostics)+len(p.missing))
	out = append(out, p.req.ConfigDiagnostics...)
	out = append(out, p.missing...)
	return append(out, options.Validate(p.req.Options)...)
}

// Emit transpiles one file. A nil file emits nothing.
func (p *program) Emit(ctx context.Context, file *engine.SourceFile) ([]diag.Diagnostic, error) {
	if file == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := p.req.Options

	format, err := outputFormat(file, opts)
	if err != nil {
		return []diag.Diagnostic{diag.Errorf(diag.UnknownCode, "%s", err.Error()).InFile(file.FileName)}, nil
	}
	raw, err := tsconfigRaw(opts)
	if err != nil {
		return nil, fmt.Errorf("esbuild: encode tsconfig: %w", err)
	}

	res := api.Transform(file.Text, api.TransformOptions{
		Loader:      loaderFor(file.FileName),
		Format:      format,
		Target:      target(opts.EffectiveTarget()),
		Platform:    api.PlatformNode,
		Sourcemap:   api.SourceMapInline,
		Sourcefile:  file.FileName,
		TsconfigRaw: raw,
		LogLevel:    api.LogLevelSilent,
	})

	diags := make([]diag.Diagnostic, 0, len(res.Errors)+len(res.Warnings))
	diags = appendMessages(diags, res.Errors, diag.CategoryError, file.FileName)
	diags = appendMessages(diags, res.Warnings, diag.CategoryWarning, file.FileName)
	if len(res.Errors) > 0 {
		Logger().Debug("transform failed", zap.String("file", file.FileName), zap.Int("errors", len(res.Errors)))
		return diags, nil
	}

	if p.req.Writer != nil {
		if err := p.req.Writer.WriteFile(OutputName(file.FileName), res.Code, []*engine.SourceFile{file}); err != nil {
			return diags, err
		}
	}
	return diags, nil
}

// OutputName maps a source file name to the JavaScript file it compiles to.
func OutputName(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	switch ext {
	case ".mts":
		return base + ".mjs"
	case ".cts":
		return base + ".cjs"
	}
	return base + ".js"
}

func loaderFor(name string) api.Loader {
	if filepath.Ext(name) == ".tsx" {
		return api.LoaderTSX
	}
	return api.LoaderTS
}

func outputFormat(file *engine.SourceFile, opts *options.CompilerOptions) (api.Format, error) {
	mod := opts.EffectiveModule()
	switch {
	case mod == options.ModulePreserve || mod == options.ModuleNone:
		return api.FormatDefault, nil
	case mod.IsES():
		return api.FormatESModule, nil
	case mod == options.ModuleCommonJS:
		return api.FormatCommonJS, nil
	case mod.IsNode():
		if f, ok := modformat.Infer(file, &options.CompilerOptions{Module: options.Ptr(mod)}); ok && f == modformat.Module {
			return api.FormatESModule, nil
		}
		return api.FormatCommonJS, nil
	}
	return api.FormatDefault, fmt.Errorf("module kind '%s' is not supported by this engine", strings.ToLower(mod.String()))
}

func target(t options.ScriptTarget) api.Target {
	switch t {
	case options.TargetES3, options.TargetES5:
		return api.ES5
	case options.TargetES2015:
		return api.ES2015
	case options.TargetES2016:
		return api.ES2016
	case options.TargetES2017:
		return api.ES2017
	case options.TargetES2018:
		return api.ES2018
	case options.TargetES2019:
		return api.ES2019
	case options.TargetES2020:
		return api.ES2020
	case options.TargetES2021:
		return api.ES2021
	case options.TargetES2022:
		return api.ES2022
	case options.TargetES2023:
		return api.ES2023
	case options.TargetES2024:
		return api.ES2024
	}
	return api.ESNext
}

func appendMessages(out []diag.Diagnostic, msgs []api.Message, cat diag.Category, file string) []diag.Diagnostic {
	for _, m := range msgs {
		d := diag.Diagnostic{Category: cat, Message: m.Text, File: file}
		if loc := m.Location; loc != nil {
			if loc.File != "" && loc.File != "<stdin>" {
				d.File = loc.File
			}
			d.Line = loc.Line
			d.Column = loc.Column + 1
			d.Length = loc.Length
			d.LineText = loc.LineText
		}
		out = append(out, d)
	}
	return out
}
