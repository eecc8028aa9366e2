// Package engine describes the compiler the loader drives. The loader never
// type-checks or generates code itself; it builds a Program per request and
// asks it to emit exactly one file.
package engine

import (
	"context"

	"tsload/internal/diag"
	"tsload/internal/options"
	"tsload/internal/project"
)

// SourceFile is a root file as the engine sees it.
type SourceFile struct {
	FileName string
	Text     string
	// ImpliedFormat is set under node16/nodenext, where each file carries its
	// own module kind. Nil means the engine did not decide.
	ImpliedFormat *options.ModuleKind
}

// ArtifactWriter receives every file the engine wants to write while emitting.
// Returning an error aborts the emit.
type ArtifactWriter interface {
	WriteFile(name string, data []byte, sources []*SourceFile) error
}

// WriterFunc adapts a function to ArtifactWriter.
type WriterFunc func(name string, data []byte, sources []*SourceFile) error

func (f WriterFunc) WriteFile(name string, data []byte, sources []*SourceFile) error {
	return f(name, data, sources)
}

// ProgramRequest is everything needed to construct an isolated compilation unit.
type ProgramRequest struct {
	RootNames  []string
	Options    *options.CompilerOptions
	References []project.Reference
	// ConfigDiagnostics are recoverable config errors, surfaced as pre-emit
	// diagnostics.
	ConfigDiagnostics []diag.Diagnostic
	Writer            ArtifactWriter
}

// Program is one compilation unit.
type Program interface {
	SourceFile(name string) (*SourceFile, bool)
	// Emit writes the outputs of file through the request's writer. Emit
	// diagnostics come back in the slice; the error is reserved for writer
	// failures and engine breakdowns.
	Emit(ctx context.Context, file *SourceFile) ([]diag.Diagnostic, error)
	PreEmitDiagnostics(ctx context.Context, file *SourceFile) []diag.Diagnostic
}

// Resolution is the engine's answer for one module specifier.
type Resolution struct {
	ResolvedFileName        string
	Extension               string
	IsExternalLibraryImport bool
}

// Engine is the compiler backend.
type Engine interface {
	NewProgram(ctx context.Context, req ProgramRequest) (Program, error)
	ResolveModule(ctx context.Context, name, containingFile string, opts *options.CompilerOptions) (Resolution, bool)
	// BuildProject writes the outputs of cfg to disk.
	BuildProject(ctx context.Context, cfg *project.Config) error
}
