package buildpipeline

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"tsload/internal/diag"
	"tsload/internal/engine"
	"tsload/internal/options"
	"tsload/internal/project"
)

// fakeEngine emits canned artifacts and diagnostics and records what the
// pipeline asked of it.
type fakeEngine struct {
	// outputs are extensions (".js", ".d.ts", ...) written next to the root.
	outputs   []string
	emitDiags []diag.Diagnostic
	preDiags  []diag.Diagnostic
	implied   *options.ModuleKind

	resolution engine.Resolution
	resolveOK  bool
	buildErr   error

	mu          sync.Mutex
	lastRequest engine.ProgramRequest
	lastResolve *options.CompilerOptions
	built       []string
}

type fakeProgram struct {
	eng *fakeEngine
	req engine.ProgramRequest
}

func (e *fakeEngine) NewProgram(_ context.Context, req engine.ProgramRequest) (engine.Program, error) {
	e.mu.Lock()
	e.lastRequest = req
	e.mu.Unlock()
	return &fakeProgram{eng: e, req: req}, nil
}

func (e *fakeEngine) ResolveModule(_ context.Context, _, _ string, opts *options.CompilerOptions) (engine.Resolution, bool) {
	e.mu.Lock()
	e.lastResolve = opts
	e.mu.Unlock()
	return e.resolution, e.resolveOK
}

func (e *fakeEngine) BuildProject(_ context.Context, cfg *project.Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.built = append(e.built, cfg.Path)
	return e.buildErr
}

func (p *fakeProgram) SourceFile(name string) (*engine.SourceFile, bool) {
	return &engine.SourceFile{FileName: name, Text: "export {};", ImpliedFormat: p.eng.implied}, true
}

func (p *fakeProgram) Emit(_ context.Context, file *engine.SourceFile) ([]diag.Diagnostic, error) {
	base := strings.TrimSuffix(file.FileName, filepath.Ext(file.FileName))
	for i, ext := range p.eng.outputs {
		content := "// output " + ext
		if i > 0 {
			content += " #" + string(rune('0'+i))
		}
		if err := p.req.Writer.WriteFile(base+ext, []byte(content), []*engine.SourceFile{file}); err != nil {
			return p.eng.emitDiags, err
		}
	}
	return p.eng.emitDiags, nil
}

func (p *fakeProgram) PreEmitDiagnostics(context.Context, *engine.SourceFile) []diag.Diagnostic {
	out := append([]diag.Diagnostic(nil), p.req.ConfigDiagnostics...)
	return append(out, p.eng.preDiags...)
}
