// Package buildpipeline compiles one TypeScript file at a time into exactly one
// JavaScript module, and resolves specifiers the way that compile would.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tsload/internal/diag"
	"tsload/internal/engine"
	"tsload/internal/modformat"
	"tsload/internal/options"
	"tsload/internal/project"
)

// CompileOutput is the single artifact of a successful compile.
type CompileOutput struct {
	Source string
	Format modformat.Format
}

// Pipeline holds the options fixed at registration. Every call re-reads
// configuration from disk; nothing is cached between calls.
type Pipeline struct {
	engine   engine.Engine
	opts     Options
	progress ProgressSink
	builds   *singleflight.Group
}

// PipelineOption customises a Pipeline.
type PipelineOption func(*Pipeline)

// WithProgress sends stage events to sink.
func WithProgress(sink ProgressSink) PipelineOption {
	return func(p *Pipeline) { p.progress = sink }
}

// New creates a pipeline around eng.
func New(eng engine.Engine, opts Options, popts ...PipelineOption) *Pipeline {
	p := &Pipeline{engine: eng, opts: opts, builds: &singleflight.Group{}}
	for _, o := range popts {
		o(p)
	}
	return p
}

// Options returns the loader options the pipeline was created with.
func (p *Pipeline) Options() Options { return p.opts }

type governing struct {
	configPath string
	options    *options.CompilerOptions
	cfg        *project.Config
}

// lookup finds the config for file and normalizes its options; without a
// config the built-in defaults apply.
func (p *Pipeline) lookup(file string, check bool) governing {
	cfg, ok := project.Find(file, p.opts.Defaults)
	if !ok {
		return governing{options: options.Normalize(options.Defaults(), check)}
	}
	return governing{configPath: cfg.Path, options: options.Normalize(cfg.Options, check), cfg: cfg}
}

// Compile transpiles file. hint is the format the host asked for and is used
// only when the options do not decide it.
func (p *Pipeline) Compile(ctx context.Context, file string, hint modformat.Format) (CompileOutput, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return CompileOutput{}, fmt.Errorf("failed to resolve %q: %w", file, err)
	}
	check := p.opts.CheckEnabled()

	st := beginStage(p.progress, abs, StageConfig)
	gov := p.lookup(abs, check)
	st.finish(nil)
	Logger().Debug("compiling",
		zap.String("file", abs),
		zap.String("config", gov.configPath),
		zap.Bool("check", check))

	var (
		configDiags []diag.Diagnostic
		references  []project.Reference
		refFailures []diag.Diagnostic
	)
	if gov.cfg != nil {
		configDiags = slices.Clone(gov.cfg.Errors)
		references = gov.cfg.References
	}
	if len(references) > 0 {
		st = beginStage(p.progress, abs, StageReferences)
		refDiags, failed, err := p.buildReferences(ctx, gov.cfg)
		st.finish(err)
		if err != nil {
			return CompileOutput{}, err
		}
		configDiags = append(configDiags, refDiags...)
		refFailures = failed
	}

	sink := newOutputSink(abs, gov.configPath, gov.options, hint)
	st = beginStage(p.progress, abs, StageProgram)
	prog, err := p.engine.NewProgram(ctx, engine.ProgramRequest{
		RootNames:         []string{abs},
		Options:           gov.options,
		References:        references,
		ConfigDiagnostics: configDiags,
		Writer:            sink,
	})
	st.finish(err)
	if err != nil {
		return CompileOutput{}, fmt.Errorf("failed to create program for %s: %w", abs, err)
	}
	source, _ := prog.SourceFile(abs)

	st = beginStage(p.progress, abs, StageEmit)
	diags, err := prog.Emit(ctx, source)
	st.finish(err)
	if err != nil {
		var perr *Error
		if errors.As(err, &perr) {
			return CompileOutput{}, perr
		}
		return CompileOutput{}, fmt.Errorf("failed to emit %s: %w", abs, err)
	}

	st = beginStage(p.progress, abs, StageDiagnose)
	diags = append(refFailures, diags...)
	if check {
		diags = append(prog.PreEmitDiagnostics(ctx, source), diags...)
	}
	errs := blockingDiagnostics(diags)
	if len(errs) > 0 {
		err := &Error{Kind: KindCompilation, File: abs, ConfigPath: gov.configPath, Diagnostics: errs}
		st.finish(err)
		return CompileOutput{}, err
	}
	out, ok := sink.output()
	if !ok {
		err := &Error{Kind: KindNoOutput, File: abs, ConfigPath: gov.configPath}
		st.finish(err)
		return CompileOutput{}, err
	}
	st.finish(nil)
	return out, nil
}

// blockingDiagnostics keeps errors, minus the allowImportingTsExtensions
// complaint that single-file emit always triggers.
func blockingDiagnostics(diags []diag.Diagnostic) []diag.Diagnostic {
	bag := diag.NewBag()
	bag.AddAll(diags)
	return bag.Filter(func(d diag.Diagnostic) bool {
		return d.IsError() && d.Code != diag.OptImportingTSExtensionsWithEmit
	}).Items()
}

// Resolve maps name, imported from parent, to a TypeScript source file. The
// boolean is false when the engine found nothing or found something other
// than a .ts, .mts or .cts source; the caller should then fall back.
func (p *Pipeline) Resolve(ctx context.Context, name, parent string) (string, bool) {
	abs, err := filepath.Abs(parent)
	if err != nil {
		return "", false
	}
	st := beginStage(p.progress, abs, StageResolve)
	defer st.finish(nil)

	gov := p.lookup(abs, false)
	res, ok := p.engine.ResolveModule(ctx, name, abs, gov.options)
	if !ok || !IsSourceFile(res.ResolvedFileName) {
		Logger().Debug("resolve declined", zap.String("specifier", name), zap.String("parent", abs), zap.String("found", res.ResolvedFileName))
		return "", false
	}
	return res.ResolvedFileName, true
}
