package buildpipeline

import (
	"sync"

	"tsload/internal/engine"
	"tsload/internal/modformat"
	"tsload/internal/options"
)

// outputSink accepts at most one JavaScript artifact per compile. Other
// writes (declarations, maps) are dropped.
type outputSink struct {
	file       string
	configPath string
	opts       *options.CompilerOptions
	hint       modformat.Format

	mu       sync.Mutex
	captured *CompileOutput
}

var _ engine.ArtifactWriter = (*outputSink)(nil)

func newOutputSink(file, configPath string, opts *options.CompilerOptions, hint modformat.Format) *outputSink {
	return &outputSink{file: file, configPath: configPath, opts: opts, hint: hint}
}

func (s *outputSink) WriteFile(name string, data []byte, sources []*engine.SourceFile) error {
	if !IsScriptOutput(name) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.captured != nil {
		return &Error{Kind: KindMultipleOutputs, File: s.file, ConfigPath: s.configPath}
	}
	s.captured = &CompileOutput{Source: string(data), Format: s.format(sources)}
	return nil
}

// format prefers per-file inference, then the caller's hint, then commonjs.
func (s *outputSink) format(sources []*engine.SourceFile) modformat.Format {
	src := &engine.SourceFile{FileName: s.file}
	if len(sources) > 0 && sources[0] != nil {
		src = sources[0]
	}
	if f, ok := modformat.Infer(src, s.opts); ok {
		return f
	}
	if s.hint != "" {
		return s.hint
	}
	return modformat.CommonJS
}

func (s *outputSink) output() (CompileOutput, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.captured == nil {
		return CompileOutput{}, false
	}
	return *s.captured, true
}
