package hooks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"tsload/internal/buildpipeline"
	"tsload/internal/engine"
)

// ErrNotInitialized is returned when hooks run before Initialize.
var ErrNotInitialized = errors.New("tsload hooks used before initialization")

// Loader compiles .ts, .mts and .cts modules on demand. Its options arrive
// once through Initialize and never change afterwards.
type Loader struct {
	engine engine.Engine
	popts  []buildpipeline.PipelineOption

	mu       sync.RWMutex
	pipeline *buildpipeline.Pipeline
}

var _ Module = (*Loader)(nil)

// NewLoader returns uninitialized hooks backed by eng.
func NewLoader(eng engine.Engine, popts ...buildpipeline.PipelineOption) *Loader {
	return &Loader{engine: eng, popts: popts}
}

// Initialize decodes the msgpack options payload. Empty data means defaults.
func (l *Loader) Initialize(data []byte) error {
	var opts buildpipeline.Options
	if len(data) > 0 {
		if err := msgpack.Unmarshal(data, &opts); err != nil {
			return fmt.Errorf("decode loader options: %w", err)
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pipeline != nil {
		return errors.New("tsload hooks already initialized")
	}
	l.pipeline = buildpipeline.New(l.engine, opts, l.popts...)
	Logger().Debug("hooks initialized", zap.Bool("check", opts.CheckEnabled()), zap.String("defaults", opts.Defaults))
	return nil
}

// Options reports the decoded options; false before Initialize.
func (l *Loader) Options() (buildpipeline.Options, bool) {
	p, err := l.current()
	if err != nil {
		return buildpipeline.Options{}, false
	}
	return p.Options(), true
}

func (l *Loader) current() (*buildpipeline.Pipeline, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.pipeline == nil {
		return nil, ErrNotInitialized
	}
	return l.pipeline, nil
}

// Resolve claims imports made from TypeScript files and answers them with a
// TypeScript source when the engine finds one.
func (l *Loader) Resolve(ctx context.Context, specifier string, rc ResolveContext, next NextResolve) (ResolveResult, error) {
	if !strings.HasPrefix(rc.ParentURL, "file:") || !buildpipeline.HasSourceExtension(rc.ParentURL) {
		return next(ctx, specifier, rc)
	}
	p, err := l.current()
	if err != nil {
		return ResolveResult{}, err
	}

	name := specifier
	if strings.HasPrefix(specifier, "file:") {
		if name, err = FileURLToPath(specifier); err != nil {
			return ResolveResult{}, err
		}
	}
	parent, err := FileURLToPath(rc.ParentURL)
	if err != nil {
		return ResolveResult{}, err
	}

	resolved, ok := p.Resolve(ctx, name, parent)
	if !ok {
		return next(ctx, specifier, rc)
	}
	return ResolveResult{
		URL:              PathToFileURL(resolved),
		ImportAttributes: rc.ImportAttributes,
		ShortCircuit:     true,
	}, nil
}

// Load compiles file: URLs ending in .ts, .mts or .cts.
func (l *Loader) Load(ctx context.Context, url string, lc LoadContext, next NextLoad) (LoadResult, error) {
	if !strings.HasPrefix(url, "file:") || !buildpipeline.HasSourceExtension(url) {
		return next(ctx, url, lc)
	}
	p, err := l.current()
	if err != nil {
		return LoadResult{}, err
	}
	file, err := FileURLToPath(url)
	if err != nil {
		return LoadResult{}, err
	}
	out, err := p.Compile(ctx, file, lc.Format)
	if err != nil {
		return LoadResult{}, err
	}
	return LoadResult{Source: out.Source, Format: out.Format, ShortCircuit: true}, nil
}
