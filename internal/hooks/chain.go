package hooks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"tsload/internal/modformat"
	"tsload/internal/options"
)

var (
	// ErrModuleNotFound is returned by the default resolver.
	ErrModuleNotFound = errors.New("module not found")
	// ErrUnknownFileExtension is returned by the default loader.
	ErrUnknownFileExtension = errors.New("unknown file extension")
	// ErrChainBroken means a hook neither short-circuited nor called next.
	ErrChainBroken = errors.New("hook did not call next or short circuit")
)

// Chain dispatches requests through registered modules. The module registered
// last runs first; the built-in resolver and loader end the chain.
type Chain struct {
	mu      sync.RWMutex
	modules []Module
}

func NewChain() *Chain { return &Chain{} }

// Register initializes m with data and adds it to the front of the chain.
func (c *Chain) Register(m Module, data []byte) error {
	if err := m.Initialize(data); err != nil {
		return fmt.Errorf("initialize hooks: %w", err)
	}
	c.mu.Lock()
	c.modules = append(c.modules, m)
	c.mu.Unlock()
	return nil
}

func (c *Chain) snapshot() []Module {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Module(nil), c.modules...)
}

// Resolve runs the resolve hooks for specifier.
func (c *Chain) Resolve(ctx context.Context, specifier string, rc ResolveContext) (ResolveResult, error) {
	mods := c.snapshot()
	var step func(i int) NextResolve
	step = func(i int) NextResolve {
		if i < 0 {
			return defaultResolve
		}
		return func(ctx context.Context, specifier string, rc ResolveContext) (ResolveResult, error) {
			called := false
			next := step(i - 1)
			res, err := mods[i].Resolve(ctx, specifier, rc, func(ctx context.Context, s string, rc ResolveContext) (ResolveResult, error) {
				called = true
				return next(ctx, s, rc)
			})
			if err == nil && !called && !res.ShortCircuit {
				return res, fmt.Errorf("resolve %q: %w", specifier, ErrChainBroken)
			}
			return res, err
		}
	}
	return step(len(mods)-1)(ctx, specifier, rc)
}

// Load runs the load hooks for url.
func (c *Chain) Load(ctx context.Context, url string, lc LoadContext) (LoadResult, error) {
	mods := c.snapshot()
	var step func(i int) NextLoad
	step = func(i int) NextLoad {
		if i < 0 {
			return defaultLoad
		}
		return func(ctx context.Context, url string, lc LoadContext) (LoadResult, error) {
			called := false
			next := step(i - 1)
			res, err := mods[i].Load(ctx, url, lc, func(ctx context.Context, u string, lc LoadContext) (LoadResult, error) {
				called = true
				return next(ctx, u, lc)
			})
			if err == nil && !called && !res.ShortCircuit {
				return res, fmt.Errorf("load %q: %w", url, ErrChainBroken)
			}
			return res, err
		}
	}
	return step(len(mods)-1)(ctx, url, lc)
}

// defaultResolve handles file: URLs, absolute paths and relative specifiers.
// node: builtins pass through untouched.
func defaultResolve(_ context.Context, specifier string, rc ResolveContext) (ResolveResult, error) {
	var file string
	switch {
	case strings.HasPrefix(specifier, "node:"):
		return ResolveResult{URL: specifier, ImportAttributes: rc.ImportAttributes}, nil
	case strings.HasPrefix(specifier, "file:"):
		p, err := FileURLToPath(specifier)
		if err != nil {
			return ResolveResult{}, err
		}
		file = p
	case filepath.IsAbs(specifier):
		file = specifier
	case strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../"):
		if rc.ParentURL == "" {
			file = specifier
			break
		}
		parent, err := FileURLToPath(rc.ParentURL)
		if err != nil {
			return ResolveResult{}, fmt.Errorf("resolve %q: %w", specifier, err)
		}
		file = filepath.Join(filepath.Dir(parent), filepath.FromSlash(path.Clean(specifier)))
	default:
		return ResolveResult{}, fmt.Errorf("cannot find package %q imported from %s: %w", specifier, rc.ParentURL, ErrModuleNotFound)
	}

	if _, err := os.Stat(file); err != nil {
		return ResolveResult{}, fmt.Errorf("cannot find module %q: %w", file, ErrModuleNotFound)
	}
	format, _ := formatFromExtension(file)
	return ResolveResult{URL: PathToFileURL(file), Format: format, ImportAttributes: rc.ImportAttributes}, nil
}

// defaultLoad reads plain JavaScript from disk.
func defaultLoad(_ context.Context, url string, lc LoadContext) (LoadResult, error) {
	file, err := FileURLToPath(url)
	if err != nil {
		return LoadResult{}, err
	}
	format := lc.Format
	if format == "" {
		f, ok := formatFromExtension(file)
		if !ok {
			return LoadResult{}, fmt.Errorf("%w %q for %s", ErrUnknownFileExtension, filepath.Ext(file), file)
		}
		format = f
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return LoadResult{}, err
	}
	Logger().Debug("default load", zap.String("file", file), zap.String("format", format.String()))
	return LoadResult{Source: string(data), Format: format}, nil
}

func formatFromExtension(file string) (modformat.Format, bool) {
	switch filepath.Ext(file) {
	case ".mjs":
		return modformat.Module, true
	case ".cjs":
		return modformat.CommonJS, true
	case ".js":
		if modformat.ImpliedNodeFormat(file) == options.ModuleESNext {
			return modformat.Module, true
		}
		return modformat.CommonJS, true
	}
	return "", false
}
