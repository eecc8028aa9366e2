// Package project reads tsconfig files and finds the one governing a source file.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"github.com/tailscale/hujson"

	"tsload/internal/diag"
	"tsload/internal/options"
)

// ConfigFileName is looked up in every ancestor directory.
const ConfigFileName = "tsconfig.json"

// Reference points at another project this one depends on.
type Reference struct {
	// Path is the absolute path of the referenced tsconfig file.
	Path    string
	Prepend bool
}

// Config is a parsed project configuration. It is built per call and never
// mutated afterwards.
type Config struct {
	Path       string
	Options    *options.CompilerOptions
	FileNames  []string
	References []Reference
	// Errors holds recoverable problems; the config is still usable.
	Errors []diag.Diagnostic
}

// Dir is the directory holding the config file.
func (c *Config) Dir() string {
	return filepath.Dir(c.Path)
}

// Contains reports whether file is a member after canonicalisation.
func (c *Config) Contains(file string) bool {
	return slices.Contains(c.FileNames, Canonical(file))
}

type rawConfig struct {
	Extends         any            `json:"extends"`
	CompilerOptions map[string]any `json:"compilerOptions"`
	Files           *[]string      `json:"files"`
	Include         *[]string      `json:"include"`
	Exclude         *[]string      `json:"exclude"`
	References      []rawReference `json:"references"`
}

type rawReference struct {
	Path    string `json:"path"`
	Prepend bool   `json:"prepend"`
}

type patternSet struct {
	patterns []string
	// dir is the directory of the config that declared the patterns.
	dir string
}

// layer is one config file with its extends chain already applied.
type layer struct {
	options *options.CompilerOptions
	files   *patternSet
	include *patternSet
	exclude *patternSet
	refs    []Reference
}

// Parse reads the config at path. A non-nil error means the file is unusable
// (missing, unreadable, malformed, circular extends); everything else ends up
// in Config.Errors.
func Parse(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	bag := diag.NewBag()
	report := diag.ReporterFunc(func(d diag.Diagnostic) {
		if d.File == "" {
			d.File = abs
		}
		bag.Add(d)
	})

	top, err := loadLayer(abs, nil, report)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Path:       abs,
		Options:    top.options,
		References: top.refs,
	}
	cfg.FileNames = matchFiles(top, abs, report)
	cfg.Errors = bag.Items()
	return cfg, nil
}

func loadLayer(path string, chain []string, report diag.Reporter) (*layer, error) {
	if slices.Contains(chain, path) {
		return nil, fmt.Errorf("circularity detected while resolving configuration: %s",
			strings.Join(append(chain, path), " -> "))
	}
	raw, err := readRaw(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)

	out := &layer{options: &options.CompilerOptions{}}
	bases, err := extendsList(raw.Extends)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, spec := range bases {
		basePath, ok := resolveExtends(spec, dir)
		if !ok {
			report.Report(diag.Errorf(diag.CfgFileNotFound, "File '%s' not found.", spec))
			continue
		}
		base, err := loadLayer(basePath, append(chain, path), report)
		if err != nil {
			return nil, err
		}
		out.options.Merge(base.options)
		if base.files != nil {
			out.files = base.files
		}
		if base.include != nil {
			out.include = base.include
		}
		if base.exclude != nil {
			out.exclude = base.exclude
		}
	}

	out.options.Merge(options.FromMap(raw.CompilerOptions, dir, report))
	if raw.Files != nil {
		out.files = &patternSet{patterns: *raw.Files, dir: dir}
	}
	if raw.Include != nil {
		out.include = &patternSet{patterns: *raw.Include, dir: dir}
	}
	if raw.Exclude != nil {
		out.exclude = &patternSet{patterns: *raw.Exclude, dir: dir}
	}
	for _, ref := range raw.References {
		if ref.Path == "" {
			continue
		}
		out.refs = append(out.refs, Reference{Path: referencePath(ref.Path, dir), Prepend: ref.Prepend})
	}
	return out, nil
}

func readRaw(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse JSON: %w", path, err)
	}
	var raw rawConfig
	if err := json.Unmarshal(std, &raw); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", path, err)
	}
	return &raw, nil
}

func extendsList(v any) ([]string, error) {
	switch ext := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{ext}, nil
	case []any:
		out := make([]string, 0, len(ext))
		for _, item := range ext {
			s, ok := item.(string)
			if !ok {
				return nil, errors.New("'extends' entries must be strings")
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, errors.New("'extends' must be a string or an array of strings")
}

// resolveExtends handles relative/absolute paths and packages in node_modules.
func resolveExtends(spec, dir string) (string, bool) {
	if filepath.IsAbs(spec) || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") ||
		spec == "." || spec == ".." {
		p := spec
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		if isFile(p) {
			return p, true
		}
		if !strings.HasSuffix(p, ".json") && isFile(p+".json") {
			return p + ".json", true
		}
		return "", false
	}
	for d := dir; ; {
		base := filepath.Join(d, "node_modules", filepath.FromSlash(spec))
		for _, candidate := range []string{base, base + ".json", filepath.Join(base, ConfigFileName)} {
			if isFile(candidate) {
				return candidate, true
			}
		}
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}
	return "", false
}

func referencePath(p, dir string) string {
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	if !strings.HasSuffix(p, ".json") {
		p = filepath.Join(p, ConfigFileName)
	}
	return filepath.Clean(p)
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// Canonical returns the absolute, symlink-free form of p. Paths that do not
// exist are only cleaned.
func Canonical(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}
