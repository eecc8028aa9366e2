package project

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"tsload/internal/diag"
	"tsload/internal/options"
)

// SupportedExtensions are the source extensions a config can own.
var SupportedExtensions = []string{".ts", ".tsx", ".mts", ".cts"}

var defaultExcludes = []string{"node_modules", "bower_components", "jspm_packages"}

func hasSupportedExtension(p string) bool {
	return slices.Contains(SupportedExtensions, filepath.Ext(p))
}

// matchFiles expands files/include/exclude into canonical member paths:
// explicit files first, then include matches in walk order.
func matchFiles(l *layer, configPath string, report diag.Reporter) []string {
	configDir := filepath.Dir(configPath)
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		c := Canonical(p)
		if _, dup := seen[c]; dup {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	if l.files != nil {
		for _, f := range l.files.patterns {
			p := absPattern(l.files.dir, f)
			if !isFile(p) {
				report.Report(diag.Errorf(diag.CfgFileNotFound, "File '%s' not found.", p))
				continue
			}
			add(p)
		}
	}

	include := l.include
	if include == nil && l.files == nil {
		include = &patternSet{patterns: []string{"**/*"}, dir: configDir}
	}

	var excludes []string
	if l.exclude != nil {
		for _, pat := range l.exclude.patterns {
			excludes = append(excludes, absPattern(l.exclude.dir, pat))
		}
	} else {
		for _, d := range defaultExcludes {
			excludes = append(excludes, filepath.Join(configDir, d))
		}
		if outDir := options.Str(l.options.OutDir); outDir != "" {
			excludes = append(excludes, outDir)
		}
	}

	if include != nil {
		for _, pat := range include.patterns {
			for _, p := range walkPattern(absPattern(include.dir, pat), excludes) {
				add(p)
			}
		}
	}

	if len(out) == 0 {
		var inc, exc []string
		if include != nil {
			inc = include.patterns
		}
		if l.exclude != nil {
			exc = l.exclude.patterns
		} else {
			exc = defaultExcludes
		}
		report.Report(diag.Errorf(diag.CfgNoInputs,
			"No inputs were found in config file '%s'. Specified 'include' paths were '[%s]' and 'exclude' paths were '[%s]'.",
			configPath, quoteList(inc), quoteList(exc)))
	}
	return out
}

func absPattern(dir, pat string) string {
	p := filepath.FromSlash(pat)
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	return filepath.Clean(p)
}

// walkPattern returns the files matching pattern, pruning excluded directories.
// A pattern without wildcards or extension names a directory. Symlinked
// directories are followed; each real directory is visited once.
func walkPattern(pattern string, excludes []string) []string {
	slashed := filepath.ToSlash(pattern)
	if !strings.ContainsAny(slashed, "*?[{") && filepath.Ext(slashed) == "" {
		slashed += "/**/*"
	}
	base, _ := doublestar.SplitPattern(slashed)
	w := &walker{
		pattern:  filepath.FromSlash(slashed),
		excludes: excludes,
		visited:  make(map[string]struct{}),
	}
	w.dir(filepath.FromSlash(base))
	return w.out
}

type walker struct {
	pattern  string
	excludes []string
	// visited holds real directory paths.
	visited map[string]struct{}
	out     []string
}

// dir scans p in name order. Paths are reported as reached, so that they
// match the pattern; callers canonicalize them.
func (w *walker) dir(p string) {
	real, err := filepath.EvalSymlinks(p)
	if err != nil {
		return
	}
	if _, seen := w.visited[real]; seen {
		return
	}
	w.visited[real] = struct{}{}

	entries, err := os.ReadDir(p)
	if err != nil {
		return
	}
	for _, e := range entries {
		child := filepath.Join(p, e.Name())
		isDir := e.IsDir()
		if e.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(child)
			if err != nil {
				Logger().Debug("skipping dangling symlink", zap.String("path", child))
				continue
			}
			isDir = info.IsDir()
		}
		if isDir {
			if strings.HasPrefix(e.Name(), ".") || excluded(child, w.excludes) {
				continue
			}
			w.dir(child)
			continue
		}
		if !hasSupportedExtension(child) || excluded(child, w.excludes) {
			continue
		}
		if ok, _ := doublestar.PathMatch(w.pattern, child); ok {
			w.out = append(w.out, child)
		}
	}
}

func excluded(p string, excludes []string) bool {
	for _, ex := range excludes {
		if ok, _ := doublestar.PathMatch(ex, p); ok {
			return true
		}
		if ok, _ := doublestar.PathMatch(ex+string(filepath.Separator)+"**", p); ok {
			return true
		}
	}
	return false
}

func quoteList(items []string) string {
	q := make([]string, len(items))
	for i, s := range items {
		q[i] = `"` + s + `"`
	}
	return strings.Join(q, ",")
}
