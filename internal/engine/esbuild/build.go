package esbuild

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.uber.org/zap"

	"tsload/internal/diag"
	"tsload/internal/modformat"
	"tsload/internal/options"
	"tsload/internal/project"
)

// BuildProject transpiles every member of cfg into its outDir (the config
// directory when unset), honouring the config file itself.
func (e *Engine) BuildProject(ctx context.Context, cfg *project.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var entries []string
	for _, f := range cfg.FileNames {
		if strings.HasSuffix(strings.TrimSuffix(f, filepath.Ext(f)), ".d") {
			continue
		}
		entries = append(entries, f)
	}
	if len(entries) == 0 {
		return nil
	}

	// same module and target defaults as the single-file compile
	opts := options.Normalize(cfg.Options, false)
	outDir := options.Str(opts.OutDir)
	if outDir == "" {
		outDir = cfg.Dir()
	}
	outBase := options.Str(opts.RootDir)
	if outBase == "" {
		outBase = cfg.Dir()
	}
	format := api.FormatESModule
	switch mod := opts.EffectiveModule(); {
	case mod == options.ModuleCommonJS:
		format = api.FormatCommonJS
	case mod.IsNode() && modformat.ImpliedNodeFormat(filepath.Join(cfg.Dir(), "index.ts")) == options.ModuleCommonJS:
		format = api.FormatCommonJS
	}

	res := api.Build(api.BuildOptions{
		EntryPoints:    entries,
		Outdir:         outDir,
		Outbase:        outBase,
		Write:          true,
		AllowOverwrite: true,
		Tsconfig:       cfg.Path,
		Format:         format,
		Target:         target(opts.EffectiveTarget()),
		Platform:       api.PlatformNode,
		Sourcemap:      api.SourceMapInline,
		LogLevel:       api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		diags := appendMessages(nil, res.Errors, diag.CategoryError, cfg.Path)
		return fmt.Errorf("build %s:\n%s", cfg.Path, diag.Format(diags, diag.FormatOptions{}))
	}
	Logger().Debug("project built", zap.String("config", cfg.Path), zap.Int("files", len(entries)))
	return nil
}
