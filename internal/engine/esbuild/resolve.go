package esbuild

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.uber.org/zap"

	"tsload/internal/engine"
	"tsload/internal/options"
)

// ResolveExtensions is the probe order for extension-less specifiers.
var ResolveExtensions = []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs", ".json"}

type resolveMarker struct{}

// ResolveModule runs esbuild's resolver for one import of containingFile.
// Nothing is bundled or written: a plugin intercepts the import, asks esbuild
// where it leads and marks it external.
func (e *Engine) ResolveModule(ctx context.Context, name, containingFile string, opts *options.CompilerOptions) (engine.Resolution, bool) {
	if ctx.Err() != nil {
		return engine.Resolution{}, false
	}
	raw, err := tsconfigRaw(opts)
	if err != nil {
		Logger().Debug("resolve: encode tsconfig", zap.Error(err))
		return engine.Resolution{}, false
	}

	var resolved string
	capture := api.Plugin{
		Name: "tsload-resolve",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: ".*"}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				if _, inner := args.PluginData.(resolveMarker); inner {
					return api.OnResolveResult{}, nil
				}
				res := build.Resolve(args.Path, api.ResolveOptions{
					Importer:   args.Importer,
					ResolveDir: args.ResolveDir,
					Kind:       args.Kind,
					PluginData: resolveMarker{},
				})
				if len(res.Errors) == 0 && !res.External && res.Namespace == "file" {
					resolved = res.Path
				}
				return api.OnResolveResult{Path: args.Path, External: true}, nil
			})
		},
	}

	res := api.Build(api.BuildOptions{
		Stdin: &api.StdinOptions{
			Contents:   "import " + strconv.Quote(name) + ";\n",
			ResolveDir: filepath.Dir(containingFile),
			Sourcefile: containingFile,
			Loader:     api.LoaderTS,
		},
		Bundle:            true,
		Write:             false,
		Platform:          api.PlatformNode,
		Format:            api.FormatESModule,
		ResolveExtensions: ResolveExtensions,
		TsconfigRaw:       raw,
		Plugins:           []api.Plugin{capture},
		LogLevel:          api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		Logger().Debug("resolve: build failed", zap.String("specifier", name), zap.String("text", res.Errors[0].Text))
	}
	if resolved == "" {
		return engine.Resolution{}, false
	}
	return engine.Resolution{
		ResolvedFileName:        resolved,
		Extension:               extension(resolved),
		IsExternalLibraryImport: strings.Contains(filepath.ToSlash(resolved), "/node_modules/"),
	}, true
}

// extension keeps the declaration marker, so "a.d.ts" yields ".d.ts".
func extension(name string) string {
	ext := filepath.Ext(name)
	if strings.HasSuffix(strings.TrimSuffix(name, ext), ".d") {
		return ".d" + ext
	}
	return ext
}
