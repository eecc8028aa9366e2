package hooks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsload/internal/buildpipeline"
	"tsload/internal/engine/esbuild"
	"tsload/internal/modformat"
	"tsload/internal/options"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
}

func newChain(t *testing.T, opts buildpipeline.Options) (*Chain, *Loader) {
	t.Helper()
	chain := NewChain()
	l, err := Register(chain, esbuild.New(), opts)
	require.NoError(t, err)
	return chain, l
}

func TestFileURLRoundTrip(t *testing.T) {
	p := filepath.FromSlash("/tmp/some dir/a#1.ts")
	u := PathToFileURL(p)
	assert.Equal(t, "file:///tmp/some%20dir/a%231.ts", u)

	back, err := FileURLToPath(u)
	require.NoError(t, err)
	assert.Equal(t, p, back)

	_, err = FileURLToPath("https://example.com/a.ts")
	assert.Error(t, err)
	_, err = FileURLToPath("file://remote/a.ts")
	assert.Error(t, err)
	back, err = FileURLToPath("file://localhost/a.ts")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/a.ts"), back)
}

func TestRegisterDeliversOptions(t *testing.T) {
	opts := buildpipeline.Options{Check: options.Ptr(false), Defaults: "/etc/tsconfig.json"}
	_, l := newChain(t, opts)

	got, ok := l.Options()
	require.True(t, ok)
	assert.Equal(t, opts, got)

	assert.Error(t, l.Initialize(nil), "options are set once")
}

func TestLoaderRequiresInitialization(t *testing.T) {
	l := NewLoader(esbuild.New())
	_, ok := l.Options()
	assert.False(t, ok)

	_, err := l.Load(context.Background(), "file:///a.ts", LoadContext{}, nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestLoadCompilesWithProjectConfig(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"tsconfig.json": `{"compilerOptions": {"module": "esnext", "target": "es2022"}, "files": ["src/a.ts"]}`,
		"src/a.ts":      "export const x: number = 1;\n",
	})
	chain, _ := newChain(t, buildpipeline.Options{})

	res, err := chain.Load(context.Background(), PathToFileURL(filepath.Join(root, "src", "a.ts")), LoadContext{Format: modformat.CommonJS})
	require.NoError(t, err)
	assert.True(t, res.ShortCircuit)
	assert.Equal(t, modformat.Module, res.Format)
	assert.Contains(t, res.Source, "const x = 1;")
	assert.Contains(t, res.Source, "export {")
	assert.Contains(t, res.Source, "sourceMappingURL=data:application/json;base64,")
}

func TestLoadWithoutConfig(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.mts":     "export const y: string = 'y';\n",
		"throws.ts": "throw new Error();\n",
	})
	chain, _ := newChain(t, buildpipeline.Options{})

	res, err := chain.Load(context.Background(), PathToFileURL(filepath.Join(root, "a.mts")), LoadContext{})
	require.NoError(t, err)
	assert.Equal(t, modformat.Module, res.Format)
	assert.Contains(t, res.Source, `const y = "y";`)
	assert.Contains(t, res.Source, "export {")

	// compiling does not evaluate
	res, err = chain.Load(context.Background(), PathToFileURL(filepath.Join(root, "throws.ts")), LoadContext{})
	require.NoError(t, err)
	assert.Contains(t, res.Source, "throw new Error()")
}

func TestLoadCompileError(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"bad.ts": "export const = ;\n"})
	chain, _ := newChain(t, buildpipeline.Options{})

	_, err := chain.Load(context.Background(), PathToFileURL(filepath.Join(root, "bad.ts")), LoadContext{})
	require.ErrorIs(t, err, buildpipeline.ErrCompilation)
	assert.Contains(t, err.Error(), "(using module Node16 and target ES2023)")
}

func TestLoadPassesThroughOtherFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"package.json": `{"type": "module"}`,
		"a.js":         "export default 1;\n",
		"b.cjs":        "module.exports = 1;\n",
	})
	chain, _ := newChain(t, buildpipeline.Options{})

	res, err := chain.Load(context.Background(), PathToFileURL(filepath.Join(root, "a.js")), LoadContext{})
	require.NoError(t, err)
	assert.Equal(t, modformat.Module, res.Format)
	assert.Equal(t, "export default 1;\n", res.Source)

	res, err = chain.Load(context.Background(), PathToFileURL(filepath.Join(root, "b.cjs")), LoadContext{})
	require.NoError(t, err)
	assert.Equal(t, modformat.CommonJS, res.Format)

	_, err = chain.Load(context.Background(), "node:fs", LoadContext{})
	assert.Error(t, err)
}

func TestResolveFromTypeScriptParent(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.ts":       "import './b';\n",
		"b.ts":       "export {};\n",
		"c.js":       "module.exports = 1;\n",
		"types.d.ts": "export type T = 1;\n",
	})
	chain, _ := newChain(t, buildpipeline.Options{})
	parent := PathToFileURL(filepath.Join(root, "a.ts"))
	attrs := map[string]string{"type": "json"}

	res, err := chain.Resolve(context.Background(), "./b", ResolveContext{ParentURL: parent, ImportAttributes: attrs})
	require.NoError(t, err)
	assert.True(t, res.ShortCircuit)
	assert.Equal(t, attrs, res.ImportAttributes)
	got, err := FileURLToPath(res.URL)
	require.NoError(t, err)
	assert.Equal(t, canonical(t, filepath.Join(root, "b.ts")), canonical(t, got))

	// file: specifiers are literal paths
	res, err = chain.Resolve(context.Background(), PathToFileURL(filepath.Join(root, "b.ts")), ResolveContext{ParentURL: parent})
	require.NoError(t, err)
	assert.True(t, res.ShortCircuit)

	// JavaScript results go to the default resolver
	res, err = chain.Resolve(context.Background(), "./c.js", ResolveContext{ParentURL: parent})
	require.NoError(t, err)
	assert.False(t, res.ShortCircuit)
	assert.Equal(t, modformat.CommonJS, res.Format)
}

func TestResolveIgnoresJavaScriptParent(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.js": "import './b.ts';\n",
		"b.ts": "export {};\n",
	})
	chain, _ := newChain(t, buildpipeline.Options{})

	res, err := chain.Resolve(context.Background(), "./b.ts", ResolveContext{ParentURL: PathToFileURL(filepath.Join(root, "a.js"))})
	require.NoError(t, err)
	assert.False(t, res.ShortCircuit)
	assert.Equal(t, PathToFileURL(filepath.Join(root, "b.ts")), res.URL)

	_, err = chain.Resolve(context.Background(), "left-pad", ResolveContext{ParentURL: PathToFileURL(filepath.Join(root, "a.js"))})
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func canonical(t *testing.T, p string) string {
	t.Helper()
	real, err := filepath.EvalSymlinks(p)
	require.NoError(t, err)
	return real
}
