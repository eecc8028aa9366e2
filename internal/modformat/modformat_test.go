package modformat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsload/internal/engine"
	"tsload/internal/options"
)

func withModule(k options.ModuleKind) *options.CompilerOptions {
	return &options.CompilerOptions{Module: options.Ptr(k)}
}

func TestInferByModuleFamily(t *testing.T) {
	file := &engine.SourceFile{FileName: "/src/a.ts"}

	for _, k := range []options.ModuleKind{options.ModuleES2015, options.ModuleES2020, options.ModuleES2022, options.ModuleESNext} {
		got, ok := Infer(file, withModule(k))
		require.True(t, ok, k.String())
		assert.Equal(t, Module, got)
	}

	got, ok := Infer(file, withModule(options.ModuleCommonJS))
	require.True(t, ok)
	assert.Equal(t, CommonJS, got)

	for _, k := range []options.ModuleKind{options.ModuleNone, options.ModuleAMD, options.ModuleUMD, options.ModuleSystem, options.ModulePreserve} {
		_, ok := Infer(file, withModule(k))
		assert.False(t, ok, k.String())
	}

	_, ok = Infer(file, &options.CompilerOptions{})
	assert.False(t, ok)
}

func TestInferNodeFamilyPerFile(t *testing.T) {
	for _, k := range []options.ModuleKind{options.ModuleNode16, options.ModuleNode18, options.ModuleNode20, options.ModuleNodeNext} {
		opts := withModule(k)

		got, ok := Infer(&engine.SourceFile{FileName: "/src/a.mts"}, opts)
		require.True(t, ok)
		assert.Equal(t, Module, got)

		got, ok = Infer(&engine.SourceFile{FileName: "/src/a.cts"}, opts)
		require.True(t, ok)
		assert.Equal(t, CommonJS, got)

		_, ok = Infer(&engine.SourceFile{FileName: "/src/a.ts"}, opts)
		assert.False(t, ok)

		// implied format wins over the extension
		got, ok = Infer(&engine.SourceFile{FileName: "/src/a.mts", ImpliedFormat: options.Ptr(options.ModuleCommonJS)}, opts)
		require.True(t, ok)
		assert.Equal(t, CommonJS, got)

		got, ok = Infer(&engine.SourceFile{FileName: "/src/a.ts", ImpliedFormat: options.Ptr(options.ModuleESNext)}, opts)
		require.True(t, ok)
		assert.Equal(t, Module, got)
	}
}

func TestParse(t *testing.T) {
	f, err := Parse("module")
	require.NoError(t, err)
	assert.Equal(t, Module, f)

	f, err = Parse("")
	require.NoError(t, err)
	assert.Equal(t, Format(""), f)

	_, err = Parse("wasm")
	assert.Error(t, err)
}

func TestImpliedNodeFormat(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "esm", "nested"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "esm", "legacy"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "esm", "package.json"), []byte(`{"type": "module"}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "esm", "legacy", "package.json"), []byte(`{"name": "legacy"}`), 0o600))

	assert.Equal(t, options.ModuleESNext, ImpliedNodeFormat(filepath.Join(root, "esm", "nested", "a.ts")))
	assert.Equal(t, options.ModuleCommonJS, ImpliedNodeFormat(filepath.Join(root, "esm", "legacy", "a.ts")))
	assert.Equal(t, options.ModuleCommonJS, ImpliedNodeFormat(filepath.Join(root, "esm", "b.cts")))
	assert.Equal(t, options.ModuleESNext, ImpliedNodeFormat(filepath.Join(root, "c.mts")))
}
