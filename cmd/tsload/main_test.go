package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--color", "off"}, args...))
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func chdirTemp(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	t.Chdir(dir)
	return dir
}

func TestCompilePrintsJavaScript(t *testing.T) {
	chdirTemp(t, map[string]string{
		"tsconfig.json": `{"compilerOptions": {"module": "esnext"}}`,
		"a.ts":          "export const n: number = 1;\n",
	})

	stdout, stderr, err := runCLI(t, "compile", "--show-format", "a.ts")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "const n = 1;")
	assert.Contains(t, stdout, "export {")
	assert.Contains(t, stderr, "format: module")
}

func TestCompileWritesOutputFile(t *testing.T) {
	dir := chdirTemp(t, map[string]string{"a.cts": "export const n = 1;\n"})

	_, stderr, err := runCLI(t, "compile", "-o", "a.cjs", "a.cts")
	require.NoError(t, err, stderr)
	data, err := os.ReadFile(filepath.Join(dir, "a.cjs"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "exports")
}

func TestCompileReportsErrors(t *testing.T) {
	chdirTemp(t, map[string]string{"bad.ts": "export const = ;\n"})

	_, stderr, err := runCLI(t, "compile", "bad.ts")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, "Compilation error at bad.ts (using module Node16 and target ES2023)")

	_, _, err = runCLI(t, "compile", "--format", "amd", "bad.ts")
	assert.Error(t, err)
}

func TestTimings(t *testing.T) {
	chdirTemp(t, map[string]string{"a.ts": "export {};\n"})

	_, stderr, err := runCLI(t, "--timings", "compile", "a.ts")
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "timings:")
	assert.Contains(t, stderr, "emit")
}

func TestConfigFlagOverrides(t *testing.T) {
	chdirTemp(t, map[string]string{"tsload.toml": "[loader]\ncheck = true\n"})

	stdout, _, err := runCLI(t, "config")
	require.NoError(t, err)
	assert.Contains(t, stdout, "check = true")

	stdout, _, err = runCLI(t, "--check=false", "config")
	require.NoError(t, err)
	assert.Contains(t, stdout, "check = false")

	_, _, err = runCLI(t, "--defaults", "", "config")
	assert.Error(t, err)
}

func TestConfigShowsGoverningOptions(t *testing.T) {
	chdirTemp(t, map[string]string{
		"tsconfig.json": `{"compilerOptions": {"module": "commonjs", "strict": true}}`,
		"src/a.ts":      "export {};\n",
	})

	stdout, _, err := runCLI(t, "config", "src/a.ts")
	require.NoError(t, err)
	var got governingView
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "tsconfig.json", filepath.Base(got.Config))
	assert.Equal(t, "commonjs", got.Format)
	assert.Equal(t, true, got.CompilerOptions["strict"])
	assert.Equal(t, true, got.CompilerOptions["inlineSourceMap"])
}

func TestResolve(t *testing.T) {
	chdirTemp(t, map[string]string{
		"a.ts": "import './b';\n",
		"b.ts": "export {};\n",
	})

	stdout, stderr, err := runCLI(t, "resolve", "./b", "a.ts")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "b.ts")

	_, _, err = runCLI(t, "resolve", "left-pad", "a.ts")
	assert.Error(t, err)
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := runCLI(t, "version", "--format", "json")
	require.NoError(t, err)
	var got versionPayload
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "tsload", got.Tool)
	assert.NotEmpty(t, got.Version)

	_, _, err = runCLI(t, "version", "--format", "xml")
	assert.Error(t, err)
}

func TestProfilingFlags(t *testing.T) {
	dir := chdirTemp(t, nil)

	_, stderr, err := runCLI(t, "--mem-profile", "heap.out", "config")
	require.NoError(t, err, stderr)
	info, err := os.Stat(filepath.Join(dir, "heap.out"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestCheck(t *testing.T) {
	chdirTemp(t, map[string]string{
		"tsconfig.json": `{"compilerOptions": {"module": "esnext"}}`,
		"src/a.ts":      "export const a = 1;\n",
		"src/bad.ts":    "export const = ;\n",
		"src/t.d.ts":    "export type T = 1;\n",
	})

	stdout, stderr, err := runCLI(t, "check", "--ui", "off")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, stdout, "ok    src/a.ts")
	assert.Contains(t, stdout, "error src/bad.ts")
	assert.NotContains(t, stdout, "t.d.ts")
	assert.Contains(t, stdout, "2 files checked, 1 failed")
	assert.Contains(t, stderr, "Compilation error at src/bad.ts")

	stdout, _, err = runCLI(t, "check", "--ui", "off", "src/a.ts")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 files checked, 0 failed")

	_, _, err = runCLI(t, "check", "--ui", "sometimes", "src/a.ts")
	assert.Error(t, err)
}
