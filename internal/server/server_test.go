package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsload/internal/buildpipeline"
	"tsload/internal/engine/esbuild"
	"tsload/internal/hooks"
)

func newTestServer(t *testing.T, files map[string]string) (*httptest.Server, string) {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	chain := hooks.NewChain()
	_, err := hooks.Register(chain, esbuild.New(), buildpipeline.Options{}, buildpipeline.WithProgress(metrics))
	require.NoError(t, err)

	srv, err := New(Options{Root: root, Chain: chain, Gatherer: reg, Metrics: metrics})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, root
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestNewRequiresChain(t *testing.T) {
	_, err := New(Options{Root: t.TempDir()})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	resp, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", body)
}

func TestServeModule(t *testing.T) {
	ts, _ := newTestServer(t, map[string]string{
		"tsconfig.json": `{"compilerOptions": {"module": "esnext", "target": "es2022"}}`,
		"src/hello.ts":  "export const greeting: string = 'hi';\n",
	})

	resp, body := get(t, ts.URL+"/modules/src/hello.ts")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "module", resp.Header.Get(FormatHeader))
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/javascript")
	assert.Contains(t, body, `const greeting = "hi";`)
	assert.Contains(t, body, "export {")
}

func TestServeModuleErrors(t *testing.T) {
	ts, _ := newTestServer(t, map[string]string{
		"bad.ts":  "export const = ;\n",
		"data.md": "# notes\n",
	})

	resp, _ := get(t, ts.URL+"/modules/missing.ts")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := get(t, ts.URL+"/modules/bad.ts")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Compilation error at bad.ts")

	resp, _ = get(t, ts.URL+"/modules/data.md")
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)

	resp, _ = get(t, ts.URL+"/modules/bad.ts?format=amd")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLocalPathStaysInsideRoot(t *testing.T) {
	s := &Server{root: filepath.FromSlash("/srv/app")}

	p, ok := s.localPath("/src/a.ts")
	require.True(t, ok)
	assert.Equal(t, filepath.FromSlash("/srv/app/src/a.ts"), p)

	for _, rel := range []string{"", "/", "../etc/passwd", "src/../../x.ts", "./a.ts"} {
		_, ok := s.localPath(rel)
		assert.False(t, ok, rel)
	}
}

func TestResolve(t *testing.T) {
	ts, _ := newTestServer(t, map[string]string{
		"a.ts": "import './b';\n",
		"b.ts": "export {};\n",
	})

	resp, body := get(t, ts.URL+"/resolve?specifier=./b&parent=a.ts")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	var got resolveResponse
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.True(t, got.ShortCircuit)
	assert.Equal(t, "b.ts", got.Path)

	resp, _ = get(t, ts.URL+"/resolve?specifier=./b")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = get(t, ts.URL+"/resolve?specifier=left-pad&parent=a.ts")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, `"error"`)
}

func TestMetrics(t *testing.T) {
	ts, _ := newTestServer(t, map[string]string{"a.ts": "export const a = 1;\n"})

	resp, _ := get(t, ts.URL+"/modules/a.ts")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `tsload_http_requests_total{method="GET",path="/modules/*",status="200"} 1`)
	assert.Contains(t, body, `tsload_pipeline_stage_duration_seconds_count{stage="emit",status="done"} 1`)
}
