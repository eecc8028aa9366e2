// Package server is a small development server that compiles TypeScript
// modules through the hook chain and serves them as JavaScript.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tsload/internal/buildpipeline"
	"tsload/internal/diag"
	"tsload/internal/hooks"
	"tsload/internal/modformat"
)

// FormatHeader carries the module format of a served module.
const FormatHeader = "X-Module-Format"

type Options struct {
	// Root is the directory served under /modules/.
	Root  string
	Chain *hooks.Chain
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// Metrics instruments requests; nil disables instrumentation.
	Metrics *Metrics
	Logger  *zap.Logger
}

type Server struct {
	root    string
	chain   *hooks.Chain
	metrics *Metrics
	gather  prometheus.Gatherer
	log     *zap.Logger
}

func New(opts Options) (*Server, error) {
	if opts.Chain == nil {
		return nil, errors.New("server: hook chain is required")
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("server: resolve root: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{root: root, chain: opts.Chain, metrics: opts.Metrics, gather: opts.Gatherer, log: log}, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.gather != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))
	}
	r.Get("/resolve", s.handleResolve)
	r.Get("/modules/*", s.handleModule)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr), zap.String("root", s.root))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// localPath maps a slash-separated path under the root to a file, refusing
// anything that escapes the root.
func (s *Server) localPath(rel string) (string, bool) {
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || !fs.ValidPath(rel) {
		return "", false
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), true
}

type resolveResponse struct {
	URL          string `json:"url"`
	Path         string `json:"path,omitempty"`
	Format       string `json:"format,omitempty"`
	ShortCircuit bool   `json:"shortCircuit"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	specifier := r.URL.Query().Get("specifier")
	parentRel := r.URL.Query().Get("parent")
	if specifier == "" || parentRel == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "specifier and parent are required"})
		return
	}
	parent, ok := s.localPath(parentRel)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "parent must be a path inside the served root"})
		return
	}

	res, err := s.chain.Resolve(r.Context(), specifier, hooks.ResolveContext{ParentURL: hooks.PathToFileURL(parent)})
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	out := resolveResponse{URL: res.URL, Format: res.Format.String(), ShortCircuit: res.ShortCircuit}
	if p, err := hooks.FileURLToPath(res.URL); err == nil {
		if rel, err := filepath.Rel(s.root, p); err == nil && !strings.HasPrefix(rel, "..") {
			out.Path = filepath.ToSlash(rel)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleModule(w http.ResponseWriter, r *http.Request) {
	file, ok := s.localPath(chi.URLParam(r, "*"))
	if !ok {
		http.Error(w, "invalid module path", http.StatusBadRequest)
		return
	}
	hint, err := modformat.Parse(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := os.Stat(file); err != nil {
		http.Error(w, "module not found", http.StatusNotFound)
		return
	}

	res, err := s.chain.Load(r.Context(), hooks.PathToFileURL(file), hooks.LoadContext{Format: hint})
	if err != nil {
		var perr *buildpipeline.Error
		switch {
		case errors.As(err, &perr):
			http.Error(w, perr.Format(diag.FormatOptions{Cwd: s.root}), http.StatusUnprocessableEntity)
		case errors.Is(err, hooks.ErrUnknownFileExtension):
			http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
		default:
			s.log.Error("load failed", zap.String("file", file), zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	if res.Format != "" {
		w.Header().Set(FormatHeader, res.Format.String())
	}
	_, _ = w.Write([]byte(res.Source))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
