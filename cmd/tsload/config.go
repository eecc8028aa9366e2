package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"tsload/internal/engine"
	"tsload/internal/modformat"
	"tsload/internal/options"
	"tsload/internal/project"
)

type effectiveConfig struct {
	Source string       `toml:"source"`
	Loader loaderView   `toml:"loader"`
	Serve  serveSection `toml:"serve"`
}

type loaderView struct {
	Check    bool   `toml:"check"`
	Defaults string `toml:"defaults,omitempty"`
}

type serveSection struct {
	Addr string `toml:"addr"`
	Root string `toml:"root"`
}

type governingView struct {
	File            string         `json:"file"`
	Config          string         `json:"config"`
	Format          string         `json:"format,omitempty"`
	CompilerOptions map[string]any `json:"compilerOptions"`
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config [file]",
		Short: "Print the effective settings, or the compiler options governing a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.finish()

			if len(args) == 0 {
				return printSettings(cmd.OutOrStdout(), s)
			}
			return printGoverning(cmd.OutOrStdout(), s, args[0])
		},
	}
}

func printSettings(w io.Writer, s *session) error {
	source := s.cfg.Path
	if source == "" {
		source = "(built-in)"
	}
	view := effectiveConfig{
		Source: source,
		Loader: loaderView{Check: s.cfg.Loader.CheckEnabled(), Defaults: s.cfg.Loader.Defaults},
		Serve:  serveSection{Addr: s.cfg.Serve.Addr, Root: s.cfg.Serve.Root},
	}
	return toml.NewEncoder(w).Encode(view)
}

func printGoverning(w io.Writer, s *session, file string) error {
	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	view := governingView{File: abs, Config: "(defaults: " + options.DefaultsDescription() + ")"}

	opts := options.Defaults()
	if cfg, ok := project.Find(abs, s.cfg.Loader.Defaults); ok {
		view.Config = cfg.Path
		opts = cfg.Options
	}
	opts = options.Normalize(opts, s.cfg.Loader.CheckEnabled())

	m, err := opts.ToMap()
	if err != nil {
		return fmt.Errorf("failed to render options: %w", err)
	}
	view.CompilerOptions = m

	src := &engine.SourceFile{FileName: abs}
	if opts.EffectiveModule().IsNode() {
		implied := modformat.ImpliedNodeFormat(abs)
		src.ImpliedFormat = &implied
	}
	if f, ok := modformat.Infer(src, opts); ok {
		view.Format = f.String()
	}

	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
