package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tsload/internal/buildpipeline"
	"tsload/internal/diag"
	"tsload/internal/engine/esbuild"
	"tsload/internal/project"
	"tsload/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

func newCheckCmd() *cobra.Command {
	var (
		uiFlag string
		jobs   int
	)
	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Compile files one by one and report their diagnostics without writing output",
		Long: `check compiles every listed file, or every member of ./tsconfig.json when no
files are given, and prints the errors. Each file is compiled on its own exactly as
the loader would compile it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.finish()

			mode, err := readUIMode(uiFlag)
			if err != nil {
				return err
			}
			if jobs <= 0 {
				jobs = runtime.GOMAXPROCS(0)
			}
			files, err := checkTargets(args)
			if err != nil {
				return err
			}
			cwd, _ := os.Getwd()
			labels := make([]string, len(files))
			for i, f := range files {
				labels[i] = diag.DisplayPath(cwd, f)
			}

			var results []error
			if shouldUseTUI(mode) {
				results, err = checkWithUI(cmd.Context(), s, files, labels, jobs)
				if err != nil {
					return err
				}
			} else {
				p := buildpipeline.New(esbuild.New(), s.cfg.Loader, s.pipelineOptions()...)
				results = checkFiles(cmd.Context(), p, files, jobs)
				for i, err := range results {
					status := "ok"
					if err != nil {
						status = "error"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%-5s %s\n", status, labels[i])
				}
			}
			return reportCheck(cmd.OutOrStdout(), cmd.ErrOrStderr(), s, results)
		},
	}
	cmd.Flags().StringVar(&uiFlag, "ui", "auto", "progress display (auto|on|off)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "files compiled in parallel (default: GOMAXPROCS)")
	return cmd
}

// checkTargets returns absolute paths of the files to check.
func checkTargets(args []string) ([]string, error) {
	if len(args) == 0 {
		cfg, err := project.Parse(project.ConfigFileName)
		if err != nil {
			return nil, fmt.Errorf("no files given and no usable %s: %w", project.ConfigFileName, err)
		}
		files := make([]string, 0, len(cfg.FileNames))
		for _, f := range cfg.FileNames {
			if !buildpipeline.IsDeclarationFile(f) {
				files = append(files, f)
			}
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%s has no source files", cfg.Path)
		}
		return files, nil
	}
	files := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		files = append(files, abs)
	}
	return files, nil
}

// checkFiles compiles files concurrently; results[i] is the error for files[i].
func checkFiles(ctx context.Context, p *buildpipeline.Pipeline, files []string, jobs int) []error {
	results := make([]error, len(files))
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, file := range files {
		g.Go(func() error {
			_, results[i] = p.Compile(ctx, file, "")
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func checkWithUI(ctx context.Context, s *session, files, labels []string, jobs int) ([]error, error) {
	events := make(chan buildpipeline.Event, 256)
	done := make(chan []error, 1)
	go func() {
		p := buildpipeline.New(esbuild.New(), s.cfg.Loader, s.pipelineOptions(buildpipeline.ChannelSink{Ch: events})...)
		done <- checkFiles(ctx, p, files, jobs)
		close(events)
	}()

	model := ui.NewProgressModel("checking", files, labels, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// the UI may stop early; keep draining so the compiles can finish
	go func() {
		for range events {
		}
	}()
	results := <-done
	if uiErr != nil && !errors.Is(uiErr, tea.ErrProgramKilled) {
		return results, uiErr
	}
	return results, nil
}

func reportCheck(stdout, stderr io.Writer, s *session, results []error) error {
	failed := 0
	for _, err := range results {
		if err == nil {
			continue
		}
		failed++
		var perr *buildpipeline.Error
		if errors.As(err, &perr) {
			fmt.Fprintln(stderr, perr.Format(diag.FormatOptions{Pretty: true, Color: s.useColor}))
		} else {
			fmt.Fprintln(stderr, "error:", err)
		}
	}
	fmt.Fprintf(stdout, "%d files checked, %d failed\n", len(results), failed)
	if failed > 0 {
		return errReported
	}
	return nil
}
