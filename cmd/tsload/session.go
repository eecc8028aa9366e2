package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tsload/internal/buildpipeline"
	"tsload/internal/config"
	"tsload/internal/engine/esbuild"
	"tsload/internal/hooks"
	"tsload/internal/observ"
	"tsload/internal/prof"
	"tsload/internal/project"
)

// session is the state shared by every subcommand: effective configuration,
// logger and optional timer.
type session struct {
	cfg      *config.Config
	log      *zap.Logger
	timer    *observ.Timer
	profile  *prof.Session
	useColor bool
	stderr   io.Writer
}

func newSession(cmd *cobra.Command) (*session, error) {
	flags := cmd.Flags()
	colorFlag, err := flags.GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return nil, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}

	var useColor bool
	switch colorFlag {
	case "on":
		useColor = true
	case "off":
		useColor = false
	case "auto":
		useColor = isTerminal(os.Stderr)
	default:
		return nil, fmt.Errorf("unsupported color mode %q (must be auto, on or off)", colorFlag)
	}
	color.NoColor = !useColor

	cfg, err := config.Load(".")
	if err != nil {
		return nil, err
	}
	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, useColor: useColor, stderr: cmd.ErrOrStderr()}
	s.log = newLogger(verbose, s.stderr)
	project.SetLogger(s.log.Named("project"))
	esbuild.SetLogger(s.log.Named("esbuild"))
	buildpipeline.SetLogger(s.log.Named("pipeline"))
	hooks.SetLogger(s.log.Named("hooks"))
	if timings {
		s.timer = observ.NewTimer()
	}
	if s.profile, err = startProfiling(cmd); err != nil {
		return nil, err
	}
	s.log.Debug("configuration loaded",
		zap.String("file", cfg.Path),
		zap.Bool("check", cfg.Loader.CheckEnabled()),
		zap.String("defaults", cfg.Loader.Defaults))
	return s, nil
}

// applyFlagOverrides lets explicitly set flags win over tsload.toml and the
// environment.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("check") {
		check, err := flags.GetBool("check")
		if err != nil {
			return fmt.Errorf("failed to get check flag: %w", err)
		}
		cfg.Loader.Check = &check
	}
	if flags.Changed("defaults") {
		defaults, err := flags.GetString("defaults")
		if err != nil {
			return fmt.Errorf("failed to get defaults flag: %w", err)
		}
		if defaults == "" {
			return fmt.Errorf("--defaults must not be empty")
		}
		abs, err := filepath.Abs(defaults)
		if err != nil {
			return fmt.Errorf("failed to resolve defaults path: %w", err)
		}
		cfg.Loader.Defaults = abs
	}
	return nil
}

func newLogger(verbose bool, w io.Writer) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}

// pipelineOptions wires extra progress sinks next to the session timer.
func (s *session) pipelineOptions(extra ...buildpipeline.ProgressSink) []buildpipeline.PipelineOption {
	sinks := buildpipeline.MultiSink(extra)
	if s.timer != nil {
		sinks = append(sinks, buildpipeline.TimerSink{Timer: s.timer})
	}
	if len(sinks) == 0 {
		return nil
	}
	return []buildpipeline.PipelineOption{buildpipeline.WithProgress(sinks)}
}

// chain registers the loader hooks on a fresh host chain.
func (s *session) chain(extra ...buildpipeline.ProgressSink) (*hooks.Chain, error) {
	chain := hooks.NewChain()
	if _, err := hooks.Register(chain, esbuild.New(), s.cfg.Loader, s.pipelineOptions(extra...)...); err != nil {
		return nil, err
	}
	return chain, nil
}

func startProfiling(cmd *cobra.Command) (*prof.Session, error) {
	flags := cmd.Flags()
	var paths prof.Paths
	var err error
	if paths.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if paths.Heap, err = flags.GetString("mem-profile"); err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if paths.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	return prof.Start(paths)
}

func (s *session) finish() {
	if err := s.profile.Stop(); err != nil {
		s.log.Warn("profiling", zap.Error(err))
	}
	if s.timer != nil {
		fmt.Fprint(s.stderr, s.timer.Summary())
	}
	_ = s.log.Sync()
}
