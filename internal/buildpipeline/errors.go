package buildpipeline

import (
	"os"
	"strings"

	"tsload/internal/diag"
	"tsload/internal/options"
)

// Kind classifies a failed compile.
type Kind string

const (
	KindCompilation     Kind = "Compilation error"
	KindMultipleOutputs Kind = "Multiple compilation outputs"
	KindNoOutput        Kind = "No compilation output"
)

// Error is returned by Compile. ConfigPath is empty when the defaults applied.
type Error struct {
	Kind        Kind
	File        string
	ConfigPath  string
	Diagnostics []diag.Diagnostic
	Cause       error
}

// Sentinels for errors.Is; only the kind is compared.
var (
	ErrCompilation     = &Error{Kind: KindCompilation}
	ErrMultipleOutputs = &Error{Kind: KindMultipleOutputs}
	ErrNoOutput        = &Error{Kind: KindNoOutput}
)

func (e *Error) Error() string {
	return e.Format(diag.FormatOptions{})
}

// Format renders the message with diagnostics formatted per opts. An empty
// opts.Cwd means the process working directory.
func (e *Error) Format(opts diag.FormatOptions) string {
	if opts.Cwd == "" {
		opts.Cwd, _ = os.Getwd()
	}
	var b strings.Builder
	b.WriteString(e.Header(opts.Cwd))
	if len(e.Diagnostics) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(diag.Format(e.Diagnostics, opts)))
		b.WriteString("\n")
	}
	return b.String()
}

// Header is the first line of the message: kind, file and config.
func (e *Error) Header(cwd string) string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(" at ")
	b.WriteString(diag.DisplayPath(cwd, e.File))
	if e.ConfigPath != "" {
		b.WriteString(" (using " + diag.DisplayPath(cwd, e.ConfigPath) + ")")
	} else {
		b.WriteString(" (using " + options.DefaultsDescription() + ")")
	}
	return b.String()
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func (e *Error) Unwrap() error { return e.Cause }
