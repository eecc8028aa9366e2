package diag

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// FormatOptions configures rendering of diagnostics.
type FormatOptions struct {
	// Cwd is used to shorten paths; paths outside of it stay absolute.
	Cwd string
	// Pretty adds a source excerpt with an underline when LineText is known.
	Pretty bool
	Color  bool
}

// DisplayPath returns p relative to cwd unless that would climb out of cwd.
func DisplayPath(cwd, p string) string {
	if cwd == "" || p == "" {
		return p
	}
	rel, err := filepath.Rel(cwd, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return rel
}

type palette struct {
	file, pos, err, warn, info, code, gutter *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		file:   color.New(color.FgCyan),
		pos:    color.New(color.FgYellow),
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgBlue),
		code:   color.New(color.FgHiBlack),
		gutter: color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{p.file, p.pos, p.err, p.warn, p.info, p.code, p.gutter} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) category(c Category) *color.Color {
	switch c {
	case CategoryError:
		return p.err
	case CategoryWarning:
		return p.warn
	default:
		return p.info
	}
}

// Format renders diagnostics one per line (plus excerpts in pretty mode).
func Format(diags []Diagnostic, opts FormatOptions) string {
	pal := newPalette(opts.Color)
	var b strings.Builder
	for i, d := range diags {
		if opts.Pretty && i > 0 {
			b.WriteByte('\n')
		}
		writeHeader(&b, d, opts, pal)
		if opts.Pretty && d.LineText != "" && d.Line > 0 {
			writeExcerpt(&b, d, pal)
		}
	}
	return b.String()
}

func writeHeader(b *strings.Builder, d Diagnostic, opts FormatOptions, pal palette) {
	if d.File != "" {
		file := DisplayPath(opts.Cwd, d.File)
		switch {
		case opts.Pretty && d.Line > 0:
			b.WriteString(pal.file.Sprint(file))
			b.WriteByte(':')
			b.WriteString(pal.pos.Sprint(strconv.Itoa(d.Line)))
			b.WriteByte(':')
			b.WriteString(pal.pos.Sprint(strconv.Itoa(max(d.Column, 1))))
			b.WriteString(" - ")
		case d.Line > 0:
			b.WriteString(pal.file.Sprint(file))
			b.WriteString(pal.pos.Sprintf("(%d,%d)", d.Line, max(d.Column, 1)))
			b.WriteString(": ")
		default:
			b.WriteString(pal.file.Sprint(file))
			b.WriteString(": ")
		}
	}
	b.WriteString(pal.category(d.Category).Sprint(d.Category.String()))
	if code := d.Code.String(); code != "" {
		b.WriteByte(' ')
		b.WriteString(pal.code.Sprint(code))
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	b.WriteByte('\n')
}

func writeExcerpt(b *strings.Builder, d Diagnostic, pal palette) {
	lineNo := strconv.Itoa(d.Line)
	text := strings.TrimRight(d.LineText, "\r\n")
	b.WriteByte('\n')
	b.WriteString(pal.gutter.Sprint(lineNo))
	b.WriteByte(' ')
	b.WriteString(text)
	b.WriteByte('\n')

	col := max(d.Column, 1) - 1
	prefix := text
	if col < len(prefix) {
		prefix = prefix[:col]
	}
	// tabs keep their width so the underline lines up
	var pad strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	width := max(d.Length, 1)
	if col+width > len(text) && col < len(text) {
		width = runewidth.StringWidth(text[col:])
	}
	b.WriteString(strings.Repeat(" ", len(lineNo)+1))
	b.WriteString(pad.String())
	b.WriteString(pal.category(d.Category).Sprint(strings.Repeat("~", max(width, 1))))
	b.WriteByte('\n')
}
