package diag

import (
	"fmt"
	"strconv"
)

type Diagnostic struct {
	Category Category
	Code     Code
	Message  string
	// File is absolute; empty for global diagnostics.
	File string
	// Line and Column are 1-based; zero when the position is unknown.
	Line   int
	Column int
	Length int
	// LineText is the source line, used by the pretty formatter.
	LineText string
}

// IsError reports whether d blocks compilation.
func (d Diagnostic) IsError() bool {
	return d.Category == CategoryError
}

// Position renders "file(line,col)" or just the file when no line is known.
func (d Diagnostic) Position() string {
	if d.File == "" {
		return ""
	}
	if d.Line <= 0 {
		return d.File
	}
	return d.File + "(" + strconv.Itoa(d.Line) + "," + strconv.Itoa(max(d.Column, 1)) + ")"
}

// Errorf builds a global error diagnostic.
func Errorf(code Code, format string, args ...any) Diagnostic {
	return Diagnostic{
		Category: CategoryError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	}
}

// InFile returns a copy of d attached to file.
func (d Diagnostic) InFile(file string) Diagnostic {
	d.File = file
	return d
}
