package diag

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCompact(t *testing.T) {
	cwd := filepath.FromSlash("/workspace")
	diags := []Diagnostic{
		{
			Category: CategoryError,
			Code:     2322,
			Message:  "Type 'string' is not assignable to type 'number'.",
			File:     filepath.FromSlash("/workspace/src/a.ts"),
			Line:     3,
			Column:   7,
		},
		Errorf(OptModuleMustMatchResolution, "Option 'module' must be set to 'Node16' when option 'moduleResolution' is set to 'Node16'."),
		{
			Category: CategoryError,
			Message:  "Expected \";\" but found \"x\"",
			File:     filepath.FromSlash("/elsewhere/b.ts"),
			Line:     1,
		},
	}

	got := Format(diags, FormatOptions{Cwd: cwd})
	want := filepath.FromSlash("src/a.ts") + "(3,7): error TS2322: Type 'string' is not assignable to type 'number'.\n" +
		"error TS5110: Option 'module' must be set to 'Node16' when option 'moduleResolution' is set to 'Node16'.\n" +
		filepath.FromSlash("/elsewhere/b.ts") + "(1,1): error: Expected \";\" but found \"x\"\n"
	assert.Equal(t, want, got)
}

func TestFormatPrettyUnderline(t *testing.T) {
	d := Diagnostic{
		Category: CategoryWarning,
		Code:     UnknownCode,
		Message:  "unused",
		File:     "/w/a.ts",
		Line:     2,
		Column:   5,
		Length:   3,
		LineText: "let foo = 1",
	}
	got := Format([]Diagnostic{d}, FormatOptions{Cwd: "/w", Pretty: true})
	want := "a.ts:2:5 - warning: unused\n" +
		"\n" +
		"2 let foo = 1\n" +
		"      ~~~\n"
	assert.Equal(t, want, got)
}

func TestDisplayPath(t *testing.T) {
	tests := []struct {
		cwd, path, want string
	}{
		{"/w", "/w/a/b.ts", "a/b.ts"},
		{"/w", "/other/b.ts", "/other/b.ts"},
		{"", "/w/b.ts", "/w/b.ts"},
	}
	for _, tt := range tests {
		got := DisplayPath(filepath.FromSlash(tt.cwd), filepath.FromSlash(tt.path))
		assert.Equal(t, filepath.FromSlash(tt.want), got)
	}
}

func TestBagFilterAndSort(t *testing.T) {
	b := NewBag()
	b.Add(Diagnostic{Category: CategoryWarning, File: "/b.ts", Line: 1})
	b.Add(Diagnostic{Category: CategoryError, File: "/b.ts", Line: 1, Code: 2})
	b.Add(Diagnostic{Category: CategoryError, File: "/a.ts", Line: 9})
	b.Add(Errorf(OptImportingTSExtensionsWithEmit, "benign"))

	assert.True(t, b.HasErrors())

	errs := b.Filter(func(d Diagnostic) bool {
		return d.IsError() && d.Code != OptImportingTSExtensionsWithEmit
	})
	errs.Sort()
	items := errs.Items()
	if assert.Len(t, items, 2) {
		assert.Equal(t, "/a.ts", items[0].File)
		assert.Equal(t, Code(2), items[1].Code)
	}
	assert.Equal(t, 4, b.Len())
}
