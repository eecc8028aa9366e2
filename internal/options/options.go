// Package options models compiler options as read from tsconfig files and
// forces them into the single-file emission profile the loader relies on.
package options

import (
	"maps"
	"path/filepath"
	"slices"

	"tsload/internal/diag"
)

// CompilerOptions holds every option the loader reads or forces as an explicit
// field; nil means "unset". Everything else travels untouched in Extra.
type CompilerOptions struct {
	Module           *ModuleKind           `json:"module,omitempty"`
	ModuleResolution *ModuleResolutionKind `json:"moduleResolution,omitempty"`
	Target           *ScriptTarget         `json:"target,omitempty"`

	Strict                     *bool `json:"strict,omitempty"`
	AllowImportingTsExtensions *bool `json:"allowImportingTsExtensions,omitempty"`
	SuppressOutputPathCheck    *bool `json:"suppressOutputPathCheck,omitempty"`
	EmitBOM                    *bool `json:"emitBOM,omitempty"`
	EmitDeclarationOnly        *bool `json:"emitDeclarationOnly,omitempty"`
	Declaration                *bool `json:"declaration,omitempty"`
	DeclarationMap             *bool `json:"declarationMap,omitempty"`
	Composite                  *bool `json:"composite,omitempty"`
	InlineSourceMap            *bool `json:"inlineSourceMap,omitempty"`
	SourceMap                  *bool `json:"sourceMap,omitempty"`
	NoEmit                     *bool `json:"noEmit,omitempty"`
	NoCheck                    *bool `json:"noCheck,omitempty"`
	VerbatimModuleSyntax       *bool `json:"verbatimModuleSyntax,omitempty"`
	ExperimentalDecorators     *bool `json:"experimentalDecorators,omitempty"`
	UseDefineForClassFields    *bool `json:"useDefineForClassFields,omitempty"`

	// Path-valued options are absolute once parsed from a config file.
	OutFile *string `json:"outFile,omitempty"`
	Out     *string `json:"out,omitempty"`
	OutDir  *string `json:"outDir,omitempty"`
	RootDir *string `json:"rootDir,omitempty"`
	JSX     *string `json:"jsx,omitempty"`

	Extra map[string]any `json:"-"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Bool dereferences p, treating nil as false.
func Bool(p *bool) bool { return p != nil && *p }

// Str dereferences p, treating nil as "".
func Str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Clone returns a deep copy; a nil receiver yields empty options.
func (o *CompilerOptions) Clone() *CompilerOptions {
	if o == nil {
		return &CompilerOptions{}
	}
	return (&CompilerOptions{}).Merge(o)
}

// Merge overrides o with every option set in over and returns o.
// Pointers are copied, so the result never aliases over.
func (o *CompilerOptions) Merge(over *CompilerOptions) *CompilerOptions {
	if over == nil {
		return o
	}
	set := func(dst **bool, src *bool) {
		if src != nil {
			*dst = clonePtr(src)
		}
	}
	setStr := func(dst **string, src *string) {
		if src != nil {
			*dst = clonePtr(src)
		}
	}
	if over.Module != nil {
		o.Module = clonePtr(over.Module)
	}
	if over.ModuleResolution != nil {
		o.ModuleResolution = clonePtr(over.ModuleResolution)
	}
	if over.Target != nil {
		o.Target = clonePtr(over.Target)
	}
	set(&o.Strict, over.Strict)
	set(&o.AllowImportingTsExtensions, over.AllowImportingTsExtensions)
	set(&o.SuppressOutputPathCheck, over.SuppressOutputPathCheck)
	set(&o.EmitBOM, over.EmitBOM)
	set(&o.EmitDeclarationOnly, over.EmitDeclarationOnly)
	set(&o.Declaration, over.Declaration)
	set(&o.DeclarationMap, over.DeclarationMap)
	set(&o.Composite, over.Composite)
	set(&o.InlineSourceMap, over.InlineSourceMap)
	set(&o.SourceMap, over.SourceMap)
	set(&o.NoEmit, over.NoEmit)
	set(&o.NoCheck, over.NoCheck)
	set(&o.VerbatimModuleSyntax, over.VerbatimModuleSyntax)
	set(&o.ExperimentalDecorators, over.ExperimentalDecorators)
	set(&o.UseDefineForClassFields, over.UseDefineForClassFields)
	setStr(&o.OutFile, over.OutFile)
	setStr(&o.Out, over.Out)
	setStr(&o.OutDir, over.OutDir)
	setStr(&o.RootDir, over.RootDir)
	setStr(&o.JSX, over.JSX)
	if len(over.Extra) > 0 {
		if o.Extra == nil {
			o.Extra = make(map[string]any, len(over.Extra))
		}
		maps.Copy(o.Extra, over.Extra)
	}
	return o
}

// FromMap decodes a raw "compilerOptions" object. Invalid values are reported
// and skipped; unknown keys go to Extra. Relative path options are resolved
// against baseDir.
func FromMap(raw map[string]any, baseDir string, r diag.Reporter) *CompilerOptions {
	if r == nil {
		r = diag.NopReporter{}
	}
	o := &CompilerOptions{}
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		value := raw[key]
		switch key {
		case "module":
			if v, ok := enumValue(key, value, moduleKinds, r); ok {
				o.Module = &v
			}
		case "moduleResolution":
			if v, ok := enumValue(key, value, resolutionKinds, r); ok {
				o.ModuleResolution = &v
			}
		case "target":
			if v, ok := enumValue(key, value, scriptTargets, r); ok {
				o.Target = &v
			}
		case "outFile", "out", "outDir", "rootDir":
			s, ok := stringValue(key, value, r)
			if !ok {
				continue
			}
			if !filepath.IsAbs(s) {
				s = filepath.Join(baseDir, s)
			}
			p := filepath.Clean(s)
			switch key {
			case "outFile":
				o.OutFile = &p
			case "out":
				o.Out = &p
			case "outDir":
				o.OutDir = &p
			default:
				o.RootDir = &p
			}
		case "jsx":
			if s, ok := stringValue(key, value, r); ok {
				o.JSX = &s
			}
		default:
			if dst := o.boolField(key); dst != nil {
				if b, ok := value.(bool); ok {
					*dst = &b
				} else {
					r.Report(diag.Errorf(diag.CfgInvalidOptionValue,
						"Compiler option '%s' requires a value of type boolean.", key))
				}
				continue
			}
			if o.Extra == nil {
				o.Extra = make(map[string]any)
			}
			o.Extra[key] = value
		}
	}
	return o
}

func (o *CompilerOptions) boolField(key string) **bool {
	switch key {
	case "strict":
		return &o.Strict
	case "allowImportingTsExtensions":
		return &o.AllowImportingTsExtensions
	case "suppressOutputPathCheck":
		return &o.SuppressOutputPathCheck
	case "emitBOM":
		return &o.EmitBOM
	case "emitDeclarationOnly":
		return &o.EmitDeclarationOnly
	case "declaration":
		return &o.Declaration
	case "declarationMap":
		return &o.DeclarationMap
	case "composite":
		return &o.Composite
	case "inlineSourceMap":
		return &o.InlineSourceMap
	case "sourceMap":
		return &o.SourceMap
	case "noEmit":
		return &o.NoEmit
	case "noCheck":
		return &o.NoCheck
	case "verbatimModuleSyntax":
		return &o.VerbatimModuleSyntax
	case "experimentalDecorators":
		return &o.ExperimentalDecorators
	case "useDefineForClassFields":
		return &o.UseDefineForClassFields
	}
	return nil
}

func enumValue[T comparable](key string, value any, names []enumName[T], r diag.Reporter) (T, bool) {
	var zero T
	s, ok := value.(string)
	if ok {
		if v, found := enumParse(names, s); found {
			return v, true
		}
	}
	r.Report(diag.Errorf(diag.CfgInvalidOptionValue,
		"Argument for '--%s' option must be: %s.", key, spellings(names)))
	return zero, false
}

func stringValue(key string, value any, r diag.Reporter) (string, bool) {
	s, ok := value.(string)
	if !ok {
		r.Report(diag.Errorf(diag.CfgInvalidOptionValue,
			"Compiler option '%s' requires a value of type string.", key))
	}
	return s, ok
}
