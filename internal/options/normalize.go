package options

import (
	"fmt"
)

const (
	// DefaultModule and DefaultModuleResolution are applied together when a
	// config sets neither.
	DefaultModule           = ModuleNode16
	DefaultModuleResolution = ResolutionNode16
	DefaultTarget           = TargetES2023
)

// Defaults is used when no config governs a file.
func Defaults() *CompilerOptions {
	return &CompilerOptions{
		Strict:                     Ptr(true),
		AllowImportingTsExtensions: Ptr(true),
	}
}

// DefaultsDescription names the module/target pair used without a config.
func DefaultsDescription() string {
	return fmt.Sprintf("module %s and target %s", DefaultModule, DefaultTarget)
}

// Normalize returns a copy of in patched for single-file emission: exactly one
// JavaScript output with an inline source map and nothing else. Applying it to
// its own output changes nothing.
func Normalize(in *CompilerOptions, check bool) *CompilerOptions {
	o := in.Clone()

	o.SuppressOutputPathCheck = Ptr(true)
	o.EmitBOM = Ptr(false)
	o.EmitDeclarationOnly = Ptr(false)
	o.Declaration = Ptr(false)
	o.DeclarationMap = Ptr(false)
	o.InlineSourceMap = Ptr(true)
	o.NoEmit = Ptr(false)
	o.OutFile = nil
	o.Out = nil
	o.SourceMap = Ptr(false)

	if o.Module == nil && o.ModuleResolution == nil {
		o.Module = Ptr(DefaultModule)
		o.ModuleResolution = Ptr(DefaultModuleResolution)
	}
	if o.Target == nil {
		o.Target = Ptr(DefaultTarget)
	}

	if !check {
		o.NoCheck = Ptr(true)
	}
	return o
}

// EffectiveModule is the module kind the engine emits with, including the
// compiler's own fallback when module is unset.
func (o *CompilerOptions) EffectiveModule() ModuleKind {
	if o.Module != nil {
		return *o.Module
	}
	if o.ModuleResolution != nil {
		switch *o.ModuleResolution {
		case ResolutionNode16:
			return ModuleNode16
		case ResolutionNodeNext:
			return ModuleNodeNext
		}
	}
	if o.EffectiveTarget() >= TargetES2015 {
		return ModuleES2015
	}
	return ModuleCommonJS
}

// EffectiveTarget applies the compiler fallback of ES5.
func (o *CompilerOptions) EffectiveTarget() ScriptTarget {
	if o.Target != nil {
		return *o.Target
	}
	return TargetES5
}
