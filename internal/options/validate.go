package options

import (
	"tsload/internal/diag"
)

// Validate reports option combinations the compiler rejects. Diagnostics are
// global (no file) and have CategoryError.
func Validate(o *CompilerOptions) []diag.Diagnostic {
	var out []diag.Diagnostic

	if Bool(o.SourceMap) && Bool(o.InlineSourceMap) {
		out = append(out, diag.Errorf(diag.OptSourceMapWithInlineSourceMap,
			"Option 'sourceMap' cannot be specified with option 'inlineSourceMap'."))
	}

	if Bool(o.AllowImportingTsExtensions) && !Bool(o.NoEmit) && !Bool(o.EmitDeclarationOnly) {
		out = append(out, diag.Errorf(diag.OptImportingTSExtensionsWithEmit,
			"Option 'allowImportingTsExtensions' can only be used when either 'noEmit' or 'emitDeclarationOnly' is set."))
	}

	if o.ModuleResolution != nil {
		res := *o.ModuleResolution
		mod := o.EffectiveModule()
		switch res {
		case ResolutionNode16, ResolutionNodeNext:
			if !mod.IsNode() {
				want := ModuleNode16
				if res == ResolutionNodeNext {
					want = ModuleNodeNext
				}
				out = append(out, diag.Errorf(diag.OptModuleMustMatchResolution,
					"Option 'module' must be set to '%s' when option 'moduleResolution' is set to '%s'.", want, res))
			}
		case ResolutionBundler:
			if mod != ModulePreserve && mod < ModuleES2015 {
				out = append(out, diag.Errorf(diag.OptBundlerRequiresESModule,
					"Option 'bundler' can only be used when 'module' is set to 'preserve' or to 'es2015' or later."))
			}
		}
	}
	return out
}
