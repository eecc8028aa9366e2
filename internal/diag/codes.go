package diag

import (
	"fmt"
)

type Code uint32

const (
	// UnknownCode marks diagnostics coming from engines without a code table.
	UnknownCode Code = 0

	// Options
	OptSourceMapWithInlineSourceMap Code = 5053
	OptBundlerRequiresESModule      Code = 5095
	// OptImportingTSExtensionsWithEmit is reported whenever
	// allowImportingTsExtensions is combined with real emit. The loader always
	// emits, so the pipeline drops it.
	OptImportingTSExtensionsWithEmit Code = 5096
	OptModuleMustMatchResolution     Code = 5110

	// Config files
	CfgInvalidOptionValue Code = 6046
	CfgFileNotFound       Code = 6053
	CfgReferenceCycle     Code = 6202
	CfgReferenceNotBuilt  Code = 6305
	CfgNoInputs           Code = 18003
)

var codeTitles = map[Code]string{
	OptSourceMapWithInlineSourceMap:  "sourceMap with inlineSourceMap",
	OptBundlerRequiresESModule:       "bundler resolution requires ES module",
	OptImportingTSExtensionsWithEmit: "allowImportingTsExtensions with emit",
	OptModuleMustMatchResolution:     "module must match moduleResolution",
	CfgInvalidOptionValue:            "invalid option value",
	CfgFileNotFound:                  "file not found",
	CfgReferenceCycle:                "circular project references",
	CfgReferenceNotBuilt:             "referenced project not built",
	CfgNoInputs:                      "no inputs",
}

func (c Code) String() string {
	if c == UnknownCode {
		return ""
	}
	return fmt.Sprintf("TS%d", uint32(c))
}

// Title returns a short description of the code, or "" when unknown.
func (c Code) Title() string {
	return codeTitles[c]
}
