package options

import (
	"fmt"
	"strconv"
	"strings"
)

// ModuleKind selects the module system of emitted code. Values follow the
// TypeScript compiler so that ranges (ES family, Node family) compare the same way.
type ModuleKind int

const (
	ModuleNone     ModuleKind = 0
	ModuleCommonJS ModuleKind = 1
	ModuleAMD      ModuleKind = 2
	ModuleUMD      ModuleKind = 3
	ModuleSystem   ModuleKind = 4
	ModuleES2015   ModuleKind = 5
	ModuleES2020   ModuleKind = 6
	ModuleES2022   ModuleKind = 7
	ModuleESNext   ModuleKind = 99
	ModuleNode16   ModuleKind = 100
	ModuleNode18   ModuleKind = 101
	ModuleNode20   ModuleKind = 102
	ModuleNodeNext ModuleKind = 199
	ModulePreserve ModuleKind = 200
)

var moduleKinds = []enumName[ModuleKind]{
	{"None", ModuleNone},
	{"CommonJS", ModuleCommonJS},
	{"AMD", ModuleAMD},
	{"UMD", ModuleUMD},
	{"System", ModuleSystem},
	{"ES2015", ModuleES2015},
	{"ES6", ModuleES2015},
	{"ES2020", ModuleES2020},
	{"ES2022", ModuleES2022},
	{"ESNext", ModuleESNext},
	{"Node16", ModuleNode16},
	{"Node18", ModuleNode18},
	{"Node20", ModuleNode20},
	{"NodeNext", ModuleNodeNext},
	{"Preserve", ModulePreserve},
}

// IsES reports whether k emits ECMAScript modules unconditionally.
func (k ModuleKind) IsES() bool { return k >= ModuleES2015 && k <= ModuleESNext }

// IsNode reports whether k decides the module system per file.
func (k ModuleKind) IsNode() bool { return k >= ModuleNode16 && k <= ModuleNodeNext }

func (k ModuleKind) String() string { return enumString(moduleKinds, k) }

func (k ModuleKind) MarshalText() ([]byte, error) { return []byte(strings.ToLower(k.String())), nil }

func (k *ModuleKind) UnmarshalText(b []byte) error {
	v, ok := ParseModuleKind(string(b))
	if !ok {
		return fmt.Errorf("unknown module kind %q", b)
	}
	*k = v
	return nil
}

// ParseModuleKind accepts the tsconfig spelling, case-insensitively.
func ParseModuleKind(s string) (ModuleKind, bool) { return enumParse(moduleKinds, s) }

// ModuleResolutionKind selects the specifier resolution algorithm.
type ModuleResolutionKind int

const (
	ResolutionClassic  ModuleResolutionKind = 1
	ResolutionNode10   ModuleResolutionKind = 2
	ResolutionNode16   ModuleResolutionKind = 3
	ResolutionNodeNext ModuleResolutionKind = 99
	ResolutionBundler  ModuleResolutionKind = 100
)

var resolutionKinds = []enumName[ModuleResolutionKind]{
	{"Classic", ResolutionClassic},
	{"Node10", ResolutionNode10},
	{"Node", ResolutionNode10},
	{"Node16", ResolutionNode16},
	{"NodeNext", ResolutionNodeNext},
	{"Bundler", ResolutionBundler},
}

func (k ModuleResolutionKind) String() string { return enumString(resolutionKinds, k) }

func (k ModuleResolutionKind) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(k.String())), nil
}

func (k *ModuleResolutionKind) UnmarshalText(b []byte) error {
	v, ok := ParseModuleResolutionKind(string(b))
	if !ok {
		return fmt.Errorf("unknown module resolution %q", b)
	}
	*k = v
	return nil
}

func ParseModuleResolutionKind(s string) (ModuleResolutionKind, bool) {
	return enumParse(resolutionKinds, s)
}

// ScriptTarget is the language level of emitted code.
type ScriptTarget int

const (
	TargetES3    ScriptTarget = 0
	TargetES5    ScriptTarget = 1
	TargetES2015 ScriptTarget = 2
	TargetES2016 ScriptTarget = 3
	TargetES2017 ScriptTarget = 4
	TargetES2018 ScriptTarget = 5
	TargetES2019 ScriptTarget = 6
	TargetES2020 ScriptTarget = 7
	TargetES2021 ScriptTarget = 8
	TargetES2022 ScriptTarget = 9
	TargetES2023 ScriptTarget = 10
	TargetES2024 ScriptTarget = 11
	TargetESNext ScriptTarget = 99
)

var scriptTargets = []enumName[ScriptTarget]{
	{"ES3", TargetES3},
	{"ES5", TargetES5},
	{"ES2015", TargetES2015},
	{"ES6", TargetES2015},
	{"ES2016", TargetES2016},
	{"ES2017", TargetES2017},
	{"ES2018", TargetES2018},
	{"ES2019", TargetES2019},
	{"ES2020", TargetES2020},
	{"ES2021", TargetES2021},
	{"ES2022", TargetES2022},
	{"ES2023", TargetES2023},
	{"ES2024", TargetES2024},
	{"ESNext", TargetESNext},
}

func (t ScriptTarget) String() string { return enumString(scriptTargets, t) }

func (t ScriptTarget) MarshalText() ([]byte, error) { return []byte(strings.ToLower(t.String())), nil }

func (t *ScriptTarget) UnmarshalText(b []byte) error {
	v, ok := ParseScriptTarget(string(b))
	if !ok {
		return fmt.Errorf("unknown target %q", b)
	}
	*t = v
	return nil
}

func ParseScriptTarget(s string) (ScriptTarget, bool) { return enumParse(scriptTargets, s) }

type enumName[T comparable] struct {
	name  string
	value T
}

// enumString returns the first spelling registered for v.
func enumString[T ~int](names []enumName[T], v T) string {
	for _, n := range names {
		if n.value == v {
			return n.name
		}
	}
	return strconv.Itoa(int(v))
}

func enumParse[T comparable](names []enumName[T], s string) (T, bool) {
	for _, n := range names {
		if strings.EqualFold(n.name, s) {
			return n.value, true
		}
	}
	var zero T
	return zero, false
}

// spellings lists the accepted lower-case values, for diagnostics.
func spellings[T comparable](names []enumName[T]) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "'" + strings.ToLower(n.name) + "'"
	}
	return strings.Join(out, ", ")
}
