package options

import (
	"maps"

	"github.com/goccy/go-json"
)

// ToMap renders o in tsconfig "compilerOptions" shape, Extra included.
// Explicit fields win over Extra entries with the same name.
func (o *CompilerOptions) ToMap() (map[string]any, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	known := make(map[string]any)
	if err := json.Unmarshal(data, &known); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(known)+len(o.Extra))
	maps.Copy(out, o.Extra)
	maps.Copy(out, known)
	return out, nil
}
