package buildpipeline

// Options are the loader settings fixed at registration time.
type Options struct {
	// Check enables type-level diagnostics. Nil means enabled.
	Check *bool `msgpack:"check,omitempty" toml:"check" json:"check,omitempty"`
	// Defaults is the tsconfig used for files no project config claims.
	Defaults string `msgpack:"defaults,omitempty" toml:"defaults" json:"defaults,omitempty"`
}

// CheckEnabled applies the default of true.
func (o Options) CheckEnabled() bool {
	return o.Check == nil || *o.Check
}
