// Package hooks adapts the pipeline to a resolve/load hook chain, the way a
// host module loader calls customization hooks: each hook either answers and
// short-circuits, or hands the request to the next one.
package hooks

import (
	"context"

	"tsload/internal/modformat"
)

type ResolveContext struct {
	// ParentURL is the URL of the importing module; empty for entry points.
	ParentURL        string
	Conditions       []string
	ImportAttributes map[string]string
}

type ResolveResult struct {
	URL              string
	Format           modformat.Format
	ImportAttributes map[string]string
	// ShortCircuit stops the chain; the host uses this result as final.
	ShortCircuit bool
}

type LoadContext struct {
	// Format is the host's guess, usually from resolve. May be empty.
	Format           modformat.Format
	Conditions       []string
	ImportAttributes map[string]string
}

type LoadResult struct {
	Source       string
	Format       modformat.Format
	ShortCircuit bool
}

// NextResolve invokes the rest of the chain.
type NextResolve func(ctx context.Context, specifier string, rc ResolveContext) (ResolveResult, error)

// NextLoad invokes the rest of the chain.
type NextLoad func(ctx context.Context, url string, lc LoadContext) (LoadResult, error)

// Module is a set of hooks. Initialize receives the registration payload
// exactly once, before any Resolve or Load.
type Module interface {
	Initialize(data []byte) error
	Resolve(ctx context.Context, specifier string, rc ResolveContext, next NextResolve) (ResolveResult, error)
	Load(ctx context.Context, url string, lc LoadContext, next NextLoad) (LoadResult, error)
}
