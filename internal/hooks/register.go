package hooks

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"tsload/internal/buildpipeline"
	"tsload/internal/engine"
)

// Register installs a Loader for eng on chain, handing it opts through the
// same serialized payload a separate loader context would receive.
func Register(chain *Chain, eng engine.Engine, opts buildpipeline.Options, popts ...buildpipeline.PipelineOption) (*Loader, error) {
	data, err := msgpack.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("encode loader options: %w", err)
	}
	l := NewLoader(eng, popts...)
	if err := chain.Register(l, data); err != nil {
		return nil, err
	}
	return l, nil
}
