package buildpipeline

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tsload/internal/diag"
	"tsload/internal/project"
	"tsload/internal/project/dag"
)

// buildReferences builds every project reachable through root's references,
// dependencies first, without building root itself. Problems with the
// reference graph come back as graph diagnostics for the program; failed
// builds come back as error diagnostics in failed. Builds are shared per
// config path between concurrent callers.
func (p *Pipeline) buildReferences(ctx context.Context, root *project.Config) (graph, failed []diag.Diagnostic, err error) {
	configs := map[string]*project.Config{root.Path: root}
	var nodes []dag.Node
	queue := []*project.Config{root}
	for len(queue) > 0 {
		cfg := queue[0]
		queue = queue[1:]
		node := dag.Node{Path: cfg.Path}
		for _, ref := range cfg.References {
			node.Deps = append(node.Deps, ref.Path)
			if _, seen := configs[ref.Path]; seen {
				continue
			}
			refCfg, err := project.Parse(ref.Path)
			if err != nil {
				Logger().Debug("referenced project unusable", zap.String("config", ref.Path), zap.Error(err))
				configs[ref.Path] = nil
				continue
			}
			configs[ref.Path] = refCfg
			queue = append(queue, refCfg)
		}
		nodes = append(nodes, node)
	}

	bag := diag.NewBag()
	idx := dag.BuildIndex(nodes)
	topo := dag.ToposortKahn(dag.BuildGraph(idx, nodes, diag.BagReporter{Bag: bag}))
	if d, cyclic := dag.CycleDiagnostic(idx, topo); cyclic {
		bag.Add(d.InFile(root.Path))
	}

	var mu sync.Mutex
	for _, batch := range topo.Batches {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.GOMAXPROCS(0))
		for _, path := range idx.Paths(batch) {
			if path == root.Path {
				continue
			}
			cfg := configs[path]
			if cfg == nil {
				continue
			}
			g.Go(func() error {
				_, err, shared := p.builds.Do(path, func() (any, error) {
					return nil, p.engine.BuildProject(gctx, cfg)
				})
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					Logger().Warn("reference build failed", zap.String("config", path), zap.Error(err))
					d := diag.Errorf(diag.CfgReferenceNotBuilt, "Referenced project '%s' could not be built: %v", path, err)
					mu.Lock()
					failed = append(failed, d.InFile(root.Path))
					mu.Unlock()
					return nil
				}
				Logger().Debug("reference built", zap.String("config", path), zap.Bool("shared", shared))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return bag.Items(), failed, err
		}
	}
	return bag.Items(), failed, nil
}
