package dag

import (
	"fmt"
	"slices"
	"strings"

	"tsload/internal/diag"
)

// Graph edges run from a referenced project to the projects referencing it,
// so a topological order lists dependencies first.
type Graph struct {
	Edges   [][]NodeID // Edges[dep] = []dependents
	Indeg   []int      // unbuilt dependency count; only present nodes are counted
	Present []bool     // the node was parsed, not merely referenced
}

// Node is one project config and the configs it references.
type Node struct {
	Path string
	Deps []string
}

func BuildGraph(idx Index, nodes []Node, r diag.Reporter) Graph {
	count := len(idx.IDToPath)
	g := Graph{
		Edges:   make([][]NodeID, count),
		Indeg:   make([]int, count),
		Present: make([]bool, count),
	}
	if r == nil {
		r = diag.NopReporter{}
	}

	deps := make([][]string, count)
	for _, node := range nodes {
		id, ok := idx.PathToID[node.Path]
		if !ok || g.Present[int(id)] {
			continue
		}
		g.Present[int(id)] = true
		deps[int(id)] = node.Deps
	}

	for from := range count {
		if !g.Present[from] {
			continue
		}
		seen := make(map[NodeID]struct{}, len(deps[from]))
		for _, dep := range deps[from] {
			depID, ok := idx.PathToID[dep]
			if !ok || depID == NodeID(from) {
				continue
			}
			if _, dup := seen[depID]; dup {
				continue
			}
			seen[depID] = struct{}{}
			if !g.Present[int(depID)] {
				r.Report(diag.Errorf(diag.CfgFileNotFound, "File '%s' not found.", dep).InFile(idx.IDToPath[from]))
				continue
			}
			g.Edges[int(depID)] = append(g.Edges[int(depID)], NodeID(from))
			g.Indeg[from]++
		}
	}
	for i := range g.Edges {
		if len(g.Edges[i]) > 1 {
			slices.Sort(g.Edges[i])
		}
	}
	return g
}

// CycleDiagnostic describes the projects left over by a cyclic sort.
func CycleDiagnostic(idx Index, topo *Topo) (diag.Diagnostic, bool) {
	if !topo.Cyclic || len(topo.Cycles) == 0 {
		return diag.Diagnostic{}, false
	}
	paths := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		paths = append(paths, idx.IDToPath[int(id)])
	}
	msg := fmt.Sprintf("Project references may not form a circular graph. Cycle detected: %s", strings.Join(paths, " -> "))
	return diag.Errorf(diag.CfgReferenceCycle, "%s", msg), true
}
