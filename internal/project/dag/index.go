// Package dag orders project references so that every referenced project is
// built before the projects that depend on it.
package dag

import (
	"sort"
)

type NodeID uint32

type Index struct {
	PathToID map[string]NodeID
	IDToPath []string
}

// BuildIndex collects every config path (nodes and their deps), sorts them and
// hands out IDs in that order.
func BuildIndex(nodes []Node) Index {
	uniq := make(map[string]struct{}, len(nodes))
	for _, node := range nodes {
		if node.Path != "" {
			uniq[node.Path] = struct{}{}
		}
		for _, dep := range node.Deps {
			if dep == "" {
				continue
			}
			uniq[dep] = struct{}{}
		}
	}

	paths := make([]string, 0, len(uniq))
	for path := range uniq {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	pathToID := make(map[string]NodeID, len(paths))
	for i, path := range paths {
		pathToID[path] = NodeID(i)
	}

	return Index{
		PathToID: pathToID,
		IDToPath: paths,
	}
}
