package layout

import (
	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/scheme"
)

// Index is the lookup structure the traversal runs on.
// The zero value is not usable; use [BuildIndex].
type Index struct {
	nodes     map[string]*scheme.Node
	adjacency map[string][]string
}

// BuildIndex indexes nodes by id and collects each routed node's targets in
// edge order. Parallel edges are kept. Nodes without routing rules get no
// adjacency entry.
//
// Duplicate ids are reported as DUPLICATE_NODE_ID warnings: the later node
// takes the lookup slot and both nodes' edges accumulate under the id.
// A nil node list is a MALFORMED_SCHEMA error.
func BuildIndex(nodes []*scheme.Node) (*Index, []errors.Warning, error) {
	if nodes == nil {
		return nil, nil, errors.New(errors.ErrCodeMalformedSchema, "invalid process schema format: missing nodes array")
	}

	ix := &Index{
		nodes:     make(map[string]*scheme.Node, len(nodes)),
		adjacency: make(map[string][]string),
	}
	var warnings []errors.Warning
	for _, n := range nodes {
		if _, dup := ix.nodes[n.ID]; dup {
			warnings = append(warnings, errors.Warning{
				Code:    errors.ErrCodeDuplicateNodeID,
				NodeID:  n.ID,
				Message: "node id " + n.ID + " appears more than once",
			})
		}
		ix.nodes[n.ID] = n
		if n.Routed() && len(n.Targets) > 0 {
			ix.adjacency[n.ID] = append(ix.adjacency[n.ID], n.Targets...)
		}
	}
	return ix, warnings, nil
}

// Node returns the node with the given id.
func (ix *Index) Node(id string) (*scheme.Node, bool) {
	n, ok := ix.nodes[id]
	return n, ok
}

// Targets returns the ordered target ids of id's outgoing edges, dangling
// ones included. The slice must not be modified.
func (ix *Index) Targets(id string) []string { return ix.adjacency[id] }

// Len returns the number of distinct node ids.
func (ix *Index) Len() int { return len(ix.nodes) }
