package layout

import (
	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/scheme"
)

// Flow is one node's outgoing edges split by role. Both lists keep edge order.
type Flow struct {
	Main   []string
	Branch []string
}

// Classify splits src's outgoing edges into main flow and branches.
// Targets missing from ix are dropped with a DANGLING_EDGE_REFERENCE warning
// and do not take the condition's branch slot.
func Classify(src *scheme.Node, ix *Index) (Flow, []errors.Warning) {
	var (
		flow     Flow
		warnings []errors.Warning
	)
	for _, id := range ix.Targets(src.ID) {
		target, ok := ix.Node(id)
		if !ok {
			warnings = append(warnings, errors.Warning{
				Code:    errors.ErrCodeDanglingEdge,
				NodeID:  src.ID,
				Target:  id,
				Message: "edge " + src.ID + " -> " + id + " targets an unknown node",
			})
			continue
		}

		switch {
		case src.Kind == scheme.KindCondition && len(flow.Branch) == 0:
			flow.Branch = append(flow.Branch, id)
		case target.ErrorTerminal():
			flow.Branch = append(flow.Branch, id)
		default:
			flow.Main = append(flow.Main, id)
		}
	}
	return flow, warnings
}
