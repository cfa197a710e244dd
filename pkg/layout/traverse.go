package layout

import (
	"github.com/matzehuels/flowlayout/pkg/errors"
)

// Cell is a node's slot in the layout grid.
type Cell struct {
	Level  int `json:"level" bson:"level"`   // Row, increasing downward
	Column int `json:"column" bson:"column"` // Slot, increasing rightward
}

// Role records how the traversal first reached a node.
type Role int

const (
	// RoleUnreached marks nodes the traversal never visited.
	RoleUnreached Role = iota
	// RoleStart marks the node the traversal started from.
	RoleStart
	// RoleMain marks nodes first reached through a main-flow edge.
	RoleMain
	// RoleBranch marks nodes first reached through a branch edge.
	RoleBranch
)

var roleNames = [...]string{"unreached", "start", "main", "branch"}

// String returns the lowercase role name.
func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return roleNames[RoleUnreached]
	}
	return roleNames[r]
}

// MarshalText encodes the role by name.
func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText decodes a role name. Unknown names decode as RoleUnreached.
func (r *Role) UnmarshalText(b []byte) error {
	*r = RoleUnreached
	for i, name := range roleNames {
		if name == string(b) {
			*r = Role(i)
		}
	}
	return nil
}

// Traversal is the outcome of one [Traverse] call.
type Traversal struct {
	Cells    map[string]Cell   // Cell of every visited node
	Roles    map[string]Role   // How each visited node was first reached
	Parents  map[string]string // Node that first reached each visited node
	Order    []string          // Node ids in visit order
	Warnings []errors.Warning  // Dangling edges met along the way
}

// frame is one pending visit on the work list.
type frame struct {
	id     string
	parent string
	cell   Cell
	role   Role
}

// Traverse assigns grid cells to every node reachable from startID.
//
// Nodes are visited depth-first: all main-flow targets of a node (and
// everything below them) before its branch targets. The visit order and the
// resulting cells match a recursive walk that checks a visited set on entry.
// startID must be present in ix.
func Traverse(ix *Index, startID string) *Traversal {
	t := &Traversal{
		Cells:   make(map[string]Cell, ix.Len()),
		Roles:   make(map[string]Role, ix.Len()),
		Parents: make(map[string]string, ix.Len()),
	}

	stack := []frame{{id: startID, role: RoleStart}}
	push := func(id, parent string, cell Cell, role Role) {
		if _, seen := t.Cells[id]; !seen {
			stack = append(stack, frame{id: id, parent: parent, cell: cell, role: role})
		}
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := t.Cells[f.id]; seen {
			continue
		}
		t.Cells[f.id] = f.cell
		t.Roles[f.id] = f.role
		if f.parent != "" {
			t.Parents[f.id] = f.parent
		}
		t.Order = append(t.Order, f.id)

		src, ok := ix.Node(f.id)
		if !ok {
			continue
		}
		flow, warnings := Classify(src, ix)
		t.Warnings = append(t.Warnings, warnings...)

		// Pushed in reverse so the first main target is popped first and
		// branches wait until the whole main flow below is done.
		for i := len(flow.Branch) - 1; i >= 0; i-- {
			push(flow.Branch[i], f.id, Cell{Level: f.cell.Level, Column: f.cell.Column + i + 1}, RoleBranch)
		}
		for i := len(flow.Main) - 1; i >= 0; i-- {
			push(flow.Main[i], f.id, Cell{Level: f.cell.Level + 1, Column: f.cell.Column}, RoleMain)
		}
	}
	return t
}
