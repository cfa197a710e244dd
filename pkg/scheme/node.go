package scheme

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Kind is the role of a node in a process schema, decoded from obj_type.
type Kind int

const (
	// KindUnknown is any obj_type outside 0..3, or a missing obj_type.
	KindUnknown Kind = -1
	// KindCondition routes control flow through one of several logics.
	KindCondition Kind = 0
	// KindStart is the unique entry point of the process.
	KindStart Kind = 1
	// KindEnd terminates the process, successfully or with an error.
	KindEnd Kind = 2
	// KindNormal is a regular processing step.
	KindNormal Kind = 3
)

// errorTag marks an end node as an error terminal when found in extra.
const errorTag = "error"

var kindNames = map[Kind]string{
	KindUnknown:   "unknown",
	KindCondition: "condition",
	KindStart:     "start",
	KindEnd:       "end",
	KindNormal:    "normal",
}

// String returns the lowercase kind name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindUnknown]
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name. Unknown names decode as KindUnknown.
func (k *Kind) UnmarshalText(b []byte) error {
	*k = KindUnknown
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
		}
	}
	return nil
}

// CenterPivot reports whether shapes of this kind are positioned by their
// center rather than their top-left corner. Start and end nodes are round.
func (k Kind) CenterPivot() bool {
	return k == KindStart || k == KindEnd
}

func kindOf(v any) Kind {
	n, ok := v.(json.Number)
	if !ok {
		if f, isFloat := v.(float64); isFloat {
			n = json.Number(strconv.FormatFloat(f, 'f', -1, 64))
		} else if i, isInt := v.(int); isInt {
			n = json.Number(strconv.Itoa(i))
		} else {
			return KindUnknown
		}
	}
	i, err := n.Int64()
	if err != nil {
		return KindUnknown
	}
	k := Kind(i)
	if _, known := kindNames[k]; !known {
		return KindUnknown
	}
	return k
}

// Node is a view over one entry of scheme.nodes.
//
// ID, Kind, Targets and Extra are decoded once when the document is parsed.
// The position is read from and written to the underlying JSON object.
type Node struct {
	ID      string   // Identifier, numbers normalized to their text form
	Kind    Kind     // Decoded from obj_type
	Targets []string // to_node_id of each routing logic, in order
	Extra   string   // Free-text tag; empty when absent or not a string

	routed bool
	raw    map[string]any
}

// NewNode builds a node with the given routing targets. A node built with no
// targets has no routing rules at all.
func NewNode(id string, kind Kind, targets ...string) *Node {
	raw := map[string]any{
		"id":       id,
		"obj_type": json.Number(strconv.Itoa(int(kind))),
	}
	n := &Node{ID: id, Kind: kind, raw: raw}
	if len(targets) > 0 {
		logics := make([]any, 0, len(targets))
		for _, t := range targets {
			logics = append(logics, map[string]any{"type": "go", "to_node_id": t})
		}
		raw["condition"] = map[string]any{"logics": logics}
		n.Targets = append([]string(nil), targets...)
		n.routed = true
	}
	return n
}

// WithExtra sets the node's free-text tag and returns the node.
func (n *Node) WithExtra(extra string) *Node {
	n.Extra = extra
	n.raw["extra"] = extra
	return n
}

// Routed reports whether the node carries routing rules (condition.logics).
// Nodes without routing rules have no outgoing edges.
func (n *Node) Routed() bool { return n.routed }

// ErrorTerminal reports whether the node is an end node tagged as an error.
func (n *Node) ErrorTerminal() bool {
	return n.Kind == KindEnd && strings.Contains(n.Extra, errorTag)
}

// Position returns the node's current pixel position. ok is false when
// either coordinate is absent or not a number.
func (n *Node) Position() (x, y float64, ok bool) {
	x, okX := number(n.raw["x"])
	y, okY := number(n.raw["y"])
	return x, y, okX && okY
}

// SetPosition writes x and y onto the node's JSON object.
func (n *Node) SetPosition(x, y float64) {
	n.raw["x"] = x
	n.raw["y"] = y
}

// Field returns a raw field of the node's JSON object, such as "title".
func (n *Node) Field(key string) (any, bool) {
	v, ok := n.raw[key]
	return v, ok
}

func newNode(raw map[string]any) (*Node, bool) {
	id, ok := parseID(raw["id"])
	if !ok {
		return nil, false
	}
	n := &Node{
		ID:   id,
		Kind: kindOf(raw["obj_type"]),
		raw:  raw,
	}
	if extra, ok := raw["extra"].(string); ok {
		n.Extra = extra
	}
	if cond, ok := raw["condition"].(map[string]any); ok {
		if logics, ok := cond["logics"].([]any); ok {
			n.routed = true
			for _, l := range logics {
				logic, ok := l.(map[string]any)
				if !ok {
					continue
				}
				if to, ok := parseID(logic["to_node_id"]); ok {
					n.Targets = append(n.Targets, to)
				}
			}
		}
	}
	return n, true
}

// parseID normalizes a JSON identifier. Empty strings and non-scalar values
// are not identifiers.
func parseID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, id != ""
	case json.Number:
		return id.String(), true
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case int:
		return strconv.Itoa(id), true
	}
	return "", false
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
