package layout

import (
	"bytes"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/scheme"
)

// scenario builds start -> A(condition) -> {B error end, C normal} -> D end.
func scenario() *scheme.Document {
	return scheme.NewDocument(
		scheme.NewNode("start", scheme.KindStart, "A"),
		scheme.NewNode("A", scheme.KindCondition, "B", "C"),
		scheme.NewNode("B", scheme.KindEnd).WithExtra(`{"icon":"error"}`),
		scheme.NewNode("C", scheme.KindNormal, "D"),
		scheme.NewNode("D", scheme.KindEnd),
	)
}

func TestApplyScenario(t *testing.T) {
	doc := scenario()
	res, err := Apply(doc, Options{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	tests := []struct {
		id    string
		cell  Cell
		role  Role
		point Point
	}{
		{"start", Cell{0, 0}, RoleStart, Point{600, 100}},
		{"A", Cell{1, 0}, RoleMain, Point{500, 300}},
		{"B", Cell{1, 1}, RoleBranch, Point{900, 300}},
		{"C", Cell{2, 0}, RoleMain, Point{500, 500}},
		{"D", Cell{3, 0}, RoleMain, Point{600, 700}},
	}

	for i, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p, ok := res.Placement(tt.id)
			if !ok {
				t.Fatalf("%s not placed", tt.id)
			}
			if p.Cell != tt.cell {
				t.Errorf("cell = %+v, want %+v", p.Cell, tt.cell)
			}
			if p.Role != tt.role {
				t.Errorf("role = %v, want %v", p.Role, tt.role)
			}
			if p.Point != tt.point {
				t.Errorf("point = %+v, want %+v", p.Point, tt.point)
			}
			x, y, ok := doc.Nodes[i].Position()
			if !ok || x != tt.point.X || y != tt.point.Y {
				t.Errorf("document position = (%v, %v, %v), want (%v, %v)", x, y, ok, tt.point.X, tt.point.Y)
			}
		})
	}

	// Main flow is visited before branches.
	wantOrder := []string{"start", "A", "C", "D", "B"}
	for i, p := range res.Placements {
		if p.ID != wantOrder[i] {
			t.Errorf("Placements[%d] = %s, want %s", i, p.ID, wantOrder[i])
		}
	}
}

func TestPlanDoesNotMutate(t *testing.T) {
	doc := scenario()
	if _, err := Plan(doc, Options{}); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for _, n := range doc.Nodes {
		if _, _, ok := n.Position(); ok {
			t.Errorf("Plan wrote a position onto %s", n.ID)
		}
	}
}

func TestStartNodeRules(t *testing.T) {
	tests := []struct {
		name       string
		nodes      []*scheme.Node
		firstStart bool
		wantCode   errors.Code
		wantStart  string
	}{
		{
			name:     "no start",
			nodes:    []*scheme.Node{scheme.NewNode("a", scheme.KindNormal)},
			wantCode: errors.ErrCodeNoStartNode,
		},
		{
			name:     "empty schema",
			nodes:    []*scheme.Node{},
			wantCode: errors.ErrCodeNoStartNode,
		},
		{
			name: "two starts",
			nodes: []*scheme.Node{
				scheme.NewNode("s1", scheme.KindStart),
				scheme.NewNode("s2", scheme.KindStart),
			},
			wantCode: errors.ErrCodeNoStartNode,
		},
		{
			name: "two starts, first wins",
			nodes: []*scheme.Node{
				scheme.NewNode("a", scheme.KindNormal),
				scheme.NewNode("s1", scheme.KindStart),
				scheme.NewNode("s2", scheme.KindStart),
			},
			firstStart: true,
			wantStart:  "s1",
		},
		{
			name:      "single start",
			nodes:     []*scheme.Node{scheme.NewNode("s", scheme.KindStart)},
			wantStart: "s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := scheme.NewDocument(tt.nodes...)
			res, err := Apply(doc, Options{FirstStart: tt.firstStart})
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("error = %v, want %s", err, tt.wantCode)
				}
				for _, n := range doc.Nodes {
					if _, _, ok := n.Position(); ok {
						t.Errorf("failed Apply wrote a position onto %s", n.ID)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if res.StartID != tt.wantStart {
				t.Errorf("StartID = %q, want %q", res.StartID, tt.wantStart)
			}
		})
	}
}

func TestPlanNilDocument(t *testing.T) {
	_, err := Plan(nil, Options{})
	if !errors.Is(err, errors.ErrCodeMalformedSchema) {
		t.Errorf("error = %v, want MALFORMED_SCHEMA", err)
	}
}

func TestUnreachedNodesUntouched(t *testing.T) {
	placed := scheme.NewNode("island", scheme.KindNormal)
	placed.SetPosition(12, 34)
	doc := scheme.NewDocument(
		scheme.NewNode("s", scheme.KindStart, "e"),
		scheme.NewNode("e", scheme.KindEnd),
		placed,
		scheme.NewNode("ghost", scheme.KindNormal, "e"),
	)

	res, err := Apply(doc, Options{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	x, y, ok := placed.Position()
	if !ok || x != 12 || y != 34 {
		t.Errorf("island position = (%v, %v, %v), want (12, 34, true)", x, y, ok)
	}
	if _, _, ok := doc.Nodes[3].Position(); ok {
		t.Error("ghost should stay without a position")
	}
	if len(res.Unreached) != 2 || res.Unreached[0] != "island" || res.Unreached[1] != "ghost" {
		t.Errorf("Unreached = %v, want [island ghost]", res.Unreached)
	}
}

func TestDanglingEdgesAreWarnings(t *testing.T) {
	doc := scheme.NewDocument(
		scheme.NewNode("s", scheme.KindStart, "missing", "a"),
		scheme.NewNode("a", scheme.KindNormal),
	)

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel})
	res, err := Apply(doc, Options{Logger: logger})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", res.Warnings)
	}
	w := res.Warnings[0]
	if w.Code != errors.ErrCodeDanglingEdge || w.NodeID != "s" || w.Target != "missing" {
		t.Errorf("warning = %+v", w)
	}
	if !bytes.Contains(buf.Bytes(), []byte("unknown node")) {
		t.Errorf("warning was not logged: %q", buf.String())
	}

	p, _ := res.Placement("a")
	if p.Cell != (Cell{1, 0}) {
		t.Errorf("a cell = %+v, want {1 0}", p.Cell)
	}
}

func TestCustomConfig(t *testing.T) {
	cfg := Config{
		BaseX:             0,
		BaseY:             0,
		VerticalSpacing:   10,
		HorizontalSpacing: 20,
		CenterOffset:      5,
	}
	doc := scenario()
	if _, err := Apply(doc, Options{Config: cfg}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	x, y, _ := doc.Nodes[2].Position() // B at (1, 1), end
	if x != 25 || y != 10 {
		t.Errorf("B = (%v, %v), want (25, 10)", x, y)
	}
	x, y, _ = doc.Nodes[3].Position() // C at (2, 0), normal
	if x != 0 || y != 20 {
		t.Errorf("C = (%v, %v), want (0, 20)", x, y)
	}
}

func TestRelayoutIsDeterministic(t *testing.T) {
	doc := randomDocument(rand.New(rand.NewPCG(7, 11)), 60)
	first, err := Apply(doc, Options{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	data, err := doc.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	again, err := scheme.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	second, err := Apply(again, Options{})
	if err != nil {
		t.Fatalf("Apply again: %v", err)
	}

	if len(first.Placements) != len(second.Placements) {
		t.Fatalf("placements = %d then %d", len(first.Placements), len(second.Placements))
	}
	for i := range first.Placements {
		a, b := first.Placements[i], second.Placements[i]
		if a.ID != b.ID || a.Cell != b.Cell || a.Point != b.Point {
			t.Errorf("placement %d differs: %+v vs %+v", i, a, b)
		}
	}
}

// randomDocument builds a graph with cycles, reconverging paths, dangling
// edges and error terminals.
func randomDocument(rng *rand.Rand, n int) *scheme.Document {
	kinds := []scheme.Kind{scheme.KindCondition, scheme.KindNormal, scheme.KindNormal, scheme.KindEnd}
	nodes := []*scheme.Node{scheme.NewNode("n0", scheme.KindStart, "n1", "n2")}
	for i := 1; i < n; i++ {
		kind := kinds[rng.IntN(len(kinds))]
		var targets []string
		if kind != scheme.KindEnd {
			for range 1 + rng.IntN(3) {
				targets = append(targets, "n"+strconv.Itoa(rng.IntN(n+3)))
			}
		}
		node := scheme.NewNode("n"+strconv.Itoa(i), kind, targets...)
		if kind == scheme.KindEnd && rng.IntN(2) == 0 {
			node.WithExtra("error")
		}
		nodes = append(nodes, node)
	}
	return scheme.NewDocument(nodes...)
}
