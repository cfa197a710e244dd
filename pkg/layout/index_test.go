package layout

import (
	"slices"
	"testing"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/scheme"
)

func TestBuildIndex(t *testing.T) {
	ix, warnings, err := BuildIndex([]*scheme.Node{
		scheme.NewNode("s", scheme.KindStart, "a", "a", "missing"),
		scheme.NewNode("a", scheme.KindNormal),
	})
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if ix.Len() != 2 {
		t.Errorf("Len = %d, want 2", ix.Len())
	}
	if got := ix.Targets("s"); !slices.Equal(got, []string{"a", "a", "missing"}) {
		t.Errorf("Targets(s) = %v", got)
	}
	if got := ix.Targets("a"); got != nil {
		t.Errorf("Targets(a) = %v, want nil", got)
	}
	if _, ok := ix.Node("missing"); ok {
		t.Error("Node(missing) should not be found")
	}
}

func TestBuildIndexDuplicates(t *testing.T) {
	first := scheme.NewNode("x", scheme.KindNormal, "a")
	second := scheme.NewNode("x", scheme.KindEnd, "b")
	ix, warnings, err := BuildIndex([]*scheme.Node{first, second})
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	if len(warnings) != 1 || warnings[0].Code != errors.ErrCodeDuplicateNodeID {
		t.Fatalf("warnings = %v, want one DUPLICATE_NODE_ID", warnings)
	}
	if n, _ := ix.Node("x"); n != second {
		t.Error("later node should win the lookup")
	}
	if got := ix.Targets("x"); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Targets(x) = %v, want [a b]", got)
	}
}

func TestBuildIndexNil(t *testing.T) {
	_, _, err := BuildIndex(nil)
	if !errors.Is(err, errors.ErrCodeMalformedSchema) {
		t.Errorf("error = %v, want MALFORMED_SCHEMA", err)
	}
}
