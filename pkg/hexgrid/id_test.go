package hexgrid

import (
	"errors"
	"testing"
)

func TestHexIDRoundTrip(t *testing.T) {
	for _, h := range []Hex{{0, 0}, {2, -1}, {-2, 2}, {-1, -1}} {
		id := h.ID()
		got, err := ParseHexID(id)
		if err != nil {
			t.Fatalf("ParseHexID(%q): %v", id, err)
		}
		if got != h {
			t.Errorf("round trip %v -> %q -> %v", h, id, got)
		}
	}
}

func TestParseHexIDInvalid(t *testing.T) {
	for _, id := range []string{"", "hex", "hex_1", "hex_a_b", "v_hex_0_0", "hex_1_2_3"} {
		if _, err := ParseHexID(id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("ParseHexID(%q) error = %v, want ErrInvalidID", id, err)
		}
	}
}

func TestVertexIDCanonical(t *testing.T) {
	hs := []Hex{{1, 0}, {0, 0}, {1, -1}}
	id := VertexID(hs)
	want := "v_hex_0_0_hex_1_-1_hex_1_0"
	if id != want {
		t.Errorf("VertexID = %q, want %q", id, want)
	}
	// Order of input must not matter.
	if id2 := VertexID([]Hex{{1, -1}, {1, 0}, {0, 0}}); id2 != id {
		t.Errorf("VertexID not order independent: %q vs %q", id2, id)
	}
}

func TestVertexIDRoundTrip(t *testing.T) {
	id, err := CornerVertexID(Hex{0, 0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	hs, err := ParseVertexID(id)
	if err != nil {
		t.Fatalf("ParseVertexID(%q): %v", id, err)
	}
	if VertexID(hs) != id {
		t.Errorf("round trip %q -> %v -> %q", id, hs, VertexID(hs))
	}
}

func TestEdgeIDRoundTrip(t *testing.T) {
	id := EdgeID(Hex{1, 0}, Hex{0, 0})
	if want := "e_hex_0_0_hex_1_0"; id != want {
		t.Errorf("EdgeID = %q, want %q", id, want)
	}
	hs, err := ParseEdgeID(id)
	if err != nil {
		t.Fatalf("ParseEdgeID(%q): %v", id, err)
	}
	if EdgeID(hs[0], hs[1]) != id {
		t.Errorf("round trip %q -> %v", id, hs)
	}
}

func TestParseEdgeIDNotAdjacent(t *testing.T) {
	if _, err := ParseEdgeID("e_hex_0_0_hex_2_0"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("expected ErrInvalidID for non-adjacent edge, got %v", err)
	}
}

func TestHexHasSixDistinctCorners(t *testing.T) {
	seen := map[string]bool{}
	for d := 0; d < NumDirections; d++ {
		id, err := CornerVertexID(Hex{0, 0}, d)
		if err != nil {
			t.Fatal(err)
		}
		if seen[id] {
			t.Errorf("corner %d duplicates vertex %q", d, id)
		}
		seen[id] = true
	}
}

func TestVertexEdges(t *testing.T) {
	id, err := CornerVertexID(Hex{0, 0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	edges, err := VertexEdges(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 3 {
		t.Fatalf("vertex has %d incident edges, want 3", len(edges))
	}
	// Each incident edge must have this vertex as one of its endpoints.
	for _, e := range edges {
		vs, err := EdgeVertices(e)
		if err != nil {
			t.Fatal(err)
		}
		if vs[0] != id && vs[1] != id {
			t.Errorf("edge %q does not touch vertex %q", e, id)
		}
	}
}

func TestAdjacentVertices(t *testing.T) {
	id, err := CornerVertexID(Hex{0, 0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	adj, err := AdjacentVertices(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(adj) != 3 {
		t.Fatalf("vertex has %d adjacent vertices, want 3", len(adj))
	}
	for _, v := range adj {
		if v == id {
			t.Errorf("vertex listed as its own neighbor")
		}
	}
}

func TestSideEdgeIDDistinct(t *testing.T) {
	seen := map[string]bool{}
	for d := 0; d < NumDirections; d++ {
		id, err := SideEdgeID(Hex{0, 0}, d)
		if err != nil {
			t.Fatal(err)
		}
		if seen[id] {
			t.Errorf("side %d duplicates edge %q", d, id)
		}
		seen[id] = true
	}
}

func TestParseCompositeInvalid(t *testing.T) {
	bad := []string{
		"",
		"v",
		"v_hex_0",
		"v_foo_0_0",
		"e_hex_0_0",
		"e_hex_0_0_hex_1_0_hex_1_1",
		"x_hex_0_0_hex_1_0",
	}
	for _, id := range bad {
		if _, err := ParseVertexID(id); err == nil {
			if _, err2 := ParseEdgeID(id); err2 == nil {
				t.Errorf("expected parse failure for %q", id)
			}
		}
	}
}
