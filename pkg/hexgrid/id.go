package hexgrid

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Stable string identities. Hexes, vertices, and edges are addressed by
// these IDs — never by raw coordinates — in both the protocol and the
// game state.
//
//	hex:    hex_<q>_<r>
//	vertex: v_<hex id>_<hex id>_<hex id>   (three hexes meet at a corner)
//	edge:   e_<hex id>_<hex id>            (two hexes share an edge)
//
// A vertex or edge ID always includes every coordinate meeting there,
// including off-board water coordinates; filtering to on-board hexes
// would make distinct coastal corners collide. Hexes inside an ID are
// sorted by (q, r) ascending, so the ID is canonical.

// ID returns the stable string ID of a hex.
func (h Hex) ID() string {
	return fmt.Sprintf("hex_%d_%d", h.Q, h.R)
}

// ParseHexID parses a hex_<q>_<r> string back into a Hex.
func ParseHexID(id string) (Hex, error) {
	parts := strings.Split(id, "_")
	if len(parts) != 3 || parts[0] != "hex" {
		return Hex{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	q, err := strconv.Atoi(parts[1])
	if err != nil {
		return Hex{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	r, err := strconv.Atoi(parts[2])
	if err != nil {
		return Hex{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return Hex{q, r}, nil
}

func sortHexes(hs []Hex) {
	sort.Slice(hs, func(i, j int) bool {
		if hs[i].Q != hs[j].Q {
			return hs[i].Q < hs[j].Q
		}
		return hs[i].R < hs[j].R
	})
}

// VertexID returns the canonical ID for the corner shared by the given
// hexes. The input is sorted; duplicates are not checked.
func VertexID(hexes []Hex) string {
	hs := make([]Hex, len(hexes))
	copy(hs, hexes)
	sortHexes(hs)
	parts := make([]string, 0, len(hs)+1)
	parts = append(parts, "v")
	for _, h := range hs {
		parts = append(parts, h.ID())
	}
	return strings.Join(parts, "_")
}

// CornerVertexID returns the ID of corner d of hex h: the vertex shared
// by h, its neighbor in direction d, and its neighbor in direction d+1.
func CornerVertexID(h Hex, d int) (string, error) {
	n1, err := h.Neighbor(d)
	if err != nil {
		return "", err
	}
	n2, err := h.Neighbor((d + 1) % NumDirections)
	if err != nil {
		return "", err
	}
	return VertexID([]Hex{h, n1, n2}), nil
}

// EdgeID returns the canonical ID for the edge shared by hexes a and b.
func EdgeID(a, b Hex) string {
	hs := []Hex{a, b}
	sortHexes(hs)
	return "e_" + hs[0].ID() + "_" + hs[1].ID()
}

// SideEdgeID returns the ID of the edge on side d of hex h.
func SideEdgeID(h Hex, d int) (string, error) {
	n, err := h.Neighbor(d)
	if err != nil {
		return "", err
	}
	return EdgeID(h, n), nil
}

// ParseVertexID parses a vertex ID back into its hexes, re-sorted to
// canonical order. Accepts two or three component hexes.
func ParseVertexID(id string) ([]Hex, error) {
	hs, err := parseComposite(id, "v")
	if err != nil {
		return nil, err
	}
	if len(hs) != 2 && len(hs) != 3 {
		return nil, fmt.Errorf("%w: vertex %q has %d hexes", ErrInvalidID, id, len(hs))
	}
	return hs, nil
}

// ParseEdgeID parses an edge ID back into its two hexes. The hexes must
// be cube-adjacent.
func ParseEdgeID(id string) ([]Hex, error) {
	hs, err := parseComposite(id, "e")
	if err != nil {
		return nil, err
	}
	if len(hs) != 2 {
		return nil, fmt.Errorf("%w: edge %q has %d hexes", ErrInvalidID, id, len(hs))
	}
	if hs[0].Distance(hs[1]) != 1 {
		return nil, fmt.Errorf("%w: edge %q hexes not adjacent", ErrInvalidID, id)
	}
	return hs, nil
}

// VertexEdges returns the IDs of the three edges incident to a vertex.
// Each edge is shared by a pair of the vertex's hexes.
func VertexEdges(vertexID string) ([]string, error) {
	hs, err := ParseVertexID(vertexID)
	if err != nil {
		return nil, err
	}
	var edges []string
	for i := 0; i < len(hs); i++ {
		for j := i + 1; j < len(hs); j++ {
			if hs[i].Distance(hs[j]) == 1 {
				edges = append(edges, EdgeID(hs[i], hs[j]))
			}
		}
	}
	return edges, nil
}

// EdgeVertices returns the IDs of the two endpoint vertices of an edge.
// The endpoints are the corners formed with the two common neighbors of
// the edge's hex pair.
func EdgeVertices(edgeID string) ([]string, error) {
	hs, err := ParseEdgeID(edgeID)
	if err != nil {
		return nil, err
	}
	a, b := hs[0], hs[1]
	var verts []string
	for _, n := range a.Neighbors() {
		if n.Distance(b) == 1 && n != b {
			verts = append(verts, VertexID([]Hex{a, b, n}))
		}
	}
	if len(verts) != 2 {
		return nil, fmt.Errorf("%w: edge %q has %d endpoints", ErrInvalidID, edgeID, len(verts))
	}
	sort.Strings(verts)
	return verts, nil
}

// AdjacentVertices returns the IDs of the vertices one edge away from
// the given vertex (used for the settlement distance rule).
func AdjacentVertices(vertexID string) ([]string, error) {
	edges, err := VertexEdges(vertexID)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range edges {
		vs, err := EdgeVertices(e)
		if err != nil {
			return nil, err
		}
		for _, v := range vs {
			if v != vertexID {
				out = append(out, v)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// parseComposite splits a "<prefix>_hex_q_r_hex_q_r..." ID into hexes.
func parseComposite(id, prefix string) ([]Hex, error) {
	parts := strings.Split(id, "_")
	if len(parts) < 1 || parts[0] != prefix {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	rest := parts[1:]
	if len(rest) == 0 || len(rest)%3 != 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	hs := make([]Hex, 0, len(rest)/3)
	for i := 0; i < len(rest); i += 3 {
		if rest[i] != "hex" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
		q, err := strconv.Atoi(rest[i+1])
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
		r, err := strconv.Atoi(rest[i+2])
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
		hs = append(hs, Hex{q, r})
	}
	sortHexes(hs)
	return hs, nil
}
