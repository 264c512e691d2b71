// Package hexgrid provides axial-coordinate hex geometry for the board:
// neighbor traversal, rings and spirals, cube distance, and the derived
// string identities used to address hexes, vertices, and edges everywhere
// in the protocol and game state.
package hexgrid

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDirection is returned for a direction index outside [0,5].
	ErrInvalidDirection = errors.New("invalid hex direction")
	// ErrInvalidID is returned when a hex/vertex/edge ID fails to parse.
	ErrInvalidID = errors.New("invalid id")
)

// Hex is an axial coordinate (q, r). The implicit cube coordinate s is
// -q-r.
type Hex struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// directions in the fixed order E, NE, NW, W, SW, SE.
var directions = [6]Hex{
	{1, 0},  // E
	{1, -1}, // NE
	{0, -1}, // NW
	{-1, 0}, // W
	{-1, 1}, // SW
	{0, 1},  // SE
}

// NumDirections is the number of hex directions.
const NumDirections = 6

// Direction returns the axial delta for direction index d (0=E .. 5=SE).
func Direction(d int) (Hex, error) {
	if d < 0 || d >= NumDirections {
		return Hex{}, fmt.Errorf("%w: %d", ErrInvalidDirection, d)
	}
	return directions[d], nil
}

// Add returns the component-wise sum of two hexes.
func (h Hex) Add(o Hex) Hex {
	return Hex{h.Q + o.Q, h.R + o.R}
}

// Scale returns h multiplied by k.
func (h Hex) Scale(k int) Hex {
	return Hex{h.Q * k, h.R * k}
}

// Neighbor returns the adjacent hex in direction d.
func (h Hex) Neighbor(d int) (Hex, error) {
	delta, err := Direction(d)
	if err != nil {
		return Hex{}, err
	}
	return h.Add(delta), nil
}

// Neighbors returns all six adjacent hexes in direction order
// (E, NE, NW, W, SW, SE).
func (h Hex) Neighbors() [6]Hex {
	var out [6]Hex
	for i, d := range directions {
		out[i] = h.Add(d)
	}
	return out
}

// S returns the third cube coordinate.
func (h Hex) S() int {
	return -h.Q - h.R
}

// Distance returns the cube-metric distance between two hexes.
func (h Hex) Distance(o Hex) int {
	dq := abs(h.Q - o.Q)
	dr := abs(h.R - o.R)
	ds := abs(h.S() - o.S())
	return (dq + dr + ds) / 2
}

// Round converts fractional axial coordinates to the nearest hex using
// cube rounding.
func Round(q, r float64) Hex {
	s := -q - r
	rq, rr, rs := roundf(q), roundf(r), roundf(s)
	dq, dr, ds := absf(rq-q), absf(rr-r), absf(rs-s)
	switch {
	case dq > dr && dq > ds:
		rq = -rr - rs
	case dr > ds:
		rr = -rq - rs
	}
	return Hex{int(rq), int(rr)}
}

// Ring returns the hexes at exactly radius rad from center, in canonical
// order: starting at center + E*rad and walking the ring. Ring(c, 0)
// returns just the center.
func Ring(center Hex, rad int) []Hex {
	if rad == 0 {
		return []Hex{center}
	}
	out := make([]Hex, 0, 6*rad)
	// Start east of center, then walk each of the six sides. Side i moves
	// in direction (i+2)%6 so the ring is traversed counter-clockwise.
	h := center.Add(directions[0].Scale(rad))
	for side := 0; side < NumDirections; side++ {
		for step := 0; step < rad; step++ {
			out = append(out, h)
			h = h.Add(directions[(side+2)%NumDirections])
		}
	}
	return out
}

// Spiral returns all hexes within radius rad of center, center first,
// then each ring outward in Ring order. Spiral(c, 2) yields the 19
// coordinates of a standard board.
func Spiral(center Hex, rad int) []Hex {
	out := []Hex{center}
	for r := 1; r <= rad; r++ {
		out = append(out, Ring(center, r)...)
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func absf(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func roundf(f float64) float64 {
	if f < 0 {
		return float64(int(f - 0.5))
	}
	return float64(int(f + 0.5))
}
