package catan

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/opencatan/server/pkg/hexgrid"
)

// Canonical multisets for a standard 19-hex board.
func terrainPool() []Terrain {
	return []Terrain{
		TerrainDesert,
		TerrainHills, TerrainHills, TerrainHills,
		TerrainMountains, TerrainMountains, TerrainMountains,
		TerrainForest, TerrainForest, TerrainForest, TerrainForest,
		TerrainPasture, TerrainPasture, TerrainPasture, TerrainPasture,
		TerrainFields, TerrainFields, TerrainFields, TerrainFields,
	}
}

func tokenPool() []int {
	return []int{2, 3, 3, 4, 4, 5, 5, 6, 6, 8, 8, 9, 9, 10, 10, 11, 11, 12}
}

func portPool() []PortType {
	return []PortType{
		PortGeneric, PortGeneric, PortGeneric, PortGeneric,
		PortType(Brick), PortType(Lumber), PortType(Ore), PortType(Grain), PortType(Wool),
	}
}

// portStation is a fixed coastal position: a ring-2 hex and the outward
// direction whose edge carries the port's two vertices.
type portStation struct {
	hex hexgrid.Hex
	dir int
}

// The nine stations are fixed; only the port types are shuffled over
// them. Angles are the station index times 40 degrees.
var portStations = []portStation{
	{hexgrid.Hex{Q: 2, R: 0}, 0},
	{hexgrid.Hex{Q: 2, R: -1}, 1},
	{hexgrid.Hex{Q: 1, R: -2}, 2},
	{hexgrid.Hex{Q: 0, R: -2}, 2},
	{hexgrid.Hex{Q: -2, R: 0}, 3},
	{hexgrid.Hex{Q: -2, R: 1}, 4},
	{hexgrid.Hex{Q: -1, R: 2}, 5},
	{hexgrid.Hex{Q: 0, R: 2}, 5},
	{hexgrid.Hex{Q: 1, R: 1}, 0},
}

const maxLayoutAttempts = 100

// GenerateBoard lays out a random standard board: terrain and number
// tokens shuffled over the radius-2 spiral, validated against the
// high-value separation constraint (no two 6/8 tokens cube-adjacent).
// After 100 failed attempts the last layout is accepted with a warning;
// generation never fails hard.
func GenerateBoard(rng RNG) *Board {
	coords := hexgrid.Spiral(hexgrid.Hex{}, 2)

	var board *Board
	for attempt := 1; attempt <= maxLayoutAttempts; attempt++ {
		board = layoutAttempt(coords, rng)
		if highValueTokensSeparated(board) {
			placePorts(board, rng)
			return board
		}
		if attempt == maxLayoutAttempts {
			log.Warn().Int("attempts", attempt).
				Msg("Board generation could not separate 6/8 tokens, accepting degraded layout")
		}
	}
	placePorts(board, rng)
	return board
}

func layoutAttempt(coords []hexgrid.Hex, rng RNG) *Board {
	terrains := terrainPool()
	rng.Shuffle(len(terrains), func(i, j int) { terrains[i], terrains[j] = terrains[j], terrains[i] })
	tokens := tokenPool()
	rng.Shuffle(len(tokens), func(i, j int) { tokens[i], tokens[j] = tokens[j], tokens[i] })

	board := &Board{
		Hexes:     make([]HexTile, 0, len(coords)),
		Buildings: map[string]Building{},
		Roads:     map[string]Road{},
	}
	tokenIdx := 0
	for i, c := range coords {
		tile := HexTile{
			ID:      c.ID(),
			Coord:   c,
			Terrain: terrains[i],
		}
		if terrains[i] == TerrainDesert {
			board.RobberHex = tile.ID
		} else {
			tok := tokens[tokenIdx]
			tokenIdx++
			tile.NumberToken = &tok
		}
		board.Hexes = append(board.Hexes, tile)
	}
	return board
}

// highValueTokensSeparated reports whether no two tiles with token 6 or
// 8 are cube-adjacent.
func highValueTokensSeparated(b *Board) bool {
	var hot []hexgrid.Hex
	for i := range b.Hexes {
		if t := b.Hexes[i].NumberToken; t != nil && (*t == 6 || *t == 8) {
			hot = append(hot, b.Hexes[i].Coord)
		}
	}
	for i := 0; i < len(hot); i++ {
		for j := i + 1; j < len(hot); j++ {
			if hot[i].Distance(hot[j]) == 1 {
				return false
			}
		}
	}
	return true
}

func placePorts(b *Board, rng RNG) {
	types := portPool()
	rng.Shuffle(len(types), func(i, j int) { types[i], types[j] = types[j], types[i] })

	b.Ports = make([]Port, 0, len(portStations))
	for i, st := range portStations {
		// The edge on side d has the corners d-1 and d as endpoints.
		vA, _ := hexgrid.CornerVertexID(st.hex, (st.dir+hexgrid.NumDirections-1)%hexgrid.NumDirections)
		vB, _ := hexgrid.CornerVertexID(st.hex, st.dir)
		b.Ports = append(b.Ports, Port{
			ID:         fmt.Sprintf("port_%d", i),
			Type:       types[i],
			VertexPair: [2]string{vA, vB},
			Angle:      i * 40,
		})
	}
}
