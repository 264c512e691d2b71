package catan

import (
	"sort"

	"github.com/opencatan/server/pkg/hexgrid"
)

// BuildingType distinguishes settlements from cities.
type BuildingType string

const (
	BuildingSettlement BuildingType = "settlement"
	BuildingCity       BuildingType = "city"
)

// Building occupies a vertex. At most one building per vertex across
// all players.
type Building struct {
	VertexID string       `json:"vertex_id"`
	PlayerID string       `json:"player_id"`
	Type     BuildingType `json:"type"`
}

// Road occupies an edge. At most one road per edge across all players.
type Road struct {
	EdgeID   string `json:"edge_id"`
	PlayerID string `json:"player_id"`
}

// HexTile is one of the 19 land hexes.
type HexTile struct {
	ID          string      `json:"id"`
	Coord       hexgrid.Hex `json:"coord"`
	Terrain     Terrain     `json:"terrain"`
	NumberToken *int        `json:"number_token"` // nil iff desert
}

// PortType is a port's exchange type: generic 3:1 or a 2:1 resource port.
type PortType string

const PortGeneric PortType = "generic"

// Port is a coastal trade location. A player with a building on either
// vertex of the pair trades at the port's rate.
type Port struct {
	ID         string    `json:"id"`
	Type       PortType  `json:"type"`
	VertexPair [2]string `json:"vertex_pair"`
	Angle      int       `json:"angle"`
}

// Board is the flat-table representation of the play area. Hexes,
// vertices, and edges reference each other only through derived string
// IDs; adjacency is recomputed from the IDs themselves, never stored as
// a pointer graph.
type Board struct {
	Hexes     []HexTile           `json:"hexes"` // canonical spiral order
	Ports     []Port              `json:"ports"`
	RobberHex string              `json:"robber_hex"`
	Buildings map[string]Building `json:"buildings"` // vertex ID -> building
	Roads     map[string]Road     `json:"roads"`     // edge ID -> road
}

// HexByID returns the tile with the given ID, or nil.
func (b *Board) HexByID(id string) *HexTile {
	for i := range b.Hexes {
		if b.Hexes[i].ID == id {
			return &b.Hexes[i]
		}
	}
	return nil
}

// HexAt returns the tile at the given coordinate, or nil.
func (b *Board) HexAt(h hexgrid.Hex) *HexTile {
	for i := range b.Hexes {
		if b.Hexes[i].Coord == h {
			return &b.Hexes[i]
		}
	}
	return nil
}

// CornerVertexIDs returns the six corner vertex IDs of a tile.
func CornerVertexIDs(h hexgrid.Hex) []string {
	out := make([]string, 0, hexgrid.NumDirections)
	for d := 0; d < hexgrid.NumDirections; d++ {
		id, _ := hexgrid.CornerVertexID(h, d)
		out = append(out, id)
	}
	return out
}

// VertexIDs returns every vertex touching at least one land tile, in
// sorted order. A standard board has 54.
func (b *Board) VertexIDs() []string {
	set := map[string]bool{}
	for i := range b.Hexes {
		for _, v := range CornerVertexIDs(b.Hexes[i].Coord) {
			set[v] = true
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// EdgeIDs returns every edge touching at least one land tile, in sorted
// order. A standard board has 72.
func (b *Board) EdgeIDs() []string {
	set := map[string]bool{}
	for i := range b.Hexes {
		for d := 0; d < hexgrid.NumDirections; d++ {
			e, _ := hexgrid.SideEdgeID(b.Hexes[i].Coord, d)
			set[e] = true
		}
	}
	out := make([]string, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// ValidVertex reports whether the ID names a real corner touching the
// board: exactly three mutually adjacent hexes, at least one of them a
// land tile.
func (b *Board) ValidVertex(vertexID string) bool {
	hs, err := hexgrid.ParseVertexID(vertexID)
	if err != nil {
		return false
	}
	if len(hs) != 3 || hexgrid.VertexID(hs) != vertexID {
		return false
	}
	for i := 0; i < len(hs); i++ {
		for j := i + 1; j < len(hs); j++ {
			if hs[i].Distance(hs[j]) != 1 {
				return false
			}
		}
	}
	for _, h := range hs {
		if b.HexAt(h) != nil {
			return true
		}
	}
	return false
}

// ValidEdge reports whether the ID parses and touches the board.
func (b *Board) ValidEdge(edgeID string) bool {
	hs, err := hexgrid.ParseEdgeID(edgeID)
	if err != nil {
		return false
	}
	if hexgrid.EdgeID(hs[0], hs[1]) != edgeID {
		return false
	}
	for _, h := range hs {
		if b.HexAt(h) != nil {
			return true
		}
	}
	return false
}

// TilesAdjacentToVertex returns the land tiles meeting at a vertex.
func (b *Board) TilesAdjacentToVertex(vertexID string) []*HexTile {
	hs, err := hexgrid.ParseVertexID(vertexID)
	if err != nil {
		return nil
	}
	var out []*HexTile
	for _, h := range hs {
		if t := b.HexAt(h); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// BuildingsAdjacentToHex returns the buildings on the six corners of a
// tile.
func (b *Board) BuildingsAdjacentToHex(hexID string) []Building {
	tile := b.HexByID(hexID)
	if tile == nil {
		return nil
	}
	var out []Building
	for _, v := range CornerVertexIDs(tile.Coord) {
		if bl, ok := b.Buildings[v]; ok {
			out = append(out, bl)
		}
	}
	return out
}

// PortsForPlayer returns the port types reachable by a player's
// settlements and cities.
func (b *Board) PortsForPlayer(p *PlayerState) []PortType {
	owned := map[string]bool{}
	for _, v := range p.Settlements {
		owned[v] = true
	}
	for _, v := range p.Cities {
		owned[v] = true
	}
	var out []PortType
	for _, port := range b.Ports {
		if owned[port.VertexPair[0]] || owned[port.VertexPair[1]] {
			out = append(out, port.Type)
		}
	}
	return out
}

// TradeRate returns the player's best exchange rate when giving the
// named resource: 2 with a matching resource port, 3 with a generic
// port, otherwise 4.
func (b *Board) TradeRate(p *PlayerState, give Resource) int {
	rate := 4
	for _, pt := range b.PortsForPlayer(p) {
		switch {
		case pt == PortType(give):
			return 2
		case pt == PortGeneric && rate > 3:
			rate = 3
		}
	}
	return rate
}

// clone returns a deep copy of the board.
func (b *Board) clone() *Board {
	c := &Board{
		RobberHex: b.RobberHex,
		Hexes:     make([]HexTile, len(b.Hexes)),
		Ports:     append([]Port(nil), b.Ports...),
		Buildings: make(map[string]Building, len(b.Buildings)),
		Roads:     make(map[string]Road, len(b.Roads)),
	}
	copy(c.Hexes, b.Hexes)
	for i := range c.Hexes {
		if b.Hexes[i].NumberToken != nil {
			tok := *b.Hexes[i].NumberToken
			c.Hexes[i].NumberToken = &tok
		}
	}
	for k, v := range b.Buildings {
		c.Buildings[k] = v
	}
	for k, v := range b.Roads {
		c.Roads[k] = v
	}
	return c
}
