// Package catan implements the authoritative rules engine for the hex
// resource-trading game: board generation, the pure state transitions
// (roll, build, trade, rob, development cards), the phase/turn-phase
// state machine, and achievement and winner computation.
//
// Every operation validates against the current state and mutates it
// only on success; randomness flows exclusively through the injected
// RNG so a game is replayable given its seed.
package catan

// Resource is one of the five tradeable resource types.
type Resource string

const (
	Brick  Resource = "brick"
	Lumber Resource = "lumber"
	Ore    Resource = "ore"
	Grain  Resource = "grain"
	Wool   Resource = "wool"
)

// AllResources returns the five resources in canonical order.
func AllResources() []Resource {
	return []Resource{Brick, Lumber, Ore, Grain, Wool}
}

// ValidResource reports whether r is one of the five resource tags.
func ValidResource(r Resource) bool {
	switch r {
	case Brick, Lumber, Ore, Grain, Wool:
		return true
	}
	return false
}

// ResourceCount maps each resource to a non-negative amount. A struct
// rather than a map so JSON field order is stable and all five fields
// are always present on the wire.
type ResourceCount struct {
	Brick  int `json:"brick"`
	Lumber int `json:"lumber"`
	Ore    int `json:"ore"`
	Grain  int `json:"grain"`
	Wool   int `json:"wool"`
}

// Get returns the amount of the given resource.
func (rc ResourceCount) Get(r Resource) int {
	switch r {
	case Brick:
		return rc.Brick
	case Lumber:
		return rc.Lumber
	case Ore:
		return rc.Ore
	case Grain:
		return rc.Grain
	case Wool:
		return rc.Wool
	}
	return 0
}

// Set assigns the amount of the given resource.
func (rc *ResourceCount) Set(r Resource, n int) {
	switch r {
	case Brick:
		rc.Brick = n
	case Lumber:
		rc.Lumber = n
	case Ore:
		rc.Ore = n
	case Grain:
		rc.Grain = n
	case Wool:
		rc.Wool = n
	}
}

// Add increases the amount of the given resource by n (n may be negative).
func (rc *ResourceCount) Add(r Resource, n int) {
	rc.Set(r, rc.Get(r)+n)
}

// Total returns the total number of cards.
func (rc ResourceCount) Total() int {
	return rc.Brick + rc.Lumber + rc.Ore + rc.Grain + rc.Wool
}

// Covers reports whether rc has at least the amounts in cost.
func (rc ResourceCount) Covers(cost ResourceCount) bool {
	return rc.Brick >= cost.Brick &&
		rc.Lumber >= cost.Lumber &&
		rc.Ore >= cost.Ore &&
		rc.Grain >= cost.Grain &&
		rc.Wool >= cost.Wool
}

// Plus returns rc + o.
func (rc ResourceCount) Plus(o ResourceCount) ResourceCount {
	return ResourceCount{
		Brick:  rc.Brick + o.Brick,
		Lumber: rc.Lumber + o.Lumber,
		Ore:    rc.Ore + o.Ore,
		Grain:  rc.Grain + o.Grain,
		Wool:   rc.Wool + o.Wool,
	}
}

// Minus returns rc - o. The result may have negative fields; callers
// validate with Covers first.
func (rc ResourceCount) Minus(o ResourceCount) ResourceCount {
	return ResourceCount{
		Brick:  rc.Brick - o.Brick,
		Lumber: rc.Lumber - o.Lumber,
		Ore:    rc.Ore - o.Ore,
		Grain:  rc.Grain - o.Grain,
		Wool:   rc.Wool - o.Wool,
	}
}

// NonNegative reports whether every field is >= 0.
func (rc ResourceCount) NonNegative() bool {
	return rc.Brick >= 0 && rc.Lumber >= 0 && rc.Ore >= 0 && rc.Grain >= 0 && rc.Wool >= 0
}

// Building costs.
var (
	CostSettlement = ResourceCount{Brick: 1, Lumber: 1, Grain: 1, Wool: 1}
	CostCity       = ResourceCount{Ore: 3, Grain: 2}
	CostRoad       = ResourceCount{Brick: 1, Lumber: 1}
	CostDevCard    = ResourceCount{Ore: 1, Grain: 1, Wool: 1}
)

// BankPerResource is the bank's starting supply of each resource.
const BankPerResource = 19

// NewBank returns a full bank.
func NewBank() ResourceCount {
	return ResourceCount{
		Brick:  BankPerResource,
		Lumber: BankPerResource,
		Ore:    BankPerResource,
		Grain:  BankPerResource,
		Wool:   BankPerResource,
	}
}

// Terrain is a hex tile's terrain type.
type Terrain string

const (
	TerrainDesert    Terrain = "desert"
	TerrainHills     Terrain = "hills"
	TerrainMountains Terrain = "mountains"
	TerrainForest    Terrain = "forest"
	TerrainPasture   Terrain = "pasture"
	TerrainFields    Terrain = "fields"
)

// Produces returns the resource a terrain yields, or false for desert.
func (t Terrain) Produces() (Resource, bool) {
	switch t {
	case TerrainHills:
		return Brick, true
	case TerrainMountains:
		return Ore, true
	case TerrainForest:
		return Lumber, true
	case TerrainPasture:
		return Wool, true
	case TerrainFields:
		return Grain, true
	}
	return "", false
}
