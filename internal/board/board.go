// Package board describes the fixed 24-tile loop every match is played on.
package board

// Size is the number of tiles on the loop.
const Size = 24

// TileType classifies a tile. It is derived from the index, never stored.
type TileType string

const (
	TileStart  TileType = "start"
	TileEvent  TileType = "event"
	TileNPC    TileType = "npc"
	TileNormal TileType = "normal"
)

var (
	eventTiles = map[int]bool{2: true, 5: true, 9: true, 14: true, 17: true, 21: true}
	npcTiles   = map[int]bool{4: true, 8: true, 11: true, 16: true, 20: true, 23: true}
)

// Classify returns the type of the tile at index i. Indexes outside the
// board are normalised onto it first.
func Classify(i int) TileType {
	i = Wrap(i)
	switch {
	case i == 0:
		return TileStart
	case eventTiles[i]:
		return TileEvent
	case npcTiles[i]:
		return TileNPC
	default:
		return TileNormal
	}
}

// Wrap maps any integer onto [0, Size).
func Wrap(i int) int {
	i %= Size
	if i < 0 {
		i += Size
	}
	return i
}

// Advance moves one tile forward around the loop.
func Advance(i int) int {
	return Wrap(i + 1)
}

// NormalTiles lists every normal tile in index order, skipping any in exclude.
func NormalTiles(exclude ...int) []int {
	skip := make(map[int]bool, len(exclude))
	for _, e := range exclude {
		skip[e] = true
	}
	out := make([]int, 0, Size)
	for i := 0; i < Size; i++ {
		if Classify(i) == TileNormal && !skip[i] {
			out = append(out, i)
		}
	}
	return out
}

// Slot is a grid cell on the rectangular layout: 8 columns by 6 rows,
// tiles running clockwise from the top-left corner.
type Slot struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// Positions returns the 24-slot layout used by presenters. The engine
// itself never reads it.
func Positions() []Slot {
	p := make([]Slot, 0, Size)
	for i := 0; i <= 7; i++ { // top 0-7
		p = append(p, Slot{Col: i, Row: 0})
	}
	for i := 1; i <= 5; i++ { // right 8-12
		p = append(p, Slot{Col: 7, Row: i})
	}
	for i := 6; i >= 0; i-- { // bottom 13-19
		p = append(p, Slot{Col: i, Row: 5})
	}
	for i := 4; i >= 1; i-- { // left 20-23
		p = append(p, Slot{Col: 0, Row: i})
	}
	return p
}
