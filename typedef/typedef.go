package typedef

import (
	"errors"
	"fmt"
	"image/color"
)

var (
	ErrTileNotFound  = errors.New("tile not found")
	ErrEmptyGrid     = errors.New("grid has no tiles")
	ErrPathTooShort  = errors.New("drawing path needs at least two points")
	ErrPathNotFound  = errors.New("drawing path not found")
	ErrBadDimensions = errors.New("grid dimensions must be positive")
)

// HexOrientation selects which projection and polygon formulas apply.
// Changing it requires regenerating all derived pixel positions.
type HexOrientation uint8

const (
	OrientationFlatTop HexOrientation = iota
	OrientationPointyTop
)

func (o HexOrientation) String() string {
	switch o {
	case OrientationFlatTop:
		return "flat-top"
	case OrientationPointyTop:
		return "pointy-top"
	}
	return fmt.Sprintf("orientation(%d)", uint8(o))
}

// HexCoordinate is a cube coordinate with the invariant Q+R+S == 0.
// Derived, never hand-edited.
type HexCoordinate struct {
	Q int `json:"q"`
	R int `json:"r"`
	S int `json:"s"`
}

// NewHexCoordinate builds a cube coordinate from its axial pair.
func NewHexCoordinate(q, r int) HexCoordinate {
	return HexCoordinate{Q: q, R: r, S: -q - r}
}

// Key returns the canonical string id used to look up tiles.
func (h HexCoordinate) Key() string {
	return fmt.Sprintf("%d,%d", h.Q, h.R)
}

// HexNeighborDirections defines the six neighbor offsets in cube coordinates.
var HexNeighborDirections = [6]HexCoordinate{
	{Q: 1, R: 0, S: -1},
	{Q: 1, R: -1, S: 0},
	{Q: 0, R: -1, S: 1},
	{Q: -1, R: 0, S: 1},
	{Q: -1, R: 1, S: 0},
	{Q: 0, R: 1, S: -1},
}

// Neighbors returns the six adjacent cube coordinates.
func (h HexCoordinate) Neighbors() [6]HexCoordinate {
	var result [6]HexCoordinate
	for i, dir := range HexNeighborDirections {
		result[i] = HexCoordinate{Q: h.Q + dir.Q, R: h.R + dir.R, S: h.S + dir.S}
	}
	return result
}

// HexDistance returns the cube distance between two coordinates.
func HexDistance(a, b HexCoordinate) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S - b.S)
	max := dq
	if dr > max {
		max = dr
	}
	if ds > max {
		max = ds
	}
	return max
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type Biome uint8

const (
	BiomeOcean Biome = iota
	BiomeCoast
	BiomePlains
	BiomeForest
	BiomeHills
	BiomeMountain
	BiomeDesert
	BiomeSwamp
	BiomeTundra
)

var biomeNames = [...]string{
	BiomeOcean:    "ocean",
	BiomeCoast:    "coast",
	BiomePlains:   "plains",
	BiomeForest:   "forest",
	BiomeHills:    "hills",
	BiomeMountain: "mountain",
	BiomeDesert:   "desert",
	BiomeSwamp:    "swamp",
	BiomeTundra:   "tundra",
}

func (b Biome) String() string {
	if int(b) < len(biomeNames) {
		return biomeNames[b]
	}
	return fmt.Sprintf("biome(%d)", uint8(b))
}

// FillColor is the default palette used by the renderer for each biome.
func (b Biome) FillColor() color.RGBA {
	switch b {
	case BiomeOcean:
		return color.RGBA{R: 28, G: 64, B: 121, A: 255}
	case BiomeCoast:
		return color.RGBA{R: 212, G: 196, B: 148, A: 255}
	case BiomePlains:
		return color.RGBA{R: 120, G: 160, B: 72, A: 255}
	case BiomeForest:
		return color.RGBA{R: 52, G: 104, B: 54, A: 255}
	case BiomeHills:
		return color.RGBA{R: 144, G: 128, B: 88, A: 255}
	case BiomeMountain:
		return color.RGBA{R: 130, G: 130, B: 138, A: 255}
	case BiomeDesert:
		return color.RGBA{R: 210, G: 180, B: 108, A: 255}
	case BiomeSwamp:
		return color.RGBA{R: 76, G: 96, B: 62, A: 255}
	case BiomeTundra:
		return color.RGBA{R: 196, G: 208, B: 214, A: 255}
	}
	return color.RGBA{R: 90, G: 90, B: 90, A: 255}
}

// Town is optional settlement metadata attached to a tile.
type Town struct {
	Name       string `json:"name"`
	Population int    `json:"population"`
}

// HexTile is one cell of the map. Owned by the hexruntime store; the
// engine treats tiles as read-only inputs except for the label fields
// computed at generation time.
type HexTile struct {
	ID         string        `json:"id"` // HexCoordinate.Key()
	Coordinate HexCoordinate `json:"coordinate"`
	Biome      Biome         `json:"biome"`

	// User-facing label coordinates. Independent numbering scheme from
	// axial: X grows rightward, Y grows upward from the bottom-left cell.
	Col int `json:"col"`
	Row int `json:"row"`

	Town      *Town  `json:"town,omitempty"`
	Encounter string `json:"encounter,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type PathKind uint8

const (
	PathRoad PathKind = iota
	PathRiver
)

func (k PathKind) String() string {
	switch k {
	case PathRoad:
		return "road"
	case PathRiver:
		return "river"
	}
	return fmt.Sprintf("path(%d)", uint8(k))
}

// PixelPoint is a position in continuous world-pixel space.
type PixelPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DrawingPath is a finished freehand overlay stroke. Produced exactly
// once, atomically, when a draw gesture completes with >= 2 points.
type DrawingPath struct {
	ID          string       `json:"id"`
	Points      []PixelPoint `json:"points"`
	Color       color.RGBA   `json:"color"`
	StrokeWidth float64      `json:"strokeWidth"`
	Kind        PathKind     `json:"kind"`
}

type ToolKind uint8

const (
	ToolSelect ToolKind = iota
	ToolPaint
	ToolGeography
)

func (t ToolKind) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolPaint:
		return "paint"
	case ToolGeography:
		return "geography"
	}
	return fmt.Sprintf("tool(%d)", uint8(t))
}

// BrushSettings carries caller-supplied styling for paint and geography
// tools. The engine never decides what biome or path style to apply.
type BrushSettings struct {
	Biome       Biome
	PathKind    PathKind
	Color       color.RGBA
	StrokeWidth float64
	Size        float64 // erase radius in world pixels
	Erase       bool    // geography tool: erase instead of draw
}
