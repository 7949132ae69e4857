package app

import (
	"math"

	"hexstudio/hexmath"
	"hexstudio/typedef"
)

// AxialBounds is an axial bounding box over-approximating the viewport
// footprint. False positives are fine; false negatives must not occur.
type AxialBounds struct {
	MinQ, MaxQ int
	MinR, MaxR int
	MinS, MaxS int
}

// Contains reports whether a cube coordinate falls inside the box.
func (b AxialBounds) Contains(c typedef.HexCoordinate) bool {
	return c.Q >= b.MinQ && c.Q <= b.MaxQ &&
		c.R >= b.MinR && c.R <= b.MaxR &&
		c.S >= b.MinS && c.S <= b.MaxS
}

// VisibleBounds converts the viewport rectangle, expanded by a pixel
// buffer, into an axial bounding box expanded by a hex-cell buffer. The
// four corners are projected to fractional axial coordinates and the
// min/max of each cube component across corners is taken. Returns false
// for a degenerate viewport; the caller keeps its previous result.
func VisibleBounds(v *Viewport, tileSize float64, o typedef.HexOrientation, bufferPx float64, bufferHexes int) (AxialBounds, bool) {
	if v.Degenerate() || tileSize <= 0 {
		return AxialBounds{}, false
	}

	x, y, w, h := v.Bounds()
	x -= bufferPx
	y -= bufferPx
	w += 2 * bufferPx
	h += 2 * bufferPx

	corners := [4][2]float64{
		{x, y},
		{x + w, y},
		{x, y + h},
		{x + w, y + h},
	}

	b := AxialBounds{
		MinQ: math.MaxInt32, MaxQ: math.MinInt32,
		MinR: math.MaxInt32, MaxR: math.MinInt32,
		MinS: math.MaxInt32, MaxS: math.MinInt32,
	}
	for _, c := range corners {
		q, r, s := hexmath.PixelToAxialRaw(c[0], c[1], tileSize, o)
		b.MinQ = minInt(b.MinQ, int(math.Floor(q)))
		b.MaxQ = maxInt(b.MaxQ, int(math.Ceil(q)))
		b.MinR = minInt(b.MinR, int(math.Floor(r)))
		b.MaxR = maxInt(b.MaxR, int(math.Ceil(r)))
		b.MinS = minInt(b.MinS, int(math.Floor(s)))
		b.MaxS = maxInt(b.MaxS, int(math.Ceil(s)))
	}

	b.MinQ -= bufferHexes
	b.MaxQ += bufferHexes
	b.MinR -= bufferHexes
	b.MaxR += bufferHexes
	b.MinS -= bufferHexes
	b.MaxS += bufferHexes
	return b, true
}

// CullTiles filters the tile collection down to those whose cube
// coordinates fall inside the bounds. Single linear scan, O(1) per tile.
func CullTiles(tiles []*typedef.HexTile, b AxialBounds) []*typedef.HexTile {
	if len(tiles) == 0 {
		return nil
	}
	visible := make([]*typedef.HexTile, 0, len(tiles)/4+1)
	for _, tile := range tiles {
		if tile == nil {
			continue
		}
		if b.Contains(tile.Coordinate) {
			visible = append(visible, tile)
		}
	}
	return visible
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
