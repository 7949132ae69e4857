// Package hexmath holds the pure coordinate conversions between axial/cube
// hex coordinates, continuous pixel space, and user-facing row/column
// labels, for both hex orientations. All functions are deterministic and
// allocation-free.
package hexmath

import (
	"math"

	"hexstudio/typedef"
)

const sqrt3 = 1.7320508075688772

// orientationSpec bundles the forward/inverse projection matrix and the
// polygon corner angle offset for one orientation. A fixed two-entry table
// avoids dispatch for a closed two-case set.
type orientationSpec struct {
	f0, f1, f2, f3 float64 // axial -> pixel
	b0, b1, b2, b3 float64 // pixel -> axial
	cornerAngle    float64 // radians, corner 0
}

var orientations = [2]orientationSpec{
	typedef.OrientationFlatTop: {
		f0: 1.5, f1: 0, f2: sqrt3 / 2, f3: sqrt3,
		b0: 2.0 / 3.0, b1: 0, b2: -1.0 / 3.0, b3: sqrt3 / 3.0,
		cornerAngle: 0,
	},
	typedef.OrientationPointyTop: {
		f0: sqrt3, f1: sqrt3 / 2, f2: 0, f3: 1.5,
		b0: sqrt3 / 3.0, b1: -1.0 / 3.0, b2: 0, b3: 2.0 / 3.0,
		cornerAngle: -math.Pi / 6,
	},
}

// AxialToPixel projects fractional axial coordinates to world pixels.
// Exact, no rounding.
func AxialToPixel(q, r, tileSize float64, o typedef.HexOrientation) (x, y float64) {
	m := orientations[o]
	x = tileSize * (m.f0*q + m.f1*r)
	y = tileSize * (m.f2*q + m.f3*r)
	return x, y
}

// PixelToAxialRaw inverts AxialToPixel, producing fractional cube
// coordinates. Callers that need a cell pass the result through HexRound.
func PixelToAxialRaw(x, y, tileSize float64, o typedef.HexOrientation) (q, r, s float64) {
	m := orientations[o]
	q = (m.b0*x + m.b1*y) / tileSize
	r = (m.b2*x + m.b3*y) / tileSize
	return q, r, -q - r
}

// PixelToAxial resolves a world pixel to the nearest hex cell.
func PixelToAxial(x, y, tileSize float64, o typedef.HexOrientation) typedef.HexCoordinate {
	return HexRound(PixelToAxialRaw(x, y, tileSize, o))
}

// HexRound snaps fractional cube coordinates to the nearest valid integer
// cube coordinate. Each component is rounded independently, then the one
// with the largest rounding error is recomputed from the q+r+s == 0
// invariant, so the invariant holds exactly post-rounding.
func HexRound(q, r, s float64) typedef.HexCoordinate {
	rq := math.Round(q)
	rr := math.Round(r)
	rs := math.Round(s)

	dq := math.Abs(rq - q)
	dr := math.Abs(rr - r)
	ds := math.Abs(rs - s)

	if dq > dr && dq > ds {
		rq = -rr - rs
	} else if dr > ds {
		rr = -rq - rs
	} else {
		rs = -rq - rr
	}
	return typedef.HexCoordinate{Q: int(rq), R: int(rr), S: int(rs)}
}

// TileCenter returns the pixel center of a hex cell.
func TileCenter(c typedef.HexCoordinate, tileSize float64, o typedef.HexOrientation) (x, y float64) {
	return AxialToPixel(float64(c.Q), float64(c.R), tileSize, o)
}

// PolygonCorner returns corner i (0..5) of the hexagon around a cell
// center. Flat-top corners start at angle 0, pointy-top at -30 degrees.
func PolygonCorner(cx, cy, tileSize float64, o typedef.HexOrientation, i int) (x, y float64) {
	angle := orientations[o].cornerAngle + float64(i)*math.Pi/3
	return cx + tileSize*math.Cos(angle), cy + tileSize*math.Sin(angle)
}

// AxialToEvenQ converts axial coordinates to even-q offset columns/rows
// (flat-top labeling scheme).
func AxialToEvenQ(c typedef.HexCoordinate) (col, row int) {
	col = c.Q
	row = c.R + (c.Q+(c.Q&1))/2
	return col, row
}

// EvenQToAxial inverts AxialToEvenQ.
func EvenQToAxial(col, row int) typedef.HexCoordinate {
	q := col
	r := row - (col+(col&1))/2
	return typedef.NewHexCoordinate(q, r)
}

// AxialToEvenR converts axial coordinates to even-r offset columns/rows
// (pointy-top labeling scheme).
func AxialToEvenR(c typedef.HexCoordinate) (col, row int) {
	col = c.Q + (c.R+(c.R&1))/2
	row = c.R
	return col, row
}

// EvenRToAxial inverts AxialToEvenR.
func EvenRToAxial(col, row int) typedef.HexCoordinate {
	q := col - (row+(row&1))/2
	r := row
	return typedef.NewHexCoordinate(q, r)
}

// UserToAxial maps a user-facing label coordinate to its hex cell. User Y
// grows upward while offset rows grow from the top, so the row axis is
// flipped; the grid center cell (cols/2, rows/2) lands on axial (0,0).
func UserToAxial(userX, userY, gridRows, gridCols int, o typedef.HexOrientation) typedef.HexCoordinate {
	col := userX - gridCols/2
	row := gridRows/2 - userY
	if o == typedef.OrientationPointyTop {
		return EvenRToAxial(col, row)
	}
	return EvenQToAxial(col, row)
}

// AxialToUser inverts UserToAxial.
func AxialToUser(c typedef.HexCoordinate, gridRows, gridCols int, o typedef.HexOrientation) (userX, userY int) {
	var col, row int
	if o == typedef.OrientationPointyTop {
		col, row = AxialToEvenR(c)
	} else {
		col, row = AxialToEvenQ(c)
	}
	return col + gridCols/2, gridRows/2 - row
}
