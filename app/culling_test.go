package app

import (
	"testing"

	"hexstudio/hexmath"
	"hexstudio/typedef"
)

var bothOrientations = []typedef.HexOrientation{
	typedef.OrientationFlatTop,
	typedef.OrientationPointyTop,
}

func buildTiles(span int, tileSize float64, o typedef.HexOrientation) []*typedef.HexTile {
	var tiles []*typedef.HexTile
	for q := -span; q <= span; q++ {
		for r := -span; r <= span; r++ {
			c := typedef.NewHexCoordinate(q, r)
			tiles = append(tiles, &typedef.HexTile{ID: c.Key(), Coordinate: c})
		}
	}
	return tiles
}

func TestCullingNoFalseNegatives(t *testing.T) {
	for _, o := range bothOrientations {
		const tileSize = 12.0
		v := NewViewport(4.0)
		v.SetScreenSize(400, 300)
		v.SetContentExtent(2000, 2000)
		v.CenterOn(0, 0)

		tiles := buildTiles(40, tileSize, o)
		bounds, ok := VisibleBounds(v, tileSize, o, 24, 1)
		if !ok {
			t.Fatalf("%v: bounds unexpectedly degenerate", o)
		}
		visible := CullTiles(tiles, bounds)
		kept := make(map[string]bool, len(visible))
		for _, tile := range visible {
			kept[tile.ID] = true
		}

		x, y, w, h := v.Bounds()
		for _, tile := range tiles {
			cx, cy := hexmath.TileCenter(tile.Coordinate, tileSize, o)
			inside := cx >= x && cx <= x+w && cy >= y && cy <= y+h
			if inside && !kept[tile.ID] {
				t.Errorf("%v: tile %s with center inside viewport was culled", o, tile.ID)
			}
		}
	}
}

func TestCullingExcludesFarTiles(t *testing.T) {
	const tileSize = 12.0
	v := NewViewport(4.0)
	v.SetScreenSize(400, 300)
	v.SetContentExtent(100000, 100000)
	v.CenterOn(0, 0)

	tiles := buildTiles(200, tileSize, typedef.OrientationFlatTop)
	bounds, ok := VisibleBounds(v, tileSize, typedef.OrientationFlatTop, 24, 1)
	if !ok {
		t.Fatal("bounds unexpectedly degenerate")
	}
	visible := CullTiles(tiles, bounds)

	if len(visible) == 0 {
		t.Fatal("no tiles visible around origin")
	}
	if len(visible) == len(tiles) {
		t.Fatal("culling kept everything; 401x401 grid should not fit a 400x300 view")
	}

	// A tile far beyond the buffer in every direction must be excluded.
	far := typedef.NewHexCoordinate(180, 0)
	if bounds.Contains(far) {
		t.Errorf("far tile %v inside bounds %+v", far, bounds)
	}
}

func TestCullingEmptyInput(t *testing.T) {
	bounds := AxialBounds{MinQ: -5, MaxQ: 5, MinR: -5, MaxR: 5, MinS: -10, MaxS: 10}
	if got := CullTiles(nil, bounds); len(got) != 0 {
		t.Errorf("culling nil tiles returned %d tiles", len(got))
	}
}

func TestCullingDegenerateViewport(t *testing.T) {
	v := NewViewport(4.0)
	if _, ok := VisibleBounds(v, 12, typedef.OrientationFlatTop, 24, 1); ok {
		t.Error("zero-size viewport should report not-ok so callers keep prior results")
	}
}
