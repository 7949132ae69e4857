package app

import (
	"testing"
	"time"

	"hexstudio/hexmath"
	"hexstudio/typedef"
)

type recordedEvents struct {
	clicks    []string
	batches   [][]string
	completes []string
	paths     []*typedef.DrawingPath
	erases    []float64 // radii, one per request
	previews  [][]typedef.PixelPoint
	order     []string // event kinds in emission order
}

func newTestInteraction(t *testing.T) (*Interaction, *recordedEvents, map[string]*typedef.HexTile) {
	t.Helper()

	const tileSize = 12.0
	tiles := make(map[string]*typedef.HexTile)
	for q := -10; q <= 10; q++ {
		for r := -10; r <= 10; r++ {
			c := typedef.NewHexCoordinate(q, r)
			tiles[c.Key()] = &typedef.HexTile{ID: c.Key(), Coordinate: c}
		}
	}

	v := NewViewport(4.0)
	v.SetScreenSize(800, 600)
	v.SetContentExtent(2000, 2000)
	v.CenterOn(0, 0) // screen (400,300) is world origin at zoom 1

	rec := &recordedEvents{}
	cb := EngineCallbacks{
		OnHexClick: func(tile *typedef.HexTile) {
			rec.clicks = append(rec.clicks, tile.ID)
			rec.order = append(rec.order, "click")
		},
		OnPaintHexBatch: func(ids []string, _ typedef.ToolKind) {
			rec.batches = append(rec.batches, ids)
			rec.order = append(rec.order, "batch")
		},
		OnPaintComplete: func(tile *typedef.HexTile) {
			rec.completes = append(rec.completes, tile.ID)
			rec.order = append(rec.order, "complete")
		},
		OnNewPath: func(p *typedef.DrawingPath) {
			rec.paths = append(rec.paths, p)
			rec.order = append(rec.order, "path")
		},
		OnErasePaths: func(_, _, radius float64) {
			rec.erases = append(rec.erases, radius)
			rec.order = append(rec.order, "erase")
		},
		OnDrawingPreview: func(points []typedef.PixelPoint) {
			cp := make([]typedef.PixelPoint, len(points))
			copy(cp, points)
			if points == nil {
				cp = nil
			}
			rec.previews = append(rec.previews, cp)
			rec.order = append(rec.order, "preview")
		},
	}

	n := NewInteraction(v, func(id string) *typedef.HexTile { return tiles[id] }, tileSize, typedef.OrientationFlatTop, cb)
	return n, rec, tiles
}

// screenAt returns the screen position of a hex cell center for the test
// viewport (zoom 1, world origin at screen 400,300).
func screenAt(q, r int) (float64, float64) {
	x, y := hexmath.TileCenter(typedef.NewHexCoordinate(q, r), 12, typedef.OrientationFlatTop)
	return x + 400, y + 300
}

func TestSelectToolEmitsClick(t *testing.T) {
	n, rec, _ := newTestInteraction(t)

	sx, sy := screenAt(2, -1)
	n.PointerDown(sx, sy)
	n.PointerUp(sx, sy)

	if len(rec.clicks) != 1 || rec.clicks[0] != "2,-1" {
		t.Errorf("clicks = %v, want [2,-1]", rec.clicks)
	}
}

func TestSelectToolMissIsNoOp(t *testing.T) {
	n, rec, _ := newTestInteraction(t)

	// Way outside the 21x21 grid.
	n.PointerDown(10000, 10000)
	n.PointerUp(10000, 10000)

	if len(rec.clicks) != 0 {
		t.Errorf("resolution miss emitted a click: %v", rec.clicks)
	}
}

func TestPaintNeverRepeatsConsecutiveTile(t *testing.T) {
	n, rec, _ := newTestInteraction(t)
	n.SetTool(typedef.ToolPaint)

	sx, sy := screenAt(0, 0)
	n.PointerDown(sx, sy)
	// Jitter within the same cell: no new batches.
	n.PointerMove(sx+1, sy)
	n.PointerMove(sx, sy+1)
	// Enter a neighbor cell, then back.
	nx, ny := screenAt(1, 0)
	n.PointerMove(nx, ny)
	n.PointerMove(sx, sy)
	n.PointerUp(sx, sy)

	want := [][]string{{"0,0"}, {"1,0"}, {"0,0"}}
	if len(rec.batches) != len(want) {
		t.Fatalf("batches = %v, want %v", rec.batches, want)
	}
	for i := range want {
		if rec.batches[i][0] != want[i][0] {
			t.Errorf("batch %d = %v, want %v", i, rec.batches[i], want[i])
		}
	}
	for i := 1; i < len(rec.batches); i++ {
		if rec.batches[i][0] == rec.batches[i-1][0] {
			t.Errorf("consecutive duplicate batch at %d: %v", i, rec.batches[i])
		}
	}
}

func TestPaintCompleteRefetchesTile(t *testing.T) {
	n, rec, tiles := newTestInteraction(t)
	n.SetTool(typedef.ToolPaint)

	sx, sy := screenAt(0, 0)
	n.PointerDown(sx, sy)

	// Mutate the store mid-gesture, as the paint callback would.
	tiles["0,0"].Biome = typedef.BiomeDesert

	n.PointerUp(sx, sy)

	if len(rec.completes) != 1 || rec.completes[0] != "0,0" {
		t.Fatalf("completes = %v", rec.completes)
	}
	if tiles["0,0"].Biome != typedef.BiomeDesert {
		t.Error("completion saw stale tile data")
	}
}

func TestPanAbandonsPaintWithoutCompletion(t *testing.T) {
	n, rec, _ := newTestInteraction(t)
	n.SetTool(typedef.ToolPaint)

	sx, sy := screenAt(0, 0)
	n.PointerDown(sx, sy)
	n.PanStarted()
	nx, ny := screenAt(3, 0)
	n.PointerMove(nx, ny)
	n.PointerUp(nx, ny)

	if len(rec.batches) != 1 {
		t.Errorf("paint continued after pan: %v", rec.batches)
	}
	if len(rec.completes) != 0 {
		t.Errorf("abandoned gesture emitted completion: %v", rec.completes)
	}
}

func TestDrawGestureEmitsOneSmoothedPath(t *testing.T) {
	n, rec, _ := newTestInteraction(t)
	n.SetTool(typedef.ToolGeography)
	n.SetBrush(typedef.BrushSettings{StrokeWidth: 3})

	// World points (0,0), (10,0), (20,0): all >= 2px apart.
	n.PointerDown(400, 300)
	n.PointerMove(410, 300)
	n.PointerMove(420, 300)
	n.PointerUp(420, 300)

	if len(rec.paths) != 1 {
		t.Fatalf("paths = %d, want exactly one", len(rec.paths))
	}
	p := rec.paths[0]
	if p.ID == "" {
		t.Error("path has no id")
	}
	if len(p.Points) != 3 {
		t.Fatalf("path has %d points, want 3", len(p.Points))
	}
	if p.Points[0] != (typedef.PixelPoint{X: 0, Y: 0}) || p.Points[2] != (typedef.PixelPoint{X: 20, Y: 0}) {
		t.Errorf("endpoints moved: %v .. %v", p.Points[0], p.Points[2])
	}
	// Preview must have been cleared at completion.
	if len(rec.previews) == 0 || rec.previews[len(rec.previews)-1] != nil {
		t.Error("preview not cleared after completion")
	}
}

func TestDrawCompletionFiresBeforePreviewClear(t *testing.T) {
	n, rec, _ := newTestInteraction(t)
	n.SetTool(typedef.ToolGeography)

	n.PointerDown(400, 300)
	n.PointerMove(410, 300)
	n.PointerUp(410, 300)

	if len(rec.order) < 2 {
		t.Fatalf("order = %v, want at least path then preview", rec.order)
	}
	last := rec.order[len(rec.order)-1]
	secondLast := rec.order[len(rec.order)-2]
	if secondLast != "path" || last != "preview" {
		t.Errorf("completion order = [..., %s, %s], want [..., path, preview]", secondLast, last)
	}
	if rec.previews[len(rec.previews)-1] != nil {
		t.Error("final preview event did not clear the preview")
	}
}

func TestDrawMinSpacingDropsDensePoints(t *testing.T) {
	n, rec, _ := newTestInteraction(t)
	n.SetTool(typedef.ToolGeography)

	n.PointerDown(400, 300)
	n.PointerMove(400.5, 300) // < 2px from last recorded point
	n.PointerMove(401, 300)   // still < 2px
	n.PointerMove(403, 300)   // 3px: recorded
	n.PointerUp(403, 300)

	if len(rec.paths) != 1 {
		t.Fatalf("paths = %d, want 1", len(rec.paths))
	}
	if got := len(rec.paths[0].Points); got != 2 {
		t.Errorf("path has %d points, want 2 (dense samples dropped)", got)
	}
}

func TestDrawSinglePointDiscardedSilently(t *testing.T) {
	n, rec, _ := newTestInteraction(t)
	n.SetTool(typedef.ToolGeography)

	n.PointerDown(400, 300)
	n.PointerUp(400, 300)

	if len(rec.paths) != 0 {
		t.Errorf("degenerate draw produced a path: %v", rec.paths)
	}
}

func TestPanAbandonsDrawAndClearsPreview(t *testing.T) {
	n, rec, _ := newTestInteraction(t)
	n.SetTool(typedef.ToolGeography)

	n.PointerDown(400, 300)
	n.PointerMove(410, 300)
	n.PanStarted()
	n.PointerUp(420, 300)

	if len(rec.paths) != 0 {
		t.Errorf("abandoned draw emitted a path")
	}
	if len(rec.previews) == 0 || rec.previews[len(rec.previews)-1] != nil {
		t.Error("preview not cleared on pan interruption")
	}
}

func TestEraseThrottledToOneRequest(t *testing.T) {
	n, rec, _ := newTestInteraction(t)
	n.SetTool(typedef.ToolGeography)
	n.SetBrush(typedef.BrushSettings{Erase: true, Size: 16})

	now := time.Unix(0, 0)
	n.eraseThrottle.now = func() time.Time { return now }

	n.PointerDown(400, 300)
	now = now.Add(10 * time.Millisecond)
	n.PointerMove(405, 300)
	now = now.Add(15 * time.Millisecond)
	n.PointerMove(410, 300)
	now = now.Add(15 * time.Millisecond)
	n.PointerMove(415, 300)
	n.PointerUp(415, 300)

	// Pointer-down plus three moves within 50ms: exactly one request.
	if len(rec.erases) != 1 {
		t.Fatalf("erase requests = %d, want 1", len(rec.erases))
	}
	if rec.erases[0] != 16 {
		t.Errorf("erase radius = %v, want brush size 16", rec.erases[0])
	}

	// After the interval, moves erase again.
	now = now.Add(200 * time.Millisecond)
	n.PointerDown(400, 300)
	if len(rec.erases) != 2 {
		t.Errorf("erase after interval not emitted: %d", len(rec.erases))
	}
}

func TestToolChangeAbandonsGesture(t *testing.T) {
	n, rec, _ := newTestInteraction(t)
	n.SetTool(typedef.ToolPaint)

	sx, sy := screenAt(0, 0)
	n.PointerDown(sx, sy)
	n.SetTool(typedef.ToolSelect)
	n.PointerUp(sx, sy)

	if len(rec.completes) != 0 {
		t.Errorf("tool change mid-gesture emitted completion: %v", rec.completes)
	}
}
