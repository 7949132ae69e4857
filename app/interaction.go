package app

import (
	"math"
	"time"

	"github.com/google/uuid"

	"hexstudio/hexmath"
	"hexstudio/typedef"
)

// EngineCallbacks is the event surface exposed to the host application.
// All callbacks are optional; a nil entry is skipped. The engine emits
// geometric/logical results only, it never renders or persists anything.
type EngineCallbacks struct {
	OnHexClick           func(tile *typedef.HexTile)
	OnPaintHexBatch      func(tileIDs []string, tool typedef.ToolKind)
	OnPaintComplete      func(tile *typedef.HexTile)
	OnNewPath            func(path *typedef.DrawingPath)
	OnErasePaths         func(worldX, worldY, radius float64)
	OnDrawingPreview     func(points []typedef.PixelPoint) // nil clears the preview
	OnVisibleHexesChange func(count int, zoom float64)
}

// TileSource resolves a tile id (HexCoordinate.Key) against the current
// tile collection. Returning nil is a resolution miss, never an error.
type TileSource func(id string) *typedef.HexTile

const (
	// Minimum spacing between recorded freehand points, bounding path
	// density independent of pointer sampling rate.
	minPointSpacing = 2.0

	previewInterval = 25 * time.Millisecond  // ~40 updates/s
	eraseInterval   = 100 * time.Millisecond // 10 requests/s
)

type gestureKind uint8

const (
	gestureNone gestureKind = iota
	gesturePaint
	gestureDraw
	gestureErase
)

// gestureState is the in-flight tool state, replaced wholesale on each
// transition so illegal flag combinations cannot be represented.
type gestureState struct {
	kind          gestureKind
	lastPaintedID string               // gesturePaint
	points        []typedef.PixelPoint // gestureDraw
}

// Interaction consumes resolved pointer events, disambiguates the active
// tool's intent, and emits high-level events through EngineCallbacks.
type Interaction struct {
	tool        typedef.ToolKind
	brush       typedef.BrushSettings
	orientation typedef.HexOrientation
	tileSize    float64

	viewport  *Viewport
	tiles     TileSource
	callbacks EngineCallbacks

	gesture         gestureState
	previewThrottle *Throttle
	eraseThrottle   *Throttle
}

// NewInteraction builds the tool state machine. The viewport is consulted
// for screen-to-world conversion only; the interaction never mutates it.
func NewInteraction(viewport *Viewport, tiles TileSource, tileSize float64, orientation typedef.HexOrientation, callbacks EngineCallbacks) *Interaction {
	return &Interaction{
		tool:            typedef.ToolSelect,
		orientation:     orientation,
		tileSize:        tileSize,
		viewport:        viewport,
		tiles:           tiles,
		callbacks:       callbacks,
		previewThrottle: NewThrottle(previewInterval),
		eraseThrottle:   NewThrottle(eraseInterval),
	}
}

// SetTool switches the active tool, abandoning any in-flight gesture.
// Already-emitted events are never retracted.
func (n *Interaction) SetTool(tool typedef.ToolKind) {
	if tool == n.tool {
		return
	}
	n.tool = tool
	n.abandonGesture()
}

// Tool returns the active tool.
func (n *Interaction) Tool() typedef.ToolKind { return n.tool }

// SetBrush replaces the brush settings. An in-flight gesture keeps the
// settings it started with for points already emitted.
func (n *Interaction) SetBrush(brush typedef.BrushSettings) { n.brush = brush }

// Brush returns the current brush settings.
func (n *Interaction) Brush() typedef.BrushSettings { return n.brush }

// SetOrientation updates the projection used for tile resolution. The
// caller is responsible for regenerating derived pixel positions.
func (n *Interaction) SetOrientation(o typedef.HexOrientation) {
	n.orientation = o
	n.abandonGesture()
}

// SetTileSize updates the projection scale.
func (n *Interaction) SetTileSize(size float64) { n.tileSize = size }

// SetCallbacks replaces the callback set at runtime.
func (n *Interaction) SetCallbacks(cb EngineCallbacks) { n.callbacks = cb }

// PanStarted abandons any in-flight paint or draw gesture immediately, so
// a drag-to-pan motion never leaves a paint/draw trail. No completion
// event is emitted.
func (n *Interaction) PanStarted() {
	n.abandonGesture()
}

// PointerDown begins a gesture for the active tool at a screen position.
func (n *Interaction) PointerDown(screenX, screenY float64) {
	switch n.tool {
	case typedef.ToolSelect:
		if tile := n.resolveTile(screenX, screenY); tile != nil {
			n.emitHexClick(tile)
		}

	case typedef.ToolPaint:
		tile := n.resolveTile(screenX, screenY)
		if tile == nil {
			return // resolution miss: silent no-op
		}
		n.gesture = gestureState{kind: gesturePaint, lastPaintedID: tile.ID}
		n.emitPaintBatch([]string{tile.ID})

	case typedef.ToolGeography:
		wx, wy := n.viewport.ScreenToWorld(screenX, screenY)
		if n.brush.Erase {
			n.gesture = gestureState{kind: gestureErase}
			n.eraseThrottle.Reset()
			n.emitErase(wx, wy)
			return
		}
		n.gesture = gestureState{
			kind:   gestureDraw,
			points: []typedef.PixelPoint{{X: wx, Y: wy}},
		}
		n.previewThrottle.Reset()
		n.emitPreview()
	}
}

// PointerMove advances the in-flight gesture, if any.
func (n *Interaction) PointerMove(screenX, screenY float64) {
	switch n.gesture.kind {
	case gesturePaint:
		tile := n.resolveTile(screenX, screenY)
		if tile == nil || tile.ID == n.gesture.lastPaintedID {
			return // never re-emit the same tile twice in a row
		}
		n.gesture.lastPaintedID = tile.ID
		n.emitPaintBatch([]string{tile.ID})

	case gestureDraw:
		wx, wy := n.viewport.ScreenToWorld(screenX, screenY)
		last := n.gesture.points[len(n.gesture.points)-1]
		if math.Hypot(wx-last.X, wy-last.Y) < minPointSpacing {
			return
		}
		n.gesture.points = append(n.gesture.points, typedef.PixelPoint{X: wx, Y: wy})
		if n.previewThrottle.Allow() {
			n.emitPreviewNow()
		}

	case gestureErase:
		wx, wy := n.viewport.ScreenToWorld(screenX, screenY)
		if n.eraseThrottle.Allow() {
			n.emitEraseNow(wx, wy)
		}
	}
}

// PointerUp completes the in-flight gesture. Pointer-up outside the
// interactive surface is delivered here as well.
func (n *Interaction) PointerUp(screenX, screenY float64) {
	g := n.gesture
	n.gesture = gestureState{}

	switch g.kind {
	case gesturePaint:
		// Re-fetch the freshest tile data: painting mutates tile state the
		// cached reference may not reflect.
		if tile := n.tiles(g.lastPaintedID); tile != nil && n.callbacks.OnPaintComplete != nil {
			n.callbacks.OnPaintComplete(tile)
		}

	case gestureDraw:
		// Completion fires first, then the live preview is cleared.
		if len(g.points) >= 2 {
			smoothed := SmoothPath(g.points)
			path := &typedef.DrawingPath{
				ID:          uuid.NewString(),
				Points:      smoothed,
				Color:       n.brush.Color,
				StrokeWidth: n.brush.StrokeWidth,
				Kind:        n.brush.PathKind,
			}
			if n.callbacks.OnNewPath != nil {
				n.callbacks.OnNewPath(path)
			}
		}
		n.clearPreview()

	case gestureErase:
		// Active erasing simply ends; erase requests were fire-and-forget.
	}
}

// resolveTile maps a screen point to the tile whose rounded axial
// coordinate matches a known tile. No match means no-op.
func (n *Interaction) resolveTile(screenX, screenY float64) *typedef.HexTile {
	wx, wy := n.viewport.ScreenToWorld(screenX, screenY)
	coord := hexmath.PixelToAxial(wx, wy, n.tileSize, n.orientation)
	return n.tiles(coord.Key())
}

func (n *Interaction) abandonGesture() {
	if n.gesture.kind == gestureDraw {
		n.clearPreview()
	}
	n.gesture = gestureState{}
}

func (n *Interaction) emitHexClick(tile *typedef.HexTile) {
	if n.callbacks.OnHexClick != nil {
		n.callbacks.OnHexClick(tile)
	}
}

func (n *Interaction) emitPaintBatch(ids []string) {
	if n.callbacks.OnPaintHexBatch != nil {
		n.callbacks.OnPaintHexBatch(ids, n.tool)
	}
}

func (n *Interaction) emitErase(wx, wy float64) {
	if n.eraseThrottle.Allow() {
		n.emitEraseNow(wx, wy)
	}
}

func (n *Interaction) emitEraseNow(wx, wy float64) {
	if n.callbacks.OnErasePaths != nil {
		n.callbacks.OnErasePaths(wx, wy, n.brush.Size)
	}
}

func (n *Interaction) emitPreview() {
	if n.previewThrottle.Allow() {
		n.emitPreviewNow()
	}
}

func (n *Interaction) emitPreviewNow() {
	if n.callbacks.OnDrawingPreview != nil {
		n.callbacks.OnDrawingPreview(n.gesture.points)
	}
}

func (n *Interaction) clearPreview() {
	if n.callbacks.OnDrawingPreview != nil {
		n.callbacks.OnDrawingPreview(nil)
	}
}
