package app

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"sync/atomic"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"hexstudio/hexmath"
	"hexstudio/hexruntime"
	"hexstudio/typedef"
)

const (
	// Buffers applied when converting the viewport to an axial bounding
	// box; tiles just off-screen stay in the visible set so panning never
	// pops geometry in late.
	cullBufferHexes = 1

	zoomSensitivity = 0.05

	labelMinZoom   = 0.8 // coordinate labels below this zoom are unreadable
	outlineMinZoom = 0.3
)

// HexMapView owns the interactive hex map: viewport, pointer routing, tool
// state, culling and rendering. It is driven by the game loop, one Update
// and one Draw per frame.
type HexMapView struct {
	viewport    *Viewport
	interaction *Interaction
	pointer     *PointerInput

	orientation typedef.HexOrientation
	tileSize    float64

	visible    []*typedef.HexTile
	selectedID string
	preview    []typedef.PixelPoint

	// Set from the viewport debounce timer and hexruntime change
	// callbacks, both off the game loop goroutine; drained in Update.
	mapStale atomic.Bool

	screenW, screenH int

	whitePixel *ebiten.Image

	showLabels    bool
	gridLineColor color.RGBA
	panning       bool
}

// NewHexMapView builds the map view and subscribes it to map changes.
func NewHexMapView() *HexMapView {
	_, _, orientation, tileSize := hexruntime.GridConfig()

	m := &HexMapView{
		viewport:      NewViewport(0),
		pointer:       NewPointerInput(),
		orientation:   orientation,
		tileSize:      tileSize,
		showLabels:    true,
		gridLineColor: color.RGBA{R: 30, G: 34, B: 40, A: 255},
	}

	m.interaction = NewInteraction(m.viewport, hexruntime.GetTile, tileSize, orientation, EngineCallbacks{
		OnHexClick: func(tile *typedef.HexTile) {
			m.selectedID = tile.ID
			fmt.Printf("[MAP] Selected tile %s (%d,%d) %s\n", tile.ID, tile.Col, tile.Row, tile.Biome)
		},
		OnPaintHexBatch: func(tileIDs []string, _ typedef.ToolKind) {
			hexruntime.SetBiomeBatch(tileIDs, m.interaction.Brush().Biome)
		},
		OnPaintComplete: func(tile *typedef.HexTile) {
			fmt.Printf("[MAP] Paint stroke finished on %s (%s)\n", tile.ID, tile.Biome)
		},
		OnNewPath: func(path *typedef.DrawingPath) {
			if err := hexruntime.AddPath(path); err != nil {
				fmt.Printf("[MAP] Discarded path: %v\n", err)
			}
		},
		OnErasePaths: func(worldX, worldY, radius float64) {
			hexruntime.ErasePathsNear(worldX, worldY, radius)
		},
		OnDrawingPreview: func(points []typedef.PixelPoint) {
			m.preview = points
		},
	})
	m.interaction.SetBrush(typedef.BrushSettings{
		Biome:       typedef.BiomeForest,
		PathKind:    typedef.PathRoad,
		Color:       color.RGBA{R: 188, G: 142, B: 84, A: 255},
		StrokeWidth: 3,
		Size:        16,
	})

	m.viewport.SetCommitCallback(func() { m.mapStale.Store(true) })
	hexruntime.RegisterChangeCallback(func() { m.mapStale.Store(true) })

	m.syncContent()
	m.viewport.CenterOn(0, 0)
	return m
}

// Teardown releases timers held by the view.
func (m *HexMapView) Teardown() { m.viewport.Teardown() }

// Interaction exposes the tool state machine for external brush/tool
// control (scripts, API).
func (m *HexMapView) Interaction() *Interaction { return m.interaction }

// Update advances one frame: pointer routing, keyboard shortcuts and
// deferred visibility recomputation.
func (m *HexMapView) Update(screenW, screenH int) {
	if screenW != m.screenW || screenH != m.screenH {
		m.screenW, m.screenH = screenW, screenH
		m.viewport.SetScreenSize(screenW, screenH)
	}

	m.pointer.Update()
	for _, ev := range m.pointer.Events() {
		m.handlePointerEvent(ev)
	}
	m.handleKeyboard()

	if m.mapStale.Swap(false) {
		m.syncContent()
		m.recull()
	}
}

func (m *HexMapView) handlePointerEvent(ev PointerEvent) {
	x := float64(ev.Position.X)
	y := float64(ev.Position.Y)

	switch ev.Type {
	case PointerWheel:
		factor := math.Pow(1.1, ev.Scroll*zoomSensitivity*20)
		m.viewport.ZoomAt(x, y, m.viewport.Zoom()*factor)

	case PointerPinchZoom:
		m.interaction.PanStarted()
		m.viewport.ZoomAt(x, y, m.viewport.Zoom()*ev.Scale)

	case PointerDown:
		if ev.Secondary {
			m.panning = true
			m.interaction.PanStarted()
			return
		}
		m.interaction.PointerDown(x, y)

	case PointerMove:
		if ev.Secondary {
			if m.panning {
				m.viewport.Pan(float64(ev.Delta.X), float64(ev.Delta.Y))
			}
			return
		}
		m.interaction.PointerMove(x, y)

	case PointerUp:
		if ev.Secondary {
			m.panning = false
			return
		}
		m.interaction.PointerUp(x, y)
	}
}

func (m *HexMapView) handleKeyboard() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.Key1):
		m.interaction.SetTool(typedef.ToolSelect)
	case inpututil.IsKeyJustPressed(ebiten.Key2):
		m.interaction.SetTool(typedef.ToolPaint)
	case inpututil.IsKeyJustPressed(ebiten.Key3):
		m.interaction.SetTool(typedef.ToolGeography)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		brush := m.interaction.Brush()
		brush.Erase = !brush.Erase
		m.interaction.SetBrush(brush)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		brush := m.interaction.Brush()
		brush.Biome = typedef.Biome((uint8(brush.Biome) + 1) % uint8(typedef.BiomeTundra+1))
		m.interaction.SetBrush(brush)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyK) {
		brush := m.interaction.Brush()
		if brush.PathKind == typedef.PathRoad {
			brush.PathKind = typedef.PathRiver
			brush.Color = color.RGBA{R: 70, G: 130, B: 200, A: 255}
		} else {
			brush.PathKind = typedef.PathRoad
			brush.Color = color.RGBA{R: 188, G: 142, B: 84, A: 255}
		}
		m.interaction.SetBrush(brush)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		m.showLabels = !m.showLabels
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) && !ebiten.IsKeyPressed(ebiten.KeyControl) {
		m.viewport.CenterOn(0, 0)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd) {
		m.keyboardZoom(3.0)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract) {
		m.keyboardZoom(-3.0)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		m.toggleOrientation()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) && !ebiten.IsKeyPressed(ebiten.KeyControl) {
		m.regenerate()
	}

	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		if inpututil.IsKeyJustPressed(ebiten.KeyS) {
			hexruntime.TriggerAutoSave()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyC) {
			m.copySelectedTile()
		}
	}
}

func (m *HexMapView) keyboardZoom(wheelDelta float64) {
	factor := math.Pow(1.1, wheelDelta*zoomSensitivity*20)
	m.viewport.ZoomAt(float64(m.screenW)/2, float64(m.screenH)/2, m.viewport.Zoom()*factor)
}

func (m *HexMapView) toggleOrientation() {
	rows, cols, orientation, tileSize := hexruntime.GridConfig()
	next := typedef.OrientationPointyTop
	if orientation == typedef.OrientationPointyTop {
		next = typedef.OrientationFlatTop
	}
	// Orientation changes invalidate every derived pixel position, so the
	// grid is regenerated wholesale.
	if err := hexruntime.GenerateGrid(hexruntime.GenConfig{
		Rows: rows, Cols: cols, Orientation: next, TileSize: tileSize,
	}); err != nil {
		fmt.Printf("[MAP] Orientation change failed: %v\n", err)
		return
	}
	m.selectedID = ""
}

func (m *HexMapView) regenerate() {
	rows, cols, orientation, tileSize := hexruntime.GridConfig()
	if rows == 0 || cols == 0 {
		return
	}
	if err := hexruntime.GenerateGrid(hexruntime.GenConfig{
		Rows: rows, Cols: cols, Orientation: orientation, TileSize: tileSize,
	}); err != nil {
		fmt.Printf("[MAP] Regeneration failed: %v\n", err)
		return
	}
	m.selectedID = ""
}

func (m *HexMapView) copySelectedTile() {
	if m.selectedID == "" {
		return
	}
	tile := hexruntime.GetTile(m.selectedID)
	if tile == nil {
		return
	}
	data, err := json.MarshalIndent(tile, "", "  ")
	if err != nil {
		return
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		fmt.Printf("[MAP] Clipboard write failed: %v\n", err)
		return
	}
	fmt.Printf("[MAP] Copied tile %s to clipboard\n", tile.ID)
}

// syncContent pulls grid parameters and content extent from the runtime
// after any map change, keeping viewport fit and tile resolution in step.
func (m *HexMapView) syncContent() {
	_, _, orientation, tileSize := hexruntime.GridConfig()
	if orientation != m.orientation || tileSize != m.tileSize {
		m.orientation = orientation
		m.tileSize = tileSize
		m.interaction.SetOrientation(orientation)
		m.interaction.SetTileSize(tileSize)
	}
	w, h := hexruntime.ContentExtent(2)
	m.viewport.SetContentExtent(w, h)
}

// recull recomputes the visible tile set from the current viewport.
func (m *HexMapView) recull() {
	bounds, ok := VisibleBounds(m.viewport, m.tileSize, m.orientation, m.tileSize*2, cullBufferHexes)
	if !ok {
		return // degenerate viewport keeps the previous result
	}
	m.visible = CullTiles(hexruntime.GetTiles(), bounds)
	if cb := m.interaction.callbacks.OnVisibleHexesChange; cb != nil {
		cb(len(m.visible), m.viewport.Zoom())
	}
}

// Draw renders the map layers bottom-up: hex fills, grid outlines,
// overlay paths, the in-flight preview, selection, labels and HUD.
func (m *HexMapView) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 16, G: 18, B: 24, A: 255})

	if m.whitePixel == nil {
		m.whitePixel = ebiten.NewImage(1, 1)
		m.whitePixel.Fill(color.RGBA{255, 255, 255, 255})
	}

	m.drawTiles(screen)
	m.drawPaths(screen)
	m.drawPreview(screen)
	m.drawSelection(screen)
	if m.showLabels && m.viewport.Zoom() >= labelMinZoom {
		m.drawLabels(screen)
	}
	m.drawHUD(screen)
}

func (m *HexMapView) drawTiles(screen *ebiten.Image) {
	zoom := m.viewport.Zoom()
	outline := zoom >= outlineMinZoom

	var vertices []ebiten.Vertex
	var indices []uint16

	flush := func() {
		if len(vertices) == 0 {
			return
		}
		opts := &ebiten.DrawTrianglesOptions{}
		opts.CompositeMode = ebiten.CompositeModeSourceOver
		screen.DrawTriangles(vertices, indices, m.whitePixel, opts)
		vertices = vertices[:0]
		indices = indices[:0]
	}

	for _, tile := range m.visible {
		cx, cy := hexmath.TileCenter(tile.Coordinate, m.tileSize, m.orientation)
		sx, sy := m.viewport.WorldToScreen(cx, cy)

		fill := tile.Biome.FillColor()
		colorR := float32(fill.R) / 255
		colorG := float32(fill.G) / 255
		colorB := float32(fill.B) / 255
		colorA := float32(fill.A) / 255

		// Fan triangulation: center vertex plus the six corners.
		base := uint16(len(vertices))
		vertices = append(vertices, ebiten.Vertex{
			DstX: float32(sx), DstY: float32(sy),
			ColorR: colorR, ColorG: colorG, ColorB: colorB, ColorA: colorA,
		})
		var corners [6][2]float32
		for i := 0; i < 6; i++ {
			wx, wy := hexmath.PolygonCorner(cx, cy, m.tileSize, m.orientation, i)
			px, py := m.viewport.WorldToScreen(wx, wy)
			corners[i] = [2]float32{float32(px), float32(py)}
			vertices = append(vertices, ebiten.Vertex{
				DstX: corners[i][0], DstY: corners[i][1],
				ColorR: colorR, ColorG: colorG, ColorB: colorB, ColorA: colorA,
			})
		}
		for i := uint16(0); i < 6; i++ {
			next := (i + 1) % 6
			indices = append(indices, base, base+1+i, base+1+next)
		}

		if outline {
			for i := 0; i < 6; i++ {
				next := (i + 1) % 6
				vector.StrokeLine(screen,
					corners[i][0], corners[i][1],
					corners[next][0], corners[next][1],
					1, m.gridLineColor, false)
			}
		}

		// uint16 index space; flush before a hex could overflow it.
		if len(vertices) > 65000 {
			flush()
		}
	}
	flush()
}

func (m *HexMapView) drawPaths(screen *ebiten.Image) {
	zoom := m.viewport.Zoom()
	for _, p := range hexruntime.GetPaths() {
		m.strokePolyline(screen, p.Points, float32(p.StrokeWidth*zoom), p.Color)
	}
}

func (m *HexMapView) drawPreview(screen *ebiten.Image) {
	if len(m.preview) < 2 {
		return
	}
	brush := m.interaction.Brush()
	clr := brush.Color
	clr.A = 170
	m.strokePolyline(screen, m.preview, float32(brush.StrokeWidth*m.viewport.Zoom()), clr)
}

func (m *HexMapView) strokePolyline(screen *ebiten.Image, points []typedef.PixelPoint, width float32, clr color.RGBA) {
	if width < 1 {
		width = 1
	}
	for i := 1; i < len(points); i++ {
		x0, y0 := m.viewport.WorldToScreen(points[i-1].X, points[i-1].Y)
		x1, y1 := m.viewport.WorldToScreen(points[i].X, points[i].Y)
		vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), width, clr, true)
	}
}

func (m *HexMapView) drawSelection(screen *ebiten.Image) {
	if m.selectedID == "" {
		return
	}
	tile := hexruntime.GetTile(m.selectedID)
	if tile == nil {
		m.selectedID = ""
		return
	}
	cx, cy := hexmath.TileCenter(tile.Coordinate, m.tileSize, m.orientation)
	highlight := color.RGBA{R: 255, G: 214, B: 64, A: 255}
	for i := 0; i < 6; i++ {
		wx0, wy0 := hexmath.PolygonCorner(cx, cy, m.tileSize, m.orientation, i)
		wx1, wy1 := hexmath.PolygonCorner(cx, cy, m.tileSize, m.orientation, (i+1)%6)
		x0, y0 := m.viewport.WorldToScreen(wx0, wy0)
		x1, y1 := m.viewport.WorldToScreen(wx1, wy1)
		vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 2, highlight, true)
	}
}

func (m *HexMapView) drawLabels(screen *ebiten.Image) {
	labelColor := color.RGBA{R: 230, G: 230, B: 230, A: 200}
	for _, tile := range m.visible {
		cx, cy := hexmath.TileCenter(tile.Coordinate, m.tileSize, m.orientation)
		sx, sy := m.viewport.WorldToScreen(cx, cy)
		label := fmt.Sprintf("%d,%d", tile.Col, tile.Row)
		// Face7x13 advances 7px per glyph; center the label on the tile.
		x := int(sx) - len(label)*7/2
		y := int(sy) + 4
		text.Draw(screen, label, basicfont.Face7x13, x, y, labelColor)
		if tile.Town != nil {
			text.Draw(screen, tile.Town.Name, basicfont.Face7x13, x, y+13, color.RGBA{R: 255, G: 200, B: 120, A: 220})
		}
	}
}

func (m *HexMapView) drawHUD(screen *ebiten.Image) {
	brush := m.interaction.Brush()
	mode := brush.Biome.String()
	switch m.interaction.Tool() {
	case typedef.ToolGeography:
		if brush.Erase {
			mode = "erase"
		} else {
			mode = brush.PathKind.String()
		}
	case typedef.ToolSelect:
		mode = m.selectedID
		if mode == "" {
			mode = "-"
		}
	}
	hud := fmt.Sprintf("tool: %s [%s]  zoom: %.2f  visible: %d/%d  %s",
		m.interaction.Tool(), mode, m.viewport.Zoom(), len(m.visible), hexruntime.TileCount(), m.orientation)

	vector.DrawFilledRect(screen, 0, 0, float32(len(hud)*7+16), 22, color.RGBA{A: 160}, false)
	text.Draw(screen, hud, basicfont.Face7x13, 8, 15, color.RGBA{R: 235, G: 235, B: 235, A: 255})
}
