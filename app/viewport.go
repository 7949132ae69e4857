package app

import (
	"time"
)

// Viewport tracks the visible world-pixel rectangle and enforces zoom
// bounds. Zoom is screen-pixels-per-world-pixel; the invariant
// minZoom <= zoom <= maxZoom holds after every operation.
type Viewport struct {
	x, y          float64 // world-pixel origin (top-left)
	width, height float64 // world-pixel extent of the visible region
	zoom          float64
	minZoom       float64
	maxZoom       float64

	screenW, screenH int
	contentW         float64 // full content extent, grid plus margin
	contentH         float64

	commit   *Debounce // coalesces high-frequency updates
	onCommit func()
}

const (
	defaultMaxZoom  = 4.0
	absoluteMinZoom = 0.001
	commitQuietTime = 50 * time.Millisecond
)

// NewViewport builds a viewport with the given zoom ceiling. The minimum
// zoom stays at the absolute floor until a content extent is known.
func NewViewport(maxZoom float64) *Viewport {
	if maxZoom <= 0 {
		maxZoom = defaultMaxZoom
	}
	return &Viewport{
		zoom:    1,
		minZoom: absoluteMinZoom,
		maxZoom: maxZoom,
		commit:  NewDebounce(commitQuietTime),
	}
}

// SetCommitCallback registers the debounced notification fired after
// pan/zoom/resize activity settles.
func (v *Viewport) SetCommitCallback(fn func()) { v.onCommit = fn }

// Teardown cancels any pending debounced commit.
func (v *Viewport) Teardown() { v.commit.Cancel() }

// ComputeMinZoom returns the zoom at which the full content extent exactly
// fits the screen on the tighter axis, clamped to [0.001, maxZoom].
func ComputeMinZoom(contentW, contentH, screenW, screenH float64, maxZoom float64) float64 {
	if contentW <= 0 || contentH <= 0 || screenW <= 0 || screenH <= 0 {
		return absoluteMinZoom
	}
	fit := screenW / contentW
	if other := screenH / contentH; other < fit {
		fit = other
	}
	if fit < absoluteMinZoom {
		fit = absoluteMinZoom
	}
	if fit > maxZoom {
		fit = maxZoom
	}
	return fit
}

// SetScreenSize records the hosting surface size and recomputes the
// derived extent and zoom bounds. A zero-size surface is degenerate and
// keeps the previous state.
func (v *Viewport) SetScreenSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	v.screenW, v.screenH = w, h
	v.refreshMinZoom()
	v.applyZoom(v.zoom)
	v.scheduleCommit()
}

// SetContentExtent records the world-pixel size of the generated grid plus
// margin, used for the minimum zoom fit.
func (v *Viewport) SetContentExtent(w, h float64) {
	v.contentW, v.contentH = w, h
	v.refreshMinZoom()
	v.applyZoom(v.zoom)
}

func (v *Viewport) refreshMinZoom() {
	v.minZoom = ComputeMinZoom(v.contentW, v.contentH, float64(v.screenW), float64(v.screenH), v.maxZoom)
}

// applyZoom clamps and stores the zoom, then rederives width/height from
// the screen size.
func (v *Viewport) applyZoom(zoom float64) {
	if zoom < v.minZoom {
		zoom = v.minZoom
	}
	if zoom > v.maxZoom {
		zoom = v.maxZoom
	}
	v.zoom = zoom
	if v.screenW > 0 && v.screenH > 0 {
		v.width = float64(v.screenW) / v.zoom
		v.height = float64(v.screenH) / v.zoom
	}
}

// ZoomAt performs an anchored zoom: the world point under the given screen
// position stays under it after the zoom change.
func (v *Viewport) ZoomAt(screenX, screenY, targetZoom float64) {
	wx, wy := v.ScreenToWorld(screenX, screenY)
	v.applyZoom(targetZoom)
	v.x = wx - screenX/v.zoom
	v.y = wy - screenY/v.zoom
	v.scheduleCommit()
}

// Pan translates the viewport by a screen-space delta. Panning never
// changes zoom.
func (v *Viewport) Pan(deltaScreenX, deltaScreenY float64) {
	v.x -= deltaScreenX / v.zoom
	v.y -= deltaScreenY / v.zoom
	v.scheduleCommit()
}

// CenterOn places a world point at the center of the rectangle at the
// current zoom.
func (v *Viewport) CenterOn(worldX, worldY float64) {
	v.x = worldX - v.width/2
	v.y = worldY - v.height/2
	v.scheduleCommit()
}

// ScreenToWorld converts a screen position to world-pixel space.
func (v *Viewport) ScreenToWorld(screenX, screenY float64) (float64, float64) {
	return v.x + screenX/v.zoom, v.y + screenY/v.zoom
}

// WorldToScreen converts a world-pixel position to screen space.
func (v *Viewport) WorldToScreen(worldX, worldY float64) (float64, float64) {
	return (worldX - v.x) * v.zoom, (worldY - v.y) * v.zoom
}

// Bounds returns the visible world-pixel rectangle.
func (v *Viewport) Bounds() (x, y, w, h float64) {
	return v.x, v.y, v.width, v.height
}

// Zoom returns the current zoom level.
func (v *Viewport) Zoom() float64 { return v.zoom }

// MinZoom returns the current fit-derived zoom floor.
func (v *Viewport) MinZoom() float64 { return v.minZoom }

// MaxZoom returns the configured zoom ceiling.
func (v *Viewport) MaxZoom() float64 { return v.maxZoom }

// Degenerate reports whether the viewport has no usable extent yet.
func (v *Viewport) Degenerate() bool {
	return v.width <= 0 || v.height <= 0
}

func (v *Viewport) scheduleCommit() {
	if v.onCommit == nil {
		return
	}
	v.commit.Trigger(v.onCommit)
}
