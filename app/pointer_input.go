package app

import (
	"image"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// PointerEventType enumerates generic pointer actions.
type PointerEventType int

const (
	PointerDown PointerEventType = iota
	PointerUp
	PointerMove
	PointerWheel     // vertical wheel ticks in Scroll
	PointerPinchZoom // scale > 1 zoom in, < 1 zoom out
)

// PointerEvent represents a unified mouse/touch/wheel action with global
// screen coordinates and button state.
type PointerEvent struct {
	Type      PointerEventType
	ID        ebiten.TouchID
	Position  image.Point
	Delta     image.Point
	Scroll    float64 // for wheel
	Scale     float64 // for pinch
	Secondary bool    // right/middle button: pan gesture
	IsMouse   bool
	Time      time.Time
}

type touchPoint struct {
	last image.Point
}

type pinchTracker struct {
	id1, id2 ebiten.TouchID
	lastDist float64
}

// PointerInput polls ebiten input APIs each frame and normalizes mouse,
// touch, pinch and wheel input into a single pointer event stream for the
// interaction engine.
type PointerInput struct {
	events        []PointerEvent
	touches       map[ebiten.TouchID]*touchPoint
	primaryDown   bool
	secondaryDown bool
	primaryLast   image.Point
	secondaryLast image.Point
	pinch         pinchTracker
}

// NewPointerInput builds the pointer normalization helper.
func NewPointerInput() *PointerInput {
	return &PointerInput{touches: make(map[ebiten.TouchID]*touchPoint)}
}

// Events returns the pointer events collected during the last Update.
func (p *PointerInput) Events() []PointerEvent { return p.events }

// Update polls input state and emits normalized pointer events.
func (p *PointerInput) Update() {
	now := time.Now()
	p.events = p.events[:0]

	if !ebiten.IsFocused() {
		p.Reset()
		return
	}

	mx, my := ebiten.CursorPosition()
	pos := image.Pt(mx, my)

	p.pollButton(&p.primaryDown, &p.primaryLast, pos, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft), false, now)
	secondary := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) ||
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	p.pollButton(&p.secondaryDown, &p.secondaryLast, pos, secondary, true, now)

	if _, wheelY := ebiten.Wheel(); wheelY != 0 {
		p.events = append(p.events, PointerEvent{Type: PointerWheel, Position: pos, Scroll: wheelY, IsMouse: true, Time: now})
	}

	p.pollTouches(now)
}

func (p *PointerInput) pollButton(down *bool, last *image.Point, pos image.Point, pressed, secondary bool, now time.Time) {
	switch {
	case pressed && !*down:
		*down = true
		*last = pos
		p.events = append(p.events, PointerEvent{Type: PointerDown, Position: pos, Secondary: secondary, IsMouse: true, Time: now})
	case pressed && *down:
		if pos != *last {
			delta := pos.Sub(*last)
			p.events = append(p.events, PointerEvent{Type: PointerMove, Position: pos, Delta: delta, Secondary: secondary, IsMouse: true, Time: now})
			*last = pos
		}
	case !pressed && *down:
		*down = false
		p.events = append(p.events, PointerEvent{Type: PointerUp, Position: pos, Secondary: secondary, IsMouse: true, Time: now})
	}
}

func (p *PointerInput) pollTouches(now time.Time) {
	touchIDs := ebiten.AppendTouchIDs(nil)
	active := make(map[ebiten.TouchID]bool, len(touchIDs))

	for _, id := range touchIDs {
		active[id] = true
		tx, ty := ebiten.TouchPosition(id)
		pos := image.Pt(tx, ty)
		st, ok := p.touches[id]
		if !ok {
			p.touches[id] = &touchPoint{last: pos}
			p.events = append(p.events, PointerEvent{Type: PointerDown, ID: id, Position: pos, Time: now})
			continue
		}
		if pos != st.last {
			delta := pos.Sub(st.last)
			p.events = append(p.events, PointerEvent{Type: PointerMove, ID: id, Position: pos, Delta: delta, Time: now})
			st.last = pos
		}
	}

	for id, st := range p.touches {
		if !active[id] {
			p.events = append(p.events, PointerEvent{Type: PointerUp, ID: id, Position: st.last, Time: now})
			delete(p.touches, id)
		}
	}

	// Pinch zoom from the first two touches.
	if len(touchIDs) >= 2 {
		id1, id2 := touchIDs[0], touchIDs[1]
		x1, y1 := ebiten.TouchPosition(id1)
		x2, y2 := ebiten.TouchPosition(id2)
		dist := math.Hypot(float64(x2-x1), float64(y2-y1))

		if p.pinch.id1 != id1 || p.pinch.id2 != id2 {
			p.pinch = pinchTracker{id1: id1, id2: id2, lastDist: dist}
		} else if dist > 0 && p.pinch.lastDist > 0 && math.Abs(dist-p.pinch.lastDist) > 0.5 {
			mid := image.Pt((x1+x2)/2, (y1+y2)/2)
			p.events = append(p.events, PointerEvent{Type: PointerPinchZoom, ID: id1, Position: mid, Scale: dist / p.pinch.lastDist, Time: now})
			p.pinch.lastDist = dist
		} else {
			p.pinch.lastDist = dist
		}
	} else {
		p.pinch = pinchTracker{}
	}
}

// Reset clears all pointer state and outstanding events, e.g. when the
// window loses focus.
func (p *PointerInput) Reset() {
	p.events = p.events[:0]
	p.primaryDown = false
	p.secondaryDown = false
	p.pinch = pinchTracker{}
	for id := range p.touches {
		delete(p.touches, id)
	}
}
