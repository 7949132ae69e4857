package app

import (
	"math"
	"testing"

	"hexstudio/typedef"
)

func TestSmoothPathShortInputsPassThrough(t *testing.T) {
	one := []typedef.PixelPoint{{X: 3, Y: 4}}
	if got := SmoothPath(one); len(got) != 1 || got[0] != one[0] {
		t.Errorf("single point changed: %v", got)
	}

	two := []typedef.PixelPoint{{X: 0, Y: 0}, {X: 9, Y: -2}}
	got := SmoothPath(two)
	if len(got) != 2 || got[0] != two[0] || got[1] != two[1] {
		t.Errorf("two points changed: %v", got)
	}
}

func TestSmoothPathPreservesEndpoints(t *testing.T) {
	pts := []typedef.PixelPoint{{X: 0, Y: 0}, {X: 4, Y: 9}, {X: 7, Y: 1}, {X: 20, Y: 0}}
	got := SmoothPath(pts)
	if got[0] != pts[0] || got[len(got)-1] != pts[len(pts)-1] {
		t.Errorf("endpoints moved: first=%v last=%v", got[0], got[len(got)-1])
	}
	if len(got) != len(pts) {
		t.Errorf("length changed: %d", len(got))
	}
}

func TestSmoothPathCollinearMidpoint(t *testing.T) {
	pts := []typedef.PixelPoint{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}}
	got := SmoothPath(pts)
	// For three collinear equidistant points, the middle point stays the
	// midpoint of its neighbors.
	if math.Abs(got[1].X-10) > 1e-12 || math.Abs(got[1].Y) > 1e-12 {
		t.Errorf("middle point = %v, want (10,0)", got[1])
	}
}

func TestSmoothPathWeightedAverage(t *testing.T) {
	pts := []typedef.PixelPoint{{X: 0, Y: 0}, {X: 0, Y: 8}, {X: 0, Y: 0}}
	got := SmoothPath(pts)
	// 0.25*0 + 0.5*8 + 0.25*0 = 4
	if math.Abs(got[1].Y-4) > 1e-12 {
		t.Errorf("middle Y = %v, want 4", got[1].Y)
	}
}
