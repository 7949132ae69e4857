package app

import "hexstudio/typedef"

// SmoothPath replaces each interior point of a freehand stroke with a
// three-point weighted moving average (0.25*prev + 0.5*cur + 0.25*next).
// Endpoints are preserved exactly; lists of length <= 2 pass through
// unchanged. Not idempotent: re-smoothing flattens the curve further, so
// callers smooth exactly once, at gesture completion.
func SmoothPath(points []typedef.PixelPoint) []typedef.PixelPoint {
	if len(points) <= 2 {
		return points
	}

	out := make([]typedef.PixelPoint, len(points))
	out[0] = points[0]
	out[len(points)-1] = points[len(points)-1]
	for i := 1; i < len(points)-1; i++ {
		out[i] = typedef.PixelPoint{
			X: 0.25*points[i-1].X + 0.5*points[i].X + 0.25*points[i+1].X,
			Y: 0.25*points[i-1].Y + 0.5*points[i].Y + 0.25*points[i+1].Y,
		}
	}
	return out
}
