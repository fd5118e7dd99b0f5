package telemetry

import (
	"math"
	"time"
)

// #region geometry

// Point is a pointer position in device coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is an element bounding box in device coordinates.
type Bounds struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the center point of the bounds.
func (b Bounds) Center() Point {
	return Point{X: b.Left + b.Width/2, Y: b.Top + b.Height/2}
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// NearEdge reports whether p lies within margin of any edge of b.
func NearEdge(p Point, b Bounds, margin float64) bool {
	return p.X-b.Left < margin ||
		b.Left+b.Width-p.X < margin ||
		p.Y-b.Top < margin ||
		b.Top+b.Height-p.Y < margin
}

// #endregion geometry

// #region samples

// VelocitySample is one pointer velocity measurement.
type VelocitySample struct {
	At       time.Time `json:"at"`
	PxPerSec float64   `json:"px_per_sec"`
}

// DurationSample is one timed measurement (click latency, focus dwell).
type DurationSample struct {
	At time.Time     `json:"at"`
	D  time.Duration `json:"d"`
}

// #endregion samples

// #region helpers

// Clamp restricts v to [0, 1].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Velocity returns pointer speed in px/sec between two samples.
// Returns 0 when the elapsed time is not positive.
func Velocity(from, to Point, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return Distance(from, to) / elapsed.Seconds()
}

// #endregion helpers
