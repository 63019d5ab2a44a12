// Package raster rounds the corners of axis-aligned rectangles.
//
// A quarter circle is approximated by a quadratic bezier curve sampled at a
// fixed resolution. For each sample, the pixels between the rectangle's
// straight edge and the curve are handed to a PixelSink, which either
// overwrites them in a pixel buffer or draws them through a renderer.
package raster

import (
	"image"
	"math"
)

// BezierResolution is the number of samples taken along each corner curve.
// Radii at or above it produce gaps between samples and are rejected.
const BezierResolution = 100

// Bezier holds the sampled points of one curve.
type Bezier [BezierResolution]image.Point

// QuadBezier samples the quadratic curve through control points p1, p2, p3,
// translated by offset. Sample i is taken at t = i/(BezierResolution-1), so
// the first and last samples are exactly p1 and p3.
func QuadBezier(offset, p1, p2, p3 image.Point) Bezier {
	var pts Bezier
	for i := range pts {
		t := float64(i) / float64(BezierResolution-1)
		u := 1 - t
		x := u*u*float64(p1.X) + 2*u*t*float64(p2.X) + t*t*float64(p3.X)
		y := u*u*float64(p1.Y) + 2*u*t*float64(p2.Y) + t*t*float64(p3.Y)
		pts[i] = image.Point{
			X: int(math.Round(x)) + offset.X,
			Y: int(math.Round(y)) + offset.Y,
		}
	}
	return pts
}

// ClampRadius validates a corner radius against the shorter side of the box
// it will be applied to. Radii that would produce degenerate curves are
// turned into 0, which disables rounding.
func ClampRadius(radius, shorter int) int {
	if radius <= 0 {
		return 0
	}
	if radius >= BezierResolution || float64(radius) > float64(shorter)/1.5 {
		return 0
	}
	return radius
}
