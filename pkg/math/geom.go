// pkg/math/geom.go
// Copyright(c) 2026 quill contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// Extent2D

// Extent2D represents a 2D bounding box with the two vertices at its
// opposite minimum and maximum corners.
type Extent2D struct {
	P0, P1 [2]float32
}

// EmptyExtent2D returns an Extent2D representing an empty bounding box.
func EmptyExtent2D() Extent2D {
	// Degenerate bounds
	return Extent2D{P0: [2]float32{1e30, 1e30}, P1: [2]float32{-1e30, -1e30}}
}

// Extent2DFromPoints returns an Extent2D that bounds all of the provided
// points.
func Extent2DFromPoints(pts [][2]float32) Extent2D {
	e := EmptyExtent2D()
	for _, p := range pts {
		for d := 0; d < 2; d++ {
			if p[d] < e.P0[d] {
				e.P0[d] = p[d]
			}
			if p[d] > e.P1[d] {
				e.P1[d] = p[d]
			}
		}
	}
	return e
}

func (e Extent2D) Width() float32 {
	return e.P1[0] - e.P0[0]
}

func (e Extent2D) Height() float32 {
	return e.P1[1] - e.P0[1]
}

func (e Extent2D) Center() [2]float32 {
	return [2]float32{(e.P0[0] + e.P1[0]) / 2, (e.P0[1] + e.P1[1]) / 2}
}

// Expand expands the extent by the given distance in all directions.
func (e Extent2D) Expand(d float32) Extent2D {
	return Extent2D{
		P0: [2]float32{e.P0[0] - d, e.P0[1] - d},
		P1: [2]float32{e.P1[0] + d, e.P1[1] + d}}
}

func (e Extent2D) Inside(p [2]float32) bool {
	return p[0] >= e.P0[0] && p[0] <= e.P1[0] && p[1] >= e.P0[1] && p[1] <= e.P1[1]
}

// Union returns the extent that also bounds the point p.
func Union(e Extent2D, p [2]float32) Extent2D {
	e.P0[0] = min(e.P0[0], p[0])
	e.P0[1] = min(e.P0[1], p[1])
	e.P1[0] = max(e.P1[0], p[0])
	e.P1[1] = max(e.P1[1], p[1])
	return e
}
