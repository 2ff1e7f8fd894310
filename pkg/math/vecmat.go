// pkg/math/vecmat.go
// Copyright(c) 2026 quill contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// point 2f

// Various useful functions for arithmetic with 2D points/vectors.
// Names are brief in order to avoid clutter when they're used.

// a+b
func Add2f(a [2]float32, b [2]float32) [2]float32 {
	return [2]float32{a[0] + b[0], a[1] + b[1]}
}

// a-b
func Sub2f(a [2]float32, b [2]float32) [2]float32 {
	return [2]float32{a[0] - b[0], a[1] - b[1]}
}

// a*s
func Scale2f(a [2]float32, s float32) [2]float32 {
	return [2]float32{s * a[0], s * a[1]}
}

// Linearly interpolate x of the way between a and b. x==0 corresponds to
// a, x==1 corresponds to b, etc.
func Lerp2f(x float32, a [2]float32, b [2]float32) [2]float32 {
	return [2]float32{(1-x)*a[0] + x*b[0], (1-x)*a[1] + x*b[1]}
}

///////////////////////////////////////////////////////////////////////////
// 3x3 matrix

// Matrix3 represents a 3x3 matrix used for 2D transformations; it is
// expanded to a full 4x4 matrix when it is passed to the GPU.
type Matrix3 [3][3]float32

func MakeMatrix3(m00, m01, m02, m10, m11, m12, m20, m21, m22 float32) Matrix3 {
	return [3][3]float32{
		[3]float32{m00, m01, m02},
		[3]float32{m10, m11, m12},
		[3]float32{m20, m21, m22}}
}

func Identity3x3() Matrix3 {
	var m Matrix3
	m[0][0] = 1
	m[1][1] = 1
	m[2][2] = 1
	return m
}

func (m Matrix3) PostMultiply(m2 Matrix3) Matrix3 {
	var result Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			result[i][j] = m[i][0]*m2[0][j] + m[i][1]*m2[1][j] + m[i][2]*m2[2][j]
		}
	}
	return result
}

func (m Matrix3) Scale(x, y float32) Matrix3 {
	return m.PostMultiply(MakeMatrix3(x, 0, 0, 0, y, 0, 0, 0, 1))
}

func (m Matrix3) Translate(x, y float32) Matrix3 {
	return m.PostMultiply(MakeMatrix3(1, 0, x, 0, 1, y, 0, 0, 1))
}

// Ortho returns the matrix that maps the rectangle with corners (x0,y0)
// and (x1,y1) to normalized device coordinates.
func (m Matrix3) Ortho(x0, x1, y0, y1 float32) Matrix3 {
	return m.PostMultiply(MakeMatrix3(
		2/(x1-x0), 0, -(x0+x1)/(x1-x0),
		0, 2/(y1-y0), -(y0+y1)/(y1-y0),
		0, 0, 1))
}

func (m Matrix3) TransformPoint(p [2]float32) [2]float32 {
	return [2]float32{
		m[0][0]*p[0] + m[0][1]*p[1] + m[0][2],
		m[1][0]*p[0] + m[1][1]*p[1] + m[1][2],
	}
}
