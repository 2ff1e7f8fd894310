// pkg/math/core.go
// Copyright(c) 2026 quill contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

// A few utility functions for the float32-heavy computation in the
// renderer; it's handy to be able to call these directly rather than with
// all of the casts that are required when using the math package.

func Floor(v float32) float32 {
	return float32(gomath.Floor(float64(v)))
}

func Ceil(v float32) float32 {
	return float32(gomath.Ceil(float64(v)))
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

func Lerp(x, a, b float32) float32 {
	return (1-x)*a + x*b
}
