// pkg/renderer/commandbuffer_test.go
// Copyright(c) 2026 quill contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	gomath "math"
	"testing"

	"github.com/quillgl/quill/pkg/math"
)

func TestCommandBufferEncoding(t *testing.T) {
	var cb CommandBuffer

	cb.Blend()
	cb.SetRGB(RGB{R: 1, G: 0.5, B: 0.25})
	cb.DrawInstancedQuads(7)
	cb.DisableBlend()

	want := []uint32{
		RendererBlend,
		RendererSetRGBA,
		gomath.Float32bits(1), gomath.Float32bits(0.5), gomath.Float32bits(0.25), gomath.Float32bits(1),
		RendererDrawInstancedQuads, 7,
		RendererDisableBlend,
	}
	if len(cb.Buf) != len(want) {
		t.Fatalf("expected %d words, got %d", len(want), len(cb.Buf))
	}
	for i := range want {
		if cb.Buf[i] != want[i] {
			t.Errorf("word %d: got %#x, want %#x", i, cb.Buf[i], want[i])
		}
	}
}

func TestIntBuffer(t *testing.T) {
	var cb CommandBuffer

	offset := cb.IntBuffer([]int32{10, 20, 30})

	// Two header words precede the values, so they start at byte 8.
	if offset != 8 {
		t.Errorf("expected byte offset 8, got %d", offset)
	}
	if cb.Buf[0] != RendererIntBuffer || cb.Buf[1] != 3 {
		t.Errorf("unexpected header %v", cb.Buf[:2])
	}
	for i, want := range []uint32{10, 20, 30} {
		if cb.Buf[2+i] != want {
			t.Errorf("value %d: got %d, want %d", i, cb.Buf[2+i], want)
		}
	}

	cb.GlyphIndexArray(offset, 3)
	n := len(cb.Buf)
	if cb.Buf[n-3] != RendererGlyphIndexArray || cb.Buf[n-2] != 8 || cb.Buf[n-1] != 3 {
		t.Errorf("unexpected GlyphIndexArray encoding %v", cb.Buf[n-3:])
	}
}

func TestFloat2Buffer(t *testing.T) {
	var cb CommandBuffer

	offset := cb.Float2Buffer([][2]float32{{1, 2}, {3, 4}})
	if offset != 8 {
		t.Errorf("expected byte offset 8, got %d", offset)
	}
	if cb.Buf[0] != RendererFloatBuffer || cb.Buf[1] != 4 {
		t.Errorf("unexpected header %v", cb.Buf[:2])
	}
	for i, want := range []float32{1, 2, 3, 4} {
		if cb.Buf[2+i] != gomath.Float32bits(want) {
			t.Errorf("value %d: got %#x, want %g", i, cb.Buf[2+i], want)
		}
	}
}

func TestLoadProjectionMatrix(t *testing.T) {
	var cb CommandBuffer

	m := math.Identity3x3().Ortho(0, 100, 0, 50)
	cb.LoadProjectionMatrix(m)

	if len(cb.Buf) != 17 {
		t.Fatalf("expected 17 words, got %d", len(cb.Buf))
	}
	if cb.Buf[0] != RendererLoadProjectionMatrix {
		t.Errorf("unexpected command %d", cb.Buf[0])
	}

	// The 3x3 matrix is expanded to a column-major 4x4 with z passed
	// through; spot check the scale and translation terms.
	at := func(i int) float32 { return gomath.Float32frombits(cb.Buf[1+i]) }
	if at(0) != m[0][0] {
		t.Errorf("expected m00 %g at word 0, got %g", m[0][0], at(0))
	}
	if at(5) != m[1][1] {
		t.Errorf("expected m11 %g at word 5, got %g", m[1][1], at(5))
	}
	if at(10) != 1 {
		t.Errorf("expected unit z scale, got %g", at(10))
	}
	if at(12) != m[0][2] || at(13) != m[1][2] {
		t.Errorf("expected translation (%g, %g), got (%g, %g)", m[0][2], m[1][2], at(12), at(13))
	}
	if at(15) != m[2][2] {
		t.Errorf("expected m22 %g at word 15, got %g", m[2][2], at(15))
	}
}

func TestCommandBufferReset(t *testing.T) {
	var cb CommandBuffer
	cb.Blend()
	cb.IntBuffer([]int32{1, 2, 3})

	cb.Reset()
	if len(cb.Buf) != 0 {
		t.Errorf("expected empty buffer after Reset, got %d words", len(cb.Buf))
	}
	if cap(cb.Buf) == 0 {
		t.Errorf("Reset should retain the allocation")
	}
}

func TestCommandBufferPool(t *testing.T) {
	cb := GetCommandBuffer()
	cb.Blend()
	ReturnCommandBuffer(cb)

	cb2 := GetCommandBuffer()
	defer ReturnCommandBuffer(cb2)
	if len(cb2.Buf) != 0 {
		t.Errorf("pooled buffer should come back empty, got %d words", len(cb2.Buf))
	}
}
