// pkg/renderer/commandbuffer.go
// Copyright(c) 2026 quill contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	gomath "math"
	"sync"
	"unsafe"

	"github.com/quillgl/quill/pkg/math"
)

// The command buffer stores a series of rendering commands, represented by
// the following values. Each one is followed in the buffer by a number of
// command arguments, after which the next command follows.  Comments
// after each command briefly describe its arguments.
//
// Buffers (per-instance glyph indices and offsets) are stored directly in
// the CommandBuffer, following RendererFloatBuffer and RendererIntBuffer
// commands; the first argument after those commands is the length of the
// buffer and then its values follow directly. Commands that use buffers
// (RendererGlyphIndexArray, RendererOffsetArray) are then directed to
// those buffers via integer parameters that encode the offset from the
// start of the command buffer where a buffer begins. (Note that this
// implies that one CommandBuffer cannot refer to a buffer in another
// CommandBuffer.)

const (
	RendererLoadProjectionMatrix = iota // 16 float32: matrix
	RendererLoadModelViewMatrix         // 16 float32: matrix
	RendererClearRGBA                   // 4 float32: RGBA
	RendererScissor                     // 4 int32: x, y, width, height
	RendererViewport                    // 4 int32: x, y, width, height
	RendererBlend                       // no args: for now always src alpha, 1-src alpha
	RendererSetRGBA                     // 4 float32: RGBA tint
	RendererDisableBlend                // no args
	RendererFloatBuffer                 // int32 size, then size*float32 values
	RendererIntBuffer                   // int32: size, then size*int32 values
	RendererEnableTexture               // int32 handle
	RendererDisableTexture              // no args
	RendererGlyphIndexArray             // byte offset to array values, count
	RendererOffsetArray                 // byte offset to array values, count
	RendererDrawInstancedQuads          // int32: instance count
	RendererResetState                  // no args
)

// CommandBuffer encodes a sequence of rendering commands in an
// API-agnostic manner. It makes it possible to "pre-bake" rendering work
// into a form that can be efficiently processed by a Renderer and
// possibly reused over multiple frames.
type CommandBuffer struct {
	Buf []uint32
}

// CommandBuffers are managed using a sync.Pool so that their buf slice
// allocations persist across multiple uses.
var commandBufferPool = sync.Pool{New: func() any { return &CommandBuffer{} }}

func GetCommandBuffer() *CommandBuffer {
	return commandBufferPool.Get().(*CommandBuffer)
}

func ReturnCommandBuffer(cb *CommandBuffer) {
	cb.Reset()
	commandBufferPool.Put(cb)
}

// Reset resets the command buffer's length to zero so that it can be
// reused.
func (cb *CommandBuffer) Reset() {
	cb.Buf = cb.Buf[:0]
}

// growFor ensures that at least n more values can be added to the end of
// the buffer without going past its capacity.
func (cb *CommandBuffer) growFor(n int) {
	if len(cb.Buf)+n > cap(cb.Buf) {
		sz := 2 * cap(cb.Buf)
		if sz < 1024 {
			sz = 1024
		}
		if sz < len(cb.Buf)+n {
			sz = 2 * (len(cb.Buf) + n)
		}
		b := make([]uint32, len(cb.Buf), sz)
		copy(b, cb.Buf)
		cb.Buf = b
	}
}

func (cb *CommandBuffer) appendFloats(floats ...float32) {
	for _, f := range floats {
		// Convert each one to a uint32 since that's the type that is
		// actually stored...
		cb.Buf = append(cb.Buf, gomath.Float32bits(f))
	}
}

func (cb *CommandBuffer) appendInts(ints ...int) {
	for _, i := range ints {
		if i != int(uint32(i)) {
			lg.Errorf("%d: attempting to add non-32-bit value to CommandBuffer", i)
		}
		cb.Buf = append(cb.Buf, uint32(i))
	}
}

func (cb *CommandBuffer) LoadProjectionMatrix(m math.Matrix3) {
	cb.appendInts(RendererLoadProjectionMatrix)
	cb.appendFloats(
		m[0][0], m[1][0], 0, m[2][0],
		m[0][1], m[1][1], 0, m[2][1],
		0, 0, 1, 0,
		m[0][2], m[1][2], 0, m[2][2])
}

func (cb *CommandBuffer) LoadModelViewMatrix(m math.Matrix3) {
	cb.appendInts(RendererLoadModelViewMatrix)
	cb.appendFloats(
		m[0][0], m[1][0], 0, m[2][0],
		m[0][1], m[1][1], 0, m[2][1],
		0, 0, 1, 0,
		m[0][2], m[1][2], 0, m[2][2])
}

// ClearRGB adds a command to the command buffer to clear the framebuffer
// to the specified RGB color.
func (cb *CommandBuffer) ClearRGB(color RGB) {
	cb.appendInts(RendererClearRGBA)
	cb.appendFloats(color.R, color.G, color.B, 1)
}

// Scissor adds a command to the command buffer to set the scissor
// rectangle as specified.
func (cb *CommandBuffer) Scissor(x, y, w, h int) {
	cb.appendInts(RendererScissor, x, y, w, h)
}

// Viewport adds a command to the command buffer to set the viewport to the
// specified rectangle.
func (cb *CommandBuffer) Viewport(x, y, w, h int) {
	cb.appendInts(RendererViewport, x, y, w, h)
}

// SetDrawBounds sets the scissor rectangle and viewport according to the
// specified bounds so that subsequent code can assume window coordinates
// from (0,0)-(width,height) when drawing things.
//
// One messy detail here is that these bounds are specified in framebuffer
// coordinates, not display coordinates, so they must be scaled for e.g.,
// retina displays; the scale takes care of this. It should be initialized
// as the ratio of framebuffer resolution to display resolution.
func (cb *CommandBuffer) SetDrawBounds(b math.Extent2D, scale float32) {
	x0, y0 := int(scale*b.P0[0]), int(scale*b.P0[1])
	w, h := int(scale*b.Width()), int(scale*b.Height())
	w, h = max(w, 0), max(h, 0)
	cb.Scissor(x0, y0, w, h)
	cb.Viewport(x0, y0, w, h)
}

// SetRGBA adds a command to the command buffer to set the current RGBA
// tint color; glyph instances drawn by subsequent draw commands are
// modulated by it.
func (cb *CommandBuffer) SetRGBA(rgba RGBA) {
	cb.appendInts(RendererSetRGBA)
	cb.appendFloats(rgba.R, rgba.G, rgba.B, rgba.A)
}

// SetRGB adds a command to the command buffer to set the current RGB tint
// color (alpha is set to 1).
func (cb *CommandBuffer) SetRGB(rgb RGB) {
	cb.appendInts(RendererSetRGBA)
	cb.appendFloats(rgb.R, rgb.G, rgb.B, 1)
}

// Blend adds a command to the command buffer enable blending.  The blend
// mode cannot be specified currently, since only one mode (alpha over
// blending) is used.
func (cb *CommandBuffer) Blend() {
	cb.appendInts(RendererBlend)
}

// DisableBlend adds a command to the command buffer that disables
// blending.
func (cb *CommandBuffer) DisableBlend() {
	cb.appendInts(RendererDisableBlend)
}

// Float2Buffer stores the provided slice of [2]float32 values in the
// CommandBuffer and returns the byte offset where the first value of the
// slice is stored; this offset can then be passed to commands like
// OffsetArray to specify this array.
func (cb *CommandBuffer) Float2Buffer(buf [][2]float32) int {
	cb.appendInts(RendererFloatBuffer, 2*len(buf))
	offset := 4 * len(cb.Buf)

	n := 2 * len(buf)
	cb.growFor(n)
	start := len(cb.Buf)
	cb.Buf = cb.Buf[:start+n]
	copy(cb.Buf[start:start+n], unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), n))

	return offset
}

// IntBuffer stores the provided slice of int32 values in the command buffer
// and returns the byte offset where the first value of the slice is stored.
func (cb *CommandBuffer) IntBuffer(buf []int32) int {
	cb.appendInts(RendererIntBuffer, len(buf))
	offset := 4 * len(cb.Buf)

	n := len(buf)
	cb.growFor(n)
	start := len(cb.Buf)
	cb.Buf = cb.Buf[:start+n]
	copy(cb.Buf[start:start+n], unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), n))

	return offset
}

// EnableTexture enables texturing from the specified texture id (as
// returned by the Renderer CreateTextureFromImage method implementation).
func (cb *CommandBuffer) EnableTexture(id uint32) {
	cb.appendInts(RendererEnableTexture, int(id))
}

// DisableTexture adds a command to the command buffer to disable
// texturing.
func (cb *CommandBuffer) DisableTexture() {
	cb.appendInts(RendererDisableTexture)
}

// GlyphIndexArray adds a command that specifies the per-instance glyph
// index attribute array for a subsequent instanced draw. offset gives the
// offset into the current command buffer where the indices begin (e.g.,
// as returned by IntBuffer) and count gives the number of instances.
func (cb *CommandBuffer) GlyphIndexArray(offset, count int) {
	cb.appendInts(RendererGlyphIndexArray, offset, count)
}

// OffsetArray adds a command that specifies the per-instance 2D pen
// offset attribute array for a subsequent instanced draw. offset gives
// the offset into the current command buffer where the values begin
// (e.g., as returned by Float2Buffer) and count gives the number of
// instances.
func (cb *CommandBuffer) OffsetArray(offset, count int) {
	cb.appendInts(RendererOffsetArray, offset, count)
}

// DrawInstancedQuads adds a command to draw count instances of the shared
// glyph quad using the most recently specified instance arrays, four
// triangle-strip vertices per instance.
func (cb *CommandBuffer) DrawInstancedQuads(count int) {
	cb.appendInts(RendererDrawInstancedQuads, count)
}

// ResetState adds a command to the command buffer that resets all of the
// assorted graphics state (scissor rectangle, blending, texturing, etc.)
// to default values.
func (cb *CommandBuffer) ResetState() {
	cb.appendInts(RendererResetState)
}
