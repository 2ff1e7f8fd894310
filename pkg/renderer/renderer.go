// pkg/renderer/renderer.go
// Copyright(c) 2026 quill contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	"image"
	"log/slog"
)

// Renderer abstracts the graphics API from the rest of quill. There is
// currently a single implementation of it--OpenGL41Renderer--though
// having these details behind the Renderer interface would make it
// relatively easy to write a Vulkan, Metal, or DirectX backend.
type Renderer interface {
	// CreateTextureFromImage returns an identifier for a texture map
	// defined by the specified image.
	CreateTextureFromImage(image image.Image, magNearest bool) uint32

	// UpdateTextureFromImage updates the contents of an existing texture
	// with the provided image.
	UpdateTextureFromImage(id uint32, image image.Image, magNearest bool)

	// DestroyTexture frees the resources associated with the given
	// texture id.
	DestroyTexture(id uint32)

	// UploadGlyphTable uploads the static per-glyph metrics table--four
	// (x, y, s, t) quad corners per glyph index--to the GPU. This happens
	// once per font; per-frame traffic is limited to the small
	// per-instance index and offset arrays.
	UploadGlyphTable(table [][4][4]float32)

	// RenderCommandBuffer executes all of the commands encoded in the
	// provided command buffer, returning statistics about what was
	// rendered.
	RenderCommandBuffer(*CommandBuffer) RendererStats

	// Dispose releases resources allocated by the Renderer.
	Dispose()
}

// RendererStats encapsulates assorted statistics from rendering.
type RendererStats struct {
	nBuffers, bufferBytes  int
	nDrawCalls, nInstances int
}

func (rs *RendererStats) Merge(s RendererStats) {
	rs.nBuffers += s.nBuffers
	rs.bufferBytes += s.bufferBytes
	rs.nDrawCalls += s.nDrawCalls
	rs.nInstances += s.nInstances
}

func (rs RendererStats) String() string {
	return fmt.Sprintf("%d buffers (%.2f MB), %d draw calls, %d instances",
		rs.nBuffers, float32(rs.bufferBytes)/(1024*1024), rs.nDrawCalls, rs.nInstances)
}

func (rs RendererStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("buffers", rs.nBuffers),
		slog.Int("buffer_bytes", rs.bufferBytes),
		slog.Int("draw_calls", rs.nDrawCalls),
		slog.Int("instances", rs.nInstances))
}
