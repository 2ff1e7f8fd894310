// pkg/renderer/textrenderer.go
// Copyright(c) 2026 quill contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/quillgl/quill/pkg/font"
	"github.com/quillgl/quill/pkg/layout"
	"github.com/quillgl/quill/pkg/log"
)

// MaxInstances is the default cap on glyph instances per draw; it bounds
// the size of the fixed per-instance GPU buffers.
const MaxInstances = 10000

// metricsCacheSize bounds the layout memoization cache. Text on screen is
// mostly stable frame to frame, so a small cache covers the common case.
const metricsCacheSize = 64

// ErrTooManyInstances is returned by Draw when laying out the text would
// produce more glyph instances than the renderer's capacity. The text is
// not truncated; the caller decides what to drop.
var ErrTooManyInstances = errors.New("too many glyph instances")

// TextStyle carries the presentation parameters that aren't part of the
// document itself.
type TextStyle struct {
	Color RGB
	// LineSpacing is added to the font's natural line height, in pixels.
	LineSpacing int
}

// TextMetrics holds the computed per-instance attribute arrays for a laid
// out piece of text. The slices are parallel.
type TextMetrics struct {
	GlyphIndices []int32
	Offsets      [][2]float32
}

// TextRenderer turns text plus an optional selection into instanced draw
// commands for a single font. Layout results are memoized since the same
// text is typically drawn for many consecutive frames.
type TextRenderer struct {
	font     *font.Font
	capacity int
	cache    *lru.Cache[string, *TextMetrics]
	lg       *log.Logger
}

// NewTextRenderer returns a TextRenderer for the given font. capacity
// bounds instances per draw call; pass 0 for the MaxInstances default.
func NewTextRenderer(f *font.Font, capacity int, lg *log.Logger) (*TextRenderer, error) {
	if capacity <= 0 {
		capacity = MaxInstances
	}
	cache, err := lru.New[string, *TextMetrics](metricsCacheSize)
	if err != nil {
		return nil, err
	}
	return &TextRenderer{font: f, capacity: capacity, cache: cache, lg: lg}, nil
}

func (tr *TextRenderer) Font() *font.Font {
	return tr.font
}

// UploadFont creates the atlas texture and uploads the glyph metrics table
// through the given Renderer. It must be called once, with a live GL
// context, before any Draw commands are executed.
func (tr *TextRenderer) UploadFont(r Renderer) {
	tr.font.TexId = r.CreateTextureFromImage(tr.font.Atlas(), false)
	r.UploadGlyphTable(tr.font.MetricsTable())
	tr.lg.Infof("uploaded font %s: %d glyphs, tex id %d", tr.font.Path, tr.font.NumGlyphs(),
		tr.font.TexId)
}

func (tr *TextRenderer) lineHeight(style TextStyle) float32 {
	return tr.font.LineHeight() + float32(style.LineSpacing)
}

func cacheKey(chars []rune, sel *layout.Span, style TextStyle) string {
	start, end := -1, -1
	if sel != nil {
		start, end = sel.Start, sel.End
	}
	return fmt.Sprintf("%d:%d:%d:%s", start, end, style.LineSpacing, string(chars))
}

// Metrics lays out chars with the given selection and style, returning the
// per-instance glyph indices and pen offsets. Results are memoized; the
// returned TextMetrics must not be mutated.
func (tr *TextRenderer) Metrics(chars []rune, sel *layout.Span, style TextStyle) *TextMetrics {
	key := cacheKey(chars, sel, style)
	if m, ok := tr.cache.Get(key); ok {
		return m
	}

	indices, offsets := layout.Layout(chars, sel, tr.font, tr.lineHeight(style))
	m := &TextMetrics{GlyphIndices: indices, Offsets: offsets}
	tr.cache.Add(key, m)
	return m
}

// Draw encodes the commands to draw chars into cb and returns the number
// of glyph instances drawn. If the text would exceed the instance
// capacity it returns ErrTooManyInstances and encodes nothing.
func (tr *TextRenderer) Draw(chars []rune, sel *layout.Span, style TextStyle, cb *CommandBuffer) (int, error) {
	m := tr.Metrics(chars, sel, style)
	n := len(m.GlyphIndices)
	if n == 0 {
		return 0, nil
	}
	if n > tr.capacity {
		return 0, fmt.Errorf("%d instances, capacity %d: %w", n, tr.capacity, ErrTooManyInstances)
	}

	cb.Blend()
	cb.SetRGB(style.Color)
	cb.EnableTexture(tr.font.TexId)

	indexOffset := cb.IntBuffer(m.GlyphIndices)
	posOffset := cb.Float2Buffer(m.Offsets)
	cb.GlyphIndexArray(indexOffset, n)
	cb.OffsetArray(posOffset, n)
	cb.DrawInstancedQuads(n)

	cb.DisableTexture()
	cb.DisableBlend()

	return n, nil
}
