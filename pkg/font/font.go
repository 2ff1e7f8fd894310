// pkg/font/font.go
// Copyright(c) 2026 quill contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package font

import (
	"image"
	gomath "math"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	// SelectionRune and CursorRune are reserved characters outside of the
	// printable range; their glyphs are synthesized at load time rather
	// than rasterized from the font file. The layout engine draws the
	// selection highlight and the caret with them.
	SelectionRune = '\x01'
	CursorRune    = '\x02'

	// MaxTableGlyphs gives the number of rows in the static per-glyph
	// metrics table. It is sized so that the table fits in the minimum
	// uniform block size that OpenGL guarantees (16kB): each row is four
	// vec4 corners, 64 bytes.
	MaxTableGlyphs = 256
)

// GlyphMetrics records the shape and advance of a single rasterized glyph
// as well as where it landed in the atlas texture. Immutable once the
// glyph has been created.
type GlyphMetrics struct {
	Width, Height      float32
	AdvanceX           float32
	BearingX, BearingY float32
	// Texture coordinates of the glyph's rectangle in the atlas.
	S0, T0, S1, T1 float32
}

// Glyph pairs a character's metrics with its stable index, which is both
// the glyph's row in the static metrics table uploaded once to the GPU and
// the value written into the per-instance glyph-index attribute at render
// time.
type Glyph struct {
	Index   int32
	Rune    rune
	Metrics GlyphMetrics
}

// Each loaded (font file, size) combination is represented by (surprise) a
// Font. The character-to-glyph mapping is built once at load time and is
// immutable afterward, so a Font may be shared read-only across render
// calls.
type Font struct {
	// Glyphs for the commonly-used ASCII range can be looked up using a
	// directly-mapped array, for efficiency.
	lowGlyphs [128]*Glyph
	// The remaining glyphs are stored in a map.
	glyphs map[rune]*Glyph
	// All glyphs in index order; ordered[i].Index == i.
	ordered []*Glyph

	// Font size in points.
	Size int
	Path string

	Ascent, Descent float32

	// TexId is the handle of the GPU-resident atlas texture; it is filled
	// in by the renderer once the atlas has been uploaded.
	TexId uint32

	atlas *image.RGBA

	// face is retained for kerning queries; nil for synthetic fonts built
	// with MakeFont/AddGlyph (tests), which use the kern table instead.
	face xfont.Face
	kern map[[2]rune]float32
}

// MakeFont returns an empty Font of the given size. Glyphs are added with
// AddGlyph; Load does this from a font file, and tests do it by hand.
func MakeFont(size int) *Font {
	return &Font{
		glyphs: make(map[rune]*Glyph),
		kern:   make(map[[2]rune]float32),
		Size:   size,
	}
}

// AddGlyph creates a Glyph for the given rune with the next free table
// index. It returns false without modifying the font if the static metrics
// table is full or the rune is already mapped.
func (f *Font) AddGlyph(r rune, m GlyphMetrics) (*Glyph, bool) {
	if len(f.ordered) == MaxTableGlyphs {
		return nil, false
	}
	if _, ok := f.Glyph(r); ok {
		return nil, false
	}

	g := &Glyph{Index: int32(len(f.ordered)), Rune: r, Metrics: m}
	f.ordered = append(f.ordered, g)
	if r >= 0 && int(r) < len(f.lowGlyphs) {
		f.lowGlyphs[r] = g
	} else {
		f.glyphs[r] = g
	}
	return g, true
}

// Glyph returns the Glyph for the specified rune, if it was loaded.
// Invalid runes, such as the negative result of a bad conversion, are
// never mapped.
func (f *Font) Glyph(r rune) (*Glyph, bool) {
	if r >= 0 && int(r) < len(f.lowGlyphs) {
		g := f.lowGlyphs[r]
		return g, g != nil
	}
	g, ok := f.glyphs[r]
	return g, ok
}

func (f *Font) NumGlyphs() int {
	return len(f.ordered)
}

// Kern returns the horizontal adjustment to apply between the glyphs of
// two adjacent characters, or 0 if the pair is unknown.
func (f *Font) Kern(a, b rune) float32 {
	if f.face != nil {
		return fixedToFloat32(f.face.Kern(a, b))
	}
	return f.kern[[2]rune{a, b}]
}

// SetKern records a kerning adjustment for a pair of characters in a
// synthetic font.
func (f *Font) SetKern(a, b rune, v float32) {
	f.kern[[2]rune{a, b}] = v
}

// LineHeight returns the font's default baseline-to-baseline distance.
func (f *Font) LineHeight() float32 {
	if f.Ascent != 0 || f.Descent != 0 {
		return f.Ascent + f.Descent
	}
	return float32(f.Size)
}

// Atlas returns the CPU-side copy of the glyph atlas for the one-time
// texture upload.
func (f *Font) Atlas() *image.RGBA {
	return f.atlas
}

// MetricsTable returns the static per-glyph table that is uploaded once to
// the GPU: for each glyph index, the four quad corners in triangle-strip
// order (bottom-left, top-left, bottom-right, top-right), each as
// (x, y, s, t). The quad corners are derived from the glyph's bearing and
// size: left = bearingX, right = left + width, top = bearingY, bottom =
// top - height.
func (f *Font) MetricsTable() [][4][4]float32 {
	table := make([][4][4]float32, len(f.ordered))
	for i, g := range f.ordered {
		m := g.Metrics
		left, top := m.BearingX, m.BearingY
		right, bottom := left+m.Width, top-m.Height
		table[i] = [4][4]float32{
			{left, bottom, m.S0, m.T1},
			{left, top, m.S0, m.T0},
			{right, bottom, m.S1, m.T1},
			{right, top, m.S1, m.T0},
		}
	}
	return table
}

// BoundText returns the bound of the specified text in the font, assuming
// the given additional pixel spacing between lines.
func (f *Font) BoundText(s string, spacing int) (int, int) {
	dy := int(f.LineHeight()) + spacing
	py := dy
	var px, xmax float32
	var prev rune = -1
	for _, ch := range s {
		if ch == '\n' {
			px = 0
			py += dy
			prev = -1
			continue
		}
		g, ok := f.Glyph(ch)
		if !ok {
			g, ok = f.Glyph(' ')
			if !ok {
				continue
			}
		}
		if prev >= 0 {
			px += f.Kern(prev, ch)
		}
		px += g.Metrics.AdvanceX
		if px > xmax {
			xmax = px
		}
		prev = ch
	}

	return int(gomath.Ceil(float64(xmax))), py
}

func fixedToFloat32(x fixed.Int26_6) float32 {
	return float32(x) / 64
}
