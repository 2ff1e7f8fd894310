// pkg/font/atlas.go
// Copyright(c) 2026 quill contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package font

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/quillgl/quill/pkg/log"
	"github.com/quillgl/quill/pkg/util"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// The atlas is a single texture that packs the rasterized shape of every
// loaded character; glyphs reference their rectangle in it via texture
// coordinates.
const atlasSize = 1024

// atlasPacker hands out non-overlapping rectangles in the atlas using
// simple shelf packing: glyphs are placed left to right on the current
// shelf and a new shelf is opened below when a glyph doesn't fit.
type atlasPacker struct {
	size        int
	pad         int
	x, y        int
	shelfHeight int
}

func (a *atlasPacker) place(w, h int) (int, int, bool) {
	if a.x+w+a.pad > a.size {
		// Open the next shelf.
		a.x = 0
		a.y += a.shelfHeight + a.pad
		a.shelfHeight = 0
	}
	if a.x+w+a.pad > a.size || a.y+h+a.pad > a.size {
		return 0, 0, false
	}
	x, y := a.x, a.y
	a.x += w + a.pad
	if h > a.shelfHeight {
		a.shelfHeight = h
	}
	return x, y, true
}

// Load rasterizes the characters of charset from the font file at the
// given path into an atlas and returns the resulting Font along with the
// number of characters that could not be loaded. A character that cannot
// be rasterized or that doesn't fit in the atlas or the metrics table is
// counted as missed and left out of the character map rather than failing
// the whole load; whether a non-zero miss count is an error is the
// caller's policy. The two sentinel glyphs and the space character are
// always included, whether or not charset names them.
func Load(path string, pointSize int, charset string, lg *log.Logger) (*Font, int, error) {
	lg.Infof("%s: loading at %d points, %d chars requested", path, pointSize, len(charset))

	b, err := util.LoadResourceBytes(path)
	if err != nil {
		return nil, 0, err
	}

	sf, err := opentype.Parse(b)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	face, err := opentype.NewFace(sf, &opentype.FaceOptions{
		Size:    float64(pointSize),
		DPI:     72,
		Hinting: xfont.HintingFull,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}

	f := MakeFont(pointSize)
	f.Path = path
	f.face = face
	f.atlas = image.NewRGBA(image.Rect(0, 0, atlasSize, atlasSize))

	vm := face.Metrics()
	f.Ascent = fixedToFloat32(vm.Ascent)
	f.Descent = fixedToFloat32(vm.Descent)

	packer := &atlasPacker{size: atlasSize, pad: 1}

	// The selection block is as wide as a space so that highlighted text
	// reads as contiguous cells; the caret is a thin vertical bar. Both
	// span the font's full vertical extent.
	spaceAdv, _ := face.GlyphAdvance(' ')
	blockWidth := util.Select(spaceAdv > 0, int(fixedToFloat32(spaceAdv)+0.5), pointSize/2)
	f.synthesizeGlyph(SelectionRune, blockWidth, packer)
	f.synthesizeGlyph(CursorRune, 1, packer)

	missed := 0
	seen := map[rune]bool{SelectionRune: true, CursorRune: true}
	for _, r := range " " + charset {
		if seen[r] {
			continue
		}
		seen[r] = true
		if r == '\n' {
			// Line breaks are layout state, not glyphs.
			continue
		}
		if !f.loadGlyph(face, r, packer) {
			missed++
		}
	}

	if _, ok := f.Glyph(' '); !ok {
		// Space doubles as the fallback for unmapped characters, so a
		// font that can't even provide it is unusable.
		return nil, missed, fmt.Errorf("%s: font has no space glyph", path)
	}

	lg.Infof("%s: loaded %d glyphs, missed %d", path, f.NumGlyphs(), missed)
	return f, missed, nil
}

// loadGlyph rasterizes one character into the atlas and records its
// metrics. It reports whether the character was successfully added.
func (f *Font) loadGlyph(face xfont.Face, r rune, packer *atlasPacker) bool {
	dr, mask, maskp, advance, ok := face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return false
	}

	m := GlyphMetrics{
		Width:    float32(dr.Dx()),
		Height:   float32(dr.Dy()),
		AdvanceX: fixedToFloat32(advance),
		BearingX: float32(dr.Min.X),
		// dr is in y-down screen coordinates with the dot at the origin,
		// so the top of the glyph is at -Min.Y above the baseline.
		BearingY: float32(-dr.Min.Y),
	}

	if dr.Dx() > 0 && dr.Dy() > 0 {
		x, y, fits := packer.place(dr.Dx(), dr.Dy())
		if !fits {
			return false
		}
		rect := image.Rect(x, y, x+dr.Dx(), y+dr.Dy())
		draw.DrawMask(f.atlas, rect, image.White, image.Point{}, mask, maskp, draw.Over)

		m.S0 = float32(x) / atlasSize
		m.T0 = float32(y) / atlasSize
		m.S1 = float32(x+dr.Dx()) / atlasSize
		m.T1 = float32(y+dr.Dy()) / atlasSize
	}

	_, added := f.AddGlyph(r, m)
	return added
}

// synthesizeGlyph draws a solid w-pixel-wide rectangle spanning the font's
// full vertical extent into the atlas and maps it to the given sentinel
// rune. Sentinels advance the pen by nothing; the layout engine places
// them under the character they decorate.
func (f *Font) synthesizeGlyph(r rune, w int, packer *atlasPacker) {
	h := int(f.Ascent+f.Descent+0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = f.Size
	}

	m := GlyphMetrics{
		Width:    float32(w),
		Height:   float32(h),
		BearingY: f.Ascent,
	}

	if x, y, fits := packer.place(w, h); fits {
		rect := image.Rect(x, y, x+w, y+h)
		draw.Draw(f.atlas, rect, image.White, image.Point{}, draw.Src)

		m.S0 = float32(x) / atlasSize
		m.T0 = float32(y) / atlasSize
		m.S1 = float32(x+w) / atlasSize
		m.T1 = float32(y+h) / atlasSize
	}

	f.AddGlyph(r, m)
}
