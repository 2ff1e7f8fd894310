// pkg/layout/layout.go
// Copyright(c) 2026 quill contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package layout converts a character stream plus an optional selection
// into the per-instance attribute arrays consumed by the instanced glyph
// renderer: one glyph-table index and one 2D pen offset per drawn quad.
package layout

import (
	"github.com/quillgl/quill/pkg/font"
)

// Span is a selection expressed as linear character offsets into the
// flattened character stream, inclusive at Start and exclusive at End.
// A zero-width Span (Start == End) is a caret.
type Span struct {
	Start, End int
}

func (s Span) Caret() bool {
	return s.Start == s.End
}

func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Layout walks chars once, left to right and top to bottom, and returns
// the glyph indices and pen offsets for every instance to draw, in
// document order. The two returned slices are parallel, one entry per
// instance.
//
// A newline resets the pen to the start of the next line; it emits no
// instance and clears the kerning context, so kerning is never applied
// across a line break. Characters not present in the font are drawn as a
// space. A character inside the selection emits two instances at the same
// offset, the highlight underlay first and then the character's glyph;
// when the selection is a caret, the character at the caret gets the thin
// cursor underlay instead of the block. The underlay must come first so
// that the glyph is drawn over it. A caret whose offset lands on a newline
// or past the last character has nothing to underlay and is emitted as a
// standalone instance at the pen position.
func Layout(chars []rune, sel *Span, f *font.Font, lineHeight float32) ([]int32, [][2]float32) {
	indices := make([]int32, 0, len(chars)+2)
	offsets := make([][2]float32, 0, len(chars)+2)

	var penX float32
	line := 0
	var prev rune = -1

	emit := func(idx int32, p [2]float32) {
		indices = append(indices, idx)
		offsets = append(offsets, p)
	}

	underlay := func(offset int) (rune, bool) {
		if sel == nil {
			return 0, false
		}
		if sel.Caret() {
			return font.CursorRune, offset == sel.Start
		}
		return font.SelectionRune, sel.Contains(offset)
	}

	for offset, ch := range chars {
		if ch == '\n' {
			// A caret sitting on the newline is at the end of this line;
			// it has no character to underlay, so it is an instance of
			// its own at the pen position before the break.
			if sel != nil && sel.Caret() && sel.Start == offset {
				if cg, ok := f.Glyph(font.CursorRune); ok {
					emit(cg.Index, [2]float32{penX, -float32(line) * lineHeight})
				}
			}
			penX = 0
			line++
			prev = -1
			continue
		}

		g, ok := f.Glyph(ch)
		if !ok {
			// Fallback policy for characters outside of the loaded set:
			// substitute a space. Space is guaranteed present by Load.
			g, _ = f.Glyph(' ')
			if g == nil {
				continue
			}
		}

		if prev >= 0 {
			penX += f.Kern(prev, ch)
		}
		p := [2]float32{penX, -float32(line) * lineHeight}

		if r, ok := underlay(offset); ok {
			if og, ok := f.Glyph(r); ok {
				emit(og.Index, p)
			}
		}
		emit(g.Index, p)

		penX += g.Metrics.AdvanceX
		prev = ch
	}

	// A caret sitting past the last character still needs to be drawn; it
	// has no character to underlay, so it is an instance of its own at
	// the final pen position.
	if sel != nil && sel.Caret() && sel.Start == len(chars) {
		if cg, ok := f.Glyph(font.CursorRune); ok {
			emit(cg.Index, [2]float32{penX, -float32(line) * lineHeight})
		}
	}

	return indices, offsets
}
