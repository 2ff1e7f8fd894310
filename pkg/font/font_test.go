// pkg/font/font_test.go
// Copyright(c) 2026 quill contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package font

import (
	"testing"
)

func TestAtlasPacker(t *testing.T) {
	p := &atlasPacker{size: 100, pad: 1}

	x, y, ok := p.place(50, 10)
	if !ok || x != 0 || y != 0 {
		t.Errorf("first placement: got (%d, %d, %v)", x, y, ok)
	}
	x, y, ok = p.place(40, 12)
	if !ok || x != 51 || y != 0 {
		t.Errorf("second placement: got (%d, %d, %v)", x, y, ok)
	}

	// Doesn't fit on the shelf; opens a new one below the tallest glyph.
	x, y, ok = p.place(50, 10)
	if !ok || x != 0 || y != 13 {
		t.Errorf("third placement: got (%d, %d, %v)", x, y, ok)
	}

	// Too wide for the atlas entirely.
	if _, _, ok := p.place(200, 10); ok {
		t.Errorf("placement wider than the atlas should fail")
	}

	// Fill the remaining height.
	if _, _, ok := p.place(10, 80); ok {
		t.Errorf("placement taller than the remaining space should fail")
	}
}

func TestAddGlyph(t *testing.T) {
	f := MakeFont(12)

	for i, r := range []rune{'a', 'b', 'Z', 'é'} {
		g, ok := f.AddGlyph(r, GlyphMetrics{AdvanceX: float32(i)})
		if !ok {
			t.Fatalf("%q: AddGlyph failed", r)
		}
		if g.Index != int32(i) {
			t.Errorf("%q: expected index %d, got %d", r, i, g.Index)
		}
	}
	if f.NumGlyphs() != 4 {
		t.Errorf("expected 4 glyphs, got %d", f.NumGlyphs())
	}

	// Duplicates are rejected.
	if _, ok := f.AddGlyph('a', GlyphMetrics{}); ok {
		t.Errorf("duplicate AddGlyph should fail")
	}

	g, ok := f.Glyph('é')
	if !ok || g.Rune != 'é' {
		t.Errorf("non-ASCII lookup failed")
	}
	if _, ok := f.Glyph('x'); ok {
		t.Errorf("lookup of unmapped character should fail")
	}
}

func TestGlyphInvalidRune(t *testing.T) {
	f := MakeFont(12)
	f.AddGlyph('a', GlyphMetrics{})

	// A negative rune must miss cleanly, not index the low-glyph array.
	if _, ok := f.Glyph(-1); ok {
		t.Errorf("negative rune lookup should fail")
	}
	if _, ok := f.Glyph(rune(-0x80)); ok {
		t.Errorf("negative rune lookup should fail")
	}
}

func TestAddGlyphTableFull(t *testing.T) {
	f := MakeFont(12)
	for i := 0; i < MaxTableGlyphs; i++ {
		if _, ok := f.AddGlyph(rune(0x1000+i), GlyphMetrics{}); !ok {
			t.Fatalf("AddGlyph %d failed unexpectedly", i)
		}
	}
	if _, ok := f.AddGlyph('a', GlyphMetrics{}); ok {
		t.Errorf("AddGlyph should fail once the table is full")
	}
	if f.NumGlyphs() != MaxTableGlyphs {
		t.Errorf("expected %d glyphs, got %d", MaxTableGlyphs, f.NumGlyphs())
	}
}

func TestMetricsTable(t *testing.T) {
	f := MakeFont(12)
	f.AddGlyph('a', GlyphMetrics{
		Width: 6, Height: 8, AdvanceX: 7, BearingX: 1, BearingY: 8,
		S0: 0.1, T0: 0.2, S1: 0.3, T1: 0.4,
	})

	table := f.MetricsTable()
	if len(table) != 1 {
		t.Fatalf("expected 1 row, got %d", len(table))
	}

	// Triangle-strip corner order: bottom-left, top-left, bottom-right,
	// top-right; t is flipped relative to y since the atlas is y-down.
	want := [4][4]float32{
		{1, 0, 0.1, 0.4},
		{1, 8, 0.1, 0.2},
		{7, 0, 0.3, 0.4},
		{7, 8, 0.3, 0.2},
	}
	if table[0] != want {
		t.Errorf("got corners %v, want %v", table[0], want)
	}
}

func TestKern(t *testing.T) {
	f := MakeFont(12)
	if k := f.Kern('A', 'V'); k != 0 {
		t.Errorf("unknown pair should kern to 0, got %g", k)
	}
	f.SetKern('A', 'V', -1.5)
	if k := f.Kern('A', 'V'); k != -1.5 {
		t.Errorf("expected -1.5, got %g", k)
	}
	if k := f.Kern('V', 'A'); k != 0 {
		t.Errorf("kerning is not symmetric; expected 0, got %g", k)
	}
}

func TestLineHeight(t *testing.T) {
	f := MakeFont(12)
	if lh := f.LineHeight(); lh != 12 {
		t.Errorf("expected fallback to font size, got %g", lh)
	}
	f.Ascent, f.Descent = 9, 3
	if lh := f.LineHeight(); lh != 12 {
		t.Errorf("expected ascent+descent, got %g", lh)
	}
}

func TestBoundText(t *testing.T) {
	f := MakeFont(10)
	f.AddGlyph(' ', GlyphMetrics{AdvanceX: 5})
	f.AddGlyph('a', GlyphMetrics{AdvanceX: 7})

	w, h := f.BoundText("aa a", 0)
	if w != 26 {
		t.Errorf("expected width 26, got %d", w)
	}
	if h != 10 {
		t.Errorf("expected height 10, got %d", h)
	}

	w, h = f.BoundText("aaa\na", 2)
	if w != 21 {
		t.Errorf("expected width 21, got %d", w)
	}
	if h != 24 {
		t.Errorf("expected height 24, got %d", h)
	}

	// Unmapped characters measure as a space.
	w, _ = f.BoundText("z", 0)
	if w != 5 {
		t.Errorf("expected width 5, got %d", w)
	}
}
