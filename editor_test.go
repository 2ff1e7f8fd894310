// editor_test.go
// Copyright(c) 2026 quill contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"testing"

	"github.com/quillgl/quill/pkg/buffer"
	"github.com/quillgl/quill/pkg/font"
	"github.com/quillgl/quill/pkg/platform"
	"github.com/quillgl/quill/pkg/renderer"
)

func makeTestEditor(t *testing.T, text string) *Editor {
	t.Helper()
	f := font.MakeFont(10)
	for _, r := range []rune{font.SelectionRune, font.CursorRune} {
		f.AddGlyph(r, font.GlyphMetrics{Width: 5, Height: 10, BearingY: 8})
	}
	for r := rune(' '); r <= '~'; r++ {
		f.AddGlyph(r, font.GlyphMetrics{Width: 5, Height: 10, AdvanceX: 6, BearingY: 8})
	}
	tr, err := renderer.NewTextRenderer(f, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	return NewEditor(buffer.New(text), tr, defaultConfig(), nil)
}

func keys(ks ...platform.Key) map[platform.Key]interface{} {
	m := make(map[platform.Key]interface{})
	for _, k := range ks {
		m[k] = nil
	}
	return m
}

func TestFitWindowToDocument(t *testing.T) {
	f := font.MakeFont(10)
	for r := rune(' '); r <= '~'; r++ {
		f.AddGlyph(r, font.GlyphMetrics{AdvanceX: 6})
	}

	// Ten columns at advance 6 need 60px plus margins; two lines at line
	// height 10 and spacing 2 need 24px plus margins.
	doc := "aaaaaaaaaa\nbb"
	size := fitWindowToDocument([2]int{60, 20}, f, doc, 2)
	if want := [2]int{60 + 2*int(textMargin), 24 + 2*int(textMargin)}; size != want {
		t.Errorf("expected window grown to %v, got %v", want, size)
	}

	// A window already larger than the document is left alone.
	size = fitWindowToDocument([2]int{500, 400}, f, doc, 2)
	if size != ([2]int{500, 400}) {
		t.Errorf("expected size unchanged, got %v", size)
	}

	// So is the window for an empty document.
	size = fitWindowToDocument([2]int{60, 20}, f, "", 2)
	if size != ([2]int{60, 20}) {
		t.Errorf("expected size unchanged for empty document, got %v", size)
	}
}

func TestEditorTyping(t *testing.T) {
	e := makeTestEditor(t, "")

	e.HandleInput(&platform.KeyboardState{Input: "hi", Pressed: keys()})
	e.HandleInput(&platform.KeyboardState{Pressed: keys(platform.KeyEnter)})
	e.HandleInput(&platform.KeyboardState{Input: "!", Pressed: keys()})

	if got := e.Buffer().String(); got != "hi\n!" {
		t.Errorf("expected \"hi\\n!\", got %q", got)
	}
}

func TestEditorBackspace(t *testing.T) {
	e := makeTestEditor(t, "")
	e.HandleInput(&platform.KeyboardState{Input: "abc", Pressed: keys()})
	e.HandleInput(&platform.KeyboardState{Pressed: keys(platform.KeyBackspace)})
	if got := e.Buffer().String(); got != "ab" {
		t.Errorf("expected \"ab\", got %q", got)
	}
}

func TestEditorSelectionReplace(t *testing.T) {
	e := makeTestEditor(t, "abc")

	// Shift-right twice selects "ab"; typing replaces the selection.
	e.HandleInput(&platform.KeyboardState{Pressed: keys(platform.KeyRightArrow), Shift: true})
	e.HandleInput(&platform.KeyboardState{Pressed: keys(platform.KeyRightArrow), Shift: true})
	if sel := e.Buffer().Selection(); sel == nil {
		t.Fatalf("expected a selection after shift-arrow")
	}

	e.HandleInput(&platform.KeyboardState{Input: "x", Pressed: keys()})
	if got := e.Buffer().String(); got != "xc" {
		t.Errorf("expected \"xc\", got %q", got)
	}
}

func TestEditorSelectionDelete(t *testing.T) {
	e := makeTestEditor(t, "abcd")
	e.HandleInput(&platform.KeyboardState{Pressed: keys(platform.KeyRightArrow), Shift: true})
	e.HandleInput(&platform.KeyboardState{Pressed: keys(platform.KeyBackspace)})
	if got := e.Buffer().String(); got != "bcd" {
		t.Errorf("expected \"bcd\", got %q", got)
	}
}

func TestEditorUndoShortcut(t *testing.T) {
	e := makeTestEditor(t, "")
	e.HandleInput(&platform.KeyboardState{Input: "ab", Pressed: keys()})
	e.HandleInput(&platform.KeyboardState{Pressed: keys(platform.KeyZ), Control: true})
	if got := e.Buffer().String(); got != "a" {
		t.Errorf("expected \"a\" after undo, got %q", got)
	}
}

func TestEditorSelectAll(t *testing.T) {
	e := makeTestEditor(t, "ab\ncd")
	e.HandleInput(&platform.KeyboardState{Pressed: keys(platform.KeyA), Control: true})

	sel := e.Buffer().Selection()
	if sel == nil {
		t.Fatalf("expected a selection")
	}
	if sel.Start != (buffer.Cursor{}) || sel.End != (buffer.Cursor{Line: 1, Col: 2}) {
		t.Errorf("unexpected selection %+v", sel)
	}

	e.HandleInput(&platform.KeyboardState{Pressed: keys(platform.KeyEscape)})
	if e.Buffer().Selection() != nil {
		t.Errorf("escape should clear the selection")
	}
}
