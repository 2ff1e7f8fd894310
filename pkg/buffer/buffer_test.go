// pkg/buffer/buffer_test.go
// Copyright(c) 2026 quill contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package buffer

import (
	"testing"

	"github.com/quillgl/quill/pkg/layout"
)

func TestNewAndString(t *testing.T) {
	for _, text := range []string{"", "hello", "one\ntwo\nthree", "\n\n"} {
		b := New(text)
		if b.String() != text {
			t.Errorf("%q: round trip returned %q", text, b.String())
		}
	}

	b := New("one\ntwo")
	if b.NumLines() != 2 {
		t.Errorf("expected 2 lines, got %d", b.NumLines())
	}
	if b.Line(1) != "two" {
		t.Errorf("expected line \"two\", got %q", b.Line(1))
	}
}

func TestRunes(t *testing.T) {
	b := New("ab\nc")
	rs := b.Runes()
	if string(rs) != "ab\nc" {
		t.Errorf("Runes returned %q", string(rs))
	}
}

func TestInsert(t *testing.T) {
	b := New("ac")
	b = b.MoveTo(Cursor{Line: 0, Col: 1})
	b = b.InsertRune('b')
	if b.String() != "abc" {
		t.Errorf("expected \"abc\", got %q", b.String())
	}
	if b.Cursor() != (Cursor{Line: 0, Col: 2}) {
		t.Errorf("unexpected cursor %+v", b.Cursor())
	}

	// Inserting a newline splits the line at the cursor.
	b = b.InsertRune('\n')
	if b.String() != "ab\nc" {
		t.Errorf("expected \"ab\\nc\", got %q", b.String())
	}
	if b.Cursor() != (Cursor{Line: 1, Col: 0}) {
		t.Errorf("unexpected cursor %+v", b.Cursor())
	}

	b = b.InsertString("xy\nz")
	if b.String() != "ab\nxy\nzc" {
		t.Errorf("expected \"ab\\nxy\\nzc\", got %q", b.String())
	}
}

func TestDelete(t *testing.T) {
	b := New("ab\ncd")

	// Backward delete at the start of the document is a no-op.
	if nb := b.DeleteBackward(); !nb.Equal(b) {
		t.Errorf("delete at document start changed the buffer")
	}

	b = b.MoveTo(Cursor{Line: 1, Col: 0})
	b = b.DeleteBackward()
	if b.String() != "abcd" {
		t.Errorf("expected line join \"abcd\", got %q", b.String())
	}
	if b.Cursor() != (Cursor{Line: 0, Col: 2}) {
		t.Errorf("unexpected cursor after join %+v", b.Cursor())
	}

	b = New("ab\ncd").MoveTo(Cursor{Line: 0, Col: 2})
	b = b.DeleteForward()
	if b.String() != "abcd" {
		t.Errorf("expected forward join \"abcd\", got %q", b.String())
	}

	b = b.MoveTo(Cursor{Line: 0, Col: 4})
	if nb := b.DeleteForward(); !nb.Equal(b) {
		t.Errorf("delete at document end changed the buffer")
	}

	b = New("abc").MoveTo(Cursor{Line: 0, Col: 1})
	if b = b.DeleteForward(); b.String() != "ac" {
		t.Errorf("expected \"ac\", got %q", b.String())
	}
}

func TestDeleteSelection(t *testing.T) {
	b := New("hello\nworld")
	if nb := b.DeleteSelection(); nb != b {
		t.Errorf("DeleteSelection without a selection should return the receiver")
	}

	b = b.Select(Cursor{Line: 0, Col: 3}, Cursor{Line: 1, Col: 2})
	b = b.DeleteSelection()
	if b.String() != "helrld" {
		t.Errorf("expected \"helrld\", got %q", b.String())
	}
	if b.Cursor() != (Cursor{Line: 0, Col: 3}) {
		t.Errorf("unexpected cursor %+v", b.Cursor())
	}
	if b.Selection() != nil {
		t.Errorf("selection should be cleared after deletion")
	}

	// A reversed selection deletes the same range.
	b = New("hello\nworld").Select(Cursor{Line: 1, Col: 2}, Cursor{Line: 0, Col: 3})
	if b = b.DeleteSelection(); b.String() != "helrld" {
		t.Errorf("reversed selection: expected \"helrld\", got %q", b.String())
	}
}

func TestUndo(t *testing.T) {
	b := New("ab")
	if b.CanUndo() {
		t.Errorf("fresh buffer should have no history")
	}
	// Undo at the root is a no-op, not an error.
	if b.Undo() != b {
		t.Errorf("undo at root should return the receiver")
	}

	orig := b
	b = b.MoveTo(Cursor{Line: 0, Col: 2}).InsertRune('c').DeleteBackward()
	for b.CanUndo() {
		b = b.Undo()
	}
	if !b.Equal(orig) {
		t.Errorf("undo chain did not restore the original document")
	}
}

func TestUndoDepthCap(t *testing.T) {
	b := New("")
	for i := 0; i < MaxUndoDepth+10; i++ {
		b = b.InsertRune('x')
	}
	n := 0
	for b.CanUndo() {
		b = b.Undo()
		n++
	}
	if n != MaxUndoDepth {
		t.Errorf("expected history capped at %d, got %d", MaxUndoDepth, n)
	}
}

func TestUndoDepthCapSharedChain(t *testing.T) {
	// The cap severs the chain in place, so a reference retained from
	// earlier in the edit sequence sees its history shortened as later
	// edits push the oldest snapshots past the cap.
	b := New("")
	for i := 0; i < MaxUndoDepth; i++ {
		b = b.InsertRune('x')
	}
	kept := b
	b = b.InsertRune('y')

	n := 0
	for h := kept; h.CanUndo(); h = h.Undo() {
		n++
	}
	if n != MaxUndoDepth-1 {
		t.Errorf("expected retained reference history shortened to %d, got %d",
			MaxUndoDepth-1, n)
	}

	n = 0
	for ; b.CanUndo(); b = b.Undo() {
		n++
	}
	if n != MaxUndoDepth {
		t.Errorf("expected live buffer history of %d, got %d", MaxUndoDepth, n)
	}
}

func TestUndoIsolation(t *testing.T) {
	// Edits to the new buffer must not leak into snapshots on the chain.
	b := New("ab")
	b2 := b.MoveTo(Cursor{Line: 0, Col: 1}).InsertRune('x')
	if b2.String() != "axb" {
		t.Errorf("expected \"axb\", got %q", b2.String())
	}
	if b.String() != "ab" {
		t.Errorf("original buffer modified: %q", b.String())
	}
	if b2.Undo().Undo().String() != "ab" {
		t.Errorf("undo chain corrupted: %q", b2.Undo().Undo().String())
	}
}

func TestMoveClamping(t *testing.T) {
	b := New("ab\nlonger line")

	b = b.MoveTo(Cursor{Line: 5, Col: 100})
	if b.Cursor() != (Cursor{Line: 1, Col: 11}) {
		t.Errorf("expected clamp to end of last line, got %+v", b.Cursor())
	}

	b = b.MoveTo(Cursor{Line: -1, Col: -1})
	if b.Cursor() != (Cursor{Line: 0, Col: 0}) {
		t.Errorf("expected clamp to origin, got %+v", b.Cursor())
	}

	// Left at the start of a line clamps rather than wrapping.
	b = b.MoveTo(Cursor{Line: 1, Col: 0}).MoveLeft()
	if b.Cursor() != (Cursor{Line: 1, Col: 0}) {
		t.Errorf("MoveLeft wrapped: %+v", b.Cursor())
	}

	b = b.MoveToLineEnd().MoveRight()
	if b.Cursor() != (Cursor{Line: 1, Col: 11}) {
		t.Errorf("MoveRight wrapped: %+v", b.Cursor())
	}
}

func TestPreferredColumn(t *testing.T) {
	b := New("a long line\nx\nanother long line")
	b = b.MoveTo(Cursor{Line: 0, Col: 8})

	// Moving through the short line clamps the column...
	b = b.MoveDown()
	if b.Cursor() != (Cursor{Line: 1, Col: 1}) {
		t.Errorf("expected clamp on short line, got %+v", b.Cursor())
	}
	// ...but the preferred column is recovered below it.
	b = b.MoveDown()
	if b.Cursor() != (Cursor{Line: 2, Col: 8}) {
		t.Errorf("expected preferred column restored, got %+v", b.Cursor())
	}

	b = b.MoveUp().MoveUp()
	if b.Cursor() != (Cursor{Line: 0, Col: 8}) {
		t.Errorf("expected preferred column restored moving up, got %+v", b.Cursor())
	}
}

func TestSpan(t *testing.T) {
	b := New("ab\ncd")

	// With no selection, Span is a caret at the cursor's linear offset;
	// the newline counts as one position.
	b = b.MoveTo(Cursor{Line: 1, Col: 1})
	if s := b.Span(); s != (layout.Span{Start: 4, End: 4}) {
		t.Errorf("expected caret span at 4, got %+v", s)
	}

	b = b.Select(Cursor{Line: 0, Col: 1}, Cursor{Line: 1, Col: 1})
	if s := b.Span(); s != (layout.Span{Start: 1, End: 4}) {
		t.Errorf("expected span [1,4), got %+v", s)
	}

	// A backwards selection is normalized.
	b = b.Select(Cursor{Line: 1, Col: 1}, Cursor{Line: 0, Col: 1})
	if s := b.Span(); s != (layout.Span{Start: 1, End: 4}) {
		t.Errorf("expected normalized span [1,4), got %+v", s)
	}
}

func TestSelect(t *testing.T) {
	b := New("abc")
	b = b.Select(Cursor{Line: 0, Col: 1}, Cursor{Line: 0, Col: 9})
	sel := b.Selection()
	if sel == nil {
		t.Fatalf("expected a selection")
	}
	if sel.End != (Cursor{Line: 0, Col: 3}) {
		t.Errorf("selection end not clamped: %+v", sel.End)
	}
	if b.Cursor() != sel.End {
		t.Errorf("cursor should follow selection end, got %+v", b.Cursor())
	}

	b = b.ClearSelection()
	if b.Selection() != nil {
		t.Errorf("selection should be cleared")
	}
	if nb := b.ClearSelection(); nb != b {
		t.Errorf("clearing a cleared selection should return the receiver")
	}

	// Editing collapses the selection.
	b = New("abc").Select(Cursor{}, Cursor{Line: 0, Col: 2})
	if b.InsertRune('x').Selection() != nil {
		t.Errorf("insert should clear the selection")
	}
}
