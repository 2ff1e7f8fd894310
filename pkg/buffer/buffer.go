// pkg/buffer/buffer.go
// Copyright(c) 2026 quill contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package buffer implements the editable text document: lines of
// characters plus cursor, selection, and undo history. Buffers are
// immutable; every mutating operation returns a new TextBuffer whose undo
// link references the buffer as it was before the operation, so undo is
// simply following that link. The one exception is the history cap,
// which severs the undo link of the snapshot MaxUndoDepth steps back in
// place; see snapshot.
package buffer

import (
	"strings"

	"github.com/brunoga/deep"

	"github.com/quillgl/quill/pkg/layout"
	"github.com/quillgl/quill/pkg/math"
)

// MaxUndoDepth caps the length of the undo chain; when an edit would grow
// the history past it, the oldest snapshot is dropped.
const MaxUndoDepth = 256

// Cursor addresses a position between characters: 0-based line and column
// indices, where column n sits before the n'th character of the line.
type Cursor struct {
	Line, Col int
}

// Selection is a pair of cursors; Start and End are in document order
// after normalization in Span().
type Selection struct {
	Start, End Cursor
}

type TextBuffer struct {
	lines [][]rune

	cursor Cursor
	sel    *Selection

	// preferredCol remembers the column the user last chose explicitly so
	// that moving vertically across a short line and back recovers it.
	preferredCol int

	// Path optionally names the file the buffer was loaded from; the
	// buffer itself never touches the filesystem.
	Path string

	undo *TextBuffer
}

// New returns a TextBuffer holding the given text, cursor at the origin.
func New(text string) *TextBuffer {
	b := &TextBuffer{}
	for _, line := range strings.Split(text, "\n") {
		b.lines = append(b.lines, []rune(line))
	}
	return b
}

func (b *TextBuffer) String() string {
	var sb strings.Builder
	for i, line := range b.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(line))
	}
	return sb.String()
}

// Runes returns the flattened character stream the layout engine consumes:
// the lines' characters in order with a '\n' between successive lines.
func (b *TextBuffer) Runes() []rune {
	var rs []rune
	for i, line := range b.lines {
		if i > 0 {
			rs = append(rs, '\n')
		}
		rs = append(rs, line...)
	}
	return rs
}

func (b *TextBuffer) NumLines() int {
	return len(b.lines)
}

func (b *TextBuffer) Line(i int) string {
	return string(b.lines[i])
}

func (b *TextBuffer) Cursor() Cursor {
	return b.cursor
}

func (b *TextBuffer) Selection() *Selection {
	if b.sel == nil {
		return nil
	}
	s := *b.sel
	return &s
}

// Equal reports structural equality of the documents' visible state; undo
// history is not considered.
func (b *TextBuffer) Equal(o *TextBuffer) bool {
	if len(b.lines) != len(o.lines) || b.cursor != o.cursor {
		return false
	}
	if (b.sel == nil) != (o.sel == nil) || (b.sel != nil && *b.sel != *o.sel) {
		return false
	}
	for i := range b.lines {
		if string(b.lines[i]) != string(o.lines[i]) {
			return false
		}
	}
	return true
}

// snapshot returns a copy of the buffer whose undo link references the
// receiver. The lines are deep-copied so that the snapshot and its
// predecessors never share mutable state.
//
// Capping the history severs the undo link of an ancestor in place, the
// one mutation of an existing snapshot in this package. The truncation is
// observable through other retained references to that ancestor; edits
// flow through a single live buffer reference, which keeps none.
func (b *TextBuffer) snapshot() *TextBuffer {
	nb := &TextBuffer{
		lines:        deep.MustCopy(b.lines),
		cursor:       b.cursor,
		preferredCol: b.preferredCol,
		Path:         b.Path,
		undo:         b,
	}
	if b.sel != nil {
		s := *b.sel
		nb.sel = &s
	}

	// Cap the history: drop the link past MaxUndoDepth snapshots back.
	h := nb
	for i := 0; i < MaxUndoDepth && h.undo != nil; i++ {
		h = h.undo
	}
	h.undo = nil

	return nb
}

// Undo returns the buffer as it was before the most recent operation, or
// the receiver unchanged if there is no history. Undoing at the root is
// deliberately a no-op rather than an error.
func (b *TextBuffer) Undo() *TextBuffer {
	if b.undo == nil {
		return b
	}
	return b.undo
}

func (b *TextBuffer) CanUndo() bool {
	return b.undo != nil
}

///////////////////////////////////////////////////////////////////////////
// Edits

// insert places r at the cursor and advances it; it mutates the receiver
// and so must only be called on fresh snapshots.
func (b *TextBuffer) insert(r rune) {
	c := b.cursor
	if r == '\n' {
		line := b.lines[c.Line]
		head := append([]rune{}, line[:c.Col]...)
		tail := append([]rune{}, line[c.Col:]...)
		b.lines[c.Line] = head
		b.lines = append(b.lines[:c.Line+1],
			append([][]rune{tail}, b.lines[c.Line+1:]...)...)
		b.cursor = Cursor{Line: c.Line + 1, Col: 0}
		return
	}

	line := b.lines[c.Line]
	line = append(line[:c.Col], append([]rune{r}, line[c.Col:]...)...)
	b.lines[c.Line] = line
	b.cursor.Col++
}

// InsertRune returns a new buffer with r inserted at the cursor.
func (b *TextBuffer) InsertRune(r rune) *TextBuffer {
	nb := b.snapshot()
	nb.insert(r)
	nb.preferredCol = nb.cursor.Col
	nb.sel = nil
	return nb
}

// InsertString returns a new buffer with s inserted at the cursor as a
// single undoable operation.
func (b *TextBuffer) InsertString(s string) *TextBuffer {
	nb := b.snapshot()
	for _, r := range s {
		nb.insert(r)
	}
	nb.preferredCol = nb.cursor.Col
	nb.sel = nil
	return nb
}

// DeleteBackward returns a new buffer with the character before the cursor
// removed; at the start of a line it joins the line with its predecessor.
// At the start of the document it returns the receiver unchanged.
func (b *TextBuffer) DeleteBackward() *TextBuffer {
	c := b.cursor
	if c.Col == 0 && c.Line == 0 {
		return b
	}

	nb := b.snapshot()
	if c.Col > 0 {
		line := nb.lines[c.Line]
		nb.lines[c.Line] = append(line[:c.Col-1], line[c.Col:]...)
		nb.cursor.Col--
	} else {
		prev := nb.lines[c.Line-1]
		nb.cursor = Cursor{Line: c.Line - 1, Col: len(prev)}
		nb.lines[c.Line-1] = append(prev, nb.lines[c.Line]...)
		nb.lines = append(nb.lines[:c.Line], nb.lines[c.Line+1:]...)
	}
	nb.preferredCol = nb.cursor.Col
	nb.sel = nil
	return nb
}

// DeleteForward returns a new buffer with the character at the cursor
// removed; at the end of a line it joins the next line onto it. At the end
// of the document it returns the receiver unchanged.
func (b *TextBuffer) DeleteForward() *TextBuffer {
	c := b.cursor
	atLineEnd := c.Col == len(b.lines[c.Line])
	if atLineEnd && c.Line == len(b.lines)-1 {
		return b
	}

	nb := b.snapshot()
	if !atLineEnd {
		line := nb.lines[c.Line]
		nb.lines[c.Line] = append(line[:c.Col], line[c.Col+1:]...)
	} else {
		nb.lines[c.Line] = append(nb.lines[c.Line], nb.lines[c.Line+1]...)
		nb.lines = append(nb.lines[:c.Line+1], nb.lines[c.Line+2:]...)
	}
	nb.sel = nil
	return nb
}

// DeleteSelection returns a new buffer with the selected characters
// removed as a single undoable operation, the cursor left where the
// selection began. Without a selection it returns the receiver unchanged.
func (b *TextBuffer) DeleteSelection() *TextBuffer {
	if b.sel == nil {
		return b
	}

	start, end := b.sel.Start, b.sel.End
	if linearOffset(b.lines, start) > linearOffset(b.lines, end) {
		start, end = end, start
	}

	nb := b.snapshot()
	head := nb.lines[start.Line][:start.Col]
	tail := nb.lines[end.Line][end.Col:]
	nb.lines[start.Line] = append(append([]rune{}, head...), tail...)
	nb.lines = append(nb.lines[:start.Line+1], nb.lines[end.Line+1:]...)
	nb.cursor = start
	nb.preferredCol = start.Col
	nb.sel = nil
	return nb
}

///////////////////////////////////////////////////////////////////////////
// Cursor movement

// clamp restricts c to a valid cursor position in the buffer: past the
// last line clamps to the last line, past the end of a line clamps to the
// line's length.
func (b *TextBuffer) clamp(c Cursor) Cursor {
	c.Line = math.Clamp(c.Line, 0, len(b.lines)-1)
	c.Col = math.Clamp(c.Col, 0, len(b.lines[c.Line]))
	return c
}

// MoveTo returns a new buffer with the cursor at c, clamped to the
// document, with the selection cleared.
func (b *TextBuffer) MoveTo(c Cursor) *TextBuffer {
	nb := b.snapshot()
	nb.cursor = nb.clamp(c)
	nb.preferredCol = nb.cursor.Col
	nb.sel = nil
	return nb
}

func (b *TextBuffer) MoveLeft() *TextBuffer {
	return b.MoveTo(Cursor{Line: b.cursor.Line, Col: b.cursor.Col - 1})
}

func (b *TextBuffer) MoveRight() *TextBuffer {
	return b.MoveTo(Cursor{Line: b.cursor.Line, Col: b.cursor.Col + 1})
}

// moveVertical moves the cursor dy lines, clamped, targeting the
// preferred column so that passing through a short line doesn't lose the
// user's place.
func (b *TextBuffer) moveVertical(dy int) *TextBuffer {
	nb := b.snapshot()
	nb.cursor = nb.clamp(Cursor{Line: b.cursor.Line + dy, Col: b.preferredCol})
	nb.sel = nil
	return nb
}

func (b *TextBuffer) MoveUp() *TextBuffer {
	return b.moveVertical(-1)
}

func (b *TextBuffer) MoveDown() *TextBuffer {
	return b.moveVertical(1)
}

// MoveToLineStart and MoveToLineEnd implement the usual home/end motions.
func (b *TextBuffer) MoveToLineStart() *TextBuffer {
	return b.MoveTo(Cursor{Line: b.cursor.Line, Col: 0})
}

func (b *TextBuffer) MoveToLineEnd() *TextBuffer {
	return b.MoveTo(Cursor{Line: b.cursor.Line, Col: len(b.lines[b.cursor.Line])})
}

///////////////////////////////////////////////////////////////////////////
// Selection

// Select returns a new buffer with the selection set to the (clamped)
// cursor pair; the cursor follows the selection's end.
func (b *TextBuffer) Select(start, end Cursor) *TextBuffer {
	nb := b.snapshot()
	nb.sel = &Selection{Start: nb.clamp(start), End: nb.clamp(end)}
	nb.cursor = nb.sel.End
	nb.preferredCol = nb.cursor.Col
	return nb
}

func (b *TextBuffer) ClearSelection() *TextBuffer {
	if b.sel == nil {
		return b
	}
	nb := b.snapshot()
	nb.sel = nil
	return nb
}

// linearOffset converts a cursor to its offset in the flattened character
// stream, counting one synthetic offset per line for the newline that
// terminates it; this keeps offsets monotonic across line boundaries and
// in step with the stream Runes() produces.
func linearOffset(lines [][]rune, c Cursor) int {
	offset := 0
	for i := 0; i < c.Line; i++ {
		offset += len(lines[i]) + 1
	}
	return offset + c.Col
}

// Span returns the selection as linear character offsets for the layout
// engine: the selected range if a selection exists (normalized so that
// Start <= End), otherwise a caret at the cursor.
func (b *TextBuffer) Span() layout.Span {
	if b.sel == nil {
		o := linearOffset(b.lines, b.cursor)
		return layout.Span{Start: o, End: o}
	}
	s := linearOffset(b.lines, b.sel.Start)
	e := linearOffset(b.lines, b.sel.End)
	if s > e {
		s, e = e, s
	}
	return layout.Span{Start: s, End: e}
}
