// editor.go
// Copyright(c) 2026 quill contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"errors"

	"github.com/quillgl/quill/pkg/buffer"
	"github.com/quillgl/quill/pkg/log"
	"github.com/quillgl/quill/pkg/math"
	"github.com/quillgl/quill/pkg/platform"
	"github.com/quillgl/quill/pkg/renderer"
)

// textMargin is the inset of the text from the window edges, in pixels.
const textMargin float32 = 8

// Editor owns the document being edited and translates keyboard input
// into TextBuffer operations. All buffer mutation goes through here.
type Editor struct {
	buf   *buffer.TextBuffer
	tr    *renderer.TextRenderer
	style renderer.TextStyle
	bg    renderer.RGB
	lg    *log.Logger
}

func NewEditor(buf *buffer.TextBuffer, tr *renderer.TextRenderer, config *GlobalConfig, lg *log.Logger) *Editor {
	return &Editor{
		buf: buf,
		tr:  tr,
		style: renderer.TextStyle{
			Color:       renderer.RGBFromHex(config.TextColor),
			LineSpacing: config.LineSpacing,
		},
		bg: renderer.RGBFromHex(config.BackgroundColor),
		lg: lg,
	}
}

func (e *Editor) Buffer() *buffer.TextBuffer {
	return e.buf
}

// selectionAnchor returns the fixed end of the selection for shift-motion:
// the start of the current selection if there is one, otherwise the
// cursor before the motion.
func (e *Editor) selectionAnchor() buffer.Cursor {
	if sel := e.buf.Selection(); sel != nil {
		return sel.Start
	}
	return e.buf.Cursor()
}

// move applies a cursor motion; with shift held the selection is extended
// from its anchor to the new cursor position instead of being cleared.
func (e *Editor) move(shift bool, motion func(*buffer.TextBuffer) *buffer.TextBuffer) {
	if !shift {
		e.buf = motion(e.buf)
		return
	}
	anchor := e.selectionAnchor()
	moved := motion(e.buf)
	e.buf = moved.Select(anchor, moved.Cursor())
}

// insert replaces the selection, if any, with r.
func (e *Editor) insert(r rune) {
	e.buf = e.buf.DeleteSelection().InsertRune(r)
}

func (e *Editor) selectAll() {
	last := e.buf.NumLines() - 1
	e.buf = e.buf.Select(buffer.Cursor{},
		buffer.Cursor{Line: last, Col: len([]rune(e.buf.Line(last)))})
}

// HandleInput applies one frame's worth of keyboard input to the buffer.
func (e *Editor) HandleInput(kb *platform.KeyboardState) {
	// Shortcuts first so that e.g. control-a doesn't also insert a
	// character on platforms that report one.
	if kb.KeyControl() || kb.KeySuper() {
		if kb.WasPressed(platform.KeyZ) {
			e.buf = e.buf.Undo()
		}
		if kb.WasPressed(platform.KeyA) {
			e.selectAll()
		}
		return
	}

	for _, ch := range kb.Input {
		if ch >= ' ' {
			e.insert(ch)
		}
	}

	shift := kb.KeyShift()

	if kb.WasPressed(platform.KeyEnter) {
		e.insert('\n')
	}
	if kb.WasPressed(platform.KeyTab) {
		e.insert('\t')
	}
	if kb.WasPressed(platform.KeyBackspace) {
		if e.buf.Selection() != nil {
			e.buf = e.buf.DeleteSelection()
		} else {
			e.buf = e.buf.DeleteBackward()
		}
	}
	if kb.WasPressed(platform.KeyDelete) {
		if e.buf.Selection() != nil {
			e.buf = e.buf.DeleteSelection()
		} else {
			e.buf = e.buf.DeleteForward()
		}
	}

	if kb.WasPressed(platform.KeyLeftArrow) {
		e.move(shift, (*buffer.TextBuffer).MoveLeft)
	}
	if kb.WasPressed(platform.KeyRightArrow) {
		e.move(shift, (*buffer.TextBuffer).MoveRight)
	}
	if kb.WasPressed(platform.KeyUpArrow) {
		e.move(shift, (*buffer.TextBuffer).MoveUp)
	}
	if kb.WasPressed(platform.KeyDownArrow) {
		e.move(shift, (*buffer.TextBuffer).MoveDown)
	}
	if kb.WasPressed(platform.KeyHome) {
		e.move(shift, (*buffer.TextBuffer).MoveToLineStart)
	}
	if kb.WasPressed(platform.KeyEnd) {
		e.move(shift, (*buffer.TextBuffer).MoveToLineEnd)
	}

	if kb.WasPressed(platform.KeyEscape) {
		e.buf = e.buf.ClearSelection()
	}
}

// Draw encodes the commands to draw the document into cb: clear, set up
// the transforms, then one instanced draw for the text with its selection
// or caret overlay.
func (e *Editor) Draw(cb *renderer.CommandBuffer, fbSize [2]float32) {
	w, h := fbSize[0], fbSize[1]

	cb.Viewport(0, 0, int(w), int(h))
	cb.ClearRGB(e.bg)
	cb.LoadProjectionMatrix(math.Identity3x3().Ortho(0, w, 0, h))

	// The first line's baseline sits one ascent below the top margin;
	// layout y values grow downward from there.
	f := e.tr.Font()
	cb.LoadModelViewMatrix(math.Identity3x3().Translate(textMargin, h-textMargin-f.Ascent))

	span := e.buf.Span()
	if _, err := e.tr.Draw(e.buf.Runes(), &span, e.style, cb); err != nil {
		if errors.Is(err, renderer.ErrTooManyInstances) {
			e.lg.Warnf("document not drawn: %v", err)
		} else {
			e.lg.Errorf("draw: %v", err)
		}
	}
	cb.ResetState()
}
