// pkg/platform/platform.go
// Copyright(c) 2026 quill contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package platform wraps window creation and input handling so that the
// rest of quill doesn't touch GLFW directly.
package platform

// Platform is the interface that abstracts platform-specific features like
// creating windows, mouse and keyboard handling, etc.
type Platform interface {
	// ProcessEvents handles all pending window events. Returns true if
	// there were any events and false otherwise.
	ProcessEvents() bool
	// PostRender performs the buffer swap.
	PostRender()
	// Dispose is called when the application is shutting down and is when
	// resources are be freed.
	Dispose()
	// ShouldStop returns true if the window is to be closed.
	ShouldStop() bool
	// CancelShouldStop cancels a user's request to close the window.
	CancelShouldStop()
	// SetWindowTitle sets the title of the application window.
	SetWindowTitle(text string)
	// InputCharacters returns a string of all the characters (generally at
	// most one!) that have been entered since the last call to
	// ProcessEvents.
	InputCharacters() string
	// EnableVSync specifies whether v-sync should be used when rendering;
	// v-sync is on by default and should only be disabled for benchmarking.
	EnableVSync(sync bool)
	// DisplaySize returns the dimension of the display.
	DisplaySize() [2]float32
	// WindowSize returns the size of the window.
	WindowSize() [2]int
	// WindowPosition returns the position of the window on the screen.
	WindowPosition() [2]int
	// FramebufferSize returns the dimension of the framebuffer.
	FramebufferSize() [2]float32
	// DPIScale returns the scaling factor to account for Retina-style
	// displays.
	DPIScale() float32

	GetKeyboard() *KeyboardState
}

type Config struct {
	InitialWindowSize     [2]int
	InitialWindowPosition [2]int

	StartInFullScreen bool
	FullScreenMonitor int
}

// Key identifies the non-character keys the editor responds to; character
// input arrives separately through InputCharacters.
type Key int

const (
	KeyEnter Key = iota
	KeyUpArrow
	KeyDownArrow
	KeyLeftArrow
	KeyRightArrow
	KeyHome
	KeyEnd
	KeyBackspace
	KeyDelete
	KeyEscape
	KeyTab
	KeyPageUp
	KeyPageDown
	KeyA
	KeyZ
)

// KeyboardState is a snapshot of the keyboard for the current frame:
// entered text, keys newly pressed since the last frame (repeats
// included), and the modifier state.
type KeyboardState struct {
	Input string
	// A key shows up here once each time it is pressed (though repeatedly
	// if key repeat kicks in.)
	Pressed map[Key]interface{}

	Shift, Control, Alt, Super bool
}

func (k *KeyboardState) WasPressed(key Key) bool {
	_, ok := k.Pressed[key]
	return ok
}

func (k *KeyboardState) KeyShift() bool   { return k.Shift }
func (k *KeyboardState) KeyControl() bool { return k.Control }
func (k *KeyboardState) KeyAlt() bool     { return k.Alt }
func (k *KeyboardState) KeySuper() bool   { return k.Super }
