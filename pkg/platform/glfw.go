// pkg/platform/glfw.go
// Copyright(c) 2026 quill contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package platform

import (
	"fmt"
	"runtime"

	"github.com/quillgl/quill/pkg/log"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwPlatform implements the Platform interface using GLFW.
type glfwPlatform struct {
	window *glfw.Window
	config *Config

	inputCharacters        string
	pressed                map[Key]interface{}
	anyEvents              bool
	lastMouseX, lastMouseY float64
	windowTitle            string
}

var glfwKeyMap = map[glfw.Key]Key{
	glfw.KeyEnter:     KeyEnter,
	glfw.KeyKPEnter:   KeyEnter,
	glfw.KeyUp:        KeyUpArrow,
	glfw.KeyDown:      KeyDownArrow,
	glfw.KeyLeft:      KeyLeftArrow,
	glfw.KeyRight:     KeyRightArrow,
	glfw.KeyHome:      KeyHome,
	glfw.KeyEnd:       KeyEnd,
	glfw.KeyBackspace: KeyBackspace,
	glfw.KeyDelete:    KeyDelete,
	glfw.KeyEscape:    KeyEscape,
	glfw.KeyTab:       KeyTab,
	glfw.KeyPageUp:    KeyPageUp,
	glfw.KeyPageDown:  KeyPageDown,
	glfw.KeyA:         KeyA,
	glfw.KeyZ:         KeyZ,
}

// New returns a new instance of a Platform implemented with a window of
// the specified size open at the specified position on the screen. The
// window's OpenGL 4.1 core profile context is current when New returns.
func New(config *Config, lg *log.Logger) (Platform, error) {
	lg.Info("Starting GLFW initialization")
	err := glfw.Init()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize glfw: %w", err)
	}
	lg.Infof("GLFW: %s", glfw.GetVersionString())

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	// Forward compatibility is required for core contexts on MacOS.
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	vm := glfw.GetPrimaryMonitor().GetVideoMode()
	if config.InitialWindowSize[0] == 0 || config.InitialWindowSize[1] == 0 {
		if runtime.GOOS == "windows" {
			config.InitialWindowSize[0] = vm.Width - 200
			config.InitialWindowSize[1] = vm.Height - 300
		} else {
			config.InitialWindowSize[0] = vm.Width - 150
			config.InitialWindowSize[1] = vm.Height - 150
		}
	}

	// If window position is out of bounds, create the window at (100, 100)
	if config.InitialWindowPosition[0] < 0 || config.InitialWindowPosition[1] < 0 ||
		config.InitialWindowPosition[0] > vm.Width || config.InitialWindowPosition[1] > vm.Height {
		config.InitialWindowPosition = [2]int{100, 100}
	}
	// Start with an invisible window so that we can position it first
	glfw.WindowHint(glfw.Visible, 0)
	// Disable GLFW_AUTO_ICONIFY to stop the window from automatically minimizing in fullscreen
	glfw.WindowHint(glfw.AutoIconify, 0)

	var window *glfw.Window
	monitors := glfw.GetMonitors()
	if config.FullScreenMonitor >= len(monitors) {
		// Monitor saved in config not found, fallback to default
		config.FullScreenMonitor = 0
	}
	if config.StartInFullScreen {
		vm := monitors[config.FullScreenMonitor].GetVideoMode()
		window, err = glfw.CreateWindow(vm.Width, vm.Height, "quill", monitors[config.FullScreenMonitor], nil)
	} else {
		window, err = glfw.CreateWindow(config.InitialWindowSize[0], config.InitialWindowSize[1], "quill", nil, nil)
	}
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	window.SetPos(config.InitialWindowPosition[0], config.InitialWindowPosition[1])
	window.Show()
	window.MakeContextCurrent()

	platform := &glfwPlatform{
		config:  config,
		window:  window,
		pressed: make(map[Key]interface{}),
	}
	platform.installCallbacks()
	platform.EnableVSync(true)

	lg.Info("Finished GLFW initialization")

	return platform, nil
}

func (g *glfwPlatform) installCallbacks() {
	g.window.SetKeyCallback(g.keyChange)
	g.window.SetCharCallback(g.charChange)
}

func (g *glfwPlatform) keyChange(window *glfw.Window, keycode glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	g.anyEvents = true

	if action != glfw.Press && action != glfw.Repeat {
		return
	}
	if k, ok := glfwKeyMap[keycode]; ok {
		g.pressed[k] = nil
	}
}

func (g *glfwPlatform) charChange(window *glfw.Window, char rune) {
	g.anyEvents = true
	g.inputCharacters = g.inputCharacters + string(char)
}

func (g *glfwPlatform) ProcessEvents() bool {
	g.inputCharacters = ""
	g.pressed = make(map[Key]interface{})
	g.anyEvents = false

	glfw.PollEvents()

	if g.anyEvents {
		return true
	}

	x, y := g.window.GetCursorPos()
	if x != g.lastMouseX || y != g.lastMouseY {
		g.lastMouseX, g.lastMouseY = x, y
		return true
	}

	return false
}

func (g *glfwPlatform) GetKeyboard() *KeyboardState {
	keyboard := &KeyboardState{
		Input:   g.inputCharacters,
		Pressed: make(map[Key]interface{}),
	}
	for k := range g.pressed {
		keyboard.Pressed[k] = nil
	}

	keyboard.Shift = g.window.GetKey(glfw.KeyLeftShift) == glfw.Press ||
		g.window.GetKey(glfw.KeyRightShift) == glfw.Press
	keyboard.Alt = g.window.GetKey(glfw.KeyLeftAlt) == glfw.Press ||
		g.window.GetKey(glfw.KeyRightAlt) == glfw.Press
	keyboard.Control = g.window.GetKey(glfw.KeyLeftControl) == glfw.Press ||
		g.window.GetKey(glfw.KeyRightControl) == glfw.Press
	keyboard.Super = g.window.GetKey(glfw.KeyLeftSuper) == glfw.Press ||
		g.window.GetKey(glfw.KeyRightSuper) == glfw.Press

	return keyboard
}

func (g *glfwPlatform) PostRender() {
	g.window.SwapBuffers()
}

func (g *glfwPlatform) Dispose() {
	g.window.Destroy()
	glfw.Terminate()
}

func (g *glfwPlatform) InputCharacters() string {
	return g.inputCharacters
}

func (g *glfwPlatform) ShouldStop() bool {
	return g.window.ShouldClose()
}

func (g *glfwPlatform) CancelShouldStop() {
	g.window.SetShouldClose(false)
}

func (g *glfwPlatform) SetWindowTitle(text string) {
	if text != g.windowTitle {
		g.window.SetTitle(text)
		g.windowTitle = text
	}
}

func (g *glfwPlatform) EnableVSync(sync bool) {
	if sync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
}

func (g *glfwPlatform) DPIScale() float32 {
	if runtime.GOOS == "windows" {
		sx, sy := g.window.GetContentScale()
		return float32(int((sx + sy) / 2))
	} else {
		return g.FramebufferSize()[0] / g.DisplaySize()[0]
	}
}

func (g *glfwPlatform) DisplaySize() [2]float32 {
	w, h := g.window.GetSize()
	return [2]float32{float32(w), float32(h)}
}

func (g *glfwPlatform) WindowSize() [2]int {
	w, h := g.window.GetSize()
	return [2]int{w, h}
}

func (g *glfwPlatform) WindowPosition() [2]int {
	x, y := g.window.GetPos()
	return [2]int{x, y}
}

func (g *glfwPlatform) FramebufferSize() [2]float32 {
	w, h := g.window.GetFramebufferSize()
	return [2]float32{float32(w), float32(h)}
}
