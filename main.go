// main.go
// Copyright(c) 2026 quill contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// This file contains the implementation of the main() function, which
// initializes the system and then runs the event loop until the system
// exits.

import (
	"flag"
	"os"
	"runtime"

	"github.com/quillgl/quill/pkg/buffer"
	"github.com/quillgl/quill/pkg/font"
	"github.com/quillgl/quill/pkg/log"
	"github.com/quillgl/quill/pkg/math"
	"github.com/quillgl/quill/pkg/platform"
	"github.com/quillgl/quill/pkg/renderer"
	"github.com/quillgl/quill/pkg/util"
)

var lg *log.Logger

var (
	fontPath = flag.String("font", "", "path to a TrueType or OpenType font file")
	fontSize = flag.Int("size", 0, "font size in points (overrides the config file)")
	logLevel = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir   = flag.String("logdir", "", "log file directory")
)

func init() {
	// OpenGL and friends require that all calls be made from the primary
	// application thread, while by default, go allows the main thread to
	// run on different hardware threads over the course of
	// execution. Therefore, we must lock the main thread at startup time.
	runtime.LockOSThread()
}

func main() {
	flag.Parse()

	// Initialize the logging system first and foremost.
	lg = log.New(*logLevel, *logDir)

	config := LoadOrMakeDefaultConfig()
	if *fontPath != "" {
		config.FontPath = *fontPath
	}
	if *fontSize != 0 {
		config.FontSize = *fontSize
	}
	if config.FontPath == "" {
		lg.Errorf("no font specified; pass -font or set FontPath in %s", configFilePath())
		os.Exit(1)
	}

	// The font and the document are loaded before the window is created so
	// that the document's bounds can size the window.
	f, missed, err := font.Load(config.FontPath, config.FontSize, config.FontChars, lg)
	if err != nil {
		lg.Errorf("%s: %v", config.FontPath, err)
		os.Exit(1)
	}
	if missed > 0 {
		lg.Warnf("%s: %d requested characters not in font", config.FontPath, missed)
	}

	doc, docPath := "", ""
	if flag.NArg() > 0 {
		docPath = flag.Arg(0)
		if b, err := util.LoadResourceBytes(docPath); err == nil {
			doc = string(b)
		} else if !os.IsNotExist(err) {
			lg.Errorf("%s: %v", docPath, err)
			os.Exit(1)
		}
	}
	config.InitialWindowSize = fitWindowToDocument(config.InitialWindowSize, f, doc, config.LineSpacing)

	plat, err := platform.New(&platform.Config{
		InitialWindowSize:     config.InitialWindowSize,
		InitialWindowPosition: config.InitialWindowPosition,
		StartInFullScreen:     config.StartInFullScreen,
		FullScreenMonitor:     config.FullScreenMonitor,
	}, lg)
	if err != nil {
		lg.Errorf("Unable to create application window: %v", err)
		os.Exit(1)
	}
	defer plat.Dispose()

	rend, err := renderer.NewOpenGL41Renderer(renderer.MaxInstances, lg)
	if err != nil {
		lg.Errorf("Unable to initialize OpenGL: %v", err)
		os.Exit(1)
	}
	defer rend.Dispose()

	tr, err := renderer.NewTextRenderer(f, renderer.MaxInstances, lg)
	if err != nil {
		lg.Errorf("%v", err)
		os.Exit(1)
	}
	tr.UploadFont(rend)

	buf := buffer.New(doc)
	buf.Path = docPath
	editor := NewEditor(buf, tr, config, lg)

	title := "quill"
	if docPath != "" {
		title += ": " + docPath
	}
	plat.SetWindowTitle(title)

	var stats renderer.RendererStats
	frame := 0
	for !plat.ShouldStop() {
		plat.ProcessEvents()
		editor.HandleInput(plat.GetKeyboard())

		cb := renderer.GetCommandBuffer()
		editor.Draw(cb, plat.FramebufferSize())
		stats.Merge(rend.RenderCommandBuffer(cb))
		renderer.ReturnCommandBuffer(cb)

		plat.PostRender()

		frame++
		if frame%300 == 0 {
			lg.Debug("rendering", "stats", stats)
			stats = renderer.RendererStats{}
		}
	}

	if docPath != "" && editor.Buffer().String() != doc {
		if err := os.WriteFile(docPath, []byte(editor.Buffer().String()), 0o644); err != nil {
			lg.Errorf("%s: %v", docPath, err)
		} else {
			lg.Infof("%s: saved", docPath)
		}
	}

	config.InitialWindowSize = plat.WindowSize()
	config.InitialWindowPosition = plat.WindowPosition()
	if err := config.Save(); err != nil {
		lg.Errorf("%s: %v", configFilePath(), err)
	}
}

// fitWindowToDocument grows size as needed so that the whole document is
// visible at startup, text margins included.
func fitWindowToDocument(size [2]int, f *font.Font, doc string, spacing int) [2]int {
	if doc == "" {
		return size
	}
	w, h := f.BoundText(doc, spacing)
	size[0] = math.Max(size[0], w+2*int(textMargin))
	size[1] = math.Max(size[1], h+2*int(textMargin))
	return size
}
