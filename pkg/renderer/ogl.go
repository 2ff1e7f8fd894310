// pkg/renderer/ogl.go
// Copyright(c) 2026 quill contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	"image"
	"image/draw"
	gomath "math"
	"strings"
	"unsafe"

	"github.com/quillgl/quill/pkg/font"
	"github.com/quillgl/quill/pkg/log"
	"github.com/quillgl/quill/pkg/util"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Also available as a global, though only used by CommandBuffer
var lg *log.Logger

// glyphTableBinding is the uniform buffer binding point for the per-glyph
// metrics table.
const glyphTableBinding = 0

// The vertex shader is where the instancing scheme lives: each instance
// carries only a glyph table index and a 2D pen offset, and the four
// corners of the glyph's quad (position and texture coordinate together in
// a vec4) are looked up in the uniform buffer using gl_VertexID. With a
// triangle strip, vertex order is bottom-left, top-left, bottom-right,
// top-right.
const vertexShaderSource = `
#version 410 core

layout(location = 0) in int aInstanceGlyphIndex;
layout(location = 1) in vec2 aInstanceCharacterOffset;

uniform GlyphMetricsBlock {
    vec4 glyphMetrics[` + glyphTableEntries + `];
};

uniform mat4 uProjectionMatrix;
uniform mat4 uModelViewMatrix;

out vec2 v2fTexCoord;

void main() {
    vec4 m = glyphMetrics[4 * aInstanceGlyphIndex + gl_VertexID];
    vec2 p = aInstanceCharacterOffset + m.xy;
    gl_Position = uProjectionMatrix * uModelViewMatrix * vec4(p, 0.0, 1.0);
    v2fTexCoord = m.zw;
}
` + "\x00"

const fragmentShaderSource = `
#version 410 core

uniform sampler2D uGlyphAtlas;
uniform vec4 uTintColor;

in vec2 v2fTexCoord;
out vec4 outColor;

void main() {
    outColor = uTintColor * texture(uGlyphAtlas, v2fTexCoord);
}
` + "\x00"

// glyphTableEntries is interpolated into the vertex shader source; it must
// agree with the size of the buffer UploadGlyphTable allocates.
const glyphTableEntries = "1024" // font.MaxTableGlyphs * 4

type OpenGL41Renderer struct {
	lg              *log.Logger
	createdTextures map[uint32]int

	program uint32
	vao     uint32

	// Fixed-capacity per-instance attribute buffers, allocated once and
	// refilled with BufferSubData each frame.
	glyphIndexVBO uint32
	offsetVBO     uint32
	glyphTableUBO uint32
	maxInstances  int

	projectionLoc int32
	modelViewLoc  int32
	tintLoc       int32
}

// NewOpenGL41Renderer initializes OpenGL and compiles the instanced glyph
// shader program. A current OpenGL 4.1 context is required, so the window
// must exist before the renderer is created. maxInstances bounds the
// per-draw instance count; the per-instance buffers are sized for it up
// front.
func NewOpenGL41Renderer(maxInstances int, l *log.Logger) (Renderer, error) {
	lg = l

	lg.Info("Starting OpenGL41Renderer initialization")
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	lg.Infof("OpenGL vendor %s renderer %s", gl.GoStr(gl.GetString(gl.VENDOR)),
		gl.GoStr(gl.GetString(gl.RENDERER)))

	program, err := newProgram(vertexShaderSource, fragmentShaderSource)
	if err != nil {
		return nil, err
	}

	ogl := &OpenGL41Renderer{
		lg:              lg,
		createdTextures: make(map[uint32]int),
		program:         program,
		maxInstances:    maxInstances,
	}

	ogl.projectionLoc = gl.GetUniformLocation(program, gl.Str("uProjectionMatrix\x00"))
	ogl.modelViewLoc = gl.GetUniformLocation(program, gl.Str("uModelViewMatrix\x00"))
	ogl.tintLoc = gl.GetUniformLocation(program, gl.Str("uTintColor\x00"))

	gl.UseProgram(program)
	gl.Uniform1i(gl.GetUniformLocation(program, gl.Str("uGlyphAtlas\x00")), 0)

	blockIndex := gl.GetUniformBlockIndex(program, gl.Str("GlyphMetricsBlock\x00"))
	gl.UniformBlockBinding(program, blockIndex, glyphTableBinding)

	gl.GenBuffers(1, &ogl.glyphTableUBO)
	gl.BindBuffer(gl.UNIFORM_BUFFER, ogl.glyphTableUBO)
	gl.BufferData(gl.UNIFORM_BUFFER, font.MaxTableGlyphs*4*4*4, nil, gl.STATIC_DRAW)
	gl.BindBufferBase(gl.UNIFORM_BUFFER, glyphTableBinding, ogl.glyphTableUBO)

	// The VAO captures both instance attribute bindings; since every draw
	// uses the same layout it is set up once here and just bound at draw
	// time.
	gl.GenVertexArrays(1, &ogl.vao)
	gl.BindVertexArray(ogl.vao)

	gl.GenBuffers(1, &ogl.glyphIndexVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, ogl.glyphIndexVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 4*maxInstances, nil, gl.STREAM_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribIPointer(0, 1, gl.INT, 4, nil)
	gl.VertexAttribDivisor(0, 1)

	gl.GenBuffers(1, &ogl.offsetVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, ogl.offsetVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 8*maxInstances, nil, gl.STREAM_DRAW)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 8, nil)
	gl.VertexAttribDivisor(1, 1)

	gl.BindVertexArray(0)

	if err := oglCheck(); err != nil {
		return nil, err
	}

	lg.Info("Finished OpenGL41Renderer initialization")
	return ogl, nil
}

func (ogl *OpenGL41Renderer) Dispose() {
	for texid := range ogl.createdTextures {
		gl.DeleteTextures(1, &texid)
	}
	gl.DeleteBuffers(1, &ogl.glyphIndexVBO)
	gl.DeleteBuffers(1, &ogl.offsetVBO)
	gl.DeleteBuffers(1, &ogl.glyphTableUBO)
	gl.DeleteVertexArrays(1, &ogl.vao)
	gl.DeleteProgram(ogl.program)
}

func (ogl *OpenGL41Renderer) createdTexture(texid uint32, bytes int) {
	_, exists := ogl.createdTextures[texid]

	ogl.createdTextures[texid] = bytes

	reduce := func(id uint32, bytes int, total int) int { return total + bytes }
	total := util.ReduceMap[uint32, int, int](ogl.createdTextures, reduce, 0)
	mb := float32(total) / (1024 * 1024)

	if exists {
		ogl.lg.Infof("Updated tex id %d: %d bytes -> %.2f MiB of textures total", texid, bytes, mb)
	} else {
		ogl.lg.Infof("Created tex id %d: %d bytes -> %.2f MiB of textures total", texid, bytes, mb)
	}
}

func (ogl *OpenGL41Renderer) CreateTextureFromImage(img image.Image, magNearest bool) uint32 {
	var texid uint32
	gl.GenTextures(1, &texid)
	ogl.UpdateTextureFromImage(texid, img, magNearest)
	return texid
}

func (ogl *OpenGL41Renderer) UpdateTextureFromImage(texid uint32, img image.Image, magNearest bool) {
	var lastTexture int32
	gl.GetIntegerv(gl.TEXTURE_BINDING_2D, &lastTexture)

	gl.BindTexture(gl.TEXTURE_2D, texid)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, int32(util.Select(magNearest, gl.NEAREST, gl.LINEAR)))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	ny, nx := img.Bounds().Dy(), img.Bounds().Dx()
	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(image.Rect(0, 0, nx, ny))
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(nx), int32(ny), 0, gl.RGBA,
		gl.UNSIGNED_BYTE, unsafe.Pointer(&rgba.Pix[0]))

	gl.BindTexture(gl.TEXTURE_2D, uint32(lastTexture))

	ogl.createdTexture(texid, 4*nx*ny)
}

func (ogl *OpenGL41Renderer) DestroyTexture(texid uint32) {
	gl.DeleteTextures(1, &texid)
	delete(ogl.createdTextures, texid)
}

// UploadGlyphTable replaces the contents of the glyph metrics uniform
// buffer. The table is static for the lifetime of a font, so this runs
// once at font load rather than per frame.
func (ogl *OpenGL41Renderer) UploadGlyphTable(table [][4][4]float32) {
	if len(table) > font.MaxTableGlyphs {
		ogl.lg.Errorf("glyph table has %d entries; truncating to %d", len(table), font.MaxTableGlyphs)
		table = table[:font.MaxTableGlyphs]
	}

	gl.BindBuffer(gl.UNIFORM_BUFFER, ogl.glyphTableUBO)
	gl.BufferSubData(gl.UNIFORM_BUFFER, 0, len(table)*4*4*4, unsafe.Pointer(&table[0]))
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
}

func (ogl *OpenGL41Renderer) RenderCommandBuffer(cb *CommandBuffer) RendererStats {
	var stats RendererStats
	stats.nBuffers++
	stats.bufferBytes += 4 * len(cb.Buf)

	gl.UseProgram(ogl.program)
	gl.BindVertexArray(ogl.vao)

	i := 0
	ui32 := func() uint32 {
		v := cb.Buf[i]
		i++
		return v
	}
	i32 := func() int32 {
		return int32(ui32())
	}
	float := func() float32 {
		return gomath.Float32frombits(ui32())
	}

	for i < len(cb.Buf) {
		cmd := cb.Buf[i]
		i++
		switch cmd {
		case RendererLoadProjectionMatrix:
			ptr := (*float32)(unsafe.Pointer(&cb.Buf[i]))
			gl.UniformMatrix4fv(ogl.projectionLoc, 1, false, ptr)
			i += 16

		case RendererLoadModelViewMatrix:
			ptr := (*float32)(unsafe.Pointer(&cb.Buf[i]))
			gl.UniformMatrix4fv(ogl.modelViewLoc, 1, false, ptr)
			i += 16

		case RendererClearRGBA:
			r := float()
			g := float()
			b := float()
			a := float()
			gl.ClearColor(r, g, b, a)
			gl.Clear(gl.COLOR_BUFFER_BIT)

		case RendererScissor:
			x := i32()
			y := i32()
			w := i32()
			h := i32()
			gl.Enable(gl.SCISSOR_TEST)
			gl.Scissor(x, y, w, h)

		case RendererViewport:
			x := i32()
			y := i32()
			w := i32()
			h := i32()
			gl.Viewport(x, y, w, h)

		case RendererBlend:
			gl.Enable(gl.BLEND)
			gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

		case RendererDisableBlend:
			gl.Disable(gl.BLEND)

		case RendererSetRGBA:
			r := float()
			g := float()
			b := float()
			a := float()
			gl.Uniform4f(ogl.tintLoc, r, g, b, a)

		case RendererFloatBuffer, RendererIntBuffer:
			// Nothing to do for the moment but skip ahead
			i += int(ui32())

		case RendererEnableTexture:
			gl.ActiveTexture(gl.TEXTURE0)
			gl.BindTexture(gl.TEXTURE_2D, ui32())

		case RendererDisableTexture:
			gl.BindTexture(gl.TEXTURE_2D, 0)

		case RendererGlyphIndexArray:
			offset := ui32()
			count := i32()
			if int(count) > ogl.maxInstances {
				ogl.lg.Errorf("%d instances exceeds buffer capacity %d", count, ogl.maxInstances)
				count = int32(ogl.maxInstances)
			}
			ptr := uintptr(unsafe.Pointer(&cb.Buf[0])) + uintptr(offset)
			gl.BindBuffer(gl.ARRAY_BUFFER, ogl.glyphIndexVBO)
			gl.BufferSubData(gl.ARRAY_BUFFER, 0, 4*int(count), unsafe.Pointer(ptr))

		case RendererOffsetArray:
			offset := ui32()
			count := i32()
			if int(count) > ogl.maxInstances {
				ogl.lg.Errorf("%d instances exceeds buffer capacity %d", count, ogl.maxInstances)
				count = int32(ogl.maxInstances)
			}
			ptr := uintptr(unsafe.Pointer(&cb.Buf[0])) + uintptr(offset)
			gl.BindBuffer(gl.ARRAY_BUFFER, ogl.offsetVBO)
			gl.BufferSubData(gl.ARRAY_BUFFER, 0, 8*int(count), unsafe.Pointer(ptr))

		case RendererDrawInstancedQuads:
			count := i32()
			gl.DrawArraysInstanced(gl.TRIANGLE_STRIP, 0, 4, count)

			stats.nDrawCalls++
			stats.nInstances += int(count)

		case RendererResetState:
			gl.Disable(gl.SCISSOR_TEST)
			gl.Disable(gl.BLEND)
			gl.BindTexture(gl.TEXTURE_2D, 0)

		default:
			ogl.lg.Error("unhandled command")
		}
	}

	gl.BindVertexArray(0)

	return stats
}

///////////////////////////////////////////////////////////////////////////
// Shader compilation

func newProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(infoLog))
		return 0, fmt.Errorf("failed to link program: %v", infoLog)
	}

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(infoLog))
		return 0, fmt.Errorf("failed to compile %v: %v", source, infoLog)
	}

	return shader, nil
}

func oglCheck() error {
	if err := gl.GetError(); err != gl.NO_ERROR {
		return fmt.Errorf("OpenGL error %#x", err)
	}
	return nil
}
