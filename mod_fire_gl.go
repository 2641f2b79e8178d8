package pyro

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/pyro/firert/core"
	"github.com/gekko3d/pyro/firert/graph"
)

// FireGLModule renders fire volumes through OpenGL 4.1 core. It expects
// volumes built on a GLSL-emitting backend; the mask texture and the baked
// constants are captured when the program links, so texture or bound changes
// take effect after the volume rebuilds its program.
type FireGLModule struct {
	WindowWidth  int
	WindowHeight int
	WindowTitle  string
}

type glFireLocations struct {
	model       int32
	viewProj    int32
	invModel    int32
	cameraPos   int32
	tint        int32
	time        int32
	magnitude   int32
	lacunarity  int32
	gain        int32
	objectScale int32
	fireTex     int32
}

type glFireDraw struct {
	program   uint32
	locations glFireLocations
	texture   uint32

	source   *core.ProgramSource
	modelMx  mgl32.Mat4
	uniforms core.Uniforms
}

type glRenderState struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32

	draws map[EntityId]*glFireDraw

	viewProj   mgl32.Mat4
	cameraPos  mgl32.Vec3
	clearColor [3]float32
}

func (mod FireGLModule) Install(app *App, cmd *Commands) {
	ensureSingleRenderer(app, string(RendererGL))
	ensureWindowResource(app, mod.WindowWidth, mod.WindowHeight, mod.WindowTitle, WindowAPIOpenGL)

	if err := gl.Init(); err != nil {
		panic(fmt.Sprintf("gl.Init error: %v", err))
	}
	rState := createGLRenderState()

	app.UseSystem(
		System(updateGLCamera).
			InStage(PreRender),
	)
	app.UseSystem(
		System(syncGLFireDraws).
			InStage(PreRender),
	)
	app.UseSystem(
		System(glFireRendering).
			InStage(Render),
	)
	cmd.AddResources(rState)
}

func createGLRenderState() *glRenderState {
	cubeVertices := []float32{
		-0.5, -0.5, -0.5,
		0.5, -0.5, -0.5,
		0.5, 0.5, -0.5,
		-0.5, 0.5, -0.5,
		-0.5, -0.5, 0.5,
		0.5, -0.5, 0.5,
		0.5, 0.5, 0.5,
		-0.5, 0.5, 0.5,
	}
	// CCW seen from outside, back faces culled
	cubeIndices := []uint16{
		4, 5, 6, 4, 6, 7,
		1, 0, 3, 1, 3, 2,
		5, 1, 2, 5, 2, 6,
		0, 4, 7, 0, 7, 3,
		7, 6, 2, 7, 2, 3,
		0, 1, 5, 0, 5, 4,
	}

	rs := &glRenderState{
		draws:      map[EntityId]*glFireDraw{},
		clearColor: [3]float32{0.01, 0.01, 0.02},
	}

	gl.GenVertexArrays(1, &rs.vao)
	gl.BindVertexArray(rs.vao)

	gl.GenBuffers(1, &rs.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, rs.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(cubeVertices)*4, gl.Ptr(cubeVertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &rs.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, rs.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(cubeIndices)*2, gl.Ptr(cubeIndices), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, gl.PtrOffset(0))

	gl.BindVertexArray(0)
	rs.indexCount = int32(len(cubeIndices))
	return rs
}

func linkFireProgram(source *core.ProgramSource) uint32 {
	if source.Language != core.LanguageGLSL {
		panic(fmt.Sprintf("fire program language is %s, the GL renderer needs glsl", source.Language))
	}
	vertexShader, err := compileShader(gl.VERTEX_SHADER, source.VertexSrc)
	if err != nil {
		panic(err)
	}
	fragmentShader, err := compileShader(gl.FRAGMENT_SHADER, source.FragmentSrc)
	if err != nil {
		panic(err)
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
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		panic(fmt.Errorf("link error: %s", log))
	}

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)
	return program
}

func compileShader(shaderType uint32, source string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("compile error: %s", log)
	}
	return shader, nil
}

func lookupFireLocations(program uint32) glFireLocations {
	loc := func(name string) int32 {
		return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	}
	return glFireLocations{
		model:       loc(graph.UniformModel),
		viewProj:    loc(graph.UniformViewProj),
		invModel:    loc(graph.UniformInvModel),
		cameraPos:   loc(graph.UniformCameraPos),
		tint:        loc(graph.UniformTint),
		time:        loc(graph.UniformTime),
		magnitude:   loc(graph.UniformMagnitude),
		lacunarity:  loc(graph.UniformLacunarity),
		gain:        loc(graph.UniformGain),
		objectScale: loc(graph.UniformObjectScale),
		fireTex:     loc(graph.UniformFireTex),
	}
}

// createGLTexture uploads the mask, or a single transparent texel when the
// volume has none, so a maskless fire renders as nothing instead of crashing.
func createGLTexture(tex *core.Texture) uint32 {
	var handle uint32
	gl.GenTextures(1, &handle)
	gl.BindTexture(gl.TEXTURE_2D, handle)

	img := fireMaskImage(tex)
	filter := int32(gl.LINEAR)
	wrapS, wrapT := core.WrapClampToEdge, core.WrapClampToEdge
	if tex != nil {
		if tex.Filter == core.FilterNearest {
			filter = gl.NEAREST
		}
		wrapS, wrapT = tex.WrapS, tex.WrapT
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glWrapMode(wrapS))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glWrapMode(wrapT))

	b := img.Bounds()
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return handle
}

func glWrapMode(mode core.WrapMode) int32 {
	if mode == core.WrapRepeat {
		return gl.REPEAT
	}
	return gl.CLAMP_TO_EDGE
}

func updateGLCamera(ws *WindowState, rs *glRenderState, cmd *Commands) {
	aspect := float32(ws.WindowWidth) / float32(ws.WindowHeight)
	MakeQuery1[CameraComponent](cmd).Map(
		func(entityId EntityId, camera *CameraComponent) bool {
			rs.viewProj = buildCameraMatrix(camera, aspect)
			rs.cameraPos = camera.Position
			// first camera wins
			return false
		})
	MakeQuery1[LightComponent](cmd).Map(
		func(entityId EntityId, light *LightComponent) bool {
			if light.Type != LightTypeAmbient {
				return true
			}
			rs.clearColor = [3]float32{
				light.Color[0] * light.Intensity,
				light.Color[1] * light.Intensity,
				light.Color[2] * light.Intensity,
			}
			return false
		})
}

// syncGLFireDraws links a program per fire entity. The program, its uniform
// locations and the mask texture are all replaced together whenever the
// volume reports a new build.
func syncGLFireDraws(rs *glRenderState, cmd *Commands) {
	seen := make(map[EntityId]bool, len(rs.draws))

	MakeQuery2[TransformComponent, FireComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, fire *FireComponent) bool {
		if fire.Volume == nil {
			return true
		}
		seen[eid] = true

		draw, ok := rs.draws[eid]
		if !ok {
			draw = &glFireDraw{}
			rs.draws[eid] = draw
		}

		source := fire.Volume.Program()
		if draw.source != source {
			if draw.program != 0 {
				gl.DeleteProgram(draw.program)
			}
			if draw.texture != 0 {
				gl.DeleteTextures(1, &draw.texture)
			}
			draw.program = linkFireProgram(source)
			draw.locations = lookupFireLocations(draw.program)
			draw.texture = createGLTexture(fire.Volume.Params().Texture())
			draw.source = source
		}

		draw.modelMx = buildModelMatrix(tr)
		draw.uniforms = fire.Volume.Uniforms()
		return true
	})

	for eid, draw := range rs.draws {
		if !seen[eid] {
			gl.DeleteProgram(draw.program)
			gl.DeleteTextures(1, &draw.texture)
			delete(rs.draws, eid)
		}
	}
}

// renders single frame
func glFireRendering(ws *WindowState, rs *glRenderState, cmd *Commands) {
	gl.Viewport(0, 0, int32(ws.WindowWidth), int32(ws.WindowHeight))
	gl.ClearColor(rs.clearColor[0], rs.clearColor[1], rs.clearColor[2], 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	// Painter's order: farthest fire first, alpha blending is order dependent
	order := make([]EntityId, 0, len(rs.draws))
	for eid := range rs.draws {
		order = append(order, eid)
	}
	sort.Slice(order, func(i, j int) bool {
		di := glDrawPos(rs.draws[order[i]]).Sub(rs.cameraPos).LenSqr()
		dj := glDrawPos(rs.draws[order[j]]).Sub(rs.cameraPos).LenSqr()
		return di > dj
	})

	gl.BindVertexArray(rs.vao)
	for _, eid := range order {
		draw := rs.draws[eid]

		gl.UseProgram(draw.program)
		gl.UniformMatrix4fv(draw.locations.model, 1, false, &draw.modelMx[0])
		gl.UniformMatrix4fv(draw.locations.viewProj, 1, false, &rs.viewProj[0])

		u := draw.uniforms
		invModel := u.WorldToLocal
		gl.UniformMatrix4fv(draw.locations.invModel, 1, false, &invModel[0])
		gl.Uniform3f(draw.locations.cameraPos, rs.cameraPos.X(), rs.cameraPos.Y(), rs.cameraPos.Z())
		gl.Uniform3f(draw.locations.tint, u.Tint.X(), u.Tint.Y(), u.Tint.Z())
		gl.Uniform1f(draw.locations.time, u.Time)
		gl.Uniform1f(draw.locations.magnitude, u.Magnitude)
		gl.Uniform1f(draw.locations.lacunarity, u.Lacunarity)
		gl.Uniform1f(draw.locations.gain, u.Gain)
		gl.Uniform3f(draw.locations.objectScale, u.ObjectScale.X(), u.ObjectScale.Y(), u.ObjectScale.Z())

		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, draw.texture)
		gl.Uniform1i(draw.locations.fireTex, 0)

		gl.DrawElements(gl.TRIANGLES, rs.indexCount, gl.UNSIGNED_SHORT, gl.PtrOffset(0))
	}
	gl.BindVertexArray(0)

	ws.windowGlfw.SwapBuffers()
}

func glDrawPos(draw *glFireDraw) mgl32.Vec3 {
	return mgl32.Vec3{draw.modelMx[12], draw.modelMx[13], draw.modelMx[14]}
}
