package pyro

import (
	"fmt"
	"image"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/pyro/firert/core"
)

// FireWgpuModule renders fire volumes through wgpu. Each fire draws a unit
// cube proxy whose fragment stage ray-marches the flame; embers draw on top
// as additively blended billboards.
type FireWgpuModule struct {
	WindowWidth  int
	WindowHeight int
	WindowTitle  string
}

type fireVertex struct {
	pos [4]float32 `pyro:"layout" location:"0" format:"float4"`
}

type emberVertex struct {
	pos   [3]float32 `pyro:"layout" location:"0" format:"float3"`
	color [4]float32 `pyro:"layout" location:"1" format:"float4"`
}

type fireCameraUniform struct {
	ViewProjMx mgl32.Mat4
	Position   mgl32.Vec4
}

type fireModelUniform struct {
	ModelMx mgl32.Mat4
}

// fireDraw holds the GPU objects for one fire entity. The pipeline is the
// compiled program the volume's backend built; it is replaced whenever the
// volume reports a new program.
type fireDraw struct {
	pipeline  *wgpu.RenderPipeline
	modelBuf  *wgpu.Buffer
	fireBuf   *wgpu.Buffer
	texView   *wgpu.TextureView
	sampler   *wgpu.Sampler
	bindGroup *wgpu.BindGroup

	program *core.ProgramSource
	texture *core.Texture
	modelMx mgl32.Mat4
}

type fireRenderState struct {
	cubeVertices []fireVertex
	cubeIndices  []uint16
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   uint32

	cameraUniform fireCameraUniform
	cameraBuffer  *wgpu.Buffer
	camRight      mgl32.Vec3
	camUp         mgl32.Vec3

	clearColor wgpu.Color

	draws map[EntityId]*fireDraw

	emberPipeline    *wgpu.RenderPipeline
	emberBindGroup   *wgpu.BindGroup
	emberVertexBuf   *wgpu.Buffer
	emberVertices    []emberVertex
	emberCapacity    int
	emberVertexCount uint32
}

func (mod FireWgpuModule) Install(app *App, cmd *Commands) {
	ensureSingleRenderer(app, string(RendererWGPU))
	ensureWindowResource(app, mod.WindowWidth, mod.WindowHeight, mod.WindowTitle, WindowAPINone)
	if GetResource[EmberState](app) == nil {
		cmd.AddResources(&EmberState{})
	}

	windowState := GetResource[WindowState](app)
	gpuState := createGpuState(windowState)
	rState := createFireRenderState(gpuState)

	app.UseSystem(
		System(updateFireCameraUniform).
			InStage(PreRender),
	)
	app.UseSystem(
		System(updateFireClearColor).
			InStage(PreRender),
	)
	app.UseSystem(
		System(syncFireDraws).
			InStage(PreRender),
	)
	app.UseSystem(
		System(fireRendering).
			InStage(Render),
	)
	cmd.AddResources(
		gpuState,
		rState,
	)
}

func createFireRenderState(gpuState *GpuState) *fireRenderState {
	cubeVertices := []fireVertex{
		{pos: [4]float32{-0.5, -0.5, -0.5, 1.0}},
		{pos: [4]float32{0.5, -0.5, -0.5, 1.0}},
		{pos: [4]float32{0.5, 0.5, -0.5, 1.0}},
		{pos: [4]float32{-0.5, 0.5, -0.5, 1.0}},
		{pos: [4]float32{-0.5, -0.5, 0.5, 1.0}},
		{pos: [4]float32{0.5, -0.5, 0.5, 1.0}},
		{pos: [4]float32{0.5, 0.5, 0.5, 1.0}},
		{pos: [4]float32{-0.5, 0.5, 0.5, 1.0}},
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
	vertexBuffer, indexBuffer := createVertexIndexBuffers("fire_cube", cubeVertices, cubeIndices, gpuState.device)

	cameraBuffer := createBuffer("fire_camera", fireCameraUniform{}, gpuState,
		wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)

	emberPipeline := createRenderPipeline("embers", emberShader, emberVertex{},
		wgpu.PrimitiveTopologyTriangleList, additiveBlendState, gpuState)
	emberBindGroup := createBindGroups(map[uint32][]wgpu.BindGroupEntry{
		0: {
			{Binding: 0, Buffer: cameraBuffer, Size: wgpu.WholeSize},
		},
	}, emberPipeline, gpuState.device)[0]

	return &fireRenderState{
		cubeVertices:   cubeVertices,
		cubeIndices:    cubeIndices,
		vertexBuffer:   vertexBuffer,
		indexBuffer:    indexBuffer,
		indexCount:     uint32(len(cubeIndices)),
		cameraBuffer:   cameraBuffer,
		camRight:       mgl32.Vec3{1, 0, 0},
		camUp:          mgl32.Vec3{0, 1, 0},
		clearColor:     wgpu.Color{R: 0.01, G: 0.01, B: 0.02, A: 1.0},
		draws:          map[EntityId]*fireDraw{},
		emberPipeline:  emberPipeline,
		emberBindGroup: emberBindGroup,
	}
}

func updateFireCameraUniform(ws *WindowState, rs *fireRenderState, cmd *Commands) {
	aspect := float32(ws.WindowWidth) / float32(ws.WindowHeight)
	MakeQuery1[CameraComponent](cmd).Map(
		func(entityId EntityId, camera *CameraComponent) bool {
			rs.cameraUniform.ViewProjMx = buildCameraMatrix(camera, aspect)
			rs.cameraUniform.Position = mgl32.Vec4{camera.Position[0], camera.Position[1], camera.Position[2], 0.0}
			view := buildCameraView(camera)
			rs.camRight = mgl32.Vec3{view[0], view[4], view[8]}
			rs.camUp = mgl32.Vec3{view[1], view[5], view[9]}
			// first camera wins
			return false
		})
}

// The ambient light tints the background, so a scene's dusk fades with its
// fires instead of clearing to a fixed color.
func updateFireClearColor(rs *fireRenderState, cmd *Commands) {
	MakeQuery1[LightComponent](cmd).Map(
		func(entityId EntityId, light *LightComponent) bool {
			if light.Type != LightTypeAmbient {
				return true
			}
			rs.clearColor = wgpu.Color{
				R: float64(light.Color[0] * light.Intensity),
				G: float64(light.Color[1] * light.Intensity),
				B: float64(light.Color[2] * light.Intensity),
				A: 1.0,
			}
			return false
		})
}

// syncFireDraws keeps one fireDraw per fire entity: builds pipelines for new
// fires, rebuilds when a volume recompiled its program, re-uploads when the
// mask texture was swapped, and releases draws whose entity is gone.
func syncFireDraws(rs *fireRenderState, gpuState *GpuState, cmd *Commands) {
	seen := make(map[EntityId]bool, len(rs.draws))

	MakeQuery2[TransformComponent, FireComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, fire *FireComponent) bool {
		if fire.Volume == nil {
			return true
		}
		seen[eid] = true

		program := fire.Volume.Program()
		tex := fire.Volume.Params().Texture()

		draw, ok := rs.draws[eid]
		if !ok {
			draw = &fireDraw{}
			draw.modelBuf = createBuffer(fmt.Sprintf("fire_model_%d", eid), fireModelUniform{}, gpuState,
				wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
			draw.fireBuf = createBuffer(fmt.Sprintf("fire_params_%d", eid), fire.Volume.Uniforms().Pack(), gpuState,
				wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
			rs.draws[eid] = draw
		}

		rebind := false
		if draw.program != program {
			if draw.pipeline != nil {
				draw.pipeline.Release()
			}
			draw.pipeline = createRenderPipeline(fmt.Sprintf("fire_%d", eid), program.Module, fireVertex{},
				wgpu.PrimitiveTopologyTriangleList, alphaBlendState, gpuState)
			draw.program = program
			rebind = true
		}
		if draw.texView == nil || draw.texture != tex {
			if draw.texView != nil {
				draw.texView.Release()
			}
			if draw.sampler != nil {
				draw.sampler.Release()
			}
			draw.texView = createTextureFromImage(fmt.Sprintf("fire_mask_%d", eid), fireMaskImage(tex), gpuState)
			draw.sampler = createSamplerForTexture(tex, gpuState)
			draw.texture = tex
			rebind = true
		}
		if rebind {
			if draw.bindGroup != nil {
				draw.bindGroup.Release()
			}
			draw.bindGroup = createBindGroups(map[uint32][]wgpu.BindGroupEntry{
				0: {
					{Binding: 0, Buffer: rs.cameraBuffer, Size: wgpu.WholeSize},
					{Binding: 1, Buffer: draw.modelBuf, Size: wgpu.WholeSize},
					{Binding: 2, Buffer: draw.fireBuf, Size: wgpu.WholeSize},
					{Binding: 3, TextureView: draw.texView},
					{Binding: 4, Sampler: draw.sampler},
				},
			}, draw.pipeline, gpuState.device)[0]
		}

		draw.modelMx = buildModelMatrix(tr)
		return true
	})

	for eid, draw := range rs.draws {
		if !seen[eid] {
			releaseFireDraw(draw)
			delete(rs.draws, eid)
		}
	}
}

// fireMaskImage resolves a volume's mask for upload. A fire without a mask
// still needs a bound texture, so it gets a single transparent texel; the
// march then accumulates zero density everywhere.
func fireMaskImage(tex *core.Texture) *image.RGBA {
	if tex != nil && tex.Image != nil {
		return tex.Image
	}
	return image.NewRGBA(image.Rect(0, 0, 1, 1))
}

func releaseFireDraw(draw *fireDraw) {
	if draw.bindGroup != nil {
		draw.bindGroup.Release()
	}
	if draw.pipeline != nil {
		draw.pipeline.Release()
	}
	if draw.texView != nil {
		draw.texView.Release()
	}
	if draw.sampler != nil {
		draw.sampler.Release()
	}
	if draw.modelBuf != nil {
		draw.modelBuf.Release()
	}
	if draw.fireBuf != nil {
		draw.fireBuf.Release()
	}
}

// packEmberVertices expands ember instances into camera-facing quads, two
// triangles each, wound CCW toward the camera.
func packEmberVertices(rs *fireRenderState, instances []EmberInstance, gpuState *GpuState) {
	needed := len(instances) * 6
	if needed > rs.emberCapacity {
		capacity := 1536
		for capacity < needed {
			capacity *= 2
		}
		if rs.emberVertexBuf != nil {
			rs.emberVertexBuf.Release()
		}
		rs.emberVertices = make([]emberVertex, capacity)
		buf, err := gpuState.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    "ember_vertices",
			Contents: wgpu.ToBytes(rs.emberVertices),
			Usage:    wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			panic(err)
		}
		rs.emberVertexBuf = buf
		rs.emberCapacity = capacity
	}

	v := 0
	for _, inst := range instances {
		half := inst.Size * 0.5
		p := mgl32.Vec3{inst.Pos[0], inst.Pos[1], inst.Pos[2]}
		r := rs.camRight.Mul(half)
		u := rs.camUp.Mul(half)

		bl := p.Sub(r).Sub(u)
		br := p.Add(r).Sub(u)
		tr := p.Add(r).Add(u)
		tl := p.Sub(r).Add(u)

		corners := [6]mgl32.Vec3{bl, br, tr, bl, tr, tl}
		for _, c := range corners {
			rs.emberVertices[v] = emberVertex{
				pos:   [3]float32{c.X(), c.Y(), c.Z()},
				color: inst.Color,
			}
			v++
		}
	}
	rs.emberVertexCount = uint32(v)
}

// renders single frame
func fireRendering(rs *fireRenderState, gpuState *GpuState, embers *EmberState, cmd *Commands) {
	instances := CollectEmberInstances(embers)
	if len(rs.draws) == 0 && len(instances) == 0 {
		return
	}

	nextTexture, err := gpuState.surface.GetCurrentTexture()
	if err != nil {
		panic(err)
	}
	view, err := nextTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}
	defer view.Release()
	encoder, err := gpuState.device.CreateCommandEncoder(nil)
	if err != nil {
		panic(err)
	}
	defer encoder.Release()

	// Update GPU buffers before the pass
	err = gpuState.queue.WriteBuffer(rs.cameraBuffer, 0, toBufferBytes(rs.cameraUniform))
	if err != nil {
		panic(err)
	}
	order := make([]EntityId, 0, len(rs.draws))
	for eid, draw := range rs.draws {
		order = append(order, eid)
		_ = gpuState.queue.WriteBuffer(draw.modelBuf, 0, toBufferBytes(fireModelUniform{ModelMx: draw.modelMx}))
	}
	MakeQuery1[FireComponent](cmd).Map(func(eid EntityId, fire *FireComponent) bool {
		if draw, ok := rs.draws[eid]; ok {
			_ = gpuState.queue.WriteBuffer(draw.fireBuf, 0, fire.Volume.Uniforms().Pack())
		}
		return true
	})

	packEmberVertices(rs, instances, gpuState)
	if rs.emberVertexCount > 0 {
		_ = gpuState.queue.WriteBuffer(rs.emberVertexBuf, 0, wgpu.ToBytes(rs.emberVertices[:rs.emberVertexCount]))
	}

	// Painter's order: farthest fire first, alpha blending is order dependent
	camPos := mgl32.Vec3{rs.cameraUniform.Position[0], rs.cameraUniform.Position[1], rs.cameraUniform.Position[2]}
	sort.Slice(order, func(i, j int) bool {
		di := fireDrawPos(rs.draws[order[i]]).Sub(camPos).LenSqr()
		dj := fireDrawPos(rs.draws[order[j]]).Sub(camPos).LenSqr()
		return di > dj
	})

	renderPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: rs.clearColor,
			},
		},
	})
	defer renderPass.Release()

	for _, eid := range order {
		draw := rs.draws[eid]
		renderPass.SetPipeline(draw.pipeline)
		renderPass.SetIndexBuffer(rs.indexBuffer, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
		renderPass.SetVertexBuffer(0, rs.vertexBuffer, 0, wgpu.WholeSize)
		renderPass.SetBindGroup(0, draw.bindGroup, nil)
		renderPass.DrawIndexed(rs.indexCount, 1, 0, 0, 0)
	}

	if rs.emberVertexCount > 0 {
		renderPass.SetPipeline(rs.emberPipeline)
		renderPass.SetVertexBuffer(0, rs.emberVertexBuf, 0, wgpu.WholeSize)
		renderPass.SetBindGroup(0, rs.emberBindGroup, nil)
		renderPass.Draw(rs.emberVertexCount, 1, 0, 0)
	}

	err = renderPass.End()
	if err != nil {
		panic(err)
	}

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		panic(err)
	}
	defer cmdBuffer.Release()

	gpuState.queue.Submit(cmdBuffer)
	gpuState.surface.Present()
}

func fireDrawPos(draw *fireDraw) mgl32.Vec3 {
	return mgl32.Vec3{draw.modelMx[12], draw.modelMx[13], draw.modelMx[14]}
}

const emberShader = `
struct Camera {
    view_proj: mat4x4<f32>,
    position: vec4<f32>,
}

@group(0) @binding(0) var<uniform> camera: Camera;

struct VsIn {
    @location(0) position: vec3<f32>,
    @location(1) color: vec4<f32>,
}

struct VsOut {
    @builtin(position) clip_pos: vec4<f32>,
    @location(0) color: vec4<f32>,
}

@vertex
fn vs_main(in: VsIn) -> VsOut {
    var out: VsOut;
    out.clip_pos = camera.view_proj * vec4<f32>(in.position, 1.0);
    out.color = in.color;
    return out;
}

@fragment
fn fs_main(in: VsOut) -> @location(0) vec4<f32> {
    return vec4<f32>(in.color.rgb * in.color.a, in.color.a);
}
`
