// Package shader emits the single-module WGSL fire program. The ray march
// and octave loop bounds bake into module-scope constants; every other
// parameter stays live in the uniform block, so retuning the flame never
// recompiles.
package shader

import (
	"fmt"

	"github.com/gekko3d/pyro/firert/core"
)

// Backend is the WGSL program builder.
type Backend struct{}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Name() string {
	return "wgsl"
}

func (b *Backend) Capabilities() core.Capabilities {
	return core.Capabilities{
		LiveNoiseScale: true,
		LiveSeed:       true,
		LiveTexture:    true,
	}
}

func (b *Backend) Build(p *core.Params) (*core.ProgramSource, error) {
	if p.Iterations() <= 0 {
		return nil, fmt.Errorf("iterations must be positive, got %d", p.Iterations())
	}
	if p.Octaves() <= 0 {
		return nil, fmt.Errorf("octaves must be positive, got %d", p.Octaves())
	}
	header := fmt.Sprintf("const ITERATIONS: i32 = %d;\nconst OCTAVES: i32 = %d;\n",
		p.Iterations(), p.Octaves())
	return &core.ProgramSource{
		Language:   core.LanguageWGSL,
		Module:     header + fireModule,
		Iterations: p.Iterations(),
		Octaves:    p.Octaves(),
	}, nil
}

const fireModule = `
struct Camera {
    view_proj: mat4x4<f32>,
    position: vec4<f32>,
}

struct Model {
    model: mat4x4<f32>,
}

struct Fire {
    world_to_local: mat4x4<f32>,
    tint: vec3<f32>,
    time: f32,
    noise_scale: vec4<f32>,
    magnitude: f32,
    lacunarity: f32,
    gain: f32,
    seed: f32,
    object_scale: vec3<f32>,
    _pad0: f32,
}

@group(0) @binding(0) var<uniform> camera: Camera;
@group(0) @binding(1) var<uniform> model: Model;
@group(0) @binding(2) var<uniform> fire: Fire;
@group(0) @binding(3) var fire_tex: texture_2d<f32>;
@group(0) @binding(4) var fire_samp: sampler;

struct VsIn {
    @location(0) position: vec4<f32>,
}

struct VsOut {
    @builtin(position) clip_pos: vec4<f32>,
    @location(0) world_pos: vec3<f32>,
}

@vertex
fn vs_main(in: VsIn) -> VsOut {
    let world = model.model * vec4<f32>(in.position.xyz, 1.0);
    var out: VsOut;
    out.clip_pos = camera.view_proj * world;
    out.world_pos = world.xyz;
    return out;
}

fn mod289_3(x: vec3<f32>) -> vec3<f32> {
    return x - floor(x * (1.0 / 289.0)) * 289.0;
}

fn mod289_4(x: vec4<f32>) -> vec4<f32> {
    return x - floor(x * (1.0 / 289.0)) * 289.0;
}

fn permute(x: vec4<f32>) -> vec4<f32> {
    return mod289_4(((x * 34.0) + 1.0) * x);
}

fn taylor_inv_sqrt(r: vec4<f32>) -> vec4<f32> {
    return 1.79284291400159 - 0.85373472095314 * r;
}

fn snoise(v: vec3<f32>) -> f32 {
    let c = vec2<f32>(1.0 / 6.0, 1.0 / 3.0);
    let d = vec4<f32>(0.0, 0.5, 1.0, 2.0);

    var i = floor(v + dot(v, c.yyy));
    let x0 = v - i + dot(i, c.xxx);

    let g = step(x0.yzx, x0.xyz);
    let l = 1.0 - g;
    let i1 = min(g.xyz, l.zxy);
    let i2 = max(g.xyz, l.zxy);

    let x1 = x0 - i1 + c.xxx;
    let x2 = x0 - i2 + c.yyy;
    let x3 = x0 - d.yyy;

    i = mod289_3(i);
    let p = permute(permute(permute(
            i.z + vec4<f32>(0.0, i1.z, i2.z, 1.0))
            + i.y + vec4<f32>(0.0, i1.y, i2.y, 1.0))
            + i.x + vec4<f32>(0.0, i1.x, i2.x, 1.0));

    let ns = (1.0 / 7.0) * d.wyz - d.xzx;

    let j = p - 49.0 * floor(p * ns.z * ns.z);

    let x_ = floor(j * ns.z);
    let y_ = floor(j - 7.0 * x_);

    let x = x_ * ns.x + ns.yyyy;
    let y = y_ * ns.x + ns.yyyy;
    let h = 1.0 - abs(x) - abs(y);

    let b0 = vec4<f32>(x.xy, y.xy);
    let b1 = vec4<f32>(x.zw, y.zw);

    let s0 = floor(b0) * 2.0 + 1.0;
    let s1 = floor(b1) * 2.0 + 1.0;
    let sh = -step(h, vec4<f32>(0.0));

    let a0 = b0.xzyw + s0.xzyw * sh.xxyy;
    let a1 = b1.xzyw + s1.xzyw * sh.zzww;

    var p0 = vec3<f32>(a0.xy, h.x);
    var p1 = vec3<f32>(a0.zw, h.y);
    var p2 = vec3<f32>(a1.xy, h.z);
    var p3 = vec3<f32>(a1.zw, h.w);

    let norm = taylor_inv_sqrt(vec4<f32>(dot(p0, p0), dot(p1, p1), dot(p2, p2), dot(p3, p3)));
    p0 = p0 * norm.x;
    p1 = p1 * norm.y;
    p2 = p2 * norm.z;
    p3 = p3 * norm.w;

    var m = max(0.6 - vec4<f32>(dot(x0, x0), dot(x1, x1), dot(x2, x2), dot(x3, x3)), vec4<f32>(0.0));
    m = m * m;
    return 42.0 * dot(m * m, vec4<f32>(dot(p0, x0), dot(p1, x1), dot(p2, x2), dot(p3, x3)));
}

fn turbulence(p: vec3<f32>) -> f32 {
    var sum = 0.0;
    var freq = 1.0;
    var amp = 1.0;
    for (var i = 0; i < OCTAVES; i = i + 1) {
        sum = sum + abs(snoise(p * freq)) * amp;
        freq = freq * fire.lacunarity;
        amp = amp * fire.gain;
    }
    return sum;
}

fn sample_fire(p: vec3<f32>, scale: vec4<f32>) -> vec4<f32> {
    var st = vec2<f32>(sqrt(dot(p.xz, p.xz)), p.y);
    if (st.x <= 0.0 || st.x >= 1.0 || st.y <= 0.0 || st.y >= 1.0) {
        return vec4<f32>(0.0);
    }
    var q = p;
    q.y = q.y - (fire.seed + fire.time) * scale.w;
    q = q * scale.xyz;
    st.y = st.y + sqrt(st.y) * fire.magnitude * turbulence(q);
    if (st.y <= 0.0 || st.y >= 1.0) {
        return vec4<f32>(0.0);
    }
    return textureSampleLevel(fire_tex, fire_samp, st, 0.0);
}

@fragment
fn fs_main(in: VsOut) -> @location(0) vec4<f32> {
    var pos = in.world_pos;
    let dir = normalize(pos - camera.position.xyz);
    let step_len = 0.0288 * length(fire.object_scale);
    var col = vec4<f32>(0.0);
    for (var i = 0; i < ITERATIONS; i = i + 1) {
        pos = pos + dir * step_len;
        var lp = (fire.world_to_local * vec4<f32>(pos, 1.0)).xyz;
        lp.y = lp.y + 0.5;
        lp = vec3<f32>(lp.x * 2.0, lp.y, lp.z * 2.0);
        col = col + sample_fire(lp, fire.noise_scale);
    }
    col.a = col.r;
    return vec4<f32>(col.rgb * fire.tint, col.a);
}
`
