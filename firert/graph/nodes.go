package graph

import (
	"github.com/go-gl/mathgl/mgl32"
)

type gradientNoiseNode struct{}

// GradientNoise returns the stock lattice gradient noise node,
// float fire_noise(vec3).
func GradientNoise() Node {
	return gradientNoiseNode{}
}

func (gradientNoiseNode) AppendName(dst []byte) []byte {
	return append(dst, "fire_noise"...)
}

func (gradientNoiseNode) AppendBody(dst []byte) []byte {
	return append(dst, `vec3 fire_noise_hash(vec3 p) {
    p = vec3(dot(p, vec3(127.1, 311.7, 74.7)),
             dot(p, vec3(269.5, 183.3, 246.1)),
             dot(p, vec3(113.5, 271.9, 124.6)));
    return -1.0 + 2.0 * fract(sin(p) * 43758.5453123);
}

float fire_noise(vec3 p) {
    vec3 i = floor(p);
    vec3 f = fract(p);
    vec3 u = f * f * f * (f * (f * 6.0 - 15.0) + 10.0);
    return mix(mix(mix(dot(fire_noise_hash(i + vec3(0.0, 0.0, 0.0)), f - vec3(0.0, 0.0, 0.0)),
                       dot(fire_noise_hash(i + vec3(1.0, 0.0, 0.0)), f - vec3(1.0, 0.0, 0.0)), u.x),
                   mix(dot(fire_noise_hash(i + vec3(0.0, 1.0, 0.0)), f - vec3(0.0, 1.0, 0.0)),
                       dot(fire_noise_hash(i + vec3(1.0, 1.0, 0.0)), f - vec3(1.0, 1.0, 0.0)), u.x), u.y),
               mix(mix(dot(fire_noise_hash(i + vec3(0.0, 0.0, 1.0)), f - vec3(0.0, 0.0, 1.0)),
                       dot(fire_noise_hash(i + vec3(1.0, 0.0, 1.0)), f - vec3(1.0, 0.0, 1.0)), u.x),
                   mix(dot(fire_noise_hash(i + vec3(0.0, 1.0, 1.0)), f - vec3(0.0, 1.0, 1.0)),
                       dot(fire_noise_hash(i + vec3(1.0, 1.0, 1.0)), f - vec3(1.0, 1.0, 1.0)), u.x), u.y), u.z);
}
`...)
}

func (gradientNoiseNode) Inputs() []Node { return nil }

type turbulenceNode struct {
	kernel  Node
	octaves int
}

// TurbulenceOf sums octaves of rectified kernel noise. The octave count is
// baked into the loop bound and the function name; lacunarity and gain stay
// live through uniforms.
func TurbulenceOf(kernel Node, octaves int) Node {
	return turbulenceNode{kernel: kernel, octaves: octaves}
}

func (n turbulenceNode) AppendName(dst []byte) []byte {
	dst = append(dst, "fire_turbulence"...)
	return appendInt(dst, n.octaves)
}

func (n turbulenceNode) AppendBody(dst []byte) []byte {
	dst = append(dst, "float "...)
	dst = n.AppendName(dst)
	dst = append(dst, `(vec3 p) {
    float sum = 0.0;
    float freq = 1.0;
    float amp = 1.0;
    for (int i = 0; i < `...)
	dst = appendInt(dst, n.octaves)
	dst = append(dst, `; i++) {
        sum += abs(`...)
	dst = n.kernel.AppendName(dst)
	dst = append(dst, `(p * freq)) * amp;
        freq *= `...)
	dst = append(dst, UniformLacunarity...)
	dst = append(dst, `;
        amp *= `...)
	dst = append(dst, UniformGain...)
	dst = append(dst, `;
    }
    return sum;
}
`...)
	return dst
}

func (n turbulenceNode) Inputs() []Node { return []Node{n.kernel} }

type localizeNode struct{}

// Localize maps a world-space point into the sampling frame of the fire
// volume: inverse model transform, then the half-up, double-xz remap.
func Localize() Node {
	return localizeNode{}
}

func (localizeNode) AppendName(dst []byte) []byte {
	return append(dst, "fire_localize"...)
}

func (localizeNode) AppendBody(dst []byte) []byte {
	dst = append(dst, `vec3 fire_localize(vec3 p) {
    vec3 lp = (`...)
	dst = append(dst, UniformInvModel...)
	dst = append(dst, ` * vec4(p, 1.0)).xyz;
    lp.y += 0.5;
    lp.xz *= 2.0;
    return lp;
}
`...)
	return dst
}

func (localizeNode) Inputs() []Node { return nil }

type maskSamplerNode struct {
	turbulence Node
	noiseScale mgl32.Vec4
	seed       float32
}

// MaskSampler evaluates the fire mask at one local point. Noise scale and
// seed are baked as constants; time and magnitude stay live.
func MaskSampler(turbulence Node, noiseScale mgl32.Vec4, seed float32) Node {
	return maskSamplerNode{turbulence: turbulence, noiseScale: noiseScale, seed: seed}
}

func (maskSamplerNode) AppendName(dst []byte) []byte {
	return append(dst, "fire_sample"...)
}

func (n maskSamplerNode) AppendBody(dst []byte) []byte {
	dst = append(dst, `vec4 fire_sample(vec3 p) {
    const vec4 scale = vec4(`...)
	dst = appendFloat(dst, n.noiseScale.X())
	dst = append(dst, ", "...)
	dst = appendFloat(dst, n.noiseScale.Y())
	dst = append(dst, ", "...)
	dst = appendFloat(dst, n.noiseScale.Z())
	dst = append(dst, ", "...)
	dst = appendFloat(dst, n.noiseScale.W())
	dst = append(dst, `);
    const float seed = `...)
	dst = appendFloat(dst, n.seed)
	dst = append(dst, `;
    vec2 st = vec2(sqrt(dot(p.xz, p.xz)), p.y);
    if (st.x <= 0.0 || st.x >= 1.0 || st.y <= 0.0 || st.y >= 1.0) {
        return vec4(0.0);
    }
    vec3 q = p;
    q.y -= (seed + `...)
	dst = append(dst, UniformTime...)
	dst = append(dst, `) * scale.w;
    q *= scale.xyz;
    st.y += sqrt(st.y) * `...)
	dst = append(dst, UniformMagnitude...)
	dst = append(dst, ` * `...)
	dst = n.turbulence.AppendName(dst)
	dst = append(dst, `(q);
    if (st.y <= 0.0 || st.y >= 1.0) {
        return vec4(0.0);
    }
    return texture(`...)
	dst = append(dst, UniformFireTex...)
	dst = append(dst, `, st);
}
`...)
	return dst
}

func (n maskSamplerNode) Inputs() []Node { return []Node{n.turbulence} }

type marchNode struct {
	sampler    Node
	localize   Node
	iterations int
}

// March integrates the sampler along a ray with a fixed step count baked
// into the loop bound and the function name. The emitted function has
// signature vec4 f(vec3 origin, vec3 dir).
func March(sampler, localize Node, iterations int) Node {
	return marchNode{sampler: sampler, localize: localize, iterations: iterations}
}

func (n marchNode) AppendName(dst []byte) []byte {
	dst = append(dst, "fire_march"...)
	return appendInt(dst, n.iterations)
}

func (n marchNode) AppendBody(dst []byte) []byte {
	dst = append(dst, "vec4 "...)
	dst = n.AppendName(dst)
	dst = append(dst, `(vec3 origin, vec3 dir) {
    float stepLen = 0.0288 * length(`...)
	dst = append(dst, UniformObjectScale...)
	dst = append(dst, `);
    vec3 pos = origin;
    vec4 col = vec4(0.0);
    for (int i = 0; i < `...)
	dst = appendInt(dst, n.iterations)
	dst = append(dst, `; i++) {
        pos += dir * stepLen;
        col += `...)
	dst = n.sampler.AppendName(dst)
	dst = append(dst, `(`...)
	dst = n.localize.AppendName(dst)
	dst = append(dst, `(pos));
    }
    col.a = col.r;
    col.rgb *= `...)
	dst = append(dst, UniformTint...)
	dst = append(dst, `;
    return col;
}
`...)
	return dst
}

func (n marchNode) Inputs() []Node { return []Node{n.sampler, n.localize} }
