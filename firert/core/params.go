package core

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// Defaults of a freshly constructed fire volume.
const (
	DefaultTintHex    = 0xeeeeee
	DefaultMagnitude  = 1.3
	DefaultLacunarity = 2.0
	DefaultGain       = 0.5
	DefaultIterations = 20
	DefaultOctaves    = 3

	// seedScale spreads per-instance seeds so stacked volumes never share a
	// scroll phase.
	seedScale = 19.19
)

func defaultNoiseScale() mgl32.Vec4 {
	return mgl32.Vec4{1, 2, 1, 0.3}
}

// Params is the full uniform state of one fire volume. NoiseScale xyz scales
// the turbulence domain, w is the upward scroll speed; Magnitude is the
// strength of the turbulent displacement. Setters are plain pass-throughs,
// out-of-range values distort the flame rather than fail.
type Params struct {
	tint       mgl32.Vec3
	magnitude  float32
	lacunarity float32
	gain       float32
	noiseScale mgl32.Vec4
	seed       float32
	time       float32

	iterations int
	octaves    int

	texture *Texture

	worldToLocal mgl32.Mat4
	objectScale  mgl32.Vec3
}

// Option configures a Params at construction time.
type Option func(*Params)

func WithTint(c mgl32.Vec3) Option {
	return func(p *Params) { p.tint = c }
}

func WithHexTint(hex uint32) Option {
	return func(p *Params) { p.tint = HexColor(hex) }
}

func WithMagnitude(v float32) Option {
	return func(p *Params) { p.magnitude = v }
}

func WithLacunarity(v float32) Option {
	return func(p *Params) { p.lacunarity = v }
}

func WithGain(v float32) Option {
	return func(p *Params) { p.gain = v }
}

func WithNoiseScale(v mgl32.Vec4) Option {
	return func(p *Params) { p.noiseScale = v }
}

func WithIterations(n int) Option {
	return func(p *Params) { p.iterations = n }
}

func WithOctaves(n int) Option {
	return func(p *Params) { p.octaves = n }
}

// WithSeed pins the scroll phase, mostly for reproducible output.
func WithSeed(v float32) Option {
	return func(p *Params) { p.seed = v }
}

func NewParams(tex *Texture, opts ...Option) *Params {
	p := &Params{
		tint:         HexColor(DefaultTintHex),
		magnitude:    DefaultMagnitude,
		lacunarity:   DefaultLacunarity,
		gain:         DefaultGain,
		noiseScale:   defaultNoiseScale(),
		seed:         rand.Float32() * seedScale,
		iterations:   DefaultIterations,
		octaves:      DefaultOctaves,
		worldToLocal: mgl32.Ident4(),
		objectScale:  mgl32.Vec3{1, 1, 1},
	}
	p.SetTexture(tex)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Params) Tint() mgl32.Vec3     { return p.tint }
func (p *Params) SetTint(c mgl32.Vec3) { p.tint = c }

func (p *Params) Magnitude() float32     { return p.magnitude }
func (p *Params) SetMagnitude(v float32) { p.magnitude = v }

func (p *Params) Lacunarity() float32     { return p.lacunarity }
func (p *Params) SetLacunarity(v float32) { p.lacunarity = v }

func (p *Params) Gain() float32     { return p.gain }
func (p *Params) SetGain(v float32) { p.gain = v }

func (p *Params) NoiseScale() mgl32.Vec4     { return p.noiseScale }
func (p *Params) SetNoiseScale(v mgl32.Vec4) { p.noiseScale = v }

func (p *Params) Seed() float32     { return p.seed }
func (p *Params) SetSeed(v float32) { p.seed = v }

func (p *Params) Time() float32     { return p.time }
func (p *Params) SetTime(v float32) { p.time = v }

// Iterations and Octaves are baked into built programs; change them through
// Volume.Reconfigure, which rebuilds.
func (p *Params) Iterations() int { return p.iterations }
func (p *Params) Octaves() int    { return p.octaves }

func (p *Params) Texture() *Texture { return p.texture }

// SetTexture reconfigures the incoming texture for fire sampling: linear
// filtering and clamp-to-edge on both axes. A nil texture clears the mask and
// the volume renders fully transparent.
func (p *Params) SetTexture(t *Texture) {
	if t != nil {
		t.Filter = FilterLinear
		t.WrapS = WrapClampToEdge
		t.WrapT = WrapClampToEdge
	}
	p.texture = t
}

// WorldToLocal and ObjectScale are refreshed by Volume.Update from the
// transform provider.
func (p *Params) WorldToLocal() mgl32.Mat4 { return p.worldToLocal }
func (p *Params) ObjectScale() mgl32.Vec3  { return p.objectScale }
