package core

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Uniforms mirrors the fire uniform block both backends consume.
type Uniforms struct {
	WorldToLocal mgl32.Mat4
	Tint         mgl32.Vec3
	Time         float32
	NoiseScale   mgl32.Vec4
	Magnitude    float32
	Lacunarity   float32
	Gain         float32
	Seed         float32
	ObjectScale  mgl32.Vec3
}

// UniformBlockSize is the packed byte size of the fire uniform block.
const UniformBlockSize = 128

// Byte offsets of the packed block. The layout satisfies WGSL uniform
// address rules (vec3 slots padded to 16 bytes).
const (
	OffsetWorldToLocal = 0
	OffsetTint         = 64
	OffsetTime         = 76
	OffsetNoiseScale   = 80
	OffsetMagnitude    = 96
	OffsetLacunarity   = 100
	OffsetGain         = 104
	OffsetSeed         = 108
	OffsetObjectScale  = 112
)

// UniformsFrom snapshots the current parameter state.
func UniformsFrom(p *Params) Uniforms {
	return Uniforms{
		WorldToLocal: p.worldToLocal,
		Tint:         p.tint,
		Time:         p.time,
		NoiseScale:   p.noiseScale,
		Magnitude:    p.magnitude,
		Lacunarity:   p.lacunarity,
		Gain:         p.gain,
		Seed:         p.seed,
		ObjectScale:  p.objectScale,
	}
}

// Pack writes the block at the offsets above, little endian, column-major
// matrix first.
func (u Uniforms) Pack() []byte {
	out := make([]byte, UniformBlockSize)
	o := OffsetWorldToLocal
	for _, f := range u.WorldToLocal {
		putF32(out, o, f)
		o += 4
	}
	putF32(out, OffsetTint, u.Tint.X())
	putF32(out, OffsetTint+4, u.Tint.Y())
	putF32(out, OffsetTint+8, u.Tint.Z())
	putF32(out, OffsetTime, u.Time)
	putF32(out, OffsetNoiseScale, u.NoiseScale.X())
	putF32(out, OffsetNoiseScale+4, u.NoiseScale.Y())
	putF32(out, OffsetNoiseScale+8, u.NoiseScale.Z())
	putF32(out, OffsetNoiseScale+12, u.NoiseScale.W())
	putF32(out, OffsetMagnitude, u.Magnitude)
	putF32(out, OffsetLacunarity, u.Lacunarity)
	putF32(out, OffsetGain, u.Gain)
	putF32(out, OffsetSeed, u.Seed)
	putF32(out, OffsetObjectScale, u.ObjectScale.X())
	putF32(out, OffsetObjectScale+4, u.ObjectScale.Y())
	putF32(out, OffsetObjectScale+8, u.ObjectScale.Z())
	return out
}

func putF32(b []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v))
}
