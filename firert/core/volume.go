package core

import (
	"fmt"
)

// Volume is one renderable fire: parameters, the shader backend that turns
// them into a program, and the transform provider the volume follows.
type Volume struct {
	params   *Params
	backend  VolumeShaderBackend
	provider TransformProvider
	program  *ProgramSource
}

// NewVolume builds the initial program eagerly so hosts can create their
// pipeline before the first frame.
func NewVolume(backend VolumeShaderBackend, provider TransformProvider, tex *Texture, opts ...Option) (*Volume, error) {
	v := &Volume{
		params:   NewParams(tex, opts...),
		backend:  backend,
		provider: provider,
	}
	program, err := backend.Build(v.params)
	if err != nil {
		return nil, fmt.Errorf("build %s fire program: %w", backend.Name(), err)
	}
	v.program = program
	return v, nil
}

func (v *Volume) Params() *Params                 { return v.params }
func (v *Volume) Backend() VolumeShaderBackend    { return v.backend }
func (v *Volume) Program() *ProgramSource         { return v.program }
func (v *Volume) Provider() TransformProvider     { return v.provider }
func (v *Volume) SetProvider(p TransformProvider) { v.provider = p }

// Update advances the volume by one frame. A time value, when given, becomes
// the new animation time; either way the world transform is re-read so the
// marched rays see the node's current placement even when only the node moved.
func (v *Volume) Update(now ...float32) {
	if len(now) > 0 {
		v.params.SetTime(now[0])
	}
	if v.provider == nil {
		return
	}
	world := v.provider.WorldMatrix()
	v.params.worldToLocal = world.Inv()
	v.params.objectScale = v.provider.WorldScale()
}

// Uniforms snapshots the uniform state for upload.
func (v *Volume) Uniforms() Uniforms {
	return UniformsFrom(v.params)
}

// Reconfigure rebuilds the program with new loop bounds. Iterations and
// octaves are compile-time constants in both backends, so this is the only
// way to change them. On build failure the previous program and bounds stay.
func (v *Volume) Reconfigure(iterations, octaves int) error {
	prevIterations, prevOctaves := v.params.iterations, v.params.octaves
	v.params.iterations = iterations
	v.params.octaves = octaves
	program, err := v.backend.Build(v.params)
	if err != nil {
		v.params.iterations, v.params.octaves = prevIterations, prevOctaves
		return fmt.Errorf("rebuild %s fire program: %w", v.backend.Name(), err)
	}
	v.program = program
	return nil
}
