// Package core holds the parameter model, the CPU reference density field,
// and the backend seam shared by the fire shader generators.
package core

// ShaderLanguage tags the source text a backend emits.
type ShaderLanguage int

const (
	LanguageWGSL ShaderLanguage = iota
	LanguageGLSL
)

func (l ShaderLanguage) String() string {
	switch l {
	case LanguageWGSL:
		return "wgsl"
	case LanguageGLSL:
		return "glsl"
	default:
		return "unknown"
	}
}

// Capabilities reports which parameters a backend reads live from uniforms.
// Anything not live is baked into the program text at build time and only
// picks up changes on the next Build.
type Capabilities struct {
	LiveNoiseScale bool
	LiveSeed       bool
	LiveTexture    bool
}

// ProgramSource is a built fire program ready for a GPU host to compile.
// Iterations and Octaves record the loop bounds baked into the text.
type ProgramSource struct {
	Language    ShaderLanguage
	Module      string // whole-module text for single-source languages (WGSL)
	VertexSrc   string // separate stages for GLSL
	FragmentSrc string
	Iterations  int
	Octaves     int
}

// VolumeShaderBackend turns fire parameters into a compilable program.
type VolumeShaderBackend interface {
	Name() string
	Capabilities() Capabilities
	Build(p *Params) (*ProgramSource, error)
}
