package graph

import (
	"bytes"
	"fmt"

	"github.com/gekko3d/pyro/firert/core"
)

// Uniform names shared between the emitted GLSL and the GL host code.
const (
	UniformModel       = "u_model"
	UniformViewProj    = "u_viewProj"
	UniformInvModel    = "u_invModel"
	UniformCameraPos   = "u_cameraPos"
	UniformTint        = "u_tint"
	UniformTime        = "u_time"
	UniformMagnitude   = "u_magnitude"
	UniformLacunarity  = "u_lacunarity"
	UniformGain        = "u_gain"
	UniformObjectScale = "u_objectScale"
	UniformFireTex     = "u_fireTex"
)

const vertexSource = `#version 410 core

layout(location = 0) in vec3 in_position;

uniform mat4 ` + UniformModel + `;
uniform mat4 ` + UniformViewProj + `;

out vec3 v_worldPos;

void main() {
    vec4 world = ` + UniformModel + ` * vec4(in_position, 1.0);
    v_worldPos = world.xyz;
    gl_Position = ` + UniformViewProj + ` * world;
}
`

const fragmentHeader = `#version 410 core

in vec3 v_worldPos;
out vec4 out_color;

uniform mat4 ` + UniformInvModel + `;
uniform vec3 ` + UniformCameraPos + `;
uniform vec3 ` + UniformTint + `;
uniform float ` + UniformTime + `;
uniform float ` + UniformMagnitude + `;
uniform float ` + UniformLacunarity + `;
uniform float ` + UniformGain + `;
uniform vec3 ` + UniformObjectScale + `;
uniform sampler2D ` + UniformFireTex + `;

`

// Backend emits the fire program as a GLSL 4.10 shader pair assembled from
// expression nodes. Octave count, iteration count, noise scale and seed are
// baked into the emitted functions, so parameter changes to those require a
// rebuild and none of the live capabilities are reported.
type Backend struct{}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Name() string { return "glsl-graph" }

func (b *Backend) Capabilities() core.Capabilities {
	return core.Capabilities{}
}

func (b *Backend) Build(p *core.Params) (*core.ProgramSource, error) {
	root := March(
		MaskSampler(TurbulenceOf(GradientNoise(), p.Octaves()), p.NoiseScale(), p.Seed()),
		Localize(),
		p.Iterations(),
	)
	frag, err := b.WriteFragment(root, p)
	if err != nil {
		return nil, err
	}
	return &core.ProgramSource{
		Language:    core.LanguageGLSL,
		VertexSrc:   vertexSource,
		FragmentSrc: frag,
		Iterations:  p.Iterations(),
		Octaves:     p.Octaves(),
	}, nil
}

// WriteFragment assembles the fragment shader around a custom root node.
// The root must emit a function with signature vec4 f(vec3 origin, vec3 dir).
func (b *Backend) WriteFragment(root Node, p *core.Params) (string, error) {
	if p.Iterations() <= 0 {
		return "", fmt.Errorf("fire program needs a positive iteration count, got %d", p.Iterations())
	}
	if p.Octaves() <= 0 {
		return "", fmt.Errorf("fire program needs a positive octave count, got %d", p.Octaves())
	}
	var buf bytes.Buffer
	buf.WriteString(fragmentHeader)
	if err := NewProgrammer().WriteFunctions(&buf, root); err != nil {
		return "", err
	}
	buf.WriteString("void main() {\n    vec3 dir = normalize(v_worldPos - ")
	buf.WriteString(UniformCameraPos)
	buf.WriteString(");\n    out_color = ")
	buf.Write(root.AppendName(nil))
	buf.WriteString("(v_worldPos, dir);\n}\n")
	return buf.String(), nil
}
