package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/pyro/firert/noise"
)

// StepScale converts the object scale magnitude into the fixed march step.
const StepScale = 0.0288

// DensityField evaluates the fire density on the CPU with the same sampler
// and integrator semantics the shader backends bake into their programs. It
// backs the software preview and the reference tests.
type DensityField struct {
	params *Params
	kernel noise.Kernel
}

func NewDensityField(p *Params, kernel noise.Kernel) *DensityField {
	return &DensityField{params: p, kernel: kernel}
}

// Sample evaluates the mask density at a local-space point. The point maps to
// the mask through cylindrical coordinates: radial distance in xz selects the
// column, height selects the row. Points outside the open unit interval on
// either axis contribute nothing, and the turbulent displacement of the row
// coordinate is re-checked so the flame tip stays ragged.
func (d *DensityField) Sample(p mgl32.Vec3) mgl32.Vec4 {
	prm := d.params
	stx := sqrt32(p.X()*p.X() + p.Z()*p.Z())
	sty := p.Y()
	if stx <= 0 || stx >= 1 || sty <= 0 || sty >= 1 {
		return mgl32.Vec4{}
	}
	ns := prm.NoiseScale()
	q := mgl32.Vec3{
		p.X() * ns.X(),
		(p.Y() - (prm.Seed()+prm.Time())*ns.W()) * ns.Y(),
		p.Z() * ns.Z(),
	}
	sty += sqrt32(sty) * prm.Magnitude() * d.turbulence(q)
	if sty <= 0 || sty >= 1 {
		return mgl32.Vec4{}
	}
	return prm.Texture().Sample(stx, sty)
}

// March integrates the density along the view ray entering the volume at
// worldPos: a fixed number of steps with no early exit, then alpha from the
// accumulated red channel and the tint applied to the color.
func (d *DensityField) March(cameraPos, worldPos mgl32.Vec3) mgl32.Vec4 {
	prm := d.params
	dir := worldPos.Sub(cameraPos).Normalize()
	step := dir.Mul(StepScale * prm.ObjectScale().Len())
	inv := prm.WorldToLocal()
	pos := worldPos
	var col mgl32.Vec4
	for i := 0; i < prm.Iterations(); i++ {
		pos = pos.Add(step)
		lp := mgl32.TransformCoordinate(pos, inv)
		lp = mgl32.Vec3{lp.X() * 2, lp.Y() + 0.5, lp.Z() * 2}
		col = col.Add(d.Sample(lp))
	}
	tint := prm.Tint()
	return mgl32.Vec4{
		col.X() * tint.X(),
		col.Y() * tint.Y(),
		col.Z() * tint.Z(),
		col.X(),
	}
}

func (d *DensityField) turbulence(p mgl32.Vec3) float32 {
	t := noise.Turbulence{
		Kernel:     d.kernel,
		Lacunarity: d.params.Lacunarity(),
		Gain:       d.params.Gain(),
		Octaves:    d.params.Octaves(),
	}
	return t.Sample(p.X(), p.Y(), p.Z())
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
