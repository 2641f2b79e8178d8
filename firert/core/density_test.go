package core

import (
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/pyro/firert/noise"
)

// rampMask brightens from bottom row to top so displaced sample rows read
// back different values.
func rampMask(size int) *Texture {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		v := uint8(y * 255 / (size - 1))
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return NewTexture(img)
}

func TestSampleRejectsOutOfBounds(t *testing.T) {
	p := NewParams(solidMask(color.RGBA{R: 255, G: 255, B: 255, A: 255}, 8),
		WithMagnitude(0), WithSeed(0))
	field := NewDensityField(p, noise.NewPerlin(1))

	outside := []mgl32.Vec3{
		{1.5, 0.5, 0},    // radius beyond the cylinder
		{0, 0.5, 0},      // radius exactly zero, open interval
		{1, 0.5, 0},      // radius exactly one
		{0.72, 0.5, 0.7}, // radius just past one
		{0.3, -0.1, 0},   // below the mask
		{0.3, 0, 0},      // bottom edge
		{0.3, 1, 0},      // top edge
		{0.3, 1.2, 0},    // above the mask
	}
	for _, pt := range outside {
		if got := field.Sample(pt); got != (mgl32.Vec4{}) {
			t.Errorf("Sample(%v) = %v, want zero", pt, got)
		}
	}

	if got := field.Sample(mgl32.Vec3{0.3, 0.4, 0}); got.X() == 0 {
		t.Errorf("in-bounds sample returned no density: %v", got)
	}
}

func TestSampleTurbulentTipRejection(t *testing.T) {
	// enormous magnitude drives st.y past 1 for any nonzero turbulence
	p := NewParams(solidMask(color.RGBA{R: 255, G: 255, B: 255, A: 255}, 8),
		WithMagnitude(1e6), WithSeed(3))
	field := NewDensityField(p, noise.NewPerlin(1))

	zeroes := 0
	points := []mgl32.Vec3{{0.3, 0.5, 0}, {0.5, 0.7, 0.2}, {0.1, 0.2, 0.4}}
	for _, pt := range points {
		if field.Sample(pt) == (mgl32.Vec4{}) {
			zeroes++
		}
	}
	if zeroes == 0 {
		t.Error("displacement re-check never rejected a sample")
	}
}

func TestSampleMissingTextureIsTransparent(t *testing.T) {
	p := NewParams(nil, WithMagnitude(0))
	field := NewDensityField(p, noise.NewPerlin(1))
	if got := field.Sample(mgl32.Vec3{0.3, 0.4, 0}); got != (mgl32.Vec4{}) {
		t.Errorf("sample without texture = %v, want transparent zero", got)
	}
}

func TestSampleReadsLiveShapingParams(t *testing.T) {
	p := NewParams(rampMask(64), WithMagnitude(0.1), WithSeed(2))
	field := NewDensityField(p, noise.NewPerlin(7))
	pt := mgl32.Vec3{0.3, 0.5, 0.2}

	before := field.Sample(pt)
	p.SetGain(0.9)
	after := field.Sample(pt)
	if before == after {
		t.Error("changing gain did not affect sampling")
	}
}

func TestMarchAlphaAndTintContract(t *testing.T) {
	p := NewParams(solidMask(color.RGBA{R: 255, G: 255, B: 255, A: 255}, 8),
		WithMagnitude(0), WithSeed(0),
		WithTint(mgl32.Vec3{0.5, 0.25, 1}))
	field := NewDensityField(p, noise.NewPerlin(1))

	camera := mgl32.Vec3{0.2, 0.1, -3}
	entry := mgl32.Vec3{0.2, 0.1, -0.5}
	out := field.March(camera, entry)

	if out.W() <= 0 {
		t.Fatalf("expected accumulated density, got %v", out)
	}
	const eps = 1e-4
	if diff := out.X() - 0.5*out.W(); diff > eps || diff < -eps {
		t.Errorf("red channel %v is not tint*alpha (alpha %v)", out.X(), out.W())
	}
	if diff := out.Y() - 0.25*out.W(); diff > eps || diff < -eps {
		t.Errorf("green channel %v is not tint*accumulated", out.Y())
	}
	if diff := out.Z() - out.W(); diff > eps || diff < -eps {
		t.Errorf("blue channel %v should match accumulated red %v", out.Z(), out.W())
	}
}

func TestMarchIterationCountScalesAccumulation(t *testing.T) {
	mask := solidMask(color.RGBA{R: 255, G: 255, B: 255, A: 255}, 8)
	few := NewParams(mask, WithMagnitude(0), WithSeed(0), WithIterations(5))
	many := NewParams(mask, WithMagnitude(0), WithSeed(0), WithIterations(40))

	camera := mgl32.Vec3{0.2, 0.1, -3}
	entry := mgl32.Vec3{0.2, 0.1, -0.5}
	fewOut := NewDensityField(few, noise.NewPerlin(1)).March(camera, entry)
	manyOut := NewDensityField(many, noise.NewPerlin(1)).March(camera, entry)

	if manyOut.W() < fewOut.W() {
		t.Errorf("more iterations accumulated less: %v < %v", manyOut.W(), fewOut.W())
	}
}

func TestMarchZeroIterationsTransparent(t *testing.T) {
	p := NewParams(solidMask(color.RGBA{R: 255, G: 255, B: 255, A: 255}, 8),
		WithMagnitude(0), WithIterations(0))
	field := NewDensityField(p, noise.NewPerlin(1))
	out := field.March(mgl32.Vec3{0, 0, -3}, mgl32.Vec3{0, 0, -0.5})
	if out != (mgl32.Vec4{}) {
		t.Errorf("zero iterations marched to %v, want zero", out)
	}
}

func TestMarchMissingTextureTransparent(t *testing.T) {
	p := NewParams(nil, WithMagnitude(0))
	field := NewDensityField(p, noise.NewPerlin(1))
	out := field.March(mgl32.Vec3{0, 0, -3}, mgl32.Vec3{0, 0, -0.5})
	if out != (mgl32.Vec4{}) {
		t.Errorf("march without texture = %v, want transparent zero", out)
	}
}

func TestMarchRespectsWorldToLocal(t *testing.T) {
	mask := solidMask(color.RGBA{R: 255, G: 255, B: 255, A: 255}, 8)

	// identity placement: the ray near the origin crosses the volume
	centered := NewParams(mask, WithMagnitude(0), WithSeed(0))
	centeredOut := NewDensityField(centered, noise.NewPerlin(1)).
		March(mgl32.Vec3{0.2, 0.1, -3}, mgl32.Vec3{0.2, 0.1, -0.5})
	if centeredOut.W() <= 0 {
		t.Fatalf("expected density through centered volume, got %v", centeredOut)
	}

	// moved far away: the same ray misses entirely
	tr := NewTransform()
	tr.Position = mgl32.Vec3{100, 0, 0}
	vol, err := NewVolume(&stubBackend{}, tr, mask, WithMagnitude(0), WithSeed(0))
	if err != nil {
		t.Fatalf("NewVolume: %v", err)
	}
	vol.Update()
	movedField := NewDensityField(vol.Params(), noise.NewPerlin(1))
	movedOut := movedField.March(mgl32.Vec3{0.2, 0.1, -3}, mgl32.Vec3{0.2, 0.1, -0.5})
	if movedOut != (mgl32.Vec4{}) {
		t.Errorf("ray should miss the displaced volume, got %v", movedOut)
	}
}
