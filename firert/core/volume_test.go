package core

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

type stubBackend struct {
	builds int
	fail   bool
}

func (b *stubBackend) Name() string { return "stub" }

func (b *stubBackend) Capabilities() Capabilities {
	return Capabilities{LiveNoiseScale: true, LiveSeed: true, LiveTexture: true}
}

func (b *stubBackend) Build(p *Params) (*ProgramSource, error) {
	b.builds++
	if b.fail {
		return nil, errors.New("synthetic build failure")
	}
	return &ProgramSource{
		Language:   LanguageWGSL,
		Module:     fmt.Sprintf("iterations=%d octaves=%d", p.Iterations(), p.Octaves()),
		Iterations: p.Iterations(),
		Octaves:    p.Octaves(),
	}, nil
}

func f32At(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

// expectIdentity compares element-wise with an absolute tolerance. mgl32's
// ApproxEqualThreshold squares the epsilon for near-zero elements, which
// rejects the ~1e-7 off-diagonal residue a rotated inverse product carries.
func expectIdentity(t *testing.T, product mgl32.Mat4, context string) {
	t.Helper()
	ident := mgl32.Ident4()
	for i, v := range product {
		diff := v - ident[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > 1e-4 {
			t.Errorf("%s: element %d = %v, want %v\n%v", context, i, v, ident[i], product)
			return
		}
	}
}

func TestVolumeBuildsEagerly(t *testing.T) {
	backend := &stubBackend{}
	vol, err := NewVolume(backend, nil, nil)
	if err != nil {
		t.Fatalf("NewVolume: %v", err)
	}
	if backend.builds != 1 {
		t.Errorf("builds = %d, want 1", backend.builds)
	}
	if vol.Program() == nil || vol.Program().Iterations != DefaultIterations {
		t.Errorf("program missing or wrong bounds: %+v", vol.Program())
	}
}

func TestVolumeConstructionScenario(t *testing.T) {
	tint, err := ParseColor(0xff4400)
	if err != nil {
		t.Fatalf("ParseColor: %v", err)
	}
	vol, err := NewVolume(&stubBackend{}, nil, nil,
		WithTint(tint),
		WithMagnitude(2.5),
		WithLacunarity(3.0),
		WithGain(0.8),
		WithIterations(30),
		WithOctaves(5),
		WithNoiseScale(mgl32.Vec4{2, 3, 2, 0.5}),
	)
	if err != nil {
		t.Fatalf("NewVolume: %v", err)
	}
	p := vol.Params()
	if p.Tint() != HexColor(0xff4400) {
		t.Errorf("tint = %v", p.Tint())
	}
	if p.Magnitude() != 2.5 || p.Lacunarity() != 3.0 || p.Gain() != 0.8 {
		t.Errorf("shaping params = (%v, %v, %v)", p.Magnitude(), p.Lacunarity(), p.Gain())
	}
	if p.Iterations() != 30 || p.Octaves() != 5 {
		t.Errorf("loop bounds = (%d, %d)", p.Iterations(), p.Octaves())
	}
	if p.NoiseScale() != (mgl32.Vec4{2, 3, 2, 0.5}) {
		t.Errorf("noise scale = %v", p.NoiseScale())
	}
	if vol.Program().Iterations != 30 || vol.Program().Octaves != 5 {
		t.Errorf("program bounds = (%d, %d)", vol.Program().Iterations, vol.Program().Octaves)
	}

	vol.Update(1.0)
	if p.Time() != 1.0 {
		t.Errorf("time after Update(1.0) = %v", p.Time())
	}
}

func TestUpdateWithoutTimeKeepsClock(t *testing.T) {
	vol, err := NewVolume(&stubBackend{}, NewTransform(), nil)
	if err != nil {
		t.Fatalf("NewVolume: %v", err)
	}
	vol.Params().SetTime(3.25)
	vol.Update()
	if got := vol.Params().Time(); got != 3.25 {
		t.Errorf("time after bare Update = %v, want 3.25", got)
	}
}

func TestUpdateMirrorsTimeIntoUniforms(t *testing.T) {
	vol, err := NewVolume(&stubBackend{}, NewTransform(), nil)
	if err != nil {
		t.Fatalf("NewVolume: %v", err)
	}
	vol.Update(5.5)
	if got := vol.Params().Time(); got != 5.5 {
		t.Fatalf("time = %v, want 5.5", got)
	}
	u := vol.Uniforms()
	if u.Time != 5.5 {
		t.Errorf("uniform mirror time = %v, want 5.5", u.Time)
	}
	packed := u.Pack()
	if len(packed) != UniformBlockSize {
		t.Fatalf("packed size = %d, want %d", len(packed), UniformBlockSize)
	}
	if got := f32At(packed, OffsetTime); got != 5.5 {
		t.Errorf("packed time = %v, want 5.5", got)
	}
}

func TestUpdateRefreshesTransform(t *testing.T) {
	tr := NewTransform()
	tr.Position = mgl32.Vec3{2, 3, 4}
	tr.Rotation = mgl32.QuatRotate(0.7, mgl32.Vec3{0, 0, 1})
	tr.Scale = mgl32.Vec3{2, 5, 2}

	vol, err := NewVolume(&stubBackend{}, tr, nil)
	if err != nil {
		t.Fatalf("NewVolume: %v", err)
	}
	vol.Update()

	p := vol.Params()
	expectIdentity(t, p.WorldToLocal().Mul4(tr.WorldMatrix()), "worldToLocal * world")
	if p.ObjectScale() != tr.Scale {
		t.Errorf("object scale = %v, want %v", p.ObjectScale(), tr.Scale)
	}

	// moving the node must be picked up on the next update, time or not
	tr.Position = mgl32.Vec3{-1, 0, 9}
	tr.Scale = mgl32.Vec3{1, 1, 1}
	vol.Update()
	expectIdentity(t, p.WorldToLocal().Mul4(tr.WorldMatrix()), "stale transform after node moved")
	if p.ObjectScale() != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("stale object scale %v", p.ObjectScale())
	}
}

func TestTransformInverseMatchesComponents(t *testing.T) {
	tr := NewTransform()
	tr.Position = mgl32.Vec3{1, -2, 0.5}
	tr.Rotation = mgl32.QuatRotate(1.1, mgl32.Vec3{0, 1, 0})
	tr.Scale = mgl32.Vec3{3, 0.5, 2}

	expectIdentity(t, tr.InverseMatrix().Mul4(tr.WorldMatrix()), "component inverse * world")
}

func TestReconfigureRebuildsProgram(t *testing.T) {
	backend := &stubBackend{}
	vol, err := NewVolume(backend, nil, nil)
	if err != nil {
		t.Fatalf("NewVolume: %v", err)
	}
	before := vol.Program().Module

	if err := vol.Reconfigure(40, 6); err != nil {
		t.Fatalf("Reconfigure: %v", err)
	}
	if backend.builds != 2 {
		t.Errorf("builds = %d, want 2", backend.builds)
	}
	if vol.Params().Iterations() != 40 || vol.Params().Octaves() != 6 {
		t.Errorf("bounds after reconfigure = (%d, %d)", vol.Params().Iterations(), vol.Params().Octaves())
	}
	if vol.Program().Module == before {
		t.Error("program text did not change after reconfigure")
	}
}

func TestReconfigureFailureRollsBack(t *testing.T) {
	backend := &stubBackend{}
	vol, err := NewVolume(backend, nil, nil)
	if err != nil {
		t.Fatalf("NewVolume: %v", err)
	}
	program := vol.Program()

	backend.fail = true
	if err := vol.Reconfigure(99, 9); err == nil {
		t.Fatal("expected build failure")
	}
	if vol.Params().Iterations() != DefaultIterations || vol.Params().Octaves() != DefaultOctaves {
		t.Errorf("bounds changed despite failed rebuild: (%d, %d)",
			vol.Params().Iterations(), vol.Params().Octaves())
	}
	if vol.Program() != program {
		t.Error("program replaced despite failed rebuild")
	}
}

func TestUniformPackLayout(t *testing.T) {
	u := Uniforms{
		WorldToLocal: mgl32.Ident4(),
		Tint:         mgl32.Vec3{0.1, 0.2, 0.3},
		Time:         1.5,
		NoiseScale:   mgl32.Vec4{1, 2, 1, 0.3},
		Magnitude:    1.3,
		Lacunarity:   2.0,
		Gain:         0.5,
		Seed:         7.7,
		ObjectScale:  mgl32.Vec3{2, 4, 2},
	}
	b := u.Pack()
	if len(b) != UniformBlockSize {
		t.Fatalf("size = %d, want %d", len(b), UniformBlockSize)
	}
	checks := []struct {
		off  int
		want float32
	}{
		{OffsetWorldToLocal, 1},      // m[0][0] of identity
		{OffsetWorldToLocal + 20, 1}, // m[1][1]
		{OffsetTint, 0.1},
		{OffsetTint + 8, 0.3},
		{OffsetTime, 1.5},
		{OffsetNoiseScale + 12, 0.3},
		{OffsetMagnitude, 1.3},
		{OffsetLacunarity, 2.0},
		{OffsetGain, 0.5},
		{OffsetSeed, 7.7},
		{OffsetObjectScale + 4, 4},
	}
	for _, c := range checks {
		if got := f32At(b, c.off); got != c.want {
			t.Errorf("offset %d = %v, want %v", c.off, got, c.want)
		}
	}
}
