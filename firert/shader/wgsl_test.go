package shader

import (
	"strings"
	"testing"

	"github.com/gekko3d/pyro/firert/core"
)

func TestBuildBakesLoopBounds(t *testing.T) {
	backend := New()
	p := core.NewParams(nil, core.WithIterations(30), core.WithOctaves(5))

	prog, err := backend.Build(p)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if prog.Language != core.LanguageWGSL {
		t.Errorf("language = %v, want wgsl", prog.Language)
	}
	if prog.Iterations != 30 || prog.Octaves != 5 {
		t.Errorf("recorded bounds = (%d, %d)", prog.Iterations, prog.Octaves)
	}
	if !strings.Contains(prog.Module, "const ITERATIONS: i32 = 30;") {
		t.Error("iteration constant not baked into module")
	}
	if !strings.Contains(prog.Module, "const OCTAVES: i32 = 5;") {
		t.Error("octave constant not baked into module")
	}
}

func TestBuildEmitsBothEntryPoints(t *testing.T) {
	prog, err := New().Build(core.NewParams(nil))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, entry := range []string{"fn vs_main", "fn fs_main"} {
		if !strings.Contains(prog.Module, entry) {
			t.Errorf("module missing %s", entry)
		}
	}
	for _, uniform := range []string{"world_to_local", "noise_scale", "magnitude", "lacunarity", "gain", "seed", "object_scale"} {
		if !strings.Contains(prog.Module, uniform) {
			t.Errorf("module missing uniform field %s", uniform)
		}
	}
}

func TestBuildWithoutTextureSucceeds(t *testing.T) {
	// a missing mask renders transparent, it must not fail the build
	if _, err := New().Build(core.NewParams(nil)); err != nil {
		t.Fatalf("Build without texture: %v", err)
	}
}

func TestRebuildChangesModule(t *testing.T) {
	backend := New()
	p := core.NewParams(nil)
	before, err := backend.Build(p)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	vol, err := core.NewVolume(backend, nil, nil)
	if err != nil {
		t.Fatalf("NewVolume: %v", err)
	}
	if err := vol.Reconfigure(33, 4); err != nil {
		t.Fatalf("Reconfigure: %v", err)
	}
	if vol.Program().Module == before.Module {
		t.Error("reconfigure kept the old module text")
	}
	if !strings.Contains(vol.Program().Module, "const ITERATIONS: i32 = 33;") {
		t.Error("new iteration bound not baked")
	}
}

func TestBuildRejectsNonPositiveBounds(t *testing.T) {
	backend := New()
	if _, err := backend.Build(core.NewParams(nil, core.WithIterations(0))); err == nil {
		t.Error("expected error for zero iterations")
	}
	if _, err := backend.Build(core.NewParams(nil, core.WithOctaves(-1))); err == nil {
		t.Error("expected error for negative octaves")
	}
}

func TestCapabilitiesAllLive(t *testing.T) {
	caps := New().Capabilities()
	if !caps.LiveNoiseScale || !caps.LiveSeed || !caps.LiveTexture {
		t.Errorf("wgsl backend should keep every parameter live, got %+v", caps)
	}
}
