package pyro

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func emberTestWorld(t *testing.T) (*App, *Commands, *EmberState) {
	t.Helper()
	app := NewAppBuilder().UseModule(EmberModule{}).Build()
	app.FlushCommands()
	state := GetResource[EmberState](app)
	if state == nil {
		t.Fatal("EmberModule did not install its state resource")
	}
	return app, app.Commands(), state
}

func testEmitter() EmberEmitterComponent {
	return EmberEmitterComponent{
		Enabled:       true,
		MaxEmbers:     16,
		SpawnRate:     10,
		SpawnRadius:   0.2,
		LifetimeRange: [2]float32{1, 1},
		SpeedRange:    [2]float32{1, 1},
		SizeRange:     [2]float32{0.1, 0.1},
		BaseColor:     [4]float32{1, 0.8, 0.3, 1},
		TipColor:      [4]float32{0.8, 0.2, 0, 0},
		Buoyancy:      1,
		Drag:          0.1,
	}
}

func TestEmberSim_SpawnsAtConfiguredRate(t *testing.T) {
	app, cmd, state := emberTestWorld(t)

	eid := cmd.AddEntity(
		&TransformComponent{Position: mgl32.Vec3{0, 1, 0}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		func() *EmberEmitterComponent { e := testEmitter(); return &e }(),
	)
	app.FlushCommands()

	emberSimSystem(state, &Time{Dt: 0.5}, cmd)

	pl := state.pools[eid]
	if pl == nil {
		t.Fatal("no pool allocated for the emitter")
	}
	if pl.alive != 5 {
		t.Errorf("alive = %d, want 5 (rate 10/s over 0.5s)", pl.alive)
	}
	if got := len(CollectEmberInstances(state)); got != 5 {
		t.Errorf("collected %d instances, want 5", got)
	}
}

func TestEmberSim_EmbersAgeAndDie(t *testing.T) {
	app, cmd, state := emberTestWorld(t)

	eid := cmd.AddEntity(
		&TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		func() *EmberEmitterComponent { e := testEmitter(); return &e }(),
	)
	app.FlushCommands()

	emberSimSystem(state, &Time{Dt: 0.5}, cmd)
	pl := state.pools[eid]
	if pl.alive == 0 {
		t.Fatal("nothing spawned")
	}
	startY := pl.pos[0].Y()

	// stop spawning, let the batch age past its one-second lifetime
	em := ComponentOf[EmberEmitterComponent](cmd, eid)
	em.SpawnRate = 0

	emberSimSystem(state, &Time{Dt: 0.4}, cmd)
	if pl.alive == 0 {
		t.Fatal("embers died before their lifetime")
	}
	if pl.pos[0].Y() <= startY {
		t.Errorf("buoyant ember did not rise: %v -> %v", startY, pl.pos[0].Y())
	}
	// fading toward the tip color as the ember ages
	if pl.color[0][3] >= 1 {
		t.Errorf("ember alpha did not fade: %v", pl.color[0][3])
	}

	emberSimSystem(state, &Time{Dt: 0.7}, cmd)
	if pl.alive != 0 {
		t.Errorf("alive = %d after lifetime elapsed, want 0", pl.alive)
	}
}

func TestEmberSim_RespectsCapacity(t *testing.T) {
	app, cmd, state := emberTestWorld(t)

	emitter := testEmitter()
	emitter.MaxEmbers = 3
	emitter.SpawnRate = 1000
	emitter.LifetimeRange = [2]float32{100, 100}
	eid := cmd.AddEntity(
		&TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		&emitter,
	)
	app.FlushCommands()

	emberSimSystem(state, &Time{Dt: 1}, cmd)
	emberSimSystem(state, &Time{Dt: 1}, cmd)

	if got := state.pools[eid].alive; got != 3 {
		t.Errorf("alive = %d, want the 3-ember cap", got)
	}
}

func TestEmberSim_DropsPoolsOfRemovedEmitters(t *testing.T) {
	app, cmd, state := emberTestWorld(t)

	eid := cmd.AddEntity(
		&TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		func() *EmberEmitterComponent { e := testEmitter(); return &e }(),
	)
	app.FlushCommands()

	emberSimSystem(state, &Time{Dt: 0.5}, cmd)
	if state.pools[eid] == nil {
		t.Fatal("pool missing after first tick")
	}

	cmd.RemoveEntity(eid)
	app.FlushCommands()
	emberSimSystem(state, &Time{Dt: 0.1}, cmd)

	if state.pools[eid] != nil {
		t.Error("pool survived its emitter")
	}
}

func TestSampleConeDirection(t *testing.T) {
	up := sampleConeDirection(mgl32.QuatIdent(), 0)
	if !up.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-6) {
		t.Errorf("zero cone should emit straight up, got %v", up)
	}

	tilt := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{1, 0, 0})
	tilted := sampleConeDirection(tilt, 0)
	if !tilted.ApproxEqualThreshold(mgl32.Vec3{0, 0, 1}, 1e-5) {
		t.Errorf("tilted cone axis = %v, want +z", tilted)
	}

	for i := 0; i < 64; i++ {
		dir := sampleConeDirection(mgl32.QuatIdent(), 20)
		if dir.Y() < float32(0.9) {
			t.Fatalf("direction %v outside the 20 degree cone", dir)
		}
	}
}
