package pyro

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// EmberEmitterComponent spawns glowing sparks that ride the thermal column
// above a flame. Simulation is CPU-side; renderers only pack the live embers.
type EmberEmitterComponent struct {
	Enabled bool

	MaxEmbers int

	SpawnRate     float32    // embers per second
	SpawnRadius   float32    // scatter over the flame base (world units)
	LifetimeRange [2]float32 // seconds (min,max)
	SpeedRange    [2]float32 // units/sec (min,max)
	SizeRange     [2]float32 // world units (min,max)

	BaseColor [4]float32 // RGBA at spawn
	TipColor  [4]float32 // RGBA near burnout

	Buoyancy         float32 // upward acceleration (units/s^2)
	Drag             float32 // per-second linear drag
	ConeAngleDegrees float32 // 0=straight up; larger spreads
}

// EmberInstance is one packed ember, ready for a renderer.
type EmberInstance struct {
	Pos   [3]float32
	Size  float32
	Color [4]float32
}

// Internal pool per emitter (SoA, swap-remove)
type emberPool struct {
	pos   []mgl32.Vec3
	vel   []mgl32.Vec3
	age   []float32
	life  []float32
	size  []float32
	color [][4]float32

	alive    int
	spawnAcc float32 // fractional spawns accumulator
	capacity int
}

// EmberState owns the per-emitter pools. It lives as an app resource so the
// simulation keeps running whether or not a renderer is installed.
type EmberState struct {
	pools map[EntityId]*emberPool
}

type EmberModule struct{}

func (mod EmberModule) Install(app *App, cmd *Commands) {
	if GetResource[EmberState](app) == nil {
		cmd.AddResources(&EmberState{})
	}
	app.UseSystem(
		System(emberSimSystem).
			InStage(PostUpdate),
	)
}

func ensureEmberPool(state *EmberState, eid EntityId, cap int) *emberPool {
	if state.pools == nil {
		state.pools = make(map[EntityId]*emberPool)
	}
	pl, ok := state.pools[eid]
	if !ok {
		pl = &emberPool{}
		state.pools[eid] = pl
	}
	if cap <= 0 {
		cap = 1
	}
	if pl.capacity != cap || pl.pos == nil {
		pl.capacity = cap
		pl.pos = make([]mgl32.Vec3, cap)
		pl.vel = make([]mgl32.Vec3, cap)
		pl.age = make([]float32, cap)
		pl.life = make([]float32, cap)
		pl.size = make([]float32, cap)
		pl.color = make([][4]float32, cap)
		pl.alive = 0
		pl.spawnAcc = 0
	}
	return pl
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// Sample a direction in a cone around the emitter's up axis, uniform over the
// cone, then rotate into world space by the emitter rotation.
func sampleConeDirection(rot mgl32.Quat, coneDeg float32) mgl32.Vec3 {
	axis := mgl32.Vec3{0, 1, 0}
	if coneDeg <= 0.0 {
		return rot.Rotate(axis).Normalize()
	}
	thetaMax := float32(math.Pi) * (coneDeg / 180.0)
	u := rand.Float32()
	v := rand.Float32()
	cosTheta := lerp(float32(math.Cos(float64(thetaMax))), 1.0, u)
	sinTheta := float32(math.Sqrt(float64(1.0 - cosTheta*cosTheta)))
	phi := 2.0 * float32(math.Pi) * v

	local := mgl32.Vec3{
		float32(math.Cos(float64(phi))) * sinTheta,
		cosTheta,
		float32(math.Sin(float64(phi))) * sinTheta,
	}
	return rot.Rotate(local).Normalize()
}

// Swap-remove one ember
func (p *emberPool) killAt(i int) {
	last := p.alive - 1
	p.pos[i] = p.pos[last]
	p.vel[i] = p.vel[last]
	p.age[i] = p.age[last]
	p.life[i] = p.life[last]
	p.size[i] = p.size[last]
	p.color[i] = p.color[last]
	p.alive--
}

func emberSimSystem(state *EmberState, t *Time, cmd *Commands) {
	dt := t.Dt
	if dt <= 0 {
		return
	}

	seen := make(map[EntityId]bool, len(state.pools))

	MakeQuery2[TransformComponent, EmberEmitterComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, em *EmberEmitterComponent) bool {
		seen[eid] = true
		if !em.Enabled || em.MaxEmbers <= 0 {
			return true
		}
		pl := ensureEmberPool(state, eid, em.MaxEmbers)

		// Spawn
		pl.spawnAcc += em.SpawnRate * dt
		spawnCount := int(pl.spawnAcc)
		if spawnCount > 0 {
			pl.spawnAcc -= float32(spawnCount)
		}
		if spawnCount > (em.MaxEmbers - pl.alive) {
			spawnCount = em.MaxEmbers - pl.alive
		}

		for i := 0; i < spawnCount; i++ {
			idx := pl.alive
			pl.alive++

			pl.pos[idx] = tr.Position.Add(spawnJitter(em.SpawnRadius))

			dir := sampleConeDirection(tr.Rotation, em.ConeAngleDegrees)
			speed := lerp(em.SpeedRange[0], em.SpeedRange[1], rand.Float32())
			pl.vel[idx] = dir.Mul(speed)

			pl.age[idx] = 0
			pl.life[idx] = lerp(em.LifetimeRange[0], em.LifetimeRange[1], rand.Float32())
			pl.size[idx] = lerp(em.SizeRange[0], em.SizeRange[1], rand.Float32())
			pl.color[idx] = em.BaseColor
		}

		// Integrate
		drag := float32(math.Max(0, float64(1.0-em.Drag*dt)))
		i := 0
		for i < pl.alive {
			v := pl.vel[i]
			// buoyancy: hot sparks accelerate upward until drag wins
			v = v.Add(mgl32.Vec3{0, em.Buoyancy * dt, 0})
			v = v.Mul(drag)
			p := pl.pos[i].Add(v.Mul(dt))

			age := pl.age[i] + dt
			life := pl.life[i]

			if age >= life {
				pl.killAt(i)
				continue
			}

			pl.vel[i] = v
			pl.pos[i] = p
			pl.age[i] = age

			// cool from base toward tip color as the ember ages
			f := age / life
			var c [4]float32
			for j := 0; j < 4; j++ {
				c[j] = lerp(em.BaseColor[j], em.TipColor[j], f)
			}
			c[3] *= 1 - f
			pl.color[i] = c
			i++
		}
		return true
	})

	// Drop pools whose emitter is gone.
	for eid := range state.pools {
		if !seen[eid] {
			delete(state.pools, eid)
		}
	}
}

// Scatter spawn points uniformly over a disc in the emitter's XZ plane.
func spawnJitter(radius float32) mgl32.Vec3 {
	if radius <= 0 {
		return mgl32.Vec3{}
	}
	r := radius * float32(math.Sqrt(float64(rand.Float32())))
	phi := 2.0 * float32(math.Pi) * rand.Float32()
	return mgl32.Vec3{
		r * float32(math.Cos(float64(phi))),
		0,
		r * float32(math.Sin(float64(phi))),
	}
}

// CollectEmberInstances packs every live ember into render-ready instances.
func CollectEmberInstances(state *EmberState) []EmberInstance {
	instances := make([]EmberInstance, 0, 256)
	for _, pl := range state.pools {
		for i := 0; i < pl.alive; i++ {
			p := pl.pos[i]
			instances = append(instances, EmberInstance{
				Pos:   [3]float32{p.X(), p.Y(), p.Z()},
				Size:  pl.size[i],
				Color: pl.color[i],
			})
		}
	}
	return instances
}
