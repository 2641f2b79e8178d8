package pyro

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/pyro/firert/core"
)

// TransformComponent places an entity in the world. It satisfies
// core.TransformProvider, so a fire volume can read its matrices directly.
type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func (t *TransformComponent) WorldMatrix() mgl32.Mat4 {
	return buildModelMatrix(t)
}

func (t *TransformComponent) WorldScale() mgl32.Vec3 {
	return t.Scale
}

func buildModelMatrix(t *TransformComponent) mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

type CameraComponent struct {
	Position    mgl32.Vec3
	LookAt      mgl32.Vec3
	Up          mgl32.Vec3
	FovYDegrees float32
	Near        float32
	Far         float32
}

func buildCameraView(c *CameraComponent) mgl32.Mat4 {
	up := c.Up
	if up.Len() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	return mgl32.LookAtV(c.Position, c.LookAt, up)
}

func buildCameraMatrix(c *CameraComponent, aspect float32) mgl32.Mat4 {
	fov := c.FovYDegrees
	if fov == 0 {
		fov = 60
	}
	near, far := c.Near, c.Far
	if near == 0 {
		near = 0.1
	}
	if far == 0 {
		far = 100
	}
	proj := mgl32.Perspective(mgl32.DegToRad(fov), aspect, near, far)
	return proj.Mul4(buildCameraView(c))
}

// FireComponent attaches a fire volume to an entity.
type FireComponent struct {
	Volume *core.Volume
}

// FireModule runs the per-frame fire bookkeeping: every fire re-reads its
// entity transform and the shared clock, and fire-bound lights flicker.
type FireModule struct{}

func (FireModule) Install(app *App, cmd *Commands) {
	// Volumes refresh in PreRender, after hierarchy propagation and before
	// the renderer snapshots uniforms in the same stage.
	app.UseSystem(
		System(fireUpdateSystem).
			InStage(PreRender),
	)
	app.UseSystem(
		System(fireLightFlickerSystem).
			InStage(Update),
	)
}

func fireUpdateSystem(time *Time, cmd *Commands) {
	MakeQuery2[TransformComponent, FireComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, fire *FireComponent) bool {
		if fire.Volume == nil {
			return true
		}
		// Rebind every frame: component storage may have been replaced
		// since the volume was spawned.
		fire.Volume.SetProvider(tr)
		fire.Volume.Update(time.Elapsed)
		return true
	})
}
