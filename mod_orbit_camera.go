package pyro

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCameraComponent circles the camera around a target point at a fixed
// radius and height. Angle advances by Speed radians per second; a zero Speed
// holds the current viewpoint.
type OrbitCameraComponent struct {
	Target mgl32.Vec3
	Radius float32
	Height float32
	Speed  float32
	Angle  float32
}

type OrbitCameraModule struct{}

func (m OrbitCameraModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(orbitCameraSystem).
			InStage(Update),
	)
}

func orbitCameraSystem(cmd *Commands, time *Time) {
	MakeQuery2[CameraComponent, OrbitCameraComponent](cmd).Map(func(eid EntityId, cam *CameraComponent, orbit *OrbitCameraComponent) bool {
		if orbit.Radius == 0 {
			orbit.Radius = 3.0
		}
		orbit.Angle += orbit.Speed * time.Dt

		cam.Position = orbit.Target.Add(mgl32.Vec3{
			orbit.Radius * float32(math.Cos(float64(orbit.Angle))),
			orbit.Height,
			orbit.Radius * float32(math.Sin(float64(orbit.Angle))),
		})
		cam.LookAt = orbit.Target
		cam.Up = mgl32.Vec3{0, 1, 0}
		return true
	})
}
