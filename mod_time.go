package pyro

import (
	"time"
)

// Time tracks the frame clock. Dt and Elapsed are in seconds; Elapsed is
// what drives the fire animation.
type Time struct {
	Now     time.Time
	Dt      float32
	Elapsed float32
}

type TimeModule struct {
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Now: time.Now(),
	})
	app.UseSystem(
		System(timeSystem).
			InStage(Prelude),
	)
}

func timeSystem(timeResource *Time) {
	now := time.Now()

	timeResource.Dt = float32(now.Sub(timeResource.Now).Seconds())
	timeResource.Now = now
	timeResource.Elapsed += timeResource.Dt
}
