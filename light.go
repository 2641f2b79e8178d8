package pyro

import (
	"github.com/gekko3d/pyro/firert/noise"
)

type LightType uint32

const (
	LightTypePoint       LightType = 0
	LightTypeDirectional LightType = 1
	LightTypeAmbient     LightType = 2
)

// LightComponent is the ECS component for lights.
type LightComponent struct {
	Type      LightType
	Color     [3]float32 // RGB
	Intensity float32
	Range     float32 // point lights only
}

// FireLightComponent ties a light's intensity to a flame. The intensity
// wanders around BaseIntensity using the same turbulence that drives the
// flame itself, so light and fire move together.
type FireLightComponent struct {
	BaseIntensity float32
	FlickerAmount float32
	FlickerSpeed  float32

	// Seed decorrelates flicker between lights. Zero is a valid seed.
	Seed float32

	flicker *noise.Turbulence
}

func fireLightFlickerSystem(time *Time, cmd *Commands) {
	MakeQuery2[LightComponent, FireLightComponent](cmd).Map(func(eid EntityId, light *LightComponent, fl *FireLightComponent) bool {
		if fl.flicker == nil {
			fl.flicker = &noise.Turbulence{
				Kernel:     noise.NewPerlin(int64(fl.Seed*1000) + 7),
				Lacunarity: 2.0,
				Gain:       0.5,
				Octaves:    2,
			}
		}
		speed := fl.FlickerSpeed
		if speed == 0 {
			speed = 3.0
		}
		n := fl.flicker.Sample(time.Elapsed*speed, fl.Seed, 0)
		light.Intensity = fl.BaseIntensity + fl.FlickerAmount*(n*2-1)
		if light.Intensity < 0 {
			light.Intensity = 0
		}
		return true
	})
}
