package core

import (
	"image"
	"image/color"

	"github.com/gekko3d/pyro/firert/noise"
)

// GenerateFireMask builds a procedural flame profile texture. The x axis is
// radial distance from the flame axis, the y axis is height above the base;
// the red channel carries the density the volume sampler accumulates.
func GenerateFireMask(width, height int, seed int64) *Texture {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	turb := noise.Turbulence{
		Kernel:     noise.NewPerlin(seed),
		Lacunarity: 2.0,
		Gain:       0.5,
		Octaves:    4,
	}

	for y := 0; y < height; y++ {
		h := float32(y) / float32(height-1)
		for x := 0; x < width; x++ {
			r := float32(x) / float32(width-1)

			// Hot core on the axis, tapering toward the tip.
			radial := 1.0 - 1.2*r*r
			if radial < 0 {
				radial = 0
			}
			body := (1.0 - h) * (1.0 - h*0.5)

			// Noise eats into the edge so the profile licks instead of
			// ending on a clean curve.
			n := turb.Sample(r*4.0, h*6.0, 0)
			intensity := clampUnit(radial*body + 0.22*n - 0.28*h)

			img.SetRGBA(x, y, fireRampColor(intensity))
		}
	}

	return NewTexture(img)
}

// fireRampColor maps a density to the classic fire gradient: the red channel
// stays linear because it doubles as the density the ray march integrates.
func fireRampColor(v float32) color.RGBA {
	r := v
	g := v * v
	b := v * v * v * v
	return color.RGBA{
		R: uint8(clampUnit(r) * 255),
		G: uint8(clampUnit(g) * 255),
		B: uint8(clampUnit(b) * 255),
		A: uint8(clampUnit(v) * 255),
	}
}

func clampUnit(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
