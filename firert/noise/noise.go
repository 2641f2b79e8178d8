// Package noise provides the gradient noise kernels and the turbulence
// accumulator the fire density field is built on.
package noise

// Kernel is a continuous 3D gradient noise source with output roughly in [-1, 1].
type Kernel interface {
	Sample(x, y, z float32) float32
}

// Turbulence sums absolute-value noise octaves. Each octave multiplies the
// sampling frequency by Lacunarity and the amplitude by Gain.
type Turbulence struct {
	Kernel     Kernel
	Lacunarity float32
	Gain       float32
	Octaves    int
}

func (t Turbulence) Sample(x, y, z float32) float32 {
	sum := float32(0)
	freq := float32(1)
	amp := float32(1)
	for i := 0; i < t.Octaves; i++ {
		n := t.Kernel.Sample(x*freq, y*freq, z*freq)
		if n < 0 {
			n = -n
		}
		sum += n * amp
		freq *= t.Lacunarity
		amp *= t.Gain
	}
	return sum
}
