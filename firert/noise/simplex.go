package noise

import (
	"github.com/ojrac/opensimplex-go"
)

// Simplex is smooth simplex-style noise backed by opensimplex.
type Simplex struct {
	noise opensimplex.Noise
}

func NewSimplex(seed int64) *Simplex {
	return &Simplex{noise: opensimplex.New(seed)}
}

func (s *Simplex) Sample(x, y, z float32) float32 {
	return float32(s.noise.Eval3(float64(x), float64(y), float64(z)))
}
