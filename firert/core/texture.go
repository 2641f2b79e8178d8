package core

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type FilterMode int

const (
	FilterNearest FilterMode = iota
	FilterLinear
)

type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapClampToEdge
)

// Texture is a CPU-side fire mask together with the sampling state the GPU
// hosts mirror. The red channel drives both the density and the alpha of the
// marched volume.
type Texture struct {
	Image  *image.RGBA
	Filter FilterMode
	WrapS  WrapMode
	WrapT  WrapMode
}

func NewTexture(img *image.RGBA) *Texture {
	return &Texture{
		Image:  img,
		Filter: FilterLinear,
		WrapS:  WrapClampToEdge,
		WrapT:  WrapClampToEdge,
	}
}

func (t *Texture) Width() int {
	if t == nil || t.Image == nil {
		return 0
	}
	return t.Image.Bounds().Dx()
}

func (t *Texture) Height() int {
	if t == nil || t.Image == nil {
		return 0
	}
	return t.Image.Bounds().Dy()
}

// Sample reads the texture at normalized coordinates with the configured
// filter and wrap modes. A nil or empty texture samples as fully transparent.
func (t *Texture) Sample(s, tc float32) mgl32.Vec4 {
	if t == nil || t.Image == nil {
		return mgl32.Vec4{}
	}
	w, h := t.Width(), t.Height()
	if w == 0 || h == 0 {
		return mgl32.Vec4{}
	}
	if t.Filter == FilterNearest {
		x := wrapIndex(int(floor32(s*float32(w))), w, t.WrapS)
		y := wrapIndex(int(floor32(tc*float32(h))), h, t.WrapT)
		return t.texel(x, y)
	}
	fx := s*float32(w) - 0.5
	fy := tc*float32(h) - 0.5
	x0 := int(floor32(fx))
	y0 := int(floor32(fy))
	dx := fx - float32(x0)
	dy := fy - float32(y0)
	c00 := t.texel(wrapIndex(x0, w, t.WrapS), wrapIndex(y0, h, t.WrapT))
	c10 := t.texel(wrapIndex(x0+1, w, t.WrapS), wrapIndex(y0, h, t.WrapT))
	c01 := t.texel(wrapIndex(x0, w, t.WrapS), wrapIndex(y0+1, h, t.WrapT))
	c11 := t.texel(wrapIndex(x0+1, w, t.WrapS), wrapIndex(y0+1, h, t.WrapT))
	top := c00.Mul(1 - dx).Add(c10.Mul(dx))
	bottom := c01.Mul(1 - dx).Add(c11.Mul(dx))
	return top.Mul(1 - dy).Add(bottom.Mul(dy))
}

func (t *Texture) texel(x, y int) mgl32.Vec4 {
	b := t.Image.Bounds()
	c := t.Image.RGBAAt(b.Min.X+x, b.Min.Y+y)
	return mgl32.Vec4{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}

func wrapIndex(i, n int, mode WrapMode) int {
	if mode == WrapRepeat {
		i %= n
		if i < 0 {
			i += n
		}
		return i
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func floor32(v float32) float32 {
	return float32(math.Floor(float64(v)))
}
