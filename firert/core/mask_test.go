package core

import (
	"image/color"
	"testing"
)

func TestGenerateFireMask(t *testing.T) {
	tex := GenerateFireMask(64, 64, 3)
	if tex == nil || tex.Width() != 64 || tex.Height() != 64 {
		t.Fatal("mask not generated at the requested size")
	}
	if tex.Filter != FilterLinear || tex.WrapS != WrapClampToEdge || tex.WrapT != WrapClampToEdge {
		t.Error("mask should carry the default linear clamp-to-edge sampling")
	}

	// hot at the base of the axis, cold at the outer tip
	base := tex.Image.RGBAAt(0, 0)
	tip := tex.Image.RGBAAt(63, 63)
	if base.R <= tip.R {
		t.Errorf("base density %d should exceed tip density %d", base.R, tip.R)
	}
	// the fire ramp keeps red dominant over blue
	for _, p := range []color.RGBA{base, tex.Image.RGBAAt(10, 20)} {
		if p.B > p.R {
			t.Errorf("fire ramp has blue %d above red %d", p.B, p.R)
		}
	}

	// seeded generation is reproducible
	again := GenerateFireMask(64, 64, 3)
	if string(again.Image.Pix) != string(tex.Image.Pix) {
		t.Error("same seed produced a different mask")
	}
	other := GenerateFireMask(64, 64, 4)
	if string(other.Image.Pix) == string(tex.Image.Pix) {
		t.Error("different seeds produced identical masks")
	}
}
