package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// HexColor converts 0xRRGGBB into an RGB vector with components in [0, 1].
func HexColor(hex uint32) mgl32.Vec3 {
	return mgl32.Vec3{
		float32((hex>>16)&0xff) / 255,
		float32((hex>>8)&0xff) / 255,
		float32(hex&0xff) / 255,
	}
}

var namedColors = map[string]uint32{
	"white":      0xffffff,
	"black":      0x000000,
	"red":        0xff0000,
	"green":      0x00ff00,
	"blue":       0x0000ff,
	"yellow":     0xffff00,
	"orange":     0xffa500,
	"orangered":  0xff4500,
	"darkorange": 0xff8c00,
	"gold":       0xffd700,
	"crimson":    0xdc143c,
}

// ParseColor accepts the tint encodings scene definitions carry: an
// mgl32.Vec3 or [3]float32, a hex integer (int, uint32, or float64 as JSON
// numbers decode), "#rgb"/"#rrggbb"/"0xrrggbb", "rgb(r, g, b)" with 0-255
// components, or a named color.
func ParseColor(v any) (mgl32.Vec3, error) {
	switch c := v.(type) {
	case mgl32.Vec3:
		return c, nil
	case [3]float32:
		return mgl32.Vec3(c), nil
	case uint32:
		return HexColor(c), nil
	case int:
		return HexColor(uint32(c)), nil
	case float64:
		return HexColor(uint32(c)), nil
	case string:
		return parseColorString(c)
	default:
		return mgl32.Vec3{}, fmt.Errorf("unsupported color value of type %T", v)
	}
}

func parseColorString(s string) (mgl32.Vec3, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[s]; ok {
		return HexColor(hex), nil
	}
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHexDigits(s[1:])
	case strings.HasPrefix(s, "0x"):
		return parseHexDigits(s[2:])
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseRGBFunc(s[4 : len(s)-1])
	}
	return mgl32.Vec3{}, fmt.Errorf("cannot parse color %q", s)
}

func parseHexDigits(s string) (mgl32.Vec3, error) {
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return mgl32.Vec3{}, fmt.Errorf("hex color needs 3 or 6 digits, got %q", s)
	}
	hex, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("hex color %q: %w", s, err)
	}
	return HexColor(uint32(hex)), nil
}

func parseRGBFunc(s string) (mgl32.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("rgb() needs 3 components, got %d", len(parts))
	}
	var out mgl32.Vec3
	for i, part := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("rgb() component %d: %w", i, err)
		}
		out[i] = float32(n) / 255
	}
	return out, nil
}
