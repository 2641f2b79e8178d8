package core

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Preset is a named fire look expressed as a construction option list.
type Preset struct {
	Name    string
	Options []Option
}

var presets = map[string]Preset{
	"campfire": {
		Name: "campfire",
		Options: []Option{
			WithHexTint(0xff9933),
			WithMagnitude(1.4),
			WithGain(0.55),
		},
	},
	"torch": {
		Name: "torch",
		Options: []Option{
			WithHexTint(0xffcc66),
			WithMagnitude(1.0),
			WithNoiseScale(mgl32.Vec4{1, 2, 1, 0.5}),
			WithIterations(16),
		},
	},
	"inferno": {
		Name: "inferno",
		Options: []Option{
			WithHexTint(0xff3300),
			WithMagnitude(2.2),
			WithLacunarity(2.4),
			WithGain(0.6),
			WithIterations(30),
			WithOctaves(5),
		},
	},
	"ghostflame": {
		Name: "ghostflame",
		Options: []Option{
			WithHexTint(0x66ccff),
			WithMagnitude(0.9),
			WithGain(0.35),
			WithNoiseScale(mgl32.Vec4{1.5, 2.5, 1.5, 0.2}),
		},
	},
}

// PresetByName looks a preset up; names are the lowercase identifiers listed
// by PresetNames.
func PresetByName(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
