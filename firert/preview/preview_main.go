// Software fire renderer: marches the reference density field on the CPU and
// writes a PNG. Useful for eyeballing presets and masks without a GPU.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/pyro/firert/core"
	"github.com/gekko3d/pyro/firert/noise"
	"github.com/gekko3d/pyro/firert/shader"
)

func main() {
	out := flag.String("out", "fire.png", "output PNG path")
	width := flag.Int("width", 640, "image width")
	height := flag.Int("height", 480, "image height")
	presetName := flag.String("preset", "campfire", "fire preset: "+strings.Join(core.PresetNames(), ", "))
	timeAt := flag.Float64("time", 1.5, "animation time in seconds")
	maskSeed := flag.Int64("mask-seed", 7, "procedural mask seed")
	noiseSeed := flag.Int64("noise-seed", 1, "turbulence kernel seed")
	flag.Parse()

	mask := core.GenerateFireMask(128, 128, *maskSeed)

	var opts []core.Option
	if *presetName != "" {
		preset, ok := core.PresetByName(*presetName)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown preset %q\n", *presetName)
			os.Exit(1)
		}
		opts = preset.Options
	}

	tr := core.NewTransform()
	tr.Position = mgl32.Vec3{0, 1.5, 0}
	tr.Scale = mgl32.Vec3{1.5, 3, 1.5}

	volume, err := core.NewVolume(shader.New(), tr, mask, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build fire: %v\n", err)
		os.Exit(1)
	}
	volume.Update(float32(*timeAt))

	field := core.NewDensityField(volume.Params(), noise.NewPerlin(*noiseSeed))
	img := render(field, tr, *width, *height)

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		fmt.Fprintf(os.Stderr, "encode %s: %v\n", *out, err)
		os.Exit(1)
	}
}

func render(field *core.DensityField, tr *core.Transform, width, height int) *image.RGBA {
	cameraPos := mgl32.Vec3{0, 2.2, 4.5}
	lookAt := mgl32.Vec3{0, 1.5, 0}
	const fov = math.Pi / 3

	forward := lookAt.Sub(cameraPos).Normalize()
	right := forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	up := right.Cross(forward)

	tanFov := float32(math.Tan(fov / 2))
	aspect := float32(width) / float32(height)
	background := mgl32.Vec3{0.01, 0.01, 0.02}
	invModel := tr.InverseMatrix()

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	nproc := runtime.NumCPU()
	rows := (height + nproc - 1) / nproc
	var wg sync.WaitGroup
	for w := 0; w < nproc; w++ {
		min := w * rows
		max := min + rows
		if max > height {
			max = height
		}

		wg.Add(1)
		go func(min, max int) {
			defer wg.Done()
			for j := min; j < max; j++ {
				for i := 0; i < width; i++ {
					px := (2*(float32(i)+0.5)/float32(width) - 1) * tanFov * aspect
					py := (1 - 2*(float32(j)+0.5)/float32(height)) * tanFov
					dir := forward.Add(right.Mul(px)).Add(up.Mul(py)).Normalize()

					rgb := background
					if t, hit := rayBoxEntry(cameraPos, dir, invModel); hit {
						entry := cameraPos.Add(dir.Mul(t))
						col := field.March(cameraPos, entry)
						a := clamp01(col.W())
						rgb = mgl32.Vec3{
							clamp01(col.X()) + background.X()*(1-a),
							clamp01(col.Y()) + background.Y()*(1-a),
							clamp01(col.Z()) + background.Z()*(1-a),
						}
					}
					img.SetRGBA(i, j, color.RGBA{
						R: uint8(clamp01(rgb.X()) * 255),
						G: uint8(clamp01(rgb.Y()) * 255),
						B: uint8(clamp01(rgb.Z()) * 255),
						A: 255,
					})
				}
			}
		}(min, max)
	}
	wg.Wait()
	return img
}

// rayBoxEntry intersects a world-space ray with the volume's local unit cube
// and returns the world ray parameter where it enters.
func rayBoxEntry(origin, dir mgl32.Vec3, invModel mgl32.Mat4) (float32, bool) {
	o := mgl32.TransformCoordinate(origin, invModel)
	d := mgl32.TransformNormal(dir, invModel)

	tMin := float32(0)
	tMax := float32(math.MaxFloat32)
	for a := 0; a < 3; a++ {
		if abs32(d[a]) < 1e-8 {
			if o[a] < -0.5 || o[a] > 0.5 {
				return 0, false
			}
			continue
		}
		t1 := (-0.5 - o[a]) / d[a]
		t2 := (0.5 - o[a]) / d[a]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
