package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gekko3d/pyro"
	"github.com/gekko3d/pyro/firert/core"
	"github.com/gekko3d/pyro/firert/graph"
	"github.com/gekko3d/pyro/firert/shader"
)

func main() {
	backendName := flag.String("backend", "wgsl", "fire shader backend: wgsl (webgpu) or glsl (opengl)")
	scenePath := flag.String("scene", "", "scene definition JSON; the built-in campfire when empty")
	presetName := flag.String("preset", "", "override the first fire's preset: "+strings.Join(core.PresetNames(), ", "))
	width := flag.Int("width", 1280, "window width")
	height := flag.Int("height", 720, "window height")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	scene := pyro.DefaultFireScene()
	if *scenePath != "" {
		loaded, err := pyro.LoadSceneDef(*scenePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load scene: %v\n", err)
			os.Exit(1)
		}
		scene = loaded
	}
	if *presetName != "" && len(scene.Fires) > 0 {
		scene.Fires[0].Preset = *presetName
	}

	app := pyro.NewAppBuilder().
		UseModule(
			pyro.LoggingModule{Prefix: "pyro", Debug: *debug},
			pyro.TimeModule{},
			pyro.AssetServerModule{},
			pyro.HierarchyModule{},
			pyro.FireModule{},
			pyro.EmberModule{},
			pyro.OrbitCameraModule{},
			pyro.LifecycleModule{},
		).
		Build()

	var backend core.VolumeShaderBackend
	switch *backendName {
	case "wgsl":
		backend = shader.New()
		app.UseFireWGPU(*width, *height, "Pyro Fire")
	case "glsl":
		backend = graph.New()
		app.UseFireGL(*width, *height, "Pyro Fire")
	default:
		fmt.Fprintf(os.Stderr, "unknown backend %q (use wgsl or glsl)\n", *backendName)
		os.Exit(1)
	}

	assets := pyro.GetResource[pyro.AssetServer](app)
	if err := pyro.LoadScene(app.Commands(), assets, backend, scene); err != nil {
		fmt.Fprintf(os.Stderr, "load scene: %v\n", err)
		os.Exit(1)
	}
	app.FlushCommands()

	app.Run()
}
