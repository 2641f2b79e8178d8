package pyro

import (
	"reflect"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowAPI selects the client API the GLFW window is created with.
// The wgpu renderer wants a bare surface; the GL renderer needs a core
// profile context.
type WindowAPI int

const (
	WindowAPINone WindowAPI = iota
	WindowAPIOpenGL
)

type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string
	api          WindowAPI
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string, api WindowAPI) *WindowState {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}

	switch api {
	case WindowAPIOpenGL:
		glfw.WindowHint(glfw.ContextVersionMajor, 4)
		glfw.WindowHint(glfw.ContextVersionMinor, 1)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	default:
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	}
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		panic(err)
	}

	if api == WindowAPIOpenGL {
		win.MakeContextCurrent()
		glfw.SwapInterval(1)
	}

	return &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		windowTitle:  windowTitle,
		api:          api,
	}
}

// WindowModule provides a single shared WindowState resource.
// Install is idempotent: an existing WindowState is reused, preserving the
// single-window invariant.
type WindowModule struct {
	Width  int
	Height int
	Title  string
	API    WindowAPI
}

func (m WindowModule) Install(app *App, cmd *Commands) {
	t := reflect.TypeOf((*WindowState)(nil)).Elem()
	if _, ok := app.resources[t]; ok {
		return
	}

	width, height, title := m.Width, m.Height, m.Title
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "Pyro"
	}

	ws := createWindowState(width, height, title, m.API)
	app.addResources(ws)
	app.UseSystem(
		System(windowEventsSystem).
			InStage(Prelude),
	)
}

func windowEventsSystem(ws *WindowState, cmd *Commands) {
	glfw.PollEvents()
	if ws.windowGlfw.ShouldClose() || ws.windowGlfw.GetKey(glfw.KeyEscape) == glfw.Press {
		cmd.Quit()
	}
}
