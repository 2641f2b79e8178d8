package pyro

// RendererName identifies a concrete renderer module.
// Keep names aligned with ensureSingleRenderer tags.
type RendererName string

const (
	RendererWGPU RendererName = "wgpu"
	RendererGL   RendererName = "gl"
)

// Renderer is an alias to Module for semantic clarity in APIs.
type Renderer interface {
	Module
}

// UseRenderer installs exactly one renderer module, enforcing exclusivity
// via ensureSingleRenderer. The renderer's own Install is expected to claim
// the window with the client API it needs.
func (app *App) UseRenderer(name RendererName, mod Renderer) *App {
	ensureSingleRenderer(app, string(name))
	app.Logger().Infof("Renderer selected: %s", name)
	app.UseModules(mod)
	return app
}

// UseFireWGPU selects the wgpu renderer with a shared window of the given
// size. The fire volumes themselves are spawned via LoadScene.
func (app *App) UseFireWGPU(width, height int, title string) *App {
	return app.UseRenderer(RendererWGPU, FireWgpuModule{
		WindowWidth:  width,
		WindowHeight: height,
		WindowTitle:  title,
	})
}

// UseFireGL selects the OpenGL renderer for node-graph built programs.
func (app *App) UseFireGL(width, height int, title string) *App {
	return app.UseRenderer(RendererGL, FireGLModule{
		WindowWidth:  width,
		WindowHeight: height,
		WindowTitle:  title,
	})
}
