package pyro

import (
	"fmt"
	"reflect"
)

// RendererTag marks that a renderer has been installed into the App.
// Only one renderer can be installed at a time.
type RendererTag struct {
	Name string
}

// ensureSingleRenderer enforces the single-renderer invariant. Installing a
// second, different renderer is a configuration error and panics.
func ensureSingleRenderer(app *App, name string) {
	if app == nil {
		panic("ensureSingleRenderer: app is nil")
	}
	t := reflect.TypeOf((*RendererTag)(nil)).Elem()
	if res, ok := app.resources[t]; ok {
		if tag, ok2 := res.(*RendererTag); ok2 {
			if tag.Name != name {
				app.Logger().Errorf("Multiple renderers installed: %s and %s", tag.Name, name)
				panic(fmt.Sprintf("Multiple renderers installed: %s and %s", tag.Name, name))
			}
			return
		}
		panic("RendererTag resource present with unexpected type")
	}
	app.addResources(&RendererTag{Name: name})
}

// ensureWindowResource guarantees a shared WindowState exists, creating one
// with the given overrides or defaults if missing.
func ensureWindowResource(app *App, width, height int, title string, api WindowAPI) {
	t := reflect.TypeOf((*WindowState)(nil)).Elem()
	if _, ok := app.resources[t]; ok {
		return
	}
	WindowModule{Width: width, Height: height, Title: title, API: api}.Install(app, app.Commands())
	ws := GetResource[WindowState](app)
	app.Logger().Infof("Created shared window (%dx%d) '%s'", ws.WindowWidth, ws.WindowHeight, ws.windowTitle)
}
