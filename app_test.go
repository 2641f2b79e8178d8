package pyro

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_addResources(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)

	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	// Adding the same resource type twice is a configuration error
	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)

	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")
}

func TestApp_GetResource(t *testing.T) {
	app := NewAppBuilder().Build()
	app.addResources(NewMockResource1("installed"))

	res := GetResource[MockResource1](app)
	require.NotNil(t, res)
	assert.Equal(t, "installed", res.name)

	assert.Nil(t, GetResource[MockResource2](app), "missing resource should resolve to nil")
}

func TestApp_callSystemInjectsDependencies(t *testing.T) {
	app := NewAppBuilder().Build()
	app.addResources(NewMockResource1("injected"))

	called := false
	app.callSystem(func(res *MockResource1, cmd *Commands) {
		called = true
		assert.Equal(t, "injected", res.name)
		require.NotNil(t, cmd)
		assert.Same(t, app, cmd.app)
	})
	assert.True(t, called, "system should have been invoked")
}

func TestApp_callSystemUnresolvableDependencyPanics(t *testing.T) {
	app := NewAppBuilder().Build()

	require.Panics(t, func() {
		app.callSystem(func(res *MockResource2) {})
	})
}

func TestApp_StepFlushesBufferedCommands(t *testing.T) {
	type marker struct {
		value int
	}

	app := NewAppBuilder().Build()

	var spawned EntityId
	ran := false
	app.UseSystem(System(func(cmd *Commands) {
		if ran {
			return
		}
		ran = true
		spawned = cmd.AddEntity(&marker{value: 7})
	}))

	app.Step()

	comp := ComponentOf[marker](app.Commands(), spawned)
	require.NotNil(t, comp, "entity should exist after the stage flush")
	assert.Equal(t, 7, comp.value)
}

func TestApp_RunStopsOnQuit(t *testing.T) {
	app := NewAppBuilder().Build()

	steps := 0
	app.UseSystem(System(func(cmd *Commands) {
		steps++
		if steps == 3 {
			cmd.Quit()
		}
	}))

	app.Run()
	assert.Equal(t, 3, steps)
}

func TestApp_UseStagePlacement(t *testing.T) {
	app := NewAppBuilder().Build()

	custom := Stage{Name: "Custom"}
	app.UseStage(custom, BeforeStage(Render))

	idx := func(name string) int {
		for i, s := range app.stages {
			if s.Name == name {
				return i
			}
		}
		return -1
	}
	require.NotEqual(t, -1, idx("Custom"))
	assert.Equal(t, idx(Render.Name)-1, idx("Custom"), "custom stage should sit directly before Render")

	require.Panics(t, func() {
		app.UseSystem(System(func() {}).InStage(Stage{Name: "Nope"}))
	})
}
