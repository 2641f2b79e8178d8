package pyro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockModuleResource struct {
	installs int
}

type MockModule struct {
	order *[]string
	name  string
}

func (m MockModule) Install(app *App, cmd *Commands) {
	*m.order = append(*m.order, m.name)
	res := GetResource[MockModuleResource](app)
	if res == nil {
		cmd.AddResources(&MockModuleResource{installs: 1})
		return
	}
	res.installs++
}

func TestAppBuilder_BuildInstallsModulesInOrder(t *testing.T) {
	var order []string
	app := NewAppBuilder().
		UseModule(
			MockModule{order: &order, name: "first"},
			MockModule{order: &order, name: "second"},
		).
		UseModule(MockModule{order: &order, name: "third"}).
		Build()

	assert.Equal(t, []string{"first", "second", "third"}, order)
	assert.Len(t, app.modules, 3)

	res := GetResource[MockModuleResource](app)
	require.NotNil(t, res)
	assert.Equal(t, 3, res.installs)
}

func TestAppBuilder_DefaultStages(t *testing.T) {
	app := NewAppBuilder().Build()

	require.Len(t, app.stages, len(defaultStages()))
	assert.Equal(t, Prelude.Name, app.stages[0].Name)
	assert.Equal(t, Finale.Name, app.stages[len(app.stages)-1].Name)
	for _, stage := range app.stages {
		_, ok := app.systems[stage.Name]
		assert.True(t, ok, "stage %s should have a system slot", stage.Name)
	}
}

func TestApp_UseModulesAfterBuild(t *testing.T) {
	var order []string
	app := NewAppBuilder().Build()
	app.UseModules(MockModule{order: &order, name: "late"})

	assert.Equal(t, []string{"late"}, order)
	require.NotNil(t, GetResource[MockModuleResource](app))
}
