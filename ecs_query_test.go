package pyro

import (
	"testing"
)

type posComponent struct {
	x, y float32
}

type velComponent struct {
	dx, dy float32
}

type nameComponent struct {
	name string
}

func queryWorld(t *testing.T) (*App, *Commands) {
	t.Helper()
	app := NewAppBuilder().Build()
	return app, app.Commands()
}

func TestQuery_MatchesOnlyFullSets(t *testing.T) {
	app, cmd := queryWorld(t)

	moving := cmd.AddEntity(posComponent{x: 1}, velComponent{dx: 2})
	cmd.AddEntity(posComponent{x: 5})
	cmd.AddEntity(velComponent{dx: 9})
	app.FlushCommands()

	matched := map[EntityId]bool{}
	MakeQuery2[posComponent, velComponent](cmd).Map(func(eid EntityId, p *posComponent, v *velComponent) bool {
		matched[eid] = true
		if p == nil || v == nil {
			t.Fatal("required components must never be nil")
		}
		return true
	})

	if len(matched) != 1 || !matched[moving] {
		t.Errorf("expected exactly the moving entity, got %v", matched)
	}
}

func TestQuery_OptionalComponents(t *testing.T) {
	app, cmd := queryWorld(t)

	named := cmd.AddEntity(posComponent{x: 1}, nameComponent{name: "spark"})
	anon := cmd.AddEntity(posComponent{x: 2})
	app.FlushCommands()

	seen := map[EntityId]*nameComponent{}
	MakeQuery2[posComponent, nameComponent](cmd).Map(func(eid EntityId, p *posComponent, n *nameComponent) bool {
		seen[eid] = n
		return true
	}, nameComponent{})

	if len(seen) != 2 {
		t.Fatalf("optional query should visit both entities, visited %d", len(seen))
	}
	if seen[named] == nil || seen[named].name != "spark" {
		t.Errorf("named entity lost its component: %v", seen[named])
	}
	if seen[anon] != nil {
		t.Errorf("anonymous entity should get a nil optional, got %v", seen[anon])
	}
}

func TestQuery_EarlyStop(t *testing.T) {
	app, cmd := queryWorld(t)

	for i := 0; i < 5; i++ {
		cmd.AddEntity(posComponent{x: float32(i)})
	}
	app.FlushCommands()

	visits := 0
	MakeQuery1[posComponent](cmd).Map(func(eid EntityId, p *posComponent) bool {
		visits++
		return false
	})
	if visits != 1 {
		t.Errorf("mapping should stop after the callback returns false, visited %d", visits)
	}
}

func TestQuery_MutationThroughPointerSticks(t *testing.T) {
	app, cmd := queryWorld(t)

	eid := cmd.AddEntity(posComponent{x: 1, y: 1})
	app.FlushCommands()

	MakeQuery1[posComponent](cmd).Map(func(id EntityId, p *posComponent) bool {
		p.x = 42
		return true
	})

	got := ComponentOf[posComponent](cmd, eid)
	if got == nil || got.x != 42 {
		t.Errorf("mutation did not stick: %v", got)
	}
}

func TestComponentOf(t *testing.T) {
	app, cmd := queryWorld(t)

	eid := cmd.AddEntity(posComponent{x: 3}, velComponent{dy: 4})
	app.FlushCommands()

	if p := ComponentOf[posComponent](cmd, eid); p == nil || p.x != 3 {
		t.Errorf("ComponentOf pos = %v", p)
	}
	if n := ComponentOf[nameComponent](cmd, eid); n != nil {
		t.Errorf("expected nil for an absent component, got %v", n)
	}
	if p := ComponentOf[posComponent](cmd, EntityId(777)); p != nil {
		t.Errorf("expected nil for an unknown entity, got %v", p)
	}
}

func TestQuery_RemovedEntitiesDisappear(t *testing.T) {
	app, cmd := queryWorld(t)

	keep := cmd.AddEntity(posComponent{x: 1})
	drop := cmd.AddEntity(posComponent{x: 2})
	app.FlushCommands()

	cmd.RemoveEntity(drop)
	app.FlushCommands()

	count := 0
	MakeQuery1[posComponent](cmd).Map(func(eid EntityId, p *posComponent) bool {
		if eid == drop {
			t.Error("removed entity still visible to the query")
		}
		if eid == keep {
			count++
		}
		return true
	})
	if count != 1 {
		t.Errorf("surviving entity visited %d times", count)
	}
}
