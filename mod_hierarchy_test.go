package pyro

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestHierarchy_ChildFollowsParent(t *testing.T) {
	app := NewAppBuilder().UseModule(HierarchyModule{}).Build()
	cmd := app.Commands()

	parent := cmd.AddEntity(&TransformComponent{
		Position: mgl32.Vec3{10, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{2, 2, 2},
	})
	child := cmd.AddEntity(
		&TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		&LocalTransformComponent{
			Position: mgl32.Vec3{0, 1, 0},
			Rotation: mgl32.QuatIdent(),
			Scale:    mgl32.Vec3{1, 1, 1},
		},
		&ParentComponent{Entity: parent},
	)
	app.FlushCommands()

	transformHierarchySystem(cmd)

	world := ComponentOf[TransformComponent](cmd, child)
	if world == nil {
		t.Fatal("child lost its world transform")
	}
	// local (0,1,0) scaled by the parent's 2 and offset by its position
	want := mgl32.Vec3{10, 2, 0}
	if !world.Position.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("child world position = %v, want %v", world.Position, want)
	}
	if !world.Scale.ApproxEqualThreshold(mgl32.Vec3{2, 2, 2}, 1e-5) {
		t.Errorf("child world scale = %v, want parent's", world.Scale)
	}
}

func TestHierarchy_RotationComposes(t *testing.T) {
	app := NewAppBuilder().Build()
	cmd := app.Commands()

	quarter := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	parent := cmd.AddEntity(&TransformComponent{
		Rotation: quarter,
		Scale:    mgl32.Vec3{1, 1, 1},
	})
	child := cmd.AddEntity(
		&TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		&LocalTransformComponent{
			Position: mgl32.Vec3{1, 0, 0},
			Rotation: mgl32.QuatIdent(),
			Scale:    mgl32.Vec3{1, 1, 1},
		},
		&ParentComponent{Entity: parent},
	)
	app.FlushCommands()

	transformHierarchySystem(cmd)

	world := ComponentOf[TransformComponent](cmd, child)
	// x axis rotated a quarter turn around y lands on -z
	want := mgl32.Vec3{0, 0, -1}
	if !world.Position.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("rotated child position = %v, want %v", world.Position, want)
	}
}

func TestHierarchy_DeepChainSettles(t *testing.T) {
	app := NewAppBuilder().Build()
	cmd := app.Commands()

	root := cmd.AddEntity(&TransformComponent{
		Position: mgl32.Vec3{1, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	})
	prev := root
	var leaf EntityId
	for i := 0; i < 4; i++ {
		leaf = cmd.AddEntity(
			&TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
			&LocalTransformComponent{
				Position: mgl32.Vec3{1, 0, 0},
				Rotation: mgl32.QuatIdent(),
				Scale:    mgl32.Vec3{1, 1, 1},
			},
			&ParentComponent{Entity: prev},
		)
		prev = leaf
	}
	app.FlushCommands()

	transformHierarchySystem(cmd)

	world := ComponentOf[TransformComponent](cmd, leaf)
	want := mgl32.Vec3{5, 0, 0}
	if !world.Position.ApproxEqualThreshold(want, 1e-4) {
		t.Errorf("leaf position = %v, want %v", world.Position, want)
	}
}

func TestHierarchy_RootMirrorsWorldIntoLocal(t *testing.T) {
	app := NewAppBuilder().Build()
	cmd := app.Commands()

	root := cmd.AddEntity(
		&TransformComponent{
			Position: mgl32.Vec3{3, 4, 5},
			Rotation: mgl32.QuatIdent(),
			Scale:    mgl32.Vec3{1, 2, 1},
		},
		&LocalTransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
	)
	app.FlushCommands()

	transformHierarchySystem(cmd)

	local := ComponentOf[LocalTransformComponent](cmd, root)
	if local.Position != (mgl32.Vec3{3, 4, 5}) || local.Scale != (mgl32.Vec3{1, 2, 1}) {
		t.Errorf("root local transform not mirrored: %+v", local)
	}
}

func TestHierarchy_OrphanChildKeepsWorld(t *testing.T) {
	app := NewAppBuilder().Build()
	cmd := app.Commands()

	child := cmd.AddEntity(
		&TransformComponent{
			Position: mgl32.Vec3{7, 7, 7},
			Rotation: mgl32.QuatIdent(),
			Scale:    mgl32.Vec3{1, 1, 1},
		},
		&LocalTransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		&ParentComponent{Entity: EntityId(4242)},
	)
	app.FlushCommands()

	transformHierarchySystem(cmd)

	world := ComponentOf[TransformComponent](cmd, child)
	if world.Position != (mgl32.Vec3{7, 7, 7}) {
		t.Errorf("orphan child moved: %v", world.Position)
	}
}
