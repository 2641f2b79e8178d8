package pyro

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ParentComponent links an entity under another one. The hierarchy system
// derives the child's world transform from the parent's every frame.
type ParentComponent struct {
	Entity EntityId
}

// LocalTransformComponent is an entity's placement relative to its parent.
// On entities without a parent the world transform stays authoritative and
// the local copy mirrors it.
type LocalTransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// HierarchyModule propagates parent transforms to children after gameplay
// systems ran, so emitters and volumes mounted on a moving entity follow it.
type HierarchyModule struct{}

func (HierarchyModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(transformHierarchySystem).
			InStage(PostUpdate),
	)
}

const maxHierarchyDepth = 8

func transformHierarchySystem(cmd *Commands) {
	// Roots carrying both transforms keep the local copy mirrored.
	MakeQuery2[LocalTransformComponent, TransformComponent](cmd).Map(func(eid EntityId, local *LocalTransformComponent, world *TransformComponent) bool {
		if ComponentOf[ParentComponent](cmd, eid) != nil {
			return true
		}
		local.Position = world.Position
		local.Rotation = world.Rotation
		local.Scale = world.Scale
		return true
	})

	// Children re-derive world from parent. Repeated passes settle deep
	// chains; the loop stops as soon as a pass changes nothing.
	for pass := 0; pass < maxHierarchyDepth; pass++ {
		changed := false
		MakeQuery3[LocalTransformComponent, ParentComponent, TransformComponent](cmd).Map(func(eid EntityId, local *LocalTransformComponent, parent *ParentComponent, world *TransformComponent) bool {
			parentWorld := ComponentOf[TransformComponent](cmd, parent.Entity)
			if parentWorld == nil {
				return true
			}

			// Propagate componentwise to preserve scale signs.
			scaled := mgl32.Vec3{
				local.Position.X() * parentWorld.Scale.X(),
				local.Position.Y() * parentWorld.Scale.Y(),
				local.Position.Z() * parentWorld.Scale.Z(),
			}
			pos := parentWorld.Position.Add(parentWorld.Rotation.Rotate(scaled))
			rot := parentWorld.Rotation.Mul(local.Rotation).Normalize()
			scale := mgl32.Vec3{
				parentWorld.Scale.X() * local.Scale.X(),
				parentWorld.Scale.Y() * local.Scale.Y(),
				parentWorld.Scale.Z() * local.Scale.Z(),
			}

			if pos != world.Position || rot != world.Rotation || scale != world.Scale {
				world.Position = pos
				world.Rotation = rot
				world.Scale = scale
				changed = true
			}
			return true
		})
		if !changed {
			break
		}
	}
}
