package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TransformProvider hands the volume its placement in the world. Hosts
// implement it on whatever scene-node type owns the fire.
type TransformProvider interface {
	WorldMatrix() mgl32.Mat4
	WorldScale() mgl32.Vec3
}

// Transform is the stock provider: position, rotation and scale composed as
// translate * rotate * scale.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform() *Transform {
	return &Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t *Transform) WorldMatrix() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translate.Mul4(rotate).Mul4(scale)
}

func (t *Transform) WorldScale() mgl32.Vec3 {
	return t.Scale
}

// InverseMatrix inverts translate*rotate*scale from the components, cheaper
// than a general 4x4 inverse.
func (t *Transform) InverseMatrix() mgl32.Mat4 {
	invScale := mgl32.Scale3D(1/t.Scale.X(), 1/t.Scale.Y(), 1/t.Scale.Z())
	invRotate := t.Rotation.Conjugate().Mat4()
	invTranslate := mgl32.Translate3D(-t.Position.X(), -t.Position.Y(), -t.Position.Z())
	return invScale.Mul4(invRotate).Mul4(invTranslate)
}
