package pyro

import (
	"reflect"
)

// Queries iterate entities carrying all requested component types. A type
// listed in the optionals of Map is allowed to be absent; its pointer is
// then nil for that entity. Mapping stops early when the callback returns
// false.
type Query1[A any] struct{ ecs *Ecs }
type Query2[A, B any] struct{ ecs *Ecs }
type Query3[A, B, C any] struct{ ecs *Ecs }
type Query4[A, B, C, D any] struct{ ecs *Ecs }
type Query5[A, B, C, D, E any] struct{ ecs *Ecs }

func MakeQuery1[A any](cmd *Commands) Query1[A]             { return Query1[A]{ecs: cmd.app.ecs} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B]       { return Query2[A, B]{ecs: cmd.app.ecs} }
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] { return Query3[A, B, C]{ecs: cmd.app.ecs} }
func MakeQuery4[A, B, C, D any](cmd *Commands) Query4[A, B, C, D] {
	return Query4[A, B, C, D]{ecs: cmd.app.ecs}
}
func MakeQuery5[A, B, C, D, E any](cmd *Commands) Query5[A, B, C, D, E] {
	return Query5[A, B, C, D, E]{ecs: cmd.app.ecs}
}

func (q Query1[A]) Map(m func(EntityId, *A) bool, optionals ...any) {
	id1 := componentIdOf[A](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for entityId := range q.ecs.entities {
		a, ok := componentFor[A](q.ecs, entityId, id1, opt)
		if !ok {
			continue
		}
		if !m(entityId, a) {
			return
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool, optionals ...any) {
	id1 := componentIdOf[A](q.ecs)
	id2 := componentIdOf[B](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for entityId := range q.ecs.entities {
		a, ok := componentFor[A](q.ecs, entityId, id1, opt)
		if !ok {
			continue
		}
		b, ok := componentFor[B](q.ecs, entityId, id2, opt)
		if !ok {
			continue
		}
		if !m(entityId, a, b) {
			return
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool, optionals ...any) {
	id1 := componentIdOf[A](q.ecs)
	id2 := componentIdOf[B](q.ecs)
	id3 := componentIdOf[C](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for entityId := range q.ecs.entities {
		a, ok := componentFor[A](q.ecs, entityId, id1, opt)
		if !ok {
			continue
		}
		b, ok := componentFor[B](q.ecs, entityId, id2, opt)
		if !ok {
			continue
		}
		c, ok := componentFor[C](q.ecs, entityId, id3, opt)
		if !ok {
			continue
		}
		if !m(entityId, a, b, c) {
			return
		}
	}
}

func (q Query4[A, B, C, D]) Map(m func(EntityId, *A, *B, *C, *D) bool, optionals ...any) {
	id1 := componentIdOf[A](q.ecs)
	id2 := componentIdOf[B](q.ecs)
	id3 := componentIdOf[C](q.ecs)
	id4 := componentIdOf[D](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for entityId := range q.ecs.entities {
		a, ok := componentFor[A](q.ecs, entityId, id1, opt)
		if !ok {
			continue
		}
		b, ok := componentFor[B](q.ecs, entityId, id2, opt)
		if !ok {
			continue
		}
		c, ok := componentFor[C](q.ecs, entityId, id3, opt)
		if !ok {
			continue
		}
		d, ok := componentFor[D](q.ecs, entityId, id4, opt)
		if !ok {
			continue
		}
		if !m(entityId, a, b, c, d) {
			return
		}
	}
}

func (q Query5[A, B, C, D, E]) Map(m func(EntityId, *A, *B, *C, *D, *E) bool, optionals ...any) {
	id1 := componentIdOf[A](q.ecs)
	id2 := componentIdOf[B](q.ecs)
	id3 := componentIdOf[C](q.ecs)
	id4 := componentIdOf[D](q.ecs)
	id5 := componentIdOf[E](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for entityId := range q.ecs.entities {
		a, ok := componentFor[A](q.ecs, entityId, id1, opt)
		if !ok {
			continue
		}
		b, ok := componentFor[B](q.ecs, entityId, id2, opt)
		if !ok {
			continue
		}
		c, ok := componentFor[C](q.ecs, entityId, id3, opt)
		if !ok {
			continue
		}
		d, ok := componentFor[D](q.ecs, entityId, id4, opt)
		if !ok {
			continue
		}
		e, ok := componentFor[E](q.ecs, entityId, id5, opt)
		if !ok {
			continue
		}
		if !m(entityId, a, b, c, d, e) {
			return
		}
	}
}

// ComponentOf fetches one entity's component of type T, or nil when the
// entity does not carry one.
func ComponentOf[T any](cmd *Commands, entityId EntityId) *T {
	ecs := cmd.app.ecs
	id := componentIdOf[T](ecs)
	if store, ok := ecs.stores[id]; ok {
		if boxed, ok := store[entityId]; ok {
			return boxed.(*T)
		}
	}
	return nil
}

// componentFor resolves one query slot for one entity. The second result is
// false when the entity should be skipped entirely.
func componentFor[T any](ecs *Ecs, entityId EntityId, id componentId, opt set[componentId]) (*T, bool) {
	if store, ok := ecs.stores[id]; ok {
		if boxed, ok := store[entityId]; ok {
			return boxed.(*T), true
		}
	}
	if _, optional := opt[id]; optional {
		return nil, true
	}
	return nil, false
}

func componentIdOf[T any](ecs *Ecs) componentId {
	var probe T
	return ecs.getComponentId(reflect.TypeOf(probe))
}

func identifyOptionals(ecs *Ecs, components ...any) set[componentId] {
	res := make(set[componentId])
	for _, c := range components {
		res[ecs.getComponentId(reflect.TypeOf(c))] = struct{}{}
	}

	return res
}
