package pyro

import (
	"fmt"
	"reflect"
	"sync"
)

type EntityId uint64
type componentId uint32
type set[T comparable] = map[T]struct{}

// Ecs stores components per type. Each component value is boxed once on
// write, so the pointers handed to queries stay valid until the component
// is removed or overwritten.
type Ecs struct {
	stores   map[componentId]map[EntityId]any
	entities map[EntityId]set[componentId]

	idGeneratorLock sync.Mutex
	entityIdCounter EntityId

	componentIdCounterLock sync.Mutex
	componentIdCounter     componentId
	componentTypeIdMap     map[reflect.Type]componentId
	componentIdTypeMap     map[componentId]reflect.Type
}

func MakeEcs() Ecs {
	return Ecs{
		stores:             make(map[componentId]map[EntityId]any),
		entities:           make(map[EntityId]set[componentId]),
		entityIdCounter:    EntityId(0),
		componentIdCounter: componentId(0),
		componentTypeIdMap: make(map[reflect.Type]componentId),
		componentIdTypeMap: make(map[componentId]reflect.Type),
	}
}

func (ecs *Ecs) addEntity(components ...any) EntityId {
	entityId := ecs.nextEntityId()
	return ecs.insertEntity(entityId, components...)
}

func (ecs *Ecs) insertEntity(entityId EntityId, components ...any) EntityId {
	ecs.entities[entityId] = make(set[componentId])
	for _, component := range components {
		ecs.writeComponent(entityId, component)
	}
	return entityId
}

func (ecs *Ecs) removeEntity(entityId EntityId) {
	ids, ok := ecs.entities[entityId]
	if !ok {
		return
	}
	for id := range ids {
		delete(ecs.stores[id], entityId)
	}
	delete(ecs.entities, entityId)
}

func (ecs *Ecs) addComponents(entityId EntityId, components ...any) {
	if _, ok := ecs.entities[entityId]; !ok {
		return
	}
	for _, component := range components {
		ecs.writeComponent(entityId, component)
	}
}

func (ecs *Ecs) removeComponents(entityId EntityId, components ...any) {
	ids, ok := ecs.entities[entityId]
	if !ok {
		return
	}
	for _, component := range components {
		componentType := reflect.TypeOf(component)
		if componentType.Kind() == reflect.Pointer {
			componentType = componentType.Elem()
		}
		id := ecs.getComponentId(componentType)
		delete(ecs.stores[id], entityId)
		delete(ids, id)
	}
}

// writeComponent boxes the component value and indexes it under its type.
// Accepts either a struct or a pointer to one; a fresh copy is stored in
// both cases, matching AddEntity's value semantics.
func (ecs *Ecs) writeComponent(entityId EntityId, component any) {
	componentType := reflect.TypeOf(component)
	reflectValue := reflect.ValueOf(component)
	if componentType.Kind() == reflect.Pointer {
		componentType = componentType.Elem()
		reflectValue = reflectValue.Elem()
	}
	if componentType.Kind() != reflect.Struct {
		panic(fmt.Errorf("expected Component to be a struct or a pointer to a struct, got %s", componentType.Kind()))
	}

	boxed := reflect.New(componentType)
	boxed.Elem().Set(reflectValue)

	id := ecs.getComponentId(componentType)
	store, ok := ecs.stores[id]
	if !ok {
		store = make(map[EntityId]any)
		ecs.stores[id] = store
	}
	store[entityId] = boxed.Interface()
	ecs.entities[entityId][id] = struct{}{}
}

// componentsOf returns pointers to every component on the entity.
func (ecs *Ecs) componentsOf(entityId EntityId) []any {
	ids, ok := ecs.entities[entityId]
	if !ok {
		return nil
	}
	res := make([]any, 0, len(ids))
	for id := range ids {
		if boxed, ok := ecs.stores[id][entityId]; ok {
			res = append(res, boxed)
		}
	}
	return res
}

func (ecs *Ecs) nextEntityId() EntityId {
	ecs.idGeneratorLock.Lock()
	defer ecs.idGeneratorLock.Unlock()

	id := ecs.entityIdCounter
	ecs.entityIdCounter += 1

	return id
}

func (ecs *Ecs) getComponentId(componentType reflect.Type) componentId {
	ecs.componentIdCounterLock.Lock()
	defer ecs.componentIdCounterLock.Unlock()

	if id, ok := ecs.componentTypeIdMap[componentType]; ok {
		return id
	} else {
		id = ecs.componentIdCounter
		ecs.componentIdCounter += 1

		ecs.componentTypeIdMap[componentType] = id
		ecs.componentIdTypeMap[id] = componentType

		return id
	}
}

func (ecs *Ecs) getComponentType(componentId componentId) reflect.Type {
	if t, ok := ecs.componentIdTypeMap[componentId]; ok {
		return t
	}
	panic("ComponentID not registered")
}
