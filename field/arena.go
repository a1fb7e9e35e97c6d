// Package field provides the grid the ecosystem lives on: an entity arena
// shared by every generation and the per-generation occupancy field.
package field

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/mobsim/components"
)

// Arena owns the component storage for every mob and plant of a run.
// Fields reference entities by handle; a handle whose entity has been
// destroyed fails the world's liveness check instead of dangling.
//
// Pointers returned by Mob and Plant are only valid until the next entity
// is created or destroyed.
type Arena struct {
	world *ecs.World

	mobMap   *ecs.Map1[components.Mob]
	plantMap *ecs.Map1[components.Plant]

	mobFilter   *ecs.Filter1[components.Mob]
	plantFilter *ecs.Filter1[components.Plant]
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	world := ecs.NewWorld()
	return &Arena{
		world:       world,
		mobMap:      ecs.NewMap1[components.Mob](world),
		plantMap:    ecs.NewMap1[components.Plant](world),
		mobFilter:   ecs.NewFilter1[components.Mob](world),
		plantFilter: ecs.NewFilter1[components.Plant](world),
	}
}

// NewMob stores a mob and returns its handle.
func (a *Arena) NewMob(m components.Mob) ecs.Entity {
	return a.mobMap.NewEntity(&m)
}

// NewPlant stores a plant and returns its handle.
func (a *Arena) NewPlant(p components.Plant) ecs.Entity {
	return a.plantMap.NewEntity(&p)
}

// Exists reports whether the handle still refers to a stored entity.
func (a *Arena) Exists(e ecs.Entity) bool {
	return !e.IsZero() && a.world.Alive(e)
}

// IsMob reports whether e is a stored mob.
func (a *Arena) IsMob(e ecs.Entity) bool {
	return a.Exists(e) && a.mobMap.HasAll(e)
}

// IsPlant reports whether e is a stored plant.
func (a *Arena) IsPlant(e ecs.Entity) bool {
	return a.Exists(e) && a.plantMap.HasAll(e)
}

// Mob returns the mob component of e, or nil.
func (a *Arena) Mob(e ecs.Entity) *components.Mob {
	if !a.IsMob(e) {
		return nil
	}
	return a.mobMap.Get(e)
}

// Plant returns the plant component of e, or nil.
func (a *Arena) Plant(e ecs.Entity) *components.Plant {
	if !a.IsPlant(e) {
		return nil
	}
	return a.plantMap.Get(e)
}

// Destroy removes the entity from storage. Destroying a stale handle is a no-op.
func (a *Arena) Destroy(e ecs.Entity) {
	if a.Exists(e) {
		a.world.RemoveEntity(e)
	}
}

// EachMob visits every stored mob in storage order (not registry order).
// fn must not create or destroy entities.
func (a *Arena) EachMob(fn func(e ecs.Entity, m *components.Mob)) {
	query := a.mobFilter.Query()
	for query.Next() {
		fn(query.Entity(), query.Get())
	}
}

// EachPlant visits every stored plant in storage order.
// fn must not create or destroy entities.
func (a *Arena) EachPlant(fn func(e ecs.Entity, p *components.Plant)) {
	query := a.plantFilter.Query()
	for query.Next() {
		fn(query.Entity(), query.Get())
	}
}

// Counts returns the number of stored mobs and plants.
func (a *Arena) Counts() (mobs, plants int) {
	a.EachMob(func(ecs.Entity, *components.Mob) { mobs++ })
	a.EachPlant(func(ecs.Entity, *components.Plant) { plants++ })
	return mobs, plants
}
