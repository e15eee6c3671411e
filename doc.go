/*
Package archon is an archetype-based entity-component engine.

Entities are bare handles; components are byte-sized records described once
at registration. Entities sharing an exact component set live packed
together in one table, keyed by an interned FamilyId, so a table's rows are
dense, fixed-stride byte blobs rather than per-field slices.

Core Concepts:

  - Handle: a unique identifier shared by entities, components, families and
    prefabs alike — they all come from one monotonic counter.
  - FamilyId: an interned, order-insensitive component set — the identity of
    a table.
  - Table: the packed row store for one family.
  - Stage: the buffered-mutation overlay active during a progress cycle,
    merged into the world at EndProgress.

Basic Usage:

	world := archon.NewWorld()

	position, _ := world.NewComponent("position", 16)
	velocity, _ := world.NewComponent("velocity", 16)

	_, moving, _ := world.NewFamily("moving", "position,velocity")

	e, _ := world.New(moving)
	world.SetPtr(e, position, posBytes)

	for it := world.Query(moving, true); it.Next(); {
		row := it.Row()
		_ = row
	}

Archon is meant to sit underneath a scheduler and a component-access layer
supplied by the caller; neither is part of this package.
*/
package archon
