package archon

import "github.com/TheBitDrifter/bark"

// GetPtr returns a borrowed view of entity's column for component c. When
// staged is true and the caller is inside a progress cycle, only the stage
// overlay is consulted. When staged is false, the stage is probed first (if
// in progress) and falls back to the world row.
//
// If the component is absent on the resolved row and that row's family has
// a registered prefab, GetPtr recurses into the prefab's own GetPtr, which
// may itself chain. Returns (nil, false) if no such component is reachable
// anywhere in the chain.
//
// The returned slice aliases the table's backing array: it is invalidated
// by any structural mutation (insert/delete) on that family's table.
func (w *World) GetPtr(entity Handle, c Handle, staged bool) ([]byte, bool) {
	assertValidHandle(entity)
	return w.getPtrChain(entity, c, staged, nil)
}

func (w *World) getPtrChain(entity Handle, c Handle, staged bool, seen map[FamilyId]bool) ([]byte, bool) {
	table, row, ok := w.resolveRow(entity, staged)
	if !ok {
		return nil, false
	}
	if b, ok := table.get(row, c); ok {
		return b, true
	}
	prefab, ok := w.prefabs.get(table.familyID)
	if !ok {
		return nil, false
	}
	if seen == nil {
		seen = make(map[FamilyId]bool)
	}
	if seen[table.familyID] {
		return nil, false
	}
	seen[table.familyID] = true
	// The prefab chain is read straight from the world (prefabs are not
	// staged entities): staged=false for the recursive call.
	return w.getPtrChain(prefab, c, false, seen)
}

// resolveRow finds the table and row index currently backing entity,
// honoring staged/world read precedence.
func (w *World) resolveRow(entity Handle, staged bool) (*rowTable, int, bool) {
	if w.inProgress {
		if l, ok := w.stage.entityStage.get(entity); ok {
			if l == 0 {
				return nil, 0, false // deleted-in-progress
			}
			return w.stage.dataStage[l.family()], int(l.row()), true
		}
		if staged {
			return nil, 0, false
		}
	}
	l, ok := w.index.get(entity)
	if !ok || l == 0 {
		return nil, 0, false
	}
	return w.tables[l.family()], int(l.row()), true
}

// SetPtr copies src into entity's column for component c, adding and
// committing the component first if the entity does not already have it.
// Fails with ErrComponentNotRegistered if c's size is unknown; a missing
// component is auto-recovered rather than surfaced as an error.
//
// Both probes pass staged=true, mirroring the source's
// get_ptr(world, entity, component, /*staged_only=*/true): outside a
// progress cycle resolveRow ignores the flag and this behaves exactly like
// staged=false, but inside one it keeps SetPtr from falling through to the
// world row of an entity untouched in the stage, which would otherwise
// write straight into the committed world table mid-progress.
func (w *World) SetPtr(entity Handle, c Handle, src []byte) error {
	meta, ok := w.components.get(c)
	if !ok {
		return ErrComponentNotRegistered{Handle: c}
	}
	dst, ok := w.GetPtr(entity, c, true)
	if !ok {
		if err := w.Add(entity, c); err != nil {
			return err
		}
		if _, err := w.Commit(entity); err != nil {
			return err
		}
		dst, ok = w.GetPtr(entity, c, true)
		if !ok {
			// add+commit just succeeded; the entity's row must now carry c.
			// A miss here means the commit/table invariant broke — a
			// programmer/engine bug, not a recoverable condition.
			panic(bark.AddTrace(ErrComponentNotRegistered{Handle: c}))
		}
	}
	n := meta.size
	if len(src) < n {
		n = len(src)
	}
	copy(dst, src[:n])
	return nil
}
