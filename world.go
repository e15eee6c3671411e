package archon

import "github.com/TheBitDrifter/bark"

// World owns every table, index, and the family interner for one ECS
// instance. A *World is only ever produced by NewWorld, which is this
// engine's replacement for the source's magic-cookie validation.
type World struct {
	handles    *handleRegistry
	components *componentRegistry
	families   *familyInterner
	prefabs    *prefabIndex

	index  *entityIndex
	tables map[FamilyId]*rowTable

	names       *nameCache
	familyNames map[Handle]FamilyId

	addStage    map[Handle]FamilyId
	removeStage map[Handle]FamilyId

	inProgress bool
	stage      *stage

	notifyHook NotifyFunc
	observers  []subscription

	// validSchedule is flipped false by every world-table structural
	// mutation (creation, commitWorld). It is unexported, has no accessor
	// and is never set back to true, so code outside this package cannot
	// read or reset it.
	validSchedule bool
}

// NewWorld constructs an empty world ready for component/family
// registration. There is no corresponding "magic cookie" field to check on
// every call — in Go, a nil *World or a zero-value World simply cannot
// satisfy this package's API without a nil-pointer panic on first use,
// which is the type-level equivalent of that check.
func NewWorld() *World {
	w := &World{
		handles:     newHandleRegistry(),
		components:  newComponentRegistry(),
		prefabs:     newPrefabIndex(),
		index:       newEntityIndex(),
		tables:      make(map[FamilyId]*rowTable),
		names:       newNameCache(Config.nameCacheCapacity),
		familyNames: make(map[Handle]FamilyId),
		addStage:    make(map[Handle]FamilyId),
		removeStage: make(map[Handle]FamilyId),
		notifyHook:  Config.notifyHook,
	}
	w.families = newFamilyInterner(w.components)
	return w
}

// FreeWorld releases a world's resources. Kept as an explicit lifecycle
// call, paired with NewWorld, even though Go's garbage collector would
// reclaim everything once w is unreferenced — callers that hold a notify
// hook closing over external resources (file handles, sockets in an
// observer library) get a clear point to unwind those.
func (w *World) FreeWorld() {
	w.tables = nil
	w.index = nil
	w.stage = nil
}

// getOrCreateTable returns the world table for familyID, creating it with
// the canonical column schema and attaching any already-registered
// observers whose filter could match it.
func (w *World) getOrCreateTable(familyID FamilyId) *rowTable {
	if t, ok := w.tables[familyID]; ok {
		return t
	}
	fam := w.families.lookup(familyID)
	t := newRowTable(fam, w.components)
	w.tables[familyID] = t
	for _, sub := range w.observers {
		w.attachObserver(t, w.families.lookup(sub.obs.filter), sub.obs, sub.onInit, sub.onDeinit)
	}
	return t
}

// ---- registration -------------------------------------------------------

// NewComponent registers a component entity carrying an Id{name} and a
// Component{size} record.
func (w *World) NewComponent(name string, size int) (Handle, error) {
	if _, exists := w.names.lookup(name); exists {
		return 0, ErrNameExists{Name: name}
	}
	h := w.handles.alloc()
	if _, err := w.components.register(h, name, size); err != nil {
		return 0, err
	}
	if err := w.names.register(name, h); err != nil {
		return 0, err
	}
	return h, nil
}

// parseFamilyExpr resolves a comma-separated component expression into its
// interned FamilyId, the shared half of new_family/new_prefab (entity.c's
// ecs_new_family and ecs_new_prefab both start by parsing sig with
// add_family before doing anything entity-specific).
func (w *World) parseFamilyExpr(expr string) (FamilyId, error) {
	var b FamilyBuilder
	resolve := func(n string) (Handle, bool) { return w.names.lookup(n) }
	if err := ParseExpr(expr, resolve, b.Add, nil); err != nil {
		return 0, err
	}
	return w.families.fromHandles(b.Positive()...)
}

// NewFamily interns a family from a comma-separated component expression
// and registers a fresh handle standing for that family under name. Every
// internal family-bearing operation (New, Has, ...) keys off the interned
// FamilyId directly, so NewFamily hands back both: the handle for callers
// that want one (it can be round-tripped through FamilyIDOf), and the
// FamilyId for direct use without an extra lookup.
func (w *World) NewFamily(name, expr string) (Handle, FamilyId, error) {
	if _, exists := w.names.lookup(name); exists {
		return 0, 0, ErrNameExists{Name: name}
	}
	id, err := w.parseFamilyExpr(expr)
	if err != nil {
		return 0, 0, err
	}
	h := w.handles.alloc()
	if err := w.names.register(name, h); err != nil {
		return 0, 0, err
	}
	w.familyNames[h] = id
	return h, id, nil
}

// FamilyIDOf resolves a handle previously returned by NewFamily/NewPrefab
// back to its interned FamilyId.
func (w *World) FamilyIDOf(h Handle) (FamilyId, bool) {
	id, ok := w.familyNames[h]
	return id, ok
}

// NewPrefab parses expr into a FamilyId exactly like NewFamily, then
// creates the prefab entity itself (the row instance, not a separate
// name-only family handle) and names that entity directly — mirroring
// entity.c's ecs_new_prefab, which creates `result` via ecs_new_w_family
// and writes `id_data->id = id` onto `result` itself, unlike ecs_new_family
// which names a distinct family-tracking entity. The same handle is both
// the nameable entity and the default-value source for copy_from_prefab.
func (w *World) NewPrefab(name, expr string) (Handle, error) {
	if _, exists := w.names.lookup(name); exists {
		return 0, ErrNameExists{Name: name}
	}
	id, err := w.parseFamilyExpr(expr)
	if err != nil {
		return 0, err
	}
	prefabHandle, err := w.newRaw(id)
	if err != nil {
		return 0, err
	}
	if err := w.names.register(name, prefabHandle); err != nil {
		return 0, err
	}
	w.familyNames[prefabHandle] = id
	w.prefabs.set(id, prefabHandle)
	return prefabHandle, nil
}

// ---- creation ------------------------------------------------------------

// New creates one entity in the table for family.
func (w *World) New(familyID FamilyId) (Handle, error) {
	return w.newRaw(familyID)
}

func (w *World) newRaw(familyID FamilyId) (Handle, error) {
	h := w.handles.alloc()
	t := w.getOrCreateTable(familyID)
	row := t.insert(h)
	w.copyPrefabDefaults(familyID, t, row)
	w.index.set(h, encodeLoc(familyID, uint32(row)))
	w.dispatch(InitKind, t, row, h, familyID, familyID)
	w.validSchedule = false
	return h, nil
}

// NewWCount bulk-creates count entities in one pre-reserved table pass
//.
func (w *World) NewWCount(familyID FamilyId, count int) ([]Handle, error) {
	if count <= 0 {
		return nil, nil
	}
	handles := w.handles.allocN(count)
	t := w.getOrCreateTable(familyID)

	// Reserve the whole batch's rows in a single append, rather than one
	// insert() per entity, so the backing array grows at most once.
	firstRow := t.count()
	t.rows = append(t.rows, make([]byte, count*t.elemSize)...)

	out := make([]Handle, count)
	for i, h := range handles {
		row := firstRow + i
		t.setRowEntity(row, h)
		w.copyPrefabDefaults(familyID, t, row)
		w.index.set(h, encodeLoc(familyID, uint32(row)))
		out[i] = h
		w.dispatch(InitKind, t, row, h, familyID, familyID)
	}
	w.validSchedule = false
	return out, nil
}

// copyPrefabDefaults walks the prefab chain for familyID copying default column values into destTable's row destRow via the
// same merge-walk copyRow uses for migrations.
func (w *World) copyPrefabDefaults(familyID FamilyId, destTable *rowTable, destRow int) {
	seen := map[FamilyId]bool{familyID: true}
	current := familyID
	for {
		prefab, ok := w.prefabs.get(current)
		if !ok {
			return
		}
		prefabLoc, ok := w.index.get(prefab)
		if !ok || prefabLoc == 0 {
			return
		}
		prefabTable := w.tables[prefabLoc.family()]
		copyRow(prefabTable, destTable, int(prefabLoc.row()), destRow)
		current = prefabLoc.family()
		if seen[current] {
			return
		}
		seen[current] = true
	}
}

// ---- staged mutation -----------------------------------------------------

// currentFamily returns entity's effective family right now — the stage
// overlay's if in progress and touched this cycle, else the world's, else
// 0 if the entity has no row anywhere.
func (w *World) currentFamily(entity Handle) FamilyId {
	if w.inProgress {
		if l, ok := w.stage.entityStage.get(entity); ok {
			if l == 0 {
				return 0
			}
			return l.family()
		}
	}
	if l, ok := w.index.get(entity); ok {
		return l.family()
	}
	return 0
}

// Add records the intent to attach component c to entity / §6 add). Nothing moves until Commit.
func (w *World) Add(entity Handle, c Handle) error {
	assertValidHandle(entity)
	fam, err := w.families.fromHandle(c)
	if err != nil {
		return err
	}
	w.addStage[entity] = w.families.merge(w.addStage[entity], fam, 0)
	if rem, ok := w.removeStage[entity]; ok {
		w.removeStage[entity] = w.families.merge(0, rem, fam)
	}
	return nil
}

// Remove records the intent to detach component c from entity.
func (w *World) Remove(entity Handle, c Handle) error {
	assertValidHandle(entity)
	fam, err := w.families.fromHandle(c)
	if err != nil {
		return err
	}
	w.removeStage[entity] = w.families.merge(w.removeStage[entity], fam, 0)
	if add, ok := w.addStage[entity]; ok {
		w.addStage[entity] = w.families.merge(0, add, fam)
	}
	return nil
}

// Commit resolves entity's pending add/remove intent into an effective
// family and migrates it.
// Outside a progress cycle this happens immediately against the world;
// inside one, it lands in the stage overlay and is reconciled at EndProgress.
func (w *World) Commit(entity Handle) (uint32, error) {
	assertValidHandle(entity)
	add := w.addStage[entity]
	rem := w.removeStage[entity]
	base := w.currentFamily(entity)
	effective := w.families.merge(base, add, rem)
	delete(w.addStage, entity)
	delete(w.removeStage, entity)

	if w.inProgress {
		w.stage.removeMerge[entity] = w.families.merge(w.stage.removeMerge[entity], rem, 0)
		w.stage.markTouched(entity)
		return w.stageWrite(entity, effective)
	}
	return w.commitWorld(entity, effective)
}

// stageWrite implements commit_w_family scoped to the stage overlay. The old row
// may live in the stage (entity already touched this cycle) or still in
// the world (first touch); either way the world row is left untouched —
// actual world-table mutation is deferred entirely to EndProgress's merge,
// matching the invariant that the world index is read-only during
// progress.
func (w *World) stageWrite(entity Handle, newFamily FamilyId) (uint32, error) {
	var (
		hadOld     bool
		oldFamily  FamilyId
		oldRow     uint32
		oldInStage bool
	)
	if l, ok := w.stage.entityStage.get(entity); ok && l != 0 {
		hadOld, oldFamily, oldRow, oldInStage = true, l.family(), l.row(), true
	} else if l, ok := w.index.get(entity); ok {
		hadOld, oldFamily, oldRow = true, l.family(), l.row()
	}

	if newFamily == 0 {
		w.stage.entityStage.set(entity, 0)
		return 0, nil
	}
	// Only a genuine no-op once the entity already owns a stage row at this
	// family: a later re-commit with no intervening add/remove must not
	// re-copy (idempotence, spec §8). A first touch whose effective family
	// happens not to change from the world's still needs its own stage row
	// copy-on-write — otherwise GetPtr/SetPtr's staged=true reads never see
	// it, and mergeEntity's staged-body copy never fires, silently losing
	// any data written to it mid-progress.
	if oldInStage && oldFamily == newFamily {
		return oldRow, nil
	}

	destTable := w.stage.getOrCreateTable(newFamily, w.families, w.components)
	newRow := uint32(destTable.insert(entity))

	if hadOld {
		var oldTable *rowTable
		if oldInStage {
			oldTable = w.stage.dataStage[oldFamily]
		} else {
			oldTable = w.tables[oldFamily]
		}
		copyRow(oldTable, destTable, int(oldRow), int(newRow))
		if oldInStage {
			if relocated := oldTable.delete(int(oldRow)); relocated != 0 {
				w.stage.entityStage.set(relocated, encodeLoc(oldFamily, oldRow))
			}
		}
	}
	w.copyPrefabDefaults(newFamily, destTable, int(newRow))
	w.stage.entityStage.set(entity, encodeLoc(newFamily, newRow))
	return newRow, nil
}

// commitWorld implements commit_w_family directly against the world index
// and tables, firing notifications. Used outside progress, by
// Delete, and by EndProgress's merge.
func (w *World) commitWorld(entity Handle, newFamily FamilyId) (uint32, error) {
	old, hadOld := w.index.get(entity)
	var oldFamily FamilyId
	var oldRow uint32
	if hadOld {
		oldFamily, oldRow = old.family(), old.row()
	}
	if hadOld && oldFamily == newFamily {
		return oldRow, nil
	}

	added := w.families.merge(0, newFamily, oldFamily)
	removed := w.families.merge(0, oldFamily, newFamily)

	if newFamily == 0 {
		if hadOld {
			oldTable := w.tables[oldFamily]
			w.dispatch(DeinitKind, oldTable, int(oldRow), entity, removed, oldFamily)
			if relocated := oldTable.delete(int(oldRow)); relocated != 0 {
				w.index.set(relocated, encodeLoc(oldFamily, oldRow))
			}
		}
		w.index.delete(entity)
		w.validSchedule = false
		return 0, nil
	}

	destTable := w.getOrCreateTable(newFamily)
	newRow := uint32(destTable.insert(entity))

	if hadOld {
		oldTable := w.tables[oldFamily]
		copyRow(oldTable, destTable, int(oldRow), int(newRow))
		w.dispatch(DeinitKind, oldTable, int(oldRow), entity, removed, oldFamily)
		if relocated := oldTable.delete(int(oldRow)); relocated != 0 {
			w.index.set(relocated, encodeLoc(oldFamily, oldRow))
		}
	}
	w.dispatch(InitKind, destTable, int(newRow), entity, added, newFamily)
	w.copyPrefabDefaults(newFamily, destTable, int(newRow))
	w.index.set(entity, encodeLoc(newFamily, newRow))
	w.validSchedule = false
	return newRow, nil
}

// Delete removes entity. Staged during progress, immediate otherwise.
func (w *World) Delete(entity Handle) error {
	assertValidHandle(entity)
	if w.inProgress {
		w.stage.deleteStage = append(w.stage.deleteStage, entity)
		return nil
	}
	_, err := w.commitWorld(entity, 0)
	return err
}

// ---- queries --------------------------------------------------------------

// Has reports whether entity's current family contains every component in
// target, walking the prefab chain.
func (w *World) Has(entity Handle, target FamilyId) bool {
	assertValidHandle(entity)
	fam := w.currentFamily(entity)
	return w.containsWithPrefabs(fam, target, true)
}

// HasAny reports whether entity's current family contains at least one
// component in target, walking the prefab chain.
func (w *World) HasAny(entity Handle, target FamilyId) bool {
	assertValidHandle(entity)
	fam := w.currentFamily(entity)
	return w.containsWithPrefabs(fam, target, false)
}

// Occupied reports whether entity has a stored row in the world index right
// now — truthy iff a non-zero location is recorded for it. Named Occupied
// rather than the source's ecs_empty (entity.c:719), whose name reads as
// "entity is empty" despite returning true when a row *exists* (spec §9's
// open question); the behavior is preserved under a name that states it.
func (w *World) Occupied(entity Handle) bool {
	assertValidHandle(entity)
	return w.index.occupied(entity)
}

// Id returns the name entity was registered under via NewComponent,
// NewFamily, or NewPrefab, mirroring the source's ecs_id (entity.c:707).
func (w *World) Id(entity Handle) (string, bool) {
	assertValidHandle(entity)
	return w.names.nameOf(entity)
}

// IsPrefab reports whether entity was created by NewPrefab.
func (w *World) IsPrefab(entity Handle) bool {
	assertValidHandle(entity)
	return w.prefabs.marked(entity)
}

// ---- progress / merge -----------------------------------------------------

// BeginProgress enters a progress cycle: Add/Remove/Commit/Delete (and
// SetPtr through them) land in a fresh stage overlay and leave the world
// index alone until EndProgress. Entity creation is not staged:
// New/NewWCount/NewPrefab still insert into the world tables and the world
// index immediately.
func (w *World) BeginProgress() error {
	if w.inProgress {
		return bark.AddTrace(errAlreadyInProgress{})
	}
	w.inProgress = true
	w.stage = newStage()
	return nil
}

type errAlreadyInProgress struct{}

func (errAlreadyInProgress) Error() string { return "world already has an active progress cycle" }

// EndProgress reconciles the stage into the world and applies deferred
// deletes: merges first, in touch order, then deletes.
func (w *World) EndProgress() error {
	if !w.inProgress {
		return bark.AddTrace(errNotInProgress{})
	}
	s := w.stage
	for _, entity := range s.touchedOrder {
		w.mergeEntity(entity, s)
	}
	for _, entity := range s.deleteStage {
		if _, err := w.commitWorld(entity, 0); err != nil {
			return err
		}
	}
	w.inProgress = false
	w.stage = nil
	return nil
}

type errNotInProgress struct{}

func (errNotInProgress) Error() string { return "world has no active progress cycle" }

// mergeEntity reconciles one touched entity: recompute the effective
// family from the pre-progress world family, the stage's final family, and
// the accumulated remove set, commit that against the world, then copy the
// staged row body over the top so in-progress overwrites survive.
func (w *World) mergeEntity(entity Handle, s *stage) {
	oldLoc, hadOld := w.index.get(entity)
	var oldFamily FamilyId
	if hadOld {
		oldFamily = oldLoc.family()
	}

	stagedLoc, hasStaged := s.entityStage.get(entity)
	if hasStaged && stagedLoc == 0 {
		// Deleted during progress: commit straight to the empty family.
		w.commitWorld(entity, 0)
		return
	}

	var stagedFamily FamilyId
	if hasStaged {
		stagedFamily = stagedLoc.family()
	}
	removeMerge := s.removeMerge[entity]
	effective := w.families.merge(oldFamily, stagedFamily, removeMerge)

	newRow, err := w.commitWorld(entity, effective)
	if err != nil || !hasStaged {
		return
	}
	stagedTable := s.dataStage[stagedFamily]
	newTable := w.tables[effective]
	copyRow(stagedTable, newTable, int(stagedLoc.row()), int(newRow))
}
