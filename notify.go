package archon

// observerKind distinguishes which of a table's two observer lists a
// registration belongs to.
type observerKind uint8

const (
	// InitKind fires when an entity gains presence of a watched component.
	InitKind observerKind = iota
	// DeinitKind fires when an entity loses presence of a watched component.
	DeinitKind
)

// observer is one registered system: a handle identifying it and the family
// it watches.
type observer struct {
	system Handle
	filter FamilyId
}

// NotifyEvent is what the notify hook receives for each effective change:
// the observing system, the entity, its row index in the table, and the
// kind of change. The world, stage and table are not passed — a Go callback
// closes over whatever state it needs instead of taking it positionally.
type NotifyEvent struct {
	System Handle
	Entity Handle
	Row    int
	Kind   observerKind
}

// NotifyFunc is the external collaborator hook.
type NotifyFunc func(NotifyEvent)

// Subscribe registers system to be notified when entities matching filter
// gain (onInit) or lose (onDeinit) presence of any component in filter.
// This is the core's half of the external rule-matching scheduler's
// contract — the scheduler decides *when* systems
// run; it calls Subscribe once per system to wire up change notification.
func (w *World) Subscribe(system Handle, filter FamilyId, onInit, onDeinit bool) {
	obs := observer{system: system, filter: filter}
	w.observers = append(w.observers, subscription{obs: obs, onInit: onInit, onDeinit: onDeinit})
	filterFam := w.families.lookup(filter)
	for _, t := range w.tables {
		w.attachObserver(t, filterFam, obs, onInit, onDeinit)
	}
}

type subscription struct {
	obs              observer
	onInit, onDeinit bool
}

// attachObserver adds obs to t's init/deinit lists if t's family could ever
// satisfy obs's filter (a cheap ContainsAny prefilter — the authoritative
// test happens per dispatch in dispatch(), since prefab-chain containment
// can change after a table already exists).
func (w *World) attachObserver(t *rowTable, filterFam family, obs observer, onInit, onDeinit bool) {
	tFam := w.families.lookup(t.familyID)
	if filterFam.mask.IsEmpty() || tFam.mask.ContainsAny(filterFam.mask) {
		if onInit {
			t.initSystems = append(t.initSystems, obs)
		}
		if onDeinit {
			t.deinitSystems = append(t.deinitSystems, obs)
		}
	}
}

// dispatch fires the notify hook for every observer in table's list (per
// kind) whose filter both intersects changed (the set of components that
// just gained/lost presence) and is satisfied by entityFamily under
// match_all+match_prefabs semantics.
//
// Dispatch order follows list order, which is registration order since attachObserver only ever appends.
func (w *World) dispatch(kind observerKind, table *rowTable, row int, entity Handle, changed, entityFamily FamilyId) {
	if w.notifyHook == nil || changed == 0 {
		return
	}
	list := table.initSystems
	if kind == DeinitKind {
		list = table.deinitSystems
	}
	changedFam := w.families.lookup(changed)
	for _, obs := range list {
		filterFam := w.families.lookup(obs.filter)
		if !changedFam.mask.ContainsAny(filterFam.mask) {
			continue
		}
		if !w.containsWithPrefabs(entityFamily, obs.filter, true) {
			continue
		}
		w.notifyHook(NotifyEvent{System: obs.system, Entity: entity, Row: row, Kind: kind})
	}
}
