package archon

// prefabIndex maps a FamilyId to the prefab entity supplying its default
// column values. Also tracks which handles are themselves prefabs, so
// World.IsPrefab can answer "is this a prefab" without a containment walk.
type prefabIndex struct {
	byFamily map[FamilyId]Handle
	isPrefab map[Handle]bool
}

func newPrefabIndex() *prefabIndex {
	return &prefabIndex{
		byFamily: make(map[FamilyId]Handle),
		isPrefab: make(map[Handle]bool),
	}
}

func (p *prefabIndex) set(family FamilyId, prefab Handle) {
	p.byFamily[family] = prefab
	p.isPrefab[prefab] = true
}

func (p *prefabIndex) get(family FamilyId) (Handle, bool) {
	h, ok := p.byFamily[family]
	return h, ok
}

func (p *prefabIndex) marked(h Handle) bool {
	return p.isPrefab[h]
}

// containsWithPrefabs tests super against sub, then — if that fails and
// super's family has a registered prefab — recurses into the prefab's
// family. A direct match always wins over a prefab-inherited one, so the
// direct test runs first and short-circuits.
func (w *World) containsWithPrefabs(superFamily, subFamily FamilyId, matchAll bool) bool {
	super := w.families.lookup(superFamily)
	sub := w.families.lookup(subFamily)
	if contains(super, sub, matchAll) {
		return true
	}
	seen := map[FamilyId]bool{superFamily: true}
	for {
		prefab, ok := w.prefabs.get(superFamily)
		if !ok {
			return false
		}
		prefabLoc, ok := w.index.get(prefab)
		if !ok {
			return false
		}
		superFamily = prefabLoc.family()
		if seen[superFamily] {
			return false // cyclical prefab chain; treat as exhausted
		}
		seen[superFamily] = true
		super = w.families.lookup(superFamily)
		if contains(super, sub, matchAll) {
			return true
		}
	}
}
