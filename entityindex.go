package archon

// loc packs (FamilyId, row index) into the 64-bit word described in spec
// §4.3: familyId in the high 32 bits, row index in the low 32 bits.
type loc uint64

func encodeLoc(family FamilyId, row uint32) loc {
	return loc(uint64(family)<<32 | uint64(row))
}

func (l loc) family() FamilyId { return FamilyId(l >> 32) }
func (l loc) row() uint32      { return uint32(l) }

// entityIndex maps a Handle to its (FamilyId, row) location. The zero value of loc is overloaded: callers decide what "0"
// means for their map (see world.go for the world index, where absence of
// a key *is* the "no row" case, and stage.go for the stage overlay, where a
// present key mapped to 0 means "present but empty" — a tombstone distinct
// from "no override recorded here").
type entityIndex struct {
	m map[Handle]loc
}

func newEntityIndex() *entityIndex {
	return &entityIndex{m: make(map[Handle]loc)}
}

// get returns the stored location and whether the key is present at all
// (not whether it is non-zero — callers needing the three-state semantics
// check the returned loc themselves).
func (idx *entityIndex) get(h Handle) (loc, bool) {
	l, ok := idx.m[h]
	return l, ok
}

func (idx *entityIndex) set(h Handle, l loc) {
	idx.m[h] = l
}

func (idx *entityIndex) delete(h Handle) {
	delete(idx.m, h)
}

// occupied reports whether h has a row in this index: truthy iff a non-zero
// location is stored for it. See DESIGN.md for why this is named occupied
// rather than the source terminology it replaces.
func (idx *entityIndex) occupied(h Handle) bool {
	l, ok := idx.m[h]
	return ok && l != 0
}
