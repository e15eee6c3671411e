package archon

import "github.com/TheBitDrifter/mask"

// FamilyId is an interned, order-insensitive, duplicate-free set of
// component handles. The empty set is always
// FamilyId(0).
type FamilyId uint32

// family is one interned record: its bitset (the identity key) and its
// canonical, registration-order handle sequence (needed by the table store
// for byte-offset addressing and by copyRow's merge-walk).
type family struct {
	id      FamilyId
	mask    mask.Mask
	handles []Handle
}

// familyInterner canonicalises sets of component handles into stable
// FamilyIds.
//
// Archetype identification works the same way a mask-keyed archetype map
// does elsewhere in this stack: mask.Mask equality is exactly set equality
// over up to maxComponents bits, so it doubles as the interning key without
// a second hashing scheme.
type familyInterner struct {
	components *componentRegistry
	byMask     map[mask.Mask]FamilyId
	families   []family // families[id] is the record for FamilyId(id)
}

func newFamilyInterner(components *componentRegistry) *familyInterner {
	fi := &familyInterner{
		components: components,
		byMask:     make(map[mask.Mask]FamilyId),
		families:   []family{{id: 0}}, // id 0: the empty set
	}
	fi.byMask[mask.Mask{}] = 0
	return fi
}

// lookup returns the interned record for id. Panics if id was never
// produced by this interner — every FamilyId reachable by a caller must
// have come from fromHandle/merge.
func (fi *familyInterner) lookup(id FamilyId) family {
	return fi.families[id]
}

// internMask returns the FamilyId for m, creating one if this is the first
// time this exact set has been seen.
func (fi *familyInterner) internMask(m mask.Mask) FamilyId {
	if id, ok := fi.byMask[m]; ok {
		return id
	}
	id := FamilyId(len(fi.families))
	fi.families = append(fi.families, family{
		id:      id,
		mask:    m,
		handles: fi.components.handlesOf(m),
	})
	fi.byMask[m] = id
	return id
}

// fromHandle interns the singleton family {h}.
func (fi *familyInterner) fromHandle(h Handle) (FamilyId, error) {
	m, err := fi.components.maskOf(h)
	if err != nil {
		return 0, err
	}
	return fi.internMask(m), nil
}

// fromHandles interns the set of handles (duplicates collapse naturally
// via the bitset).
func (fi *familyInterner) fromHandles(handles ...Handle) (FamilyId, error) {
	if len(handles) == 0 {
		return 0, nil
	}
	m, err := fi.components.maskOf(handles...)
	if err != nil {
		return 0, err
	}
	return fi.internMask(m), nil
}

// merge returns the id for (a ∪ b) \ remove.
// merge(0, 0, 0) == 0; merge(a, 0, 0) == a.
//
// Built bit-by-bit over mask.Mask.ContainsAll rather than assuming the mask
// package exposes Or/AndNot — Mark/ContainsAll/ContainsAny/IsEmpty are the
// narrower surface this engine relies on elsewhere, so merge stays within
// it instead of guessing at a wider one.
func (fi *familyInterner) merge(a, b, remove FamilyId) FamilyId {
	famA, famB, famR := fi.families[a], fi.families[b], fi.families[remove]
	var m mask.Mask
	n := uint32(len(fi.components.byBit))
	for bit := uint32(0); bit < n; bit++ {
		bm := bitMask(bit)
		if !famA.mask.ContainsAll(bm) && !famB.mask.ContainsAll(bm) {
			continue
		}
		if famR.mask.ContainsAll(bm) {
			continue
		}
		m.Mark(bit)
	}
	return fi.internMask(m)
}

// contains is the plain family containment test, without any prefab walk —
// prefab-aware containment lives on World (prefab.go), since it needs the
// world's PrefabIndex to walk the chain.
func contains(super, sub family, matchAll bool) bool {
	if matchAll {
		return super.mask.ContainsAll(sub.mask)
	}
	if sub.mask.IsEmpty() {
		return true
	}
	return super.mask.ContainsAny(sub.mask)
}
