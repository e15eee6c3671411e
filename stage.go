package archon

// stage is the per-progress-cycle overlay buffering every mutation made
// while a progress cycle is open. It only exists between BeginProgress and
// EndProgress; World.inProgress is false whenever World.stage is nil.
//
// entityStage mirrors entityIndex's three-valued word: a key absent means
// "no override, fall through to the world"; a key present with value 0
// means "deleted during this progress cycle" (so the merge must not fall
// through to the stale world row); a key present and non-zero is a row in
// one of dataStage's overlay tables.
type stage struct {
	entityStage *entityIndex
	dataStage   map[FamilyId]*rowTable

	removeMerge map[Handle]FamilyId // accumulated removes across the whole cycle

	deleteStage []Handle

	touchedOrder []Handle
	touchedSeen  map[Handle]bool
}

func newStage() *stage {
	return &stage{
		entityStage: newEntityIndex(),
		dataStage:   make(map[FamilyId]*rowTable),
		removeMerge: make(map[Handle]FamilyId),
		touchedSeen: make(map[Handle]bool),
	}
}

// getOrCreateTable returns the stage-local overlay table for family,
// creating it lazily with the same canonical schema a world table for that
// family would have.
func (s *stage) getOrCreateTable(familyID FamilyId, families *familyInterner, components *componentRegistry) *rowTable {
	if t, ok := s.dataStage[familyID]; ok {
		return t
	}
	t := newRowTable(families.lookup(familyID), components)
	s.dataStage[familyID] = t
	return t
}

// markTouched records entity in the order it was first committed this
// cycle — merge processes entities in the order the stage encountered them.
func (s *stage) markTouched(entity Handle) {
	if s.touchedSeen[entity] {
		return
	}
	s.touchedSeen[entity] = true
	s.touchedOrder = append(s.touchedOrder, entity)
}
