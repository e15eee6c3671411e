package archon

import (
	"encoding/binary"
	"testing"
)

// newTestWorld builds a world with three components (position, velocity,
// health, 8 bytes each) and a "moving" family over position+velocity.
func newTestWorld(t *testing.T) (w *World, position, velocity, health Handle, moving FamilyId) {
	t.Helper()
	w = NewWorld()

	var err error
	position, err = w.NewComponent("position", 8)
	if err != nil {
		t.Fatalf("NewComponent(position): %v", err)
	}
	velocity, err = w.NewComponent("velocity", 8)
	if err != nil {
		t.Fatalf("NewComponent(velocity): %v", err)
	}
	health, err = w.NewComponent("health", 8)
	if err != nil {
		t.Fatalf("NewComponent(health): %v", err)
	}
	_, moving, err = w.NewFamily("moving", "position,velocity")
	if err != nil {
		t.Fatalf("NewFamily(moving): %v", err)
	}
	return w, position, velocity, health, moving
}

func u64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func TestNewComponentRejectsDuplicateName(t *testing.T) {
	w := NewWorld()
	if _, err := w.NewComponent("position", 8); err != nil {
		t.Fatal(err)
	}
	if _, err := w.NewComponent("position", 8); err == nil {
		t.Fatal("expected error registering a duplicate component name")
	}
}

func TestNewAndHas(t *testing.T) {
	w, position, velocity, health, moving := newTestWorld(t)

	e, err := w.New(moving)
	if err != nil {
		t.Fatalf("New(moving): %v", err)
	}

	posFam, err := w.families.fromHandle(position)
	if err != nil {
		t.Fatal(err)
	}
	healthFam, err := w.families.fromHandle(health)
	if err != nil {
		t.Fatal(err)
	}
	_ = velocity

	if !w.Has(e, posFam) {
		t.Fatal("entity created in `moving` should Has(position)")
	}
	if w.Has(e, healthFam) {
		t.Fatal("entity created in `moving` should not Has(health)")
	}
	if w.HasAny(e, healthFam) {
		t.Fatal("HasAny(health) should be false for an entity with no health column")
	}
}

func TestSetPtrGetPtrRoundTrip(t *testing.T) {
	w, position, _, _, moving := newTestWorld(t)

	e, err := w.New(moving)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.SetPtr(e, position, u64Bytes(42)); err != nil {
		t.Fatalf("SetPtr: %v", err)
	}
	got, ok := w.GetPtr(e, position, false)
	if !ok {
		t.Fatal("GetPtr: component missing after SetPtr")
	}
	if v := binary.LittleEndian.Uint64(got); v != 42 {
		t.Fatalf("GetPtr value = %d, want 42", v)
	}
}

func TestSetPtrAddsMissingComponent(t *testing.T) {
	w, _, _, health, _ := newTestWorld(t)

	noHealth, _, err := w.NewFamily("empty", "0")
	if err != nil {
		t.Fatal(err)
	}
	e, err := w.New(noHealth)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := w.GetPtr(e, health, false); ok {
		t.Fatal("entity should not carry health before SetPtr")
	}
	if err := w.SetPtr(e, health, u64Bytes(7)); err != nil {
		t.Fatalf("SetPtr auto-add: %v", err)
	}
	got, ok := w.GetPtr(e, health, false)
	if !ok {
		t.Fatal("health missing after SetPtr auto-add")
	}
	if v := binary.LittleEndian.Uint64(got); v != 7 {
		t.Fatalf("health value = %d, want 7", v)
	}
}

func TestAddRemoveCommitOutsideProgress(t *testing.T) {
	w, position, velocity, health, moving := newTestWorld(t)

	e, err := w.New(moving)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.SetPtr(e, position, u64Bytes(1)); err != nil {
		t.Fatal(err)
	}
	if err := w.SetPtr(e, velocity, u64Bytes(2)); err != nil {
		t.Fatal(err)
	}

	if err := w.Add(e, health); err != nil {
		t.Fatal(err)
	}
	if err := w.Remove(e, velocity); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Commit(e); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	healthFam, _ := w.families.fromHandle(health)
	velFam, _ := w.families.fromHandle(velocity)
	if !w.Has(e, healthFam) {
		t.Fatal("entity should Has(health) after Add+Commit")
	}
	if w.Has(e, velFam) {
		t.Fatal("entity should not Has(velocity) after Remove+Commit")
	}

	// position must have survived the migration untouched.
	pos, ok := w.GetPtr(e, position, false)
	if !ok {
		t.Fatal("position missing after migration")
	}
	if v := binary.LittleEndian.Uint64(pos); v != 1 {
		t.Fatalf("position after migration = %d, want 1", v)
	}
}

func TestDeleteRemovesEntity(t *testing.T) {
	w, _, _, _, moving := newTestWorld(t)

	e, err := w.New(moving)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Delete(e); err != nil {
		t.Fatal(err)
	}
	if _, ok := w.index.get(e); ok {
		t.Fatal("entity still present in world index after Delete")
	}
}

func TestDeleteSwapRemoveRelocatesSurvivor(t *testing.T) {
	w, _, _, _, moving := newTestWorld(t)

	e1, _ := w.New(moving)
	e2, _ := w.New(moving)
	e3, _ := w.New(moving)
	_ = e2

	if err := w.Delete(e1); err != nil {
		t.Fatal(err)
	}

	// e3 (the last row before delete) should still resolve to a valid row.
	loc, ok := w.index.get(e3)
	if !ok {
		t.Fatal("e3 missing from world index after an unrelated delete")
	}
	tbl := w.tables[loc.family()]
	if tbl.rowEntity(int(loc.row())) != e3 {
		t.Fatal("world index out of sync with relocated row after swap-remove delete")
	}
}

func TestPrefabDefaults(t *testing.T) {
	w, position, _, _, moving := newTestWorld(t)

	prefab, err := w.NewPrefab("movingDefaults", "position,velocity")
	if err != nil {
		t.Fatalf("NewPrefab: %v", err)
	}
	if err := w.SetPtr(prefab, position, u64Bytes(99)); err != nil {
		t.Fatal(err)
	}

	e, err := w.New(moving)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := w.GetPtr(e, position, false)
	if !ok {
		t.Fatal("position missing on entity created without an explicit value")
	}
	if v := binary.LittleEndian.Uint64(got); v != 99 {
		t.Fatalf("position inherited from prefab = %d, want 99", v)
	}
}

func TestNewWCountBulkCreation(t *testing.T) {
	w, position, _, _, moving := newTestWorld(t)

	const n = 50
	handles, err := w.NewWCount(moving, n)
	if err != nil {
		t.Fatalf("NewWCount: %v", err)
	}
	if len(handles) != n {
		t.Fatalf("NewWCount returned %d handles, want %d", len(handles), n)
	}

	seen := make(map[Handle]bool, n)
	for _, h := range handles {
		if seen[h] {
			t.Fatalf("NewWCount produced duplicate handle %d", h)
		}
		seen[h] = true
		if _, ok := w.GetPtr(h, position, false); !ok {
			t.Fatalf("handle %d missing its position column after bulk creation", h)
		}
	}

	tbl := w.tables[moving]
	if tbl.count() != n {
		t.Fatalf("table row count = %d, want %d", tbl.count(), n)
	}
}

func TestStagingIsolationDuringProgress(t *testing.T) {
	w, _, _, health, moving := newTestWorld(t)

	e, err := w.New(moving)
	if err != nil {
		t.Fatal(err)
	}

	if err := w.BeginProgress(); err != nil {
		t.Fatal(err)
	}
	if err := w.Add(e, health); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Commit(e); err != nil {
		t.Fatal(err)
	}

	healthFam, _ := w.families.fromHandle(health)

	// Has sees the staged add, since currentFamily checks the stage overlay
	// first whenever a cycle is open.
	if !w.Has(e, healthFam) {
		t.Fatal("Has() should see the staged add while in progress")
	}

	// The world's own index must be untouched until EndProgress.
	worldLoc, ok := w.index.get(e)
	if !ok {
		t.Fatal("entity missing from world index mid-progress")
	}
	worldTable := w.tables[worldLoc.family()]
	worldFam := w.families.lookup(worldLoc.family())
	targetFam := w.families.lookup(healthFam)
	if contains(worldFam, targetFam, true) {
		t.Fatal("world table acquired the staged component before EndProgress")
	}
	_ = worldTable

	if err := w.EndProgress(); err != nil {
		t.Fatal(err)
	}
	if !w.Has(e, healthFam) {
		t.Fatal("Has() should see the merged add after EndProgress")
	}
}

func TestNotificationFiresOncePerCycle(t *testing.T) {
	w, _, _, health, moving := newTestWorld(t)

	system := Handle(1000)
	healthFam, err := w.families.fromHandle(health)
	if err != nil {
		t.Fatal(err)
	}

	var fired int
	w.notifyHook = func(ev NotifyEvent) {
		if ev.Kind == InitKind && ev.System == system {
			fired++
		}
	}
	w.Subscribe(system, healthFam, true, true)

	e, err := w.New(moving)
	if err != nil {
		t.Fatal(err)
	}

	if err := w.BeginProgress(); err != nil {
		t.Fatal(err)
	}
	if err := w.Add(e, health); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Commit(e); err != nil {
		t.Fatal(err)
	}
	// Commit again within the same cycle without changing anything further;
	// this must not cause a second notification at merge.
	if err := w.Add(e, health); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Commit(e); err != nil {
		t.Fatal(err)
	}
	if err := w.EndProgress(); err != nil {
		t.Fatal(err)
	}

	if fired != 1 {
		t.Fatalf("observer fired %d times, want exactly 1", fired)
	}
}

func TestQueryMatchesOnlyTablesWithFamily(t *testing.T) {
	w, _, _, health, moving := newTestWorld(t)

	e1, _ := w.New(moving)
	healthOnly, _, err := w.NewFamily("healthOnly", "health")
	if err != nil {
		t.Fatal(err)
	}
	e2, _ := w.New(healthOnly)

	healthFam, _ := w.families.fromHandle(health)
	cur := w.Query(healthFam, true)

	found := map[Handle]bool{}
	for cur.Next() {
		found[cur.Entity()] = true
	}
	if !found[e2] {
		t.Fatal("query for health did not match the health-only entity")
	}
	if found[e1] {
		t.Fatal("query for health incorrectly matched the moving-only entity")
	}
}

func TestSetPtrDuringProgressDoesNotTouchWorldRow(t *testing.T) {
	w, position, _, _, moving := newTestWorld(t)

	e, err := w.New(moving)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.SetPtr(e, position, u64Bytes(1)); err != nil {
		t.Fatal(err)
	}

	if err := w.BeginProgress(); err != nil {
		t.Fatal(err)
	}
	// e already has position in the world, but has not been touched by the
	// stage yet this cycle: SetPtr must stage a copy-on-write row rather
	// than writing straight into the committed world row.
	if err := w.SetPtr(e, position, u64Bytes(2)); err != nil {
		t.Fatalf("SetPtr during progress: %v", err)
	}

	worldLoc, ok := w.index.get(e)
	if !ok {
		t.Fatal("entity missing from world index mid-progress")
	}
	worldPos, ok := w.tables[worldLoc.family()].get(int(worldLoc.row()), position)
	if !ok {
		t.Fatal("position column missing from world row")
	}
	if v := binary.LittleEndian.Uint64(worldPos); v != 1 {
		t.Fatalf("world row position = %d, want 1 (unchanged mid-progress)", v)
	}

	staged, ok := w.GetPtr(e, position, true)
	if !ok {
		t.Fatal("staged position missing mid-progress")
	}
	if v := binary.LittleEndian.Uint64(staged); v != 2 {
		t.Fatalf("staged position = %d, want 2", v)
	}

	if err := w.EndProgress(); err != nil {
		t.Fatal(err)
	}
	got, ok := w.GetPtr(e, position, false)
	if !ok {
		t.Fatal("position missing after merge")
	}
	if v := binary.LittleEndian.Uint64(got); v != 2 {
		t.Fatalf("position after merge = %d, want 2", v)
	}
}

func TestOccupiedIdAndIsPrefab(t *testing.T) {
	w, _, _, _, moving := newTestWorld(t)

	e, err := w.New(moving)
	if err != nil {
		t.Fatal(err)
	}
	if !w.Occupied(e) {
		t.Fatal("Occupied(e) should be true for an entity with a world row")
	}
	if w.IsPrefab(e) {
		t.Fatal("a plain entity should not report IsPrefab")
	}

	prefab, err := w.NewPrefab("movingPrefab", "position,velocity")
	if err != nil {
		t.Fatal(err)
	}
	if !w.IsPrefab(prefab) {
		t.Fatal("NewPrefab's entity should report IsPrefab")
	}
	name, ok := w.Id(prefab)
	if !ok || name != "movingPrefab" {
		t.Fatalf("Id(prefab) = %q, %v; want \"movingPrefab\", true", name, ok)
	}

	if _, ok := w.Id(e); ok {
		t.Fatal("Id() should report false for an entity with no registered name")
	}

	if err := w.Delete(e); err != nil {
		t.Fatal(err)
	}
	if w.Occupied(e) {
		t.Fatal("Occupied(e) should be false after Delete")
	}
}
