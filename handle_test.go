package archon

import "testing"

func TestHandleRegistryAlloc(t *testing.T) {
	r := newHandleRegistry()

	var got []Handle
	for i := 0; i < 5; i++ {
		got = append(got, r.alloc())
	}

	for i, h := range got {
		if !h.Valid() {
			t.Fatalf("handle %d: alloc() returned invalid handle %d", i, h)
		}
		if i > 0 && h <= got[i-1] {
			t.Fatalf("handle %d: alloc() not monotonic: %d <= %d", i, h, got[i-1])
		}
	}
}

func TestHandleRegistryAllocN(t *testing.T) {
	r := newHandleRegistry()

	first := r.alloc()
	batch := r.allocN(4)
	if len(batch) != 4 {
		t.Fatalf("allocN(4) returned %d handles", len(batch))
	}
	for i, h := range batch {
		if h <= first {
			t.Fatalf("batch[%d] = %d, want > %d", i, h, first)
		}
		if i > 0 && batch[i] != batch[i-1]+1 {
			t.Fatalf("batch not consecutive: batch[%d]=%d batch[%d]=%d", i-1, batch[i-1], i, batch[i])
		}
	}

	next := r.alloc()
	if next != batch[len(batch)-1]+1 {
		t.Fatalf("alloc() after allocN = %d, want %d", next, batch[len(batch)-1]+1)
	}
}

func TestHandleZeroInvalid(t *testing.T) {
	var h Handle
	if h.Valid() {
		t.Fatal("zero-value Handle reported Valid()")
	}
}

func TestAssertValidHandlePanicsOnZero(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("assertValidHandle(0) did not panic")
		}
	}()
	assertValidHandle(0)
}

func TestAssertValidHandleAcceptsNonZero(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("assertValidHandle(1) panicked: %v", r)
		}
	}()
	assertValidHandle(1)
}
