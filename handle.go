package archon

import "github.com/TheBitDrifter/bark"

// Handle is an opaque, non-zero entity identifier. Zero is reserved to mean
// "none" — the zero value of Handle is never allocated.
//
// Handles are allocated by a monotonically incrementing counter and are
// never recycled: deleting an entity retires its Handle for the lifetime of
// the world.
type Handle uint64

// Valid reports whether h is a real, non-zero handle.
func (h Handle) Valid() bool {
	return h != 0
}

// assertValidHandle panics with ErrInvalidHandle if h is the reserved zero
// handle. Per spec §7, InvalidHandle is an assertion, not a returned error:
// passing the zero handle to an operation that expects a real entity is a
// programmer error, mirroring the source's assert() sites on handles taken
// from a caller rather than produced internally (entity.c, e.g. the
// asserted non-null results after get_ptr/insert).
func assertValidHandle(h Handle) {
	if !h.Valid() {
		panic(bark.AddTrace(ErrInvalidHandle{Handle: h}))
	}
}

// handleRegistry is the monotonic 64-bit entity id allocator.
//
// Single-threaded per world — a plain incrementing counter, no atomics,
// since a world is not meant to be mutated from more than one goroutine at
// once.
type handleRegistry struct {
	next Handle
}

func newHandleRegistry() *handleRegistry {
	return &handleRegistry{next: 1}
}

// alloc returns a fresh, never-before-issued handle.
func (r *handleRegistry) alloc() Handle {
	h := r.next
	r.next++
	return h
}

// allocN reserves count consecutive handles, used by bulk creation
// (new_w_count) so the whole batch can be laid into one table in one pass.
func (r *handleRegistry) allocN(count int) []Handle {
	out := make([]Handle, count)
	for i := range out {
		out[i] = r.next + Handle(i)
	}
	r.next += Handle(count)
	return out
}
