package archon

import "github.com/TheBitDrifter/mask"

// maxComponents bounds the number of distinct components a world may
// register. It is dictated by the bit width of mask.Mask, which this engine
// uses as the FamilyId interning key (see family.go and DESIGN.md's family
// cardinality bound decision).
const maxComponents = 256

// componentMeta is the pair of records every registered component entity
// carries: a name and a byte size. Registration is just creation of such an
// entity against the built-in component family; componentMeta is that
// entity's payload.
type componentMeta struct {
	handle Handle
	name   string
	size   int
	bit    uint32
}

// componentRegistry is the world's table of registered components, indexed
// both by Handle (for size/bit lookups during commit and set_ptr) and by
// assigned bitset position (for reconstructing a canonical handle order
// from a mask after a merge — see family.go's rebuild).
type componentRegistry struct {
	byHandle map[Handle]*componentMeta
	byBit    []Handle // byBit[bit] is the Handle assigned that bit
}

func newComponentRegistry() *componentRegistry {
	return &componentRegistry{
		byHandle: make(map[Handle]*componentMeta),
	}
}

// register assigns the next free bit to h and records its size. Returns
// ErrComponentCapacity once the bitset is exhausted.
func (r *componentRegistry) register(h Handle, name string, size int) (*componentMeta, error) {
	if len(r.byBit) >= maxComponents {
		return nil, ErrComponentCapacity{Limit: maxComponents}
	}
	meta := &componentMeta{
		handle: h,
		name:   name,
		size:   size,
		bit:    uint32(len(r.byBit)),
	}
	r.byHandle[h] = meta
	r.byBit = append(r.byBit, h)
	return meta, nil
}

func (r *componentRegistry) get(h Handle) (*componentMeta, bool) {
	m, ok := r.byHandle[h]
	return m, ok
}

// bitOf returns the bit position assigned to a registered component handle.
func (r *componentRegistry) bitOf(h Handle) (uint32, bool) {
	m, ok := r.byHandle[h]
	if !ok {
		return 0, false
	}
	return m.bit, true
}

// maskOf builds the mask.Mask for a set of component handles, failing with
// ErrFamilyUnknownComponent if any handle was never registered.
func (r *componentRegistry) maskOf(handles ...Handle) (mask.Mask, error) {
	var m mask.Mask
	for _, h := range handles {
		bit, ok := r.bitOf(h)
		if !ok {
			return mask.Mask{}, ErrFamilyUnknownComponent{Handle: h}
		}
		m.Mark(bit)
	}
	return m, nil
}

// handlesOf reconstructs the canonical ascending-handle-order component
// list for a mask, used after merge/diff operations that only have the
// resulting bitset and need the concrete handle sequence back for table
// schema construction.
func (r *componentRegistry) handlesOf(m mask.Mask) []Handle {
	var out []Handle
	for bit := 0; bit < len(r.byBit); bit++ {
		if m.ContainsAll(bitMask(uint32(bit))) {
			out = append(out, r.byBit[bit])
		}
	}
	return out
}

// bitMask builds a single-bit mask.Mask, used for membership tests.
func bitMask(bit uint32) mask.Mask {
	var m mask.Mask
	m.Mark(bit)
	return m
}
