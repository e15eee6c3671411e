package archon

import "fmt"

// ErrFamilyUnknownComponent is returned by family operations when a handle
// does not resolve to a registered component.
type ErrFamilyUnknownComponent struct {
	Handle Handle
}

func (e ErrFamilyUnknownComponent) Error() string {
	return fmt.Sprintf("family: unknown component handle %d", e.Handle)
}

// ErrUnknownComponent is returned when an expression token's name does not
// resolve to a registered component.
type ErrUnknownComponent struct {
	Name string
}

func (e ErrUnknownComponent) Error() string {
	return fmt.Sprintf("unknown component: %q", e.Name)
}

// ErrInvalidExpression is returned by the component expression parser on a
// malformed token stream.
type ErrInvalidExpression struct {
	Expr   string
	Reason string
}

func (e ErrInvalidExpression) Error() string {
	return fmt.Sprintf("invalid component expression %q: %s", e.Expr, e.Reason)
}

// ErrComponentCapacity is returned when component registration would exceed
// the family bitset width backing FamilyId interning (DESIGN.md, family
// cardinality bound).
type ErrComponentCapacity struct {
	Limit int
}

func (e ErrComponentCapacity) Error() string {
	return fmt.Sprintf("component registry at capacity (%d)", e.Limit)
}

// ErrComponentNotRegistered is returned by set_ptr when the target component
// was never registered, so its size is unknown.
type ErrComponentNotRegistered struct {
	Handle Handle
}

func (e ErrComponentNotRegistered) Error() string {
	return fmt.Sprintf("component %d is not registered", e.Handle)
}

// ErrCacheFull is returned by the name cache once it reaches its configured
// capacity.
type ErrCacheFull struct {
	Capacity int
}

func (e ErrCacheFull) Error() string {
	return fmt.Sprintf("name cache at maximum capacity (%d)", e.Capacity)
}

// ErrNameExists is returned when new_component/new_family/new_prefab is
// called with a name already registered in the world.
type ErrNameExists struct {
	Name string
}

func (e ErrNameExists) Error() string {
	return fmt.Sprintf("name already registered: %q", e.Name)
}

// ErrInvalidHandle backs an assertion, not a returned error, at API
// boundaries that accept a Handle from the caller.
type ErrInvalidHandle struct {
	Handle Handle
}

func (e ErrInvalidHandle) Error() string {
	return fmt.Sprintf("invalid handle: %d", e.Handle)
}

// ErrWorldCorrupt describes a World value that crossed the API surface
// without going through NewWorld. Go's type system makes this effectively
// unreachable (see world.go), and no code in this package raises it; the
// type is defined but unused.
type ErrWorldCorrupt struct{}

func (e ErrWorldCorrupt) Error() string {
	return "world is corrupt or uninitialized"
}
