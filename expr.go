package archon

import "strings"

// ExprElemKind distinguishes a plain component token from a negated one in
// a component expression.
type ExprElemKind uint8

const (
	// ExprElemAnd is a plain, positively-required component token.
	ExprElemAnd ExprElemKind = iota
	// ExprElemNot is a `!component` token. The core only ever records the
	// positive subset in the resulting FamilyId; the exact semantics of
	// excluding it are left to the caller's expression parser/observer
	// filter. The callback still receives the token so a caller building
	// something richer than a FamilyId (e.g. a filter that also tracks
	// excludes) can do so.
	ExprElemNot
)

// ExprOperKind is reserved for future grammar operators beyond plain
// conjunction; this grammar only defines AND tokens (comma separated) plus
// the `!` prefix, so this is always ExprOperAnd today.
type ExprOperKind uint8

const (
	ExprOperAnd ExprOperKind = iota
)

// ExprCallback is invoked once per token of a parsed component expression,
// with (elem_kind, oper_kind, component_id, user_data); it is responsible
// for accumulating whatever result the caller wants out of the token
// stream. FamilyBuilder below is the reference accumulator NewFamily/
// NewPrefab use; callers of ParseExpr may supply their own to build
// something else from the same token stream.
type ExprCallback func(elem ExprElemKind, oper ExprOperKind, component Handle, userData any)

// ParseExpr parses a comma-separated component expression: each
// token is either the literal "0" (the empty family), or a name resolved
// via resolveName, optionally prefixed with "!". It invokes cb once per
// resolved token in left-to-right order.
//
// This is the one piece of the external query/expression grammar the core
// must itself parse, because new_family/new_prefab take the expression
// directly; the richer boolean query grammar built on top of
// FamilyId containment is explicitly out of core scope.
func ParseExpr(expr string, resolveName func(name string) (Handle, bool), cb ExprCallback, userData any) error {
	tokens := strings.Split(expr, ",")
	for _, raw := range tokens {
		tok := strings.TrimSpace(raw)
		if tok == "" {
			return ErrInvalidExpression{Expr: expr, Reason: "empty token"}
		}
		if tok == "0" {
			cb(ExprElemAnd, ExprOperAnd, 0, userData)
			continue
		}
		elem := ExprElemAnd
		name := tok
		if strings.HasPrefix(tok, "!") {
			elem = ExprElemNot
			name = strings.TrimSpace(strings.TrimPrefix(tok, "!"))
		}
		h, ok := resolveName(name)
		if !ok {
			return ErrUnknownComponent{Name: name}
		}
		cb(elem, ExprOperAnd, h, userData)
	}
	return nil
}

// FamilyBuilder is the reference ExprCallback accumulator: it folds every
// ExprElemAnd token into a growing handle set and ignores ExprElemNot
// tokens for FamilyId purposes, while still recording them separately so
// callers that need the excluded set (e.g. an observer filter) can read it
// back via Excluded().
type FamilyBuilder struct {
	positive []Handle
	excluded []Handle
}

// Add is an ExprCallback suitable for passing straight to ParseExpr.
func (b *FamilyBuilder) Add(elem ExprElemKind, _ ExprOperKind, component Handle, _ any) {
	if component == 0 {
		return
	}
	switch elem {
	case ExprElemNot:
		b.excluded = append(b.excluded, component)
	default:
		b.positive = append(b.positive, component)
	}
}

// Positive returns the accumulated positively-required component handles.
func (b *FamilyBuilder) Positive() []Handle { return b.positive }

// Excluded returns the accumulated `!`-prefixed component handles.
func (b *FamilyBuilder) Excluded() []Handle { return b.excluded }
