// plateau/decl/scope.go
package decl

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"

	"github.com/panyam/plateau/core"
)

// Scope is one replication context (a plate): everything declared
// while it is open is repeated Size independent times, adding a leading
// dimension to the declared variable's shape. Scopes nest; a child is
// owned by its parent and recorded in declaration order.
//
// A compound scope has no size of its own. It references two or more
// previously named sibling scopes and stands for their cross-product
// index space, contributing the referenced sizes in the order the
// names were listed.
type Scope struct {
	name  string
	size  int
	batch int

	parent   *Scope
	children []*Scope

	// non-nil iff this is a compound scope
	compound []*Scope

	// order of entry within the whole session, used to replay
	// construction from a config
	seq int

	open     bool
	consumed bool // referenced by a compound scope
}

func (s *Scope) Name() string { return s.name }
func (s *Scope) Size() int    { return s.size }

// BatchSize returns the mini-batch size, or 0 when the scope is not
// batched.
func (s *Scope) BatchSize() int { return s.batch }

// IsCompound tells whether this scope is a cross-product of named
// sibling scopes rather than a plain plate.
func (s *Scope) IsCompound() bool { return s.compound != nil }

// Compound returns the referenced scopes of a compound scope, in the
// order their names were listed.
func (s *Scope) Compound() []*Scope { return s.compound }

// Children returns the child scopes in declaration order.
func (s *Scope) Children() []*Scope { return s.children }

// Dims returns the dimensions this scope contributes to the shapes of
// variables declared inside it: [size] for a plain scope, the
// referenced sizes for a compound scope.
func (s *Scope) Dims() core.Shape {
	if s.IsCompound() {
		return core.Shape(gfn.Map(s.compound, func(c *Scope) int { return c.size }))
	}
	return core.Shape{s.size}
}

func (s *Scope) String() string {
	if s.IsCompound() {
		names := gfn.Map(s.compound, func(c *Scope) string { return c.name })
		return fmt.Sprintf("compound(%s)", strings.Join(names, ", "))
	}
	if s.batch > 0 {
		return fmt.Sprintf("%s(size=%d, batch=%d)", s.Label(), s.size, s.batch)
	}
	return fmt.Sprintf("%s(size=%d)", s.Label(), s.size)
}

// Label returns the scope's name, or a stable generated label for
// anonymous scopes. Labels identify scopes in configs and summaries.
func (s *Scope) Label() string {
	if s.IsCompound() {
		return fmt.Sprintf("compound_%d", s.seq)
	}
	if s.name != "" {
		return s.name
	}
	return fmt.Sprintf("scope_%d", s.seq)
}

// Seq returns the scope's entry order within its session.
func (s *Scope) Seq() int { return s.seq }

// ScopeGuard is the handle returned by Session.Enter. The caller must
// release it (via Exit) on every control path; exits are checked
// against strict LIFO order.
type ScopeGuard struct {
	sess  *Session
	scope *Scope
}

// Scope returns the scope this guard holds open.
func (g *ScopeGuard) Scope() *Scope { return g.scope }

// Exit releases the guard, popping the scope off the session stack.
// Fails with InvalidScopeNestingError unless this scope is the current
// innermost one.
func (g *ScopeGuard) Exit() error { return g.sess.Exit(g) }

// ScopeOption configures a scope being entered.
type ScopeOption func(*Scope)

// Named gives the scope a name, letting compound scopes reference it
// later. Named siblings must be unique.
func Named(name string) ScopeOption {
	return func(s *Scope) { s.name = name }
}

// Batched sets a mini-batch size for the scope; backends that support
// subsampling draw batches of this size from the plate.
func Batched(batch int) ScopeOption {
	return func(s *Scope) { s.batch = batch }
}

// OuterDims concatenates the dimensions contributed by a scope path,
// outermost first.
func OuterDims(path []*Scope) core.Shape {
	out := core.Shape{}
	for _, s := range path {
		out = out.Concat(s.Dims())
	}
	return out
}
