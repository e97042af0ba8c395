// plateau/decl/session.go
package decl

import (
	"fmt"
)

// Session owns the mutable state of one model-construction run: the
// stack of open replication scopes and the registry of every variable
// declared against it. Two models built concurrently must each use
// their own Session; a session's methods are not safe for unserialized
// use from multiple goroutines.
type Session struct {
	stack []*Scope

	// top-level scopes entered directly in the session, in order
	roots []*Scope

	vars   []*RandomVariable
	byName map[string]*RandomVariable

	nameCounter int
	seqCounter  int
}

// NewSession creates an empty construction session.
func NewSession() *Session {
	return &Session{byName: map[string]*RandomVariable{}}
}

// Enter opens a new replication scope of the given size as a child of
// the current innermost scope and returns a guard the caller must
// release with Exit.
func (s *Session) Enter(size int, opts ...ScopeOption) (*ScopeGuard, error) {
	if size < 1 {
		return nil, fmt.Errorf("scope size must be positive, got %d", size)
	}
	scope := &Scope{size: size, seq: s.nextSeq(), open: true}
	for _, opt := range opts {
		opt(scope)
	}
	if scope.batch < 0 || scope.batch > scope.size {
		return nil, fmt.Errorf("batch size %d must be between 1 and the scope size %d", scope.batch, scope.size)
	}
	if scope.name != "" {
		// names also may not shadow an open ancestor: scope labels key
		// saved configs, so nesting two scopes under one name would make
		// a variable's recorded scope ambiguous on replay
		for _, open := range s.stack {
			if open.name == scope.name {
				return nil, fmt.Errorf("scope name %q is already used by an enclosing scope", scope.name)
			}
		}
		for _, sib := range s.siblings() {
			if sib.name == scope.name {
				return nil, fmt.Errorf("scope name %q is already used by a sibling scope", scope.name)
			}
		}
	}
	s.push(scope)
	return &ScopeGuard{sess: s, scope: scope}, nil
}

// EnterCompound opens a synthetic scope over the cross-product index
// space of two or more named sibling scopes. Every name must resolve
// to a closed, named child of the current innermost scope that is not
// already consumed by another compound; otherwise the call fails with
// UndefinedScopeError.
func (s *Session) EnterCompound(names ...string) (*ScopeGuard, error) {
	if len(names) < 2 {
		return nil, fmt.Errorf("a compound scope needs at least two scope names, got %d", len(names))
	}
	refs := make([]*Scope, 0, len(names))
	for _, name := range names {
		var found *Scope
		for _, sib := range s.siblings() {
			if sib.name == name && !sib.IsCompound() {
				found = sib
				break
			}
		}
		if found == nil {
			return nil, &UndefinedScopeError{Name: name}
		}
		if found.open {
			return nil, &UndefinedScopeError{Name: name, Reason: "still open"}
		}
		if found.consumed {
			return nil, &UndefinedScopeError{Name: name, Reason: "already consumed by another compound scope"}
		}
		refs = append(refs, found)
	}
	for _, ref := range refs {
		ref.consumed = true
	}
	scope := &Scope{compound: refs, seq: s.nextSeq(), open: true}
	s.push(scope)
	return &ScopeGuard{sess: s, scope: scope}, nil
}

// Exit pops the guard's scope off the stack. Only the current
// innermost scope may be exited; anything else is an
// InvalidScopeNestingError, including a double exit.
func (s *Session) Exit(g *ScopeGuard) error {
	if len(s.stack) == 0 {
		return &InvalidScopeNestingError{Got: g.scope.String(), Want: "<none open>"}
	}
	top := s.stack[len(s.stack)-1]
	if top != g.scope {
		return &InvalidScopeNestingError{Got: g.scope.String(), Want: top.String()}
	}
	top.open = false
	s.stack = s.stack[:len(s.stack)-1]
	return nil
}

// Path returns the open scopes from outermost to innermost. The
// returned slice is a snapshot; later Enter/Exit calls do not affect
// it.
func (s *Session) Path() []*Scope {
	out := make([]*Scope, len(s.stack))
	copy(out, s.stack)
	return out
}

// Depth returns the number of currently open scopes.
func (s *Session) Depth() int { return len(s.stack) }

// Roots returns the top-level scopes entered directly in the session,
// in declaration order.
func (s *Session) Roots() []*Scope {
	out := make([]*Scope, len(s.roots))
	copy(out, s.roots)
	return out
}

// Variables returns every variable declared against this session, in
// declaration order. This is what the "all variables" model sentinel
// collects.
func (s *Session) Variables() []*RandomVariable {
	out := make([]*RandomVariable, len(s.vars))
	copy(out, s.vars)
	return out
}

// Lookup finds a declared variable by name.
func (s *Session) Lookup(name string) (*RandomVariable, bool) {
	v, ok := s.byName[name]
	return v, ok
}

func (s *Session) push(scope *Scope) {
	if len(s.stack) > 0 {
		parent := s.stack[len(s.stack)-1]
		scope.parent = parent
		parent.children = append(parent.children, scope)
	} else {
		s.roots = append(s.roots, scope)
	}
	s.stack = append(s.stack, scope)
}

// siblings lists the children of the current innermost scope (or the
// session's top level when no scope is open).
func (s *Session) siblings() []*Scope {
	if len(s.stack) > 0 {
		return s.stack[len(s.stack)-1].children
	}
	return s.roots
}

// register adds a constructed variable to the session, enforcing name
// uniqueness.
func (s *Session) register(v *RandomVariable) error {
	if _, taken := s.byName[v.name]; taken {
		return &DuplicateNameError{Name: v.name}
	}
	v.seq = s.nextSeq()
	s.byName[v.name] = v
	s.vars = append(s.vars, v)
	return nil
}

// nextName generates the next automatic variable name. The randvar_N
// convention is kept stable because backends and saved configs key
// data by it.
func (s *Session) nextName() string {
	name := fmt.Sprintf("randvar_%d", s.nameCounter)
	s.nameCounter++
	return name
}

func (s *Session) nextSeq() int {
	out := s.seqCounter
	s.seqCounter++
	return out
}
