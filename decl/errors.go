// plateau/decl/errors.go
package decl

import "fmt"

// DuplicateNameError reports a second variable registered under an
// already-taken name within one session.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("random variable name %q is already declared in this session", e.Name)
}

// UndefinedScopeError reports a compound scope referencing a name that
// does not resolve to a usable sibling scope.
type UndefinedScopeError struct {
	Name   string
	Reason string
}

func (e *UndefinedScopeError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("scope %q is not defined here", e.Name)
	}
	return fmt.Sprintf("scope %q is not usable: %s", e.Name, e.Reason)
}

// InvalidScopeNestingError reports an out-of-order scope exit.
type InvalidScopeNestingError struct {
	Got  string
	Want string
}

func (e *InvalidScopeNestingError) Error() string {
	return fmt.Sprintf("cannot exit scope %s: current innermost scope is %s", e.Got, e.Want)
}
