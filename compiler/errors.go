// plateau/compiler/errors.go
package compiler

import "fmt"

// UncompiledModelError reports a numeric call (fit, sample, posterior,
// ...) on a model that has never compiled successfully.
type UncompiledModelError struct {
	Op string
}

func (e *UncompiledModelError) Error() string {
	return fmt.Sprintf("cannot %s: the model has not been compiled", e.Op)
}

// QBindingError reports an approximating-family binding that targets a
// node it cannot apply to.
type QBindingError struct {
	Node   string
	Reason string
}

func (e *QBindingError) Error() string {
	return fmt.Sprintf("invalid Q binding for %q: %s", e.Node, e.Reason)
}
