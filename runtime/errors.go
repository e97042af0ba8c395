// plateau/runtime/errors.go
package runtime

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBackend is returned by numeric calls on a model compiled
	// without an inference backend bound.
	ErrNoBackend = errors.New("no inference backend bound to this model")

	// ErrNoTarget is returned by Evaluate/Predict when no target
	// variable is given and one cannot be picked unambiguously.
	ErrNoTarget = errors.New("target variable is required: the model has no single observed variable")
)

// UnsupportedMetricError reports an evaluation metric name that is
// neither builtin nor supplied as a custom metric.
type UnsupportedMetricError struct {
	Name string
}

func (e *UnsupportedMetricError) Error() string {
	return fmt.Sprintf("unsupported metric %q", e.Name)
}

// UnknownAlgorithmError reports an inference algorithm identifier
// outside the registry.
type UnknownAlgorithmError struct {
	Name string
}

func (e *UnknownAlgorithmError) Error() string {
	return fmt.Sprintf("unknown inference algorithm %q", e.Name)
}
