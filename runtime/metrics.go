// plateau/runtime/metrics.go
package runtime

import (
	"fmt"
	"math"

	"github.com/panyam/plateau/core"
)

// MetricFunc computes one named metric from the posterior-predictive
// point estimate of the target node, the supplied observations, and
// optional per-element weights (nil means uniform).
type MetricFunc func(posterior *core.Tensor, observed *core.Tensor, weights []float64) (float64, error)

// Metric is either a builtin metric picked by name or a caller
// supplied function.
type Metric struct {
	Name string
	Func MetricFunc // nil selects the builtin registered under Name
}

// MetricByName selects a builtin metric.
func MetricByName(name string) Metric { return Metric{Name: name} }

// CustomMetric wraps a caller-supplied metric function.
func CustomMetric(name string, f MetricFunc) Metric { return Metric{Name: name, Func: f} }

var builtinMetrics = map[string]MetricFunc{
	"mse":      metricMSE,
	"mae":      metricMAE,
	"accuracy": metricAccuracy,
}

// resolveMetric returns the function behind a Metric, failing with
// UnsupportedMetricError for an unknown builtin name.
func resolveMetric(m Metric) (MetricFunc, error) {
	if m.Func != nil {
		return m.Func, nil
	}
	if f, ok := builtinMetrics[m.Name]; ok {
		return f, nil
	}
	return nil, &UnsupportedMetricError{Name: m.Name}
}

func pairwise(posterior, observed *core.Tensor, weights []float64) (n int, w []float64, err error) {
	if posterior == nil || observed == nil {
		return 0, nil, fmt.Errorf("metric needs both posterior and observed tensors")
	}
	if len(posterior.Values) != len(observed.Values) {
		return 0, nil, core.ShapeMismatchf(posterior.Dims, observed.Dims, "posterior and observations differ in element count")
	}
	n = len(posterior.Values)
	if weights == nil {
		w = make([]float64, n)
		for i := range w {
			w[i] = 1
		}
	} else {
		if len(weights) != n {
			return 0, nil, fmt.Errorf("got %d weights for %d elements", len(weights), n)
		}
		w = weights
	}
	return n, w, nil
}

func metricMSE(posterior, observed *core.Tensor, weights []float64) (float64, error) {
	n, w, err := pairwise(posterior, observed, weights)
	if err != nil || n == 0 {
		return 0, err
	}
	num, den := 0.0, 0.0
	for i := 0; i < n; i++ {
		d := posterior.Values[i] - observed.Values[i]
		num += w[i] * d * d
		den += w[i]
	}
	if den == 0 {
		return 0, fmt.Errorf("metric weights sum to zero")
	}
	return num / den, nil
}

func metricMAE(posterior, observed *core.Tensor, weights []float64) (float64, error) {
	n, w, err := pairwise(posterior, observed, weights)
	if err != nil || n == 0 {
		return 0, err
	}
	num, den := 0.0, 0.0
	for i := 0; i < n; i++ {
		num += w[i] * math.Abs(posterior.Values[i]-observed.Values[i])
		den += w[i]
	}
	if den == 0 {
		return 0, fmt.Errorf("metric weights sum to zero")
	}
	return num / den, nil
}

// metricAccuracy treats both tensors as class labels, rounding the
// posterior estimate to the nearest integer.
func metricAccuracy(posterior, observed *core.Tensor, weights []float64) (float64, error) {
	n, w, err := pairwise(posterior, observed, weights)
	if err != nil || n == 0 {
		return 0, err
	}
	num, den := 0.0, 0.0
	for i := 0; i < n; i++ {
		if math.Round(posterior.Values[i]) == math.Round(observed.Values[i]) {
			num += w[i]
		}
		den += w[i]
	}
	if den == 0 {
		return 0, fmt.Errorf("metric weights sum to zero")
	}
	return num / den, nil
}
