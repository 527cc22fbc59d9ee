// Package stats implements the numeric operations behind the stats API.
// Everything here is a thin layer over gonum; handlers own HTTP concerns.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrEmptyData is returned when an operation receives no observations.
var ErrEmptyData = errors.New("data must be a non-empty numeric array")

// VectorOp computes one descriptive statistic over a non-empty sample.
type VectorOp func(xs []float64) (any, error)

// vectorOps is the operation allow-list. Dispatch is by registry lookup, not
// string switch, so the valid set and the dispatch table cannot drift apart.
var vectorOps = map[string]VectorOp{
	"mean": func(xs []float64) (any, error) {
		return stat.Mean(xs, nil), nil
	},
	"median": func(xs []float64) (any, error) {
		return Quantile(xs, 0.5), nil
	},
	"sd": func(xs []float64) (any, error) {
		if len(xs) < 2 {
			return nil, errors.New("sd requires at least 2 observations")
		}
		return stat.StdDev(xs, nil), nil
	},
	"var": func(xs []float64) (any, error) {
		if len(xs) < 2 {
			return nil, errors.New("var requires at least 2 observations")
		}
		return stat.Variance(xs, nil), nil
	},
	"min": func(xs []float64) (any, error) {
		return floats.Min(xs), nil
	},
	"max": func(xs []float64) (any, error) {
		return floats.Max(xs), nil
	},
	"sum": func(xs []float64) (any, error) {
		return floats.Sum(xs), nil
	},
	"summary": func(xs []float64) (any, error) {
		return Summary(xs), nil
	},
	"quantile": func(xs []float64) (any, error) {
		sorted := sortedCopy(xs)
		probs := []float64{0, 0.25, 0.5, 0.75, 1}
		out := make(map[string]float64, len(probs))
		for _, p := range probs {
			out[fmt.Sprintf("%g%%", p*100)] = quantileSorted(sorted, p)
		}
		return out, nil
	},
	"fivenum": func(xs []float64) (any, error) {
		return Fivenum(xs), nil
	},
}

// Operations returns the sorted list of valid operation names.
func Operations() []string {
	names := make([]string, 0, len(vectorOps))
	for name := range vectorOps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsOperation reports whether name is a valid descriptive-statistics operation.
func IsOperation(name string) bool {
	_, ok := vectorOps[name]
	return ok
}

// Apply runs the named operation over xs.
func Apply(name string, xs []float64) (any, error) {
	op, ok := vectorOps[name]
	if !ok {
		return nil, fmt.Errorf("unknown operation %q, valid operations: %v", name, Operations())
	}
	if len(xs) == 0 {
		return nil, ErrEmptyData
	}
	result, err := op(xs)
	if err != nil {
		return nil, err
	}
	if err := ensureFinite(result); err != nil {
		return nil, fmt.Errorf("operation %q: %w", name, err)
	}
	return result, nil
}

// Summary returns min, first quartile, median, mean, third quartile and max.
func Summary(xs []float64) map[string]float64 {
	sorted := sortedCopy(xs)
	return map[string]float64{
		"min":    sorted[0],
		"q1":     quantileSorted(sorted, 0.25),
		"median": quantileSorted(sorted, 0.5),
		"mean":   stat.Mean(xs, nil),
		"q3":     quantileSorted(sorted, 0.75),
		"max":    sorted[len(sorted)-1],
	}
}

// Quantile computes the type-7 sample quantile (linear interpolation between
// order statistics), the default used by most statistics packages.
func Quantile(xs []float64, p float64) float64 {
	return quantileSorted(sortedCopy(xs), p)
}

// Fivenum returns Tukey's five-number summary: minimum, lower hinge, median,
// upper hinge, maximum.
func Fivenum(xs []float64) []float64 {
	sorted := sortedCopy(xs)
	n := len(sorted)
	n4 := math.Floor(float64(n+3)/2) / 2
	d := []float64{1, n4, float64(n+1) / 2, float64(n+1) - n4, float64(n)}
	out := make([]float64, len(d))
	for i, pos := range d {
		lo := sorted[int(math.Floor(pos))-1]
		hi := sorted[int(math.Ceil(pos))-1]
		out[i] = 0.5 * (lo + hi)
	}
	return out
}

func quantileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p
	i := int(math.Floor(h))
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-math.Floor(h))*(sorted[i+1]-sorted[i])
}

func sortedCopy(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	sort.Float64s(out)
	return out
}

// ensureFinite rejects NaN and infinite results, which have no JSON encoding.
func ensureFinite(v any) error {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return errors.New("result is not finite")
		}
	case []float64:
		for _, f := range val {
			if err := ensureFinite(f); err != nil {
				return err
			}
		}
	case map[string]float64:
		for _, f := range val {
			if err := ensureFinite(f); err != nil {
				return err
			}
		}
	}
	return nil
}
