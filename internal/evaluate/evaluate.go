// Package evaluate provides the sandboxed expression runtime behind the
// execute and call endpoints. Code runs through expr-lang against an
// allow-listed function registry; there is no process-level evaluation.
package evaluate

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/expr-lang/expr"

	"statbridge/internal/stats"
)

// Function is one callable registry entry. Params names the positional
// parameters so named arguments can be mapped onto them.
type Function struct {
	Name   string
	Params []string
	Fn     func(args []any) (any, error)
}

// Runtime holds the function registry shared by execute and call.
type Runtime struct {
	funcs map[string]Function
}

// NewRuntime builds the runtime with the standard numeric registry.
func NewRuntime() *Runtime {
	r := &Runtime{funcs: make(map[string]Function)}

	vector := func(name string) {
		r.register(Function{
			Name:   name,
			Params: []string{"x"},
			Fn: func(args []any) (any, error) {
				xs, err := oneVector(name, args)
				if err != nil {
					return nil, err
				}
				return stats.Apply(name, xs)
			},
		})
	}
	for _, name := range []string{"mean", "median", "sd", "var", "min", "max", "sum"} {
		vector(name)
	}

	r.register(Function{
		Name:   "length",
		Params: []string{"x"},
		Fn: func(args []any) (any, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("length expects 1 argument, got %d", len(args))
			}
			xs, err := toFloats(args[0])
			if err != nil {
				return nil, err
			}
			return len(xs), nil
		},
	})
	r.register(Function{
		Name:   "range",
		Params: []string{"x"},
		Fn: func(args []any) (any, error) {
			xs, err := oneVector("range", args)
			if err != nil {
				return nil, err
			}
			lo, err := stats.Apply("min", xs)
			if err != nil {
				return nil, err
			}
			hi, err := stats.Apply("max", xs)
			if err != nil {
				return nil, err
			}
			return []float64{lo.(float64), hi.(float64)}, nil
		},
	})
	r.register(Function{
		Name:   "quantile",
		Params: []string{"x", "probs"},
		Fn:     quantileFn,
	})
	r.register(Function{
		Name:   "cor",
		Params: []string{"x", "y"},
		Fn: func(args []any) (any, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("cor expects 2 arguments, got %d", len(args))
			}
			xs, err := toFloats(args[0])
			if err != nil {
				return nil, err
			}
			ys, err := toFloats(args[1])
			if err != nil {
				return nil, err
			}
			res, err := stats.Correlation(xs, ys, "pearson")
			if err != nil {
				return nil, err
			}
			return res.Estimate, nil
		},
	})

	scalar := func(name string, fn func(float64) float64) {
		r.register(Function{
			Name:   name,
			Params: []string{"x"},
			Fn: func(args []any) (any, error) {
				if len(args) != 1 {
					return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
				}
				v, ok := toFloat(args[0])
				if !ok {
					return nil, fmt.Errorf("%s expects a number, got %T", name, args[0])
				}
				out := fn(v)
				if math.IsNaN(out) || math.IsInf(out, 0) {
					return nil, fmt.Errorf("%s(%g) is not finite", name, v)
				}
				return out, nil
			},
		})
	}
	scalar("sqrt", math.Sqrt)
	scalar("log", math.Log)
	scalar("exp", math.Exp)

	return r
}

func (r *Runtime) register(fn Function) {
	r.funcs[fn.Name] = fn
}

// Functions returns the sorted names of all callable functions.
func (r *Runtime) Functions() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup reports whether name is callable.
func (r *Runtime) Lookup(name string) (Function, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Call invokes a registry function with positional and named arguments. Named
// arguments are mapped onto the declared parameter names.
func (r *Runtime) Call(name string, args []any, named map[string]any) (any, string, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return nil, "", fmt.Errorf("function %q is not callable, valid functions: %v", name, r.Functions())
	}

	full, err := bindArgs(fn, args, named)
	if err != nil {
		return nil, "", err
	}
	result, err := fn.Fn(full)
	if err != nil {
		return nil, "", err
	}
	return result, TypeName(result), nil
}

// Execute compiles and runs an expression. The environment contains exactly
// the registry functions plus print, whose output is captured and returned.
// The environment is rebuilt per call so print buffers never cross requests.
func (r *Runtime) Execute(code string) (any, string, string, error) {
	if strings.TrimSpace(code) == "" {
		return nil, "", "", errors.New("code must not be empty")
	}

	var output strings.Builder
	env := make(map[string]any, len(r.funcs)+2)
	for name, fn := range r.funcs {
		call := fn.Fn
		env[name] = func(args ...any) (any, error) {
			return call(args)
		}
	}
	env["pi"] = math.Pi
	env["print"] = func(args ...any) (any, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = fmt.Sprint(a)
		}
		output.WriteString(strings.Join(parts, " "))
		output.WriteString("\n")
		if len(args) == 1 {
			return args[0], nil
		}
		return nil, nil
	}

	program, err := expr.Compile(code, expr.Env(env))
	if err != nil {
		return nil, "", "", fmt.Errorf("compile error: %w", err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return nil, "", "", fmt.Errorf("evaluation error: %w", err)
	}
	return result, output.String(), TypeName(result), nil
}

// TypeName reports the result type using the vocabulary of the stats API.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "NULL"
	case float64, float32, int, int64:
		return "numeric"
	case string:
		return "character"
	case bool:
		return "logical"
	case []float64, []int, []any:
		return "vector"
	case map[string]float64, map[string]any:
		return "list"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func bindArgs(fn Function, args []any, named map[string]any) ([]any, error) {
	if len(named) == 0 {
		return args, nil
	}

	slots := make([]any, len(fn.Params))
	filled := make([]bool, len(fn.Params))
	if len(args) > len(fn.Params) {
		return nil, fmt.Errorf("%s expects at most %d arguments, got %d positional", fn.Name, len(fn.Params), len(args))
	}
	for i, a := range args {
		slots[i] = a
		filled[i] = true
	}
	for key, val := range named {
		idx := -1
		for i, p := range fn.Params {
			if p == key {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%s has no argument named %q (parameters: %v)", fn.Name, key, fn.Params)
		}
		if filled[idx] {
			return nil, fmt.Errorf("%s argument %q given both positionally and by name", fn.Name, key)
		}
		slots[idx] = val
		filled[idx] = true
	}

	out := make([]any, 0, len(slots))
	for i, ok := range filled {
		if !ok {
			break
		}
		out = append(out, slots[i])
	}
	return out, nil
}

func quantileFn(args []any) (any, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("quantile expects 1 or 2 arguments, got %d", len(args))
	}
	xs, err := toFloats(args[0])
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, stats.ErrEmptyData
	}
	if len(args) == 1 {
		return stats.Apply("quantile", xs)
	}

	if p, ok := toFloat(args[1]); ok {
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("probs must be in [0,1], got %g", p)
		}
		return stats.Quantile(xs, p), nil
	}
	probs, err := toFloats(args[1])
	if err != nil {
		return nil, fmt.Errorf("probs must be a number or numeric array: %w", err)
	}
	out := make(map[string]float64, len(probs))
	for _, p := range probs {
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("probs must be in [0,1], got %g", p)
		}
		out[fmt.Sprintf("%g%%", p*100)] = stats.Quantile(xs, p)
	}
	return out, nil
}

func oneVector(name string, args []any) ([]float64, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
	}
	xs, err := toFloats(args[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return xs, nil
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	}
	return 0, false
}

func toFloats(v any) ([]float64, error) {
	switch val := v.(type) {
	case []float64:
		return val, nil
	case []any:
		out := make([]float64, len(val))
		for i, item := range val {
			f, ok := toFloat(item)
			if !ok {
				return nil, fmt.Errorf("expected a numeric array, element %d is %T", i, item)
			}
			out[i] = f
		}
		return out, nil
	case []int:
		out := make([]float64, len(val))
		for i, item := range val {
			out[i] = float64(item)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a numeric array, got %T", v)
	}
}
