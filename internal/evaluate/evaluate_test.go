package evaluate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toNumber unwraps expr results, which are int for integer literals.
func toNumber(t *testing.T, v any) float64 {
	t.Helper()
	switch val := v.(type) {
	case int:
		return float64(val)
	case float64:
		return val
	default:
		t.Fatalf("expected a number, got %T", v)
		return 0
	}
}

func TestCall_Positional(t *testing.T) {
	r := NewRuntime()

	result, kind, err := r.Call("mean", []any{[]any{1.0, 2.0, 3.0, 4.0}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "numeric", kind)
	assert.InDelta(t, 2.5, result.(float64), 1e-9)
}

func TestCall_Named(t *testing.T) {
	r := NewRuntime()

	result, _, err := r.Call("quantile", nil, map[string]any{
		"x":     []any{1.0, 2.0, 3.0, 4.0},
		"probs": 0.5,
	})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, result.(float64), 1e-9)
}

func TestCall_NamedAndPositionalMix(t *testing.T) {
	r := NewRuntime()

	// Positional x, named probs.
	result, _, err := r.Call("quantile", []any{[]any{1.0, 2.0, 3.0, 4.0}}, map[string]any{"probs": 0.25})
	require.NoError(t, err)
	assert.InDelta(t, 1.75, result.(float64), 1e-9)
}

func TestCall_Cor(t *testing.T) {
	r := NewRuntime()

	result, _, err := r.Call("cor", []any{
		[]any{1.0, 2.0, 3.0, 4.0, 5.0},
		[]any{2.0, 4.0, 6.0, 8.0, 10.0},
	}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.(float64), 1e-9)
}

func TestCall_Range(t *testing.T) {
	r := NewRuntime()

	result, kind, err := r.Call("range", []any{[]any{5.0, 1.0, 3.0}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "vector", kind)
	assert.Equal(t, []float64{1, 5}, result)
}

func TestCall_Errors(t *testing.T) {
	r := NewRuntime()

	_, _, err := r.Call("system", []any{"rm -rf /"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not callable")

	_, _, err = r.Call("mean", []any{"not numbers"}, nil)
	assert.Error(t, err)

	_, _, err = r.Call("quantile", nil, map[string]any{"bogus": 1.0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestExecute_Arithmetic(t *testing.T) {
	r := NewRuntime()

	result, output, kind, err := r.Execute("1 + 2 * 3")
	require.NoError(t, err)
	assert.Equal(t, "numeric", kind)
	assert.InDelta(t, 7.0, toNumber(t, result), 1e-9)
	assert.Empty(t, output)
}

func TestExecute_RegistryFunctions(t *testing.T) {
	r := NewRuntime()

	result, _, _, err := r.Execute("mean([1, 2, 3, 4]) + sqrt(16)")
	require.NoError(t, err)
	assert.InDelta(t, 6.5, toNumber(t, result), 1e-9)
}

func TestExecute_Pi(t *testing.T) {
	r := NewRuntime()

	result, _, _, err := r.Execute("pi * 2")
	require.NoError(t, err)
	assert.InDelta(t, 6.283185307, toNumber(t, result), 1e-6)
}

func TestExecute_PrintCaptured(t *testing.T) {
	r := NewRuntime()

	result, output, _, err := r.Execute(`print("hello")`)
	require.NoError(t, err)
	assert.Equal(t, "hello", result)
	assert.Equal(t, "hello\n", output)
}

func TestExecute_PrintDoesNotLeakBetweenCalls(t *testing.T) {
	r := NewRuntime()

	_, output, _, err := r.Execute(`print("first")`)
	require.NoError(t, err)
	assert.Equal(t, "first\n", output)

	_, output, _, err = r.Execute("1 + 1")
	require.NoError(t, err)
	assert.Empty(t, output)
}

func TestExecute_Errors(t *testing.T) {
	r := NewRuntime()

	_, _, _, err := r.Execute("")
	assert.ErrorContains(t, err, "must not be empty")

	_, _, _, err = r.Execute("1 +")
	assert.ErrorContains(t, err, "compile error")

	// Identifiers outside the registry never resolve.
	_, _, _, err = r.Execute("os.exit(1)")
	assert.Error(t, err)

	_, _, _, err = r.Execute("log(-1)")
	assert.ErrorContains(t, err, "not finite")

	_, _, _, err = r.Execute("sd([5])")
	assert.Error(t, err)
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		value    any
		expected string
	}{
		{nil, "NULL"},
		{1.5, "numeric"},
		{3, "numeric"},
		{"x", "character"},
		{true, "logical"},
		{[]float64{1, 2}, "vector"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, TypeName(tt.value), "%v", tt.value)
	}
}

func TestFunctions_SortedAllowList(t *testing.T) {
	r := NewRuntime()
	names := r.Functions()

	assert.Contains(t, names, "mean")
	assert.Contains(t, names, "quantile")
	assert.NotContains(t, names, "print")
	assert.IsIncreasing(t, names)
}
