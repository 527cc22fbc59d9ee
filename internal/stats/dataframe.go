package stats

import (
	"fmt"
	"sort"
)

// Frame is a column-oriented table decoded from a JSON mapping of column name
// to value array. Column order is alphabetical so results are deterministic
// regardless of JSON map iteration order.
type Frame struct {
	names []string
	cols  map[string][]any
	rows  int
}

// NewFrame validates the column mapping and builds a Frame. All columns must
// share one length and at least one column is required.
func NewFrame(data map[string][]any) (*Frame, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("data must contain at least one column")
	}

	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := len(data[names[0]])
	for _, name := range names {
		if len(data[name]) != rows {
			return nil, fmt.Errorf("column %q has length %d, want %d (all columns must match)", name, len(data[name]), rows)
		}
	}

	return &Frame{names: names, cols: data, rows: rows}, nil
}

// Rows returns the number of rows.
func (f *Frame) Rows() int { return f.rows }

// Columns returns the number of columns.
func (f *Frame) Columns() int { return len(f.names) }

// Names returns the column names in alphabetical order.
func (f *Frame) Names() []string {
	return append([]string(nil), f.names...)
}

// FrameOp computes one table operation. limit bounds head/tail row counts.
type FrameOp func(f *Frame, limit int) (any, error)

var frameOps = map[string]FrameOp{
	"summary": func(f *Frame, _ int) (any, error) {
		out := make(map[string]any, len(f.names))
		for _, name := range f.names {
			if xs, ok := numericColumn(f.cols[name]); ok && len(xs) > 0 {
				out[name] = Summary(xs)
				continue
			}
			out[name] = characterSummary(f.cols[name])
		}
		return out, nil
	},
	"dim": func(f *Frame, _ int) (any, error) {
		return []int{f.rows, len(f.names)}, nil
	},
	"names": func(f *Frame, _ int) (any, error) {
		return f.Names(), nil
	},
	"head": func(f *Frame, limit int) (any, error) {
		return f.slice(0, min(limit, f.rows)), nil
	},
	"tail": func(f *Frame, limit int) (any, error) {
		return f.slice(max(0, f.rows-limit), f.rows), nil
	},
	"str": func(f *Frame, _ int) (any, error) {
		out := make(map[string]any, len(f.names))
		for _, name := range f.names {
			col := f.cols[name]
			kind := "character"
			if _, ok := numericColumn(col); ok {
				kind = "numeric"
			}
			out[name] = map[string]any{
				"type":   kind,
				"length": len(col),
				"first":  col[:min(3, len(col))],
			}
		}
		return out, nil
	},
}

// FrameOperations returns the sorted list of valid dataframe operations.
func FrameOperations() []string {
	names := make([]string, 0, len(frameOps))
	for name := range frameOps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsFrameOperation reports whether name is a valid dataframe operation.
func IsFrameOperation(name string) bool {
	_, ok := frameOps[name]
	return ok
}

// ApplyFrame runs the named operation over the frame.
func ApplyFrame(name string, f *Frame, limit int) (any, error) {
	op, ok := frameOps[name]
	if !ok {
		return nil, fmt.Errorf("unknown operation %q, valid operations: %v", name, FrameOperations())
	}
	return op(f, limit)
}

// slice materializes rows [from, to) as name→value records.
func (f *Frame) slice(from, to int) []map[string]any {
	out := make([]map[string]any, 0, to-from)
	for i := from; i < to; i++ {
		row := make(map[string]any, len(f.names))
		for _, name := range f.names {
			row[name] = f.cols[name][i]
		}
		out = append(out, row)
	}
	return out
}

// numericColumn converts a column to float64s if every value is numeric.
func numericColumn(col []any) ([]float64, bool) {
	out := make([]float64, len(col))
	for i, v := range col {
		switch val := v.(type) {
		case float64:
			out[i] = val
		case int:
			out[i] = float64(val)
		default:
			return nil, false
		}
	}
	return out, true
}

func characterSummary(col []any) map[string]any {
	uniq := make(map[string]bool, len(col))
	for _, v := range col {
		uniq[fmt.Sprint(v)] = true
	}
	return map[string]any{
		"count":  len(col),
		"unique": len(uniq),
		"type":   "character",
	}
}
