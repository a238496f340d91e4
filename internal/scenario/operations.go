package scenario

import (
	"maps"

	"github.com/vango-dev/rxstate/pkg/statestream"
)

// operations maps an emitter op to the EmitterFunc it registers.
var operations = map[string]statestream.EmitterFunc{
	"set":    setOp,
	"add":    addOp,
	"append": appendOp,
	"merge":  mergeOp,
}

// setOp replaces the state with the first argument, or nil.
func setOp(args ...any) statestream.Updater {
	var v any
	if len(args) > 0 {
		v = args[0]
	}
	return statestream.Set(v)
}

// addOp adds the first argument (default 1) to a numeric state. Integers
// stay integers while both operands are integers.
func addOp(args ...any) statestream.Updater {
	var delta any = 1
	if len(args) > 0 {
		delta = args[0]
	}
	return func(old any) any {
		return add(old, delta)
	}
}

func add(a, b any) any {
	ai, aInt := a.(int)
	bi, bInt := b.(int)
	if aInt && bInt {
		return ai + bi
	}
	if a == nil && bInt {
		return bi
	}
	af, _ := toFloat(a)
	bf, _ := toFloat(b)
	return af + bf
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// appendOp appends the arguments to a list state. A non-list state becomes
// the first element.
func appendOp(args ...any) statestream.Updater {
	return func(old any) any {
		var list []any
		switch v := old.(type) {
		case nil:
		case []any:
			list = append(list, v...)
		default:
			list = append(list, v)
		}
		return append(list, args...)
	}
}

// mergeOp merges every map argument into a map state, later keys winning.
func mergeOp(args ...any) statestream.Updater {
	return func(old any) any {
		out := make(map[string]any)
		if m, ok := old.(map[string]any); ok {
			maps.Copy(out, m)
		}
		for _, arg := range args {
			if m, ok := arg.(map[string]any); ok {
				maps.Copy(out, m)
			}
		}
		return out
	}
}
