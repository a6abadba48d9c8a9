package transmogrify

import (
	"cmp"
	"reflect"
	"slices"

	"github.com/ahl/transmogrify/primitive"
)

// sortedKeys orders map keys so generated literals are deterministic: numbers
// numerically, strings lexically, false before true, and every other key by
// its generated source.
func sortedKeys(rv reflect.Value) []reflect.Value {
	keys := rv.MapKeys()
	kind := primitive.FromReflectKind(rv.Type().Key().Kind())

	switch {
	case kind.IsSigned():
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.Int(), b.Int()) })
	case kind.IsUnsigned():
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.Uint(), b.Uint()) })
	case kind.IsFloat():
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.Float(), b.Float()) })
	case kind == primitive.KindString:
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.String(), b.String()) })
	case kind == primitive.KindBool:
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return cmp.Compare(boolRank(a.Bool()), boolRank(b.Bool()))
		})
	default:
		rendered := make(map[int]string, len(keys))
		for i, k := range keys {
			rendered[i] = of(k).String()
		}

		idx := make([]int, len(keys))
		for i := range idx {
			idx[i] = i
		}

		slices.SortStableFunc(idx, func(a, b int) int { return cmp.Compare(rendered[a], rendered[b]) })

		sorted := make([]reflect.Value, len(keys))
		for i, j := range idx {
			sorted[i] = keys[j]
		}

		return sorted
	}

	return keys
}

func boolRank(b bool) int {
	if b {
		return 1
	}

	return 0
}
