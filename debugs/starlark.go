package debugs

import (
	"fmt"
	"math"
	"reflect"
	"slices"

	"github.com/reusee/jolt/joltlang"
	"github.com/reusee/starlarkutil"
	"go.starlark.net/starlark"
)

func toStarlarkValue(v any) starlark.Value {
	return convert(v, nil)
}

// convert tracks the jolt lists being converted; a list that contains itself
// becomes None where it repeats.
func convert(v any, path []*joltlang.List) starlark.Value {
	switch v := v.(type) {

	case nil:
		return starlark.None

	case joltlang.Bool:
		return starlark.Bool(v)
	case joltlang.Number:
		f := float64(v)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return starlark.MakeInt64(int64(f))
		}
		return starlark.Float(f)
	case joltlang.String:
		return starlark.String(v)
	case *joltlang.List:
		if slices.Contains(path, v) {
			return starlark.None
		}
		path = append(path, v)
		elems := make([]starlark.Value, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = convert(e, path)
		}
		return starlark.NewList(elems)
	case *joltlang.Record:
		return convert(v.Value, path)

	case bool:
		return starlark.Bool(v)
	case string:
		return starlark.String(v)
	case int:
		return starlark.MakeInt(v)
	case float64:
		return starlark.Float(v)

	case []any:
		elems := make([]starlark.Value, len(v))
		for i, e := range v {
			elems[i] = convert(e, path)
		}
		return starlark.NewList(elems)

	case map[string]any:
		d := starlark.NewDict(len(v))
		for k, val := range v {
			d.SetKey(starlark.String(k), convert(val, path))
		}
		return d

	}

	value := reflect.ValueOf(v)
	if value.Kind() == reflect.Func {
		return starlarkutil.MakeFunc("", value.Interface())
	}

	panic(fmt.Errorf("unsupported type for starlark: %T", v))
}
