package configs

import (
	"encoding"
	"fmt"
	"iter"
	"maps"
	"reflect"

	"github.com/reusee/dscope"
)

// Configurable is implemented by configuration value types that a
// configuration script may set by declaring a top level name.
type Configurable interface {
	ConfigName() string
}

var configurableType = reflect.TypeFor[Configurable]()

// ScriptValues holds the values set by configuration scripts, by config name.
type ScriptValues map[string]any

func (Module) ScriptValues() ScriptValues {
	return nil
}

// ScriptFork forks scope with the globals whose names belong to a
// Configurable type of the scope. Later calls override earlier values.
func ScriptFork(scope dscope.Scope, globals iter.Seq2[string, any]) dscope.Scope {
	names := make(map[string]bool)
	for t := range scope.AllTypes() {
		if t.Kind() == reflect.Interface || !t.Implements(configurableType) {
			continue
		}
		names[reflect.Zero(t).Interface().(Configurable).ConfigName()] = true
	}

	values := maps.Clone(dscope.Get[ScriptValues](scope))
	if values == nil {
		values = make(ScriptValues)
	}
	for name, value := range globals {
		if names[name] {
			values[name] = value
		}
	}

	return scope.Fork(func() ScriptValues {
		return values
	})
}

// FromScript converts the script value of name to T. Strings are decoded by
// T's UnmarshalText if it has one, other values must have T's kind.
func FromScript[T any](values ScriptValues, name string) (ret T, ok bool, err error) {
	value, ok := values[name]
	if !ok {
		return
	}

	if unmarshaler, is := any(&ret).(encoding.TextUnmarshaler); is {
		str, isString := value.(string)
		if !isString {
			return ret, false, fmt.Errorf("config %s: expecting string, got %T", name, value)
		}
		if err := unmarshaler.UnmarshalText([]byte(str)); err != nil {
			return ret, false, fmt.Errorf("config %s: %w", name, err)
		}
		return ret, true, nil
	}

	target := reflect.ValueOf(&ret).Elem()
	v := reflect.ValueOf(value)
	if !v.IsValid() || v.Kind() != target.Kind() {
		return ret, false, fmt.Errorf("config %s: expecting %v, got %T", name, target.Kind(), value)
	}
	target.Set(v.Convert(target.Type()))
	return ret, true, nil
}
