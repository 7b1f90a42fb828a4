package cmds

import (
	"fmt"
	"reflect"
)

// Command is one word of the command line. A command either consumes
// arguments through Func, opens a set of sub words, or both.
type Command struct {
	Func        reflect.Value
	Subs        map[string]*Command
	Description string
	Aliases     []string
	Hidden      bool
}

func (c *Command) Desc(desc string) *Command {
	c.Description = desc
	return c
}

func (c *Command) Alias(names ...string) *Command {
	c.Aliases = append(c.Aliases, names...)
	return c
}

// Hide omits the command from usage output.
func (c *Command) Hide() *Command {
	c.Hidden = true
	return c
}

var errorType = reflect.TypeFor[error]()

// Func wraps fn as a command. Parameters of fn are taken from the following
// words; pointer parameters are optional. fn may return an error.
func Func(fn any) *Command {
	fnValue := reflect.ValueOf(fn)
	if fnValue.Kind() != reflect.Func {
		panic(fmt.Errorf("command must be a function, got %T", fn))
	}

	t := fnValue.Type()
	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0) != errorType {
			panic(fmt.Errorf("command may only return error, got %v", t.Out(0)))
		}
	default:
		panic(fmt.Errorf("command returns %d values", t.NumOut()))
	}
	for i := range t.NumIn() {
		if !parsable(t.In(i)) {
			panic(fmt.Errorf("unsupported argument type %v", t.In(i)))
		}
	}

	return &Command{
		Func: fnValue,
	}
}

func Sub(subs map[string]*Command) *Command {
	return &Command{
		Subs: subs,
	}
}
