package cmds

import (
	"fmt"
	"io"
	"maps"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

const usageWidth = 72

func (p *Executor) PrintUsage() {
	p.WriteUsage(os.Stdout)
}

func (p *Executor) WriteUsage(w io.Writer) {
	fmt.Fprintf(w, "usage: %s [command [args]]...\n\n", commandName())
	writeCommands(w, p.commands, 1)
}

func commandName() string {
	if len(os.Args) == 0 {
		return "command"
	}
	name := os.Args[0]
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func writeCommands(w io.Writer, commands map[string]*Command, depth int) {
	// aliases share one entry
	names := make(map[*Command][]string)
	var order []*Command
	for _, name := range slices.Sorted(maps.Keys(commands)) {
		command := commands[name]
		if command == nil || command.Hidden {
			continue
		}
		if _, ok := names[command]; !ok {
			order = append(order, command)
		}
		names[command] = append(names[command], name)
	}

	indent := strings.Repeat("  ", depth)
	for _, command := range order {
		fmt.Fprintf(w, "%s%s%s\n", indent, strings.Join(names[command], ", "), argsUsage(command))
		if command.Description != "" {
			wrapped := wordwrap.WrapString(command.Description, uint(usageWidth-len(indent)-4))
			for line := range strings.SplitSeq(wrapped, "\n") {
				fmt.Fprintf(w, "%s    %s\n", indent, line)
			}
		}
		if len(command.Subs) > 0 {
			writeCommands(w, command.Subs, depth+1)
		}
	}
}

func argsUsage(command *Command) string {
	if !command.Func.IsValid() {
		return ""
	}
	var b strings.Builder
	t := command.Func.Type()
	for i := range t.NumIn() {
		in := t.In(i)
		if in.Kind() == reflect.Pointer {
			fmt.Fprintf(&b, " [%s]", argName(in))
		} else {
			fmt.Fprintf(&b, " <%s>", argName(in))
		}
	}
	return b.String()
}
