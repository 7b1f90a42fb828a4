package joltsyntax

import "fmt"

// Context locates a piece of source text.
// Start and End are byte offsets into the source content, End exclusive.
type Context struct {
	Name   string
	Row    int
	Column int
	Start  int
	End    int
}

func (c Context) Len() int {
	return c.End - c.Start
}

// RangeTo returns a context starting at c and ending where other ends.
func (c Context) RangeTo(other Context) Context {
	ret := c
	if other.End > ret.End {
		ret.End = other.End
	}
	return ret
}

func (c Context) String() string {
	if c.Name == "" {
		return fmt.Sprintf("%d:%d", c.Row, c.Column)
	}
	return fmt.Sprintf("%s:%d:%d", c.Name, c.Row, c.Column)
}
