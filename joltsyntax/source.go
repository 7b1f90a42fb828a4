package joltsyntax

import "strings"

type Source struct {
	Name    string
	Content string
	Lines   []string
}

func NewSource(name string, content string) *Source {
	return &Source{
		Name:    name,
		Content: content,
		Lines:   strings.Split(content, "\n"),
	}
}

// Line returns the text of the 1-based row, without its line terminator.
func (s *Source) Line(row int) (string, bool) {
	idx := row - 1
	if idx < 0 || idx >= len(s.Lines) {
		return "", false
	}
	return strings.TrimSuffix(s.Lines[idx], "\r"), true
}
