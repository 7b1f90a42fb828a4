package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/reusee/jolt/joltsyntax"
)

const continuationPrompt = "... "

// REPL reads inputs until end of file. Each input is one run against the
// same interpreter, and a failing input does not end the session.
func (d *Driver) REPL(ctx context.Context, prompt string, historyFile string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      prompt,
		HistoryFile: historyFile,
	})
	if err != nil {
		return wrap(err)
	}
	defer rl.Close()

	session := uuid.NewString()
	d.logger.InfoContext(ctx, "repl session", "session", session)

	var pending []string
	n := 0
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			// drop the pending input
			pending = pending[:0]
			rl.SetPrompt(prompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return wrap(err)
		}

		pending = append(pending, line)
		text := strings.Join(pending, "\n")
		if strings.TrimSpace(text) == "" {
			pending = pending[:0]
			continue
		}
		if _, err := joltsyntax.Parse(joltsyntax.NewSource("", text)); incomplete(err) {
			rl.SetPrompt(continuationPrompt)
			continue
		}

		pending = pending[:0]
		rl.SetPrompt(prompt)
		n++
		source := joltsyntax.NewSource(fmt.Sprintf("<input %d>", n), text)
		d.logger.DebugContext(ctx, "repl input", "session", session, "input", n)
		_ = d.RunInterruptible(ctx, source)
	}
}

// incomplete reports whether err was caused by the input ending too early.
func incomplete(err error) bool {
	e, ok := joltsyntax.AsError(err)
	if !ok {
		return false
	}
	switch e.Kind {
	case joltsyntax.LexicalError:
		return e.Message == "unterminated string" ||
			e.Message == "unterminated string interpolation" ||
			e.Message == "unclosed block comment"
	case joltsyntax.SyntaxError:
		return e.Message == "unclosed block" ||
			strings.HasSuffix(e.Message, "found end of file")
	}
	return false
}
