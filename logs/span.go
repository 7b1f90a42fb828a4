package logs

import (
	"context"
	"log/slog"
)

// Span identifies one unit of work across log records and errors.
type Span string

type spanKey struct{}

var SpanKey = spanKey{}

// spanHandler adds the span of the record context as the "span" attribute.
type spanHandler struct {
	slog.Handler
}

func (s spanHandler) Handle(ctx context.Context, record slog.Record) error {
	if span, ok := ctx.Value(SpanKey).(Span); ok {
		record.AddAttrs(slog.String("span", string(span)))
	}
	return s.Handler.Handle(ctx, record)
}

func (s spanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return spanHandler{
		Handler: s.Handler.WithAttrs(attrs),
	}
}

func (s spanHandler) WithGroup(name string) slog.Handler {
	return spanHandler{
		Handler: s.Handler.WithGroup(name),
	}
}
