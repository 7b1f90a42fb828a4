package logs

import (
	"context"
	"errors"
	"fmt"
)

// SpanError records the span an error was returned from.
type SpanError struct {
	Span Span
	Err  error
}

func (s *SpanError) Error() string {
	return fmt.Sprintf("%v (span %s)", s.Err, s.Span)
}

func (s *SpanError) Unwrap() error {
	return s.Err
}

// WrapSpan attaches the span of ctx to err, once.
func WrapSpan(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	span, ok := ctx.Value(SpanKey).(Span)
	if !ok {
		return err
	}
	var spanErr *SpanError
	if errors.As(err, &spanErr) {
		return err
	}
	return &SpanError{
		Span: span,
		Err:  err,
	}
}

// SpanOf returns the span attached to err by WrapSpan.
func SpanOf(err error) (Span, bool) {
	var spanErr *SpanError
	if errors.As(err, &spanErr) {
		return spanErr.Span, true
	}
	return "", false
}
