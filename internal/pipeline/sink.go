package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/valpere/sentinel/internal"
)

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, records []internal.ResultRecord) error

func (f SinkFunc) Push(ctx context.Context, records []internal.ResultRecord) error {
	return f(ctx, records)
}

// PushAll hands records to every sink, even if an earlier one fails, and
// joins the errors.
func PushAll(ctx context.Context, records []internal.ResultRecord, sinks ...Sink) error {
	var errs []error
	for i, s := range sinks {
		if err := s.Push(ctx, records); err != nil {
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
