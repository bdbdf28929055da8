package usecase

import (
	"context"
	"time"
)

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type noopRetrier struct{}

func (noopRetrier) Retry(_ context.Context, operation func() error) error {
	return operation()
}
