package store

import (
	"context"
	"math/rand"
	"time"
)

// WithRetry runs fn up to attempts times, retrying only when shouldRetry
// classifies the error as a transient conflict. Backoff is short and
// randomized to break up interleavings. The last error is returned once
// attempts are exhausted.
func WithRetry(ctx context.Context, attempts int, shouldRetry func(error) bool, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !shouldRetry(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(25+rand.Intn(50)) * time.Millisecond):
		}
	}
	return err
}
