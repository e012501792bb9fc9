package contxt

import (
	"context"
	"os"
	"time"
)

// New returns a context that expires after timeout, for fire-and-forget
// publishes where the caller has no context of its own to thread through.
// Setting CONTEXT_TEST disables the deadline so tests can step through slowly.
func New(timeout time.Duration) context.Context {
	if os.Getenv("CONTEXT_TEST") != "" {
		return context.Background()
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ctx
}
