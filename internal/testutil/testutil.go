// Package testutil provides test helpers: an in-memory GNS3 controller for
// unit tests and, under the integration tag, Redis helpers.
package testutil

import (
	"context"
	"testing"
	"time"
)

// Context returns a context with a reasonable timeout for tests.
// The cancel function is registered via t.Cleanup.
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
