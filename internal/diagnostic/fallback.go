// Package diagnostic holds operator-only fallback paths that bypass normal
// secret handling. They are off unless explicitly enabled, and building with
// the nodiagnostics tag removes them.
package diagnostic

import "context"

// ResetTokenFallback receives reset tokens whose notification was rejected.
type ResetTokenFallback interface {
	Emit(ctx context.Context, email, token string)
}

// Noop discards everything.
type Noop struct{}

// Emit does nothing.
func (Noop) Emit(context.Context, string, string) {}
