//go:build nodiagnostics

package diagnostic

import "io"

// Available reports whether the binary was built with diagnostic fallbacks.
const Available = false

// NewResetTokenFallback always returns Noop in nodiagnostics builds.
func NewResetTokenFallback(bool, io.Writer) ResetTokenFallback {
	return Noop{}
}
