//go:build !nodiagnostics

package diagnostic

import (
	"context"
	"io"
	"log/slog"
)

// Available reports whether the binary was built with diagnostic fallbacks.
const Available = true

// OperatorLog writes undelivered reset tokens to an operator-only channel.
type OperatorLog struct {
	logger *slog.Logger
}

// NewOperatorLog creates an OperatorLog writing JSON lines to w.
func NewOperatorLog(w io.Writer) *OperatorLog {
	return &OperatorLog{
		logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}
}

// Emit records the token for manual delivery.
func (o *OperatorLog) Emit(ctx context.Context, email, token string) {
	o.logger.WarnContext(ctx, "undelivered password reset token",
		"email", email,
		"reset_token", token)
}

// NewResetTokenFallback returns an OperatorLog writing to w when enabled is
// true, and Noop otherwise.
func NewResetTokenFallback(enabled bool, w io.Writer) ResetTokenFallback {
	if !enabled || w == nil {
		return Noop{}
	}
	return NewOperatorLog(w)
}
