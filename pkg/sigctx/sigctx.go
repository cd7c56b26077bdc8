// Package sigctx ties the process lifetime to termination signals.
package sigctx

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

var signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}

// NotifyContext is canceled on the first SIGINT, SIGTERM or SIGQUIT.
func NotifyContext() (context.Context, context.CancelFunc) {
	return WithSignals(context.Background())
}

// WithSignals derives the signal-bound context from parent.
func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}
