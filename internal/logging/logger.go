// Package logging provides the logging abstraction shared by the keepsake
// server and client binaries.
package logging

import "context"

// Logger is the structured logger the rest of the code depends on. Variadic
// args are alternating keys and values, as in slog:
//
//	log.Info(ctx, "http server listening", "addr", cfg.EndpointAddr)
type Logger interface {
	// Debug logs fine-grained detail, such as rejected requests. Handlers
	// normally filter it out in production.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs normal operational events.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs conditions the service recovered from on its own.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures that need attention.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger whose entries always carry the given
	// key and value pairs.
	With(args ...any) Logger
}
