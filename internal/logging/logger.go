// Package logging defines the structured logger contract shared by the CLI
// client and the server. The client wires a slog adapter, the server a zap
// one; everything else depends on the interface only.
package logging

import "context"

// Logger emits structured records. The variadic args are alternating
// key/value pairs:
//
//	log.Info(ctx, "file uploaded", "id", record.ID, "size", record.Size)
type Logger interface {
	// Info records normal operation.
	Info(ctx context.Context, msg string, args ...any)

	// Warn records unusual but recoverable conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error records failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger carrying the given key/value pairs on
	// every record it emits.
	With(args ...any) Logger
}
