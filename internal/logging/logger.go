// Package logging is the structured-logging seam shared by the CLI, the sync
// core and the development server. SlogLogger is the only implementation.
package logging

import "context"

// Logger takes a message plus alternating keys and values:
//
//	log.Info(ctx, "sync finished", "user_id", id, "seq", seq)
//
// The ctx is forwarded to the handler; it never cancels logging.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that adds args to every record.
	With(args ...any) Logger
}
