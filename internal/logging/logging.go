package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Options controls handler construction.
type Options struct {
	Level slog.Level
	JSON  bool
}

// New returns a logger writing text to STDOUT at info level.
func New() *slog.Logger {
	return NewWithOptions(os.Stdout, Options{})
}

// NewWithOptions returns a logger writing to w with the given options.
func NewWithOptions(w io.Writer, opts Options) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

type ctxKey struct{}

// NewContext returns a copy of ctx with the logger stored.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves a logger from ctx or returns slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
