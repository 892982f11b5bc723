// Package logging provides structured logging configuration using log/slog.
//
// Request-scoped loggers carry chi's request id and the tenant id so every
// entry for one import request can be correlated.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/stockimport/internal/core"
)

// Setup installs the global slog logger writing to stdout.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) *slog.Logger {
	logger := slog.New(NewHandler(os.Stdout, level, format))
	slog.SetDefault(logger)
	return logger
}

// NewHandler builds the text or JSON handler used by Setup. Records logged
// with a context get its request_id and tenant_id.
func NewHandler(w io.Writer, level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "json") {
		return contextHandler{Handler: slog.NewJSONHandler(w, opts)}
	}
	return contextHandler{Handler: slog.NewTextHandler(w, opts)}
}

// contextHandler adds request attributes from the record's context unless
// the logger (see FromContext) or the record already carries them.
type contextHandler struct {
	slog.Handler
	hasRequestID bool
	hasTenant    bool
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	hasRequestID, hasTenant := h.hasRequestID, h.hasTenant
	r.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "request_id":
			hasRequestID = true
		case "tenant_id":
			hasTenant = true
		}
		return true
	})

	if !hasRequestID {
		if reqID := middleware.GetReqID(ctx); reqID != "" {
			r.AddAttrs(slog.String("request_id", reqID))
		}
	}
	if !hasTenant {
		if tenant := core.TenantFromContext(ctx); tenant != "" {
			r.AddAttrs(slog.String("tenant_id", tenant))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h
	next.Handler = h.Handler.WithAttrs(attrs)
	for _, a := range attrs {
		switch a.Key {
		case "request_id":
			next.hasRequestID = true
		case "tenant_id":
			next.hasTenant = true
		}
	}
	return next
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	next := h
	next.Handler = h.Handler.WithGroup(name)
	return next
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FromContext returns the default logger enriched with request_id and
// tenant_id when ctx carries them.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if tenant := core.TenantFromContext(ctx); tenant != "" {
		logger = logger.With("tenant_id", tenant)
	}

	return logger
}

// WithFields returns a request logger with additional structured fields.
//
//	importLogger := logging.WithFields(ctx, "import_id", state.ID)
//	importLogger.Info("duplicates resolved", "policy", policy)
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
