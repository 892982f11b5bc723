package logging

import (
	"context"
	"log/slog"
)

// DiagnosticLog writes the full error list of an import to the log, one
// entry per message, so operators can see what the summary only counted.
type DiagnosticLog struct {
	logger *slog.Logger
}

// NewDiagnosticLog returns a DiagnosticLog writing to logger, or to the
// default logger when logger is nil.
func NewDiagnosticLog(logger *slog.Logger) *DiagnosticLog {
	return &DiagnosticLog{logger: logger}
}

// Record implements core.DiagnosticLog.
func (d *DiagnosticLog) Record(ctx context.Context, importID string, messages []string) {
	logger := d.logger
	if logger == nil {
		logger = FromContext(ctx)
	}
	logger = logger.With("import_id", importID, "error_count", len(messages))

	for i, msg := range messages {
		logger.WarnContext(ctx, "import row error", "index", i+1, "message", msg)
	}
}
