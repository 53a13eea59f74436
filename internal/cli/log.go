// Logging for the ghnet command-line interface.
//
// All commands support --verbose (-v) for debug-level logging, which also
// traces every cache lookup and HTTP request through the observability
// hooks. Loggers are passed through context.Context.

package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pierre-ernst/ghnet/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
// The returned progress should call done when the operation completes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// The duration is rounded to the nearest millisecond.
// Example output: "Found 12 dependents (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
// Using a distinct type prevents collisions with other packages.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
// The logger can be retrieved later with loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
// This ensures commands always have a valid logger even if context setup fails.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks reports observability events as debug log lines.
type logHooks struct {
	logger *log.Logger
}

func newLogHooks(l *log.Logger) *logHooks { return &logHooks{logger: l} }

func (h *logHooks) OnScanStart(_ context.Context, repo, packageID string) {
	h.logger.Debug("Scan started", "repo", repo, "package", packageID)
}

func (h *logHooks) OnScanComplete(_ context.Context, repo string, st observability.ScanStats, err error) {
	if err != nil {
		h.logger.Debug("Scan failed", "repo", repo, "after", st.Duration.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("Scan finished", "repo", repo, "pages", st.Pages, "kept", st.Kept,
		"skipped", st.Skipped, "took", st.Duration.Round(time.Millisecond))
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("Cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("Cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("Cache write", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(context.Context, string, string, string) {}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("HTTP", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("HTTP failed", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ observability.ScanHooks  = (*logHooks)(nil)
	_ observability.CacheHooks = (*logHooks)(nil)
	_ observability.HTTPHooks  = (*logHooks)(nil)
)
