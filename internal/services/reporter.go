package services

import "go.uber.org/zap"

// Reporter is the side channel through which pipelines emit progress and
// informational notices. Calls are fire-and-forget: implementations must not
// block, and no pipeline result ever depends on a reporter call succeeding.
type Reporter interface {
	Info(msg string)
	Warning(msg string)
	Error(msg string)
	Progress(current, total int, msg string)
}

// ZapReporter forwards reporter events to a zap logger.
type ZapReporter struct {
	Logger *zap.Logger
}

func NewZapReporter(logger *zap.Logger) *ZapReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapReporter{Logger: logger}
}

func (r *ZapReporter) Info(msg string)    { r.Logger.Info(msg) }
func (r *ZapReporter) Warning(msg string) { r.Logger.Warn(msg) }
func (r *ZapReporter) Error(msg string)   { r.Logger.Error(msg) }

func (r *ZapReporter) Progress(current, total int, msg string) {
	r.Logger.Info(msg,
		zap.Int("progress", current),
		zap.Int("total", total),
	)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) Info(string)              {}
func (NopReporter) Warning(string)           {}
func (NopReporter) Error(string)             {}
func (NopReporter) Progress(int, int, string) {}
