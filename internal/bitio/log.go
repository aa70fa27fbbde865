package bitio

import "log/slog"

// logger wraps log/slog behind a per-stream gate: tracing only fires
// when Debug is set on the owning Reader/Writer, keeping the hot path
// cheap when nobody is listening. Warnings always emit.
type logger struct {
	l       *slog.Logger
	enabled bool
	comp    string // "reader" or "writer"
}

func newLogger(comp string) *logger {
	return &logger{l: slog.Default(), comp: comp}
}

func (lg *logger) trace(op string, kv ...any) {
	if lg == nil || !lg.enabled {
		return
	}
	args := append([]any{"component", lg.comp, "op", op}, kv...)
	lg.l.Debug("bitio trace", args...)
}

func (lg *logger) warn(msg string, kv ...any) {
	if lg == nil {
		return
	}
	args := append([]any{"component", lg.comp}, kv...)
	lg.l.Warn(msg, args...)
}
