package ui

import "go.uber.org/zap"

// StatusReporter carries user-facing status messages for coloring commands.
// Implementations decide how messages reach the user; callers treat every
// level as fire-and-forget.
type StatusReporter interface {
	Info(message string)
	Warn(message string)
	Error(message string)
}

// ConsoleStatusReporter reports status messages through a zap logger
// configured for human-readable output.
type ConsoleStatusReporter struct {
	logger *zap.Logger
}

// NewConsoleStatusReporter constructs a ConsoleStatusReporter backed by the provided zap logger.
func NewConsoleStatusReporter(logger *zap.Logger) *ConsoleStatusReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleStatusReporter{logger: logger}
}

// Info reports an informational status message.
func (reporter *ConsoleStatusReporter) Info(message string) {
	if reporter == nil {
		return
	}
	reporter.logger.Info(message)
}

// Warn reports a condition the user should know about but that did not stop work.
func (reporter *ConsoleStatusReporter) Warn(message string) {
	if reporter == nil {
		return
	}
	reporter.logger.Warn(message)
}

// Error reports a failed operation.
func (reporter *ConsoleStatusReporter) Error(message string) {
	if reporter == nil {
		return
	}
	reporter.logger.Error(message)
}

// NoopStatusReporter discards every status message.
type NoopStatusReporter struct{}

// Info discards the message.
func (NoopStatusReporter) Info(message string) {}

// Warn discards the message.
func (NoopStatusReporter) Warn(message string) {}

// Error discards the message.
func (NoopStatusReporter) Error(message string) {}
