package ui

import (
	"go.uber.org/zap"

	"github.com/temirov/sysservices/internal/execshell"
)

const (
	runIdentifierFieldConstant = "run_id"
)

// ConsoleCommandEventLogger renders shell command lifecycle events as human-readable log lines.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
	verbose   bool
}

// ConsoleOption customizes a ConsoleCommandEventLogger.
type ConsoleOption func(*ConsoleCommandEventLogger)

// WithRunIdentifiers attaches the run identifier to completion lines.
func WithRunIdentifiers(enabled bool) ConsoleOption {
	return func(eventLogger *ConsoleCommandEventLogger) {
		eventLogger.verbose = enabled
	}
}

// NewConsoleCommandEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleCommandEventLogger(logger *zap.Logger, options ...ConsoleOption) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	eventLogger := &ConsoleCommandEventLogger{logger: logger}
	for _, option := range options {
		if option != nil {
			option(eventLogger)
		}
	}
	return eventLogger
}

// CommandStarted implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command []byte) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(command))
}

// CommandCompleted implements execshell.CommandEventObserver. Non-zero exits are warnings.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command []byte, result execshell.CommandResult) {
	if eventLogger == nil {
		return
	}
	var fields []zap.Field
	if eventLogger.verbose {
		fields = append(fields, zap.String(runIdentifierFieldConstant, result.RunID))
	}
	if result.Succeeded() {
		eventLogger.logger.Info(eventLogger.formatter.BuildSuccessMessage(command), fields...)
		return
	}
	eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(command, result), fields...)
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command []byte, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}

var _ execshell.CommandEventObserver = (*ConsoleCommandEventLogger)(nil)
