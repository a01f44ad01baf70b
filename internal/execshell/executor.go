package execshell

import (
	"context"

	"go.uber.org/zap"
)

const (
	commandStartedLogMessageConstant   = "shell command started"
	commandCompletedLogMessageConstant = "shell command completed"
	commandFailedLogMessageConstant    = "shell command failed"
	commandLogFieldConstant            = "command"
	runIdentifierLogFieldConstant      = "run_id"
	exitCodeLogFieldConstant           = "exit_code"
	terminationLogFieldConstant        = "termination"
	outputBytesLogFieldConstant        = "output_bytes"
)

// ShellExecutorOption customizes a ShellExecutor.
type ShellExecutorOption func(*ShellExecutor)

// WithHumanReadableLogging logs formatted sentences instead of structured fields.
func WithHumanReadableLogging(enabled bool) ShellExecutorOption {
	return func(executor *ShellExecutor) {
		executor.humanReadableLogging = enabled
	}
}

// WithCommandEventObserver registers an observer notified of every run.
func WithCommandEventObserver(observer CommandEventObserver) ShellExecutorOption {
	return func(executor *ShellExecutor) {
		if observer != nil {
			executor.observer = observer
		}
	}
}

// ShellExecutor runs commands through a CommandEngine and logs two entries per run.
type ShellExecutor struct {
	logger               *zap.Logger
	engine               CommandEngine
	observer             CommandEventObserver
	formatter            CommandMessageFormatter
	humanReadableLogging bool
}

// NewShellExecutor validates its collaborators and constructs a ShellExecutor.
func NewShellExecutor(logger *zap.Logger, engine CommandEngine, options ...ShellExecutorOption) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if engine == nil {
		return nil, ErrCommandEngineNotConfigured
	}

	executor := &ShellExecutor{
		logger:   logger,
		engine:   engine,
		observer: noopCommandEventObserver{},
	}
	for _, option := range options {
		if option != nil {
			option(executor)
		}
	}
	return executor, nil
}

// Execute runs the command. A non-zero exit code is reported through the result, not as an error.
func (executor *ShellExecutor) Execute(executionContext context.Context, command []byte) (CommandResult, error) {
	commandLabel := executor.formatter.FormatCommandLabel(command)
	executor.observer.CommandStarted(command)
	if executor.humanReadableLogging {
		executor.logger.Info(executor.formatter.BuildStartedMessage(command))
	} else {
		executor.logger.Info(commandStartedLogMessageConstant, zap.String(commandLogFieldConstant, commandLabel))
	}

	result, runError := executor.engine.Run(executionContext, command)
	if runError != nil {
		executor.observer.CommandExecutionFailed(command, runError)
		if executor.humanReadableLogging {
			executor.logger.Error(executor.formatter.BuildExecutionFailureMessage(command, runError))
		} else {
			executor.logger.Error(commandFailedLogMessageConstant, zap.String(commandLogFieldConstant, commandLabel), zap.Error(runError))
		}
		return CommandResult{}, runError
	}

	executor.observer.CommandCompleted(command, result)
	executor.logCompletion(command, commandLabel, result)
	return result, nil
}

func (executor *ShellExecutor) logCompletion(command []byte, commandLabel string, result CommandResult) {
	if executor.humanReadableLogging {
		if result.Succeeded() {
			executor.logger.Info(executor.formatter.BuildSuccessMessage(command))
			return
		}
		executor.logger.Warn(executor.formatter.BuildFailureMessage(command, result))
		return
	}

	fields := []zap.Field{
		zap.String(commandLogFieldConstant, commandLabel),
		zap.String(runIdentifierLogFieldConstant, result.RunID),
		zap.Int(exitCodeLogFieldConstant, result.ExitCode),
		zap.String(terminationLogFieldConstant, result.Termination.String()),
		zap.Int(outputBytesLogFieldConstant, len(result.Output)),
	}
	if result.Succeeded() {
		executor.logger.Info(commandCompletedLogMessageConstant, fields...)
		return
	}
	executor.logger.Warn(commandCompletedLogMessageConstant, fields...)
}
