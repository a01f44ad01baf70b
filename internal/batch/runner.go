package batch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/sysservices/internal/execshell"
)

const (
	stepExecutionErrorTemplateConstant   = "batch step %s: %w"
	stepExitCodeErrorTemplateConstant    = "batch step %s exited with code %d (%s): %w"
	stepOutputWriteErrorTemplateConstant = "batch step %s output: %w"
	stepCompletedMessageConstant         = "batch step completed"
	stepFailureToleratedMessageConstant  = "batch step failure tolerated"
	stepNameLogFieldConstant             = "step"
	stepExitCodeLogFieldConstant         = "exit_code"
	stepRunIdentifierLogFieldConstant    = "run_id"
)

var (
	// ErrShellNotConfigured reports a runner built without a shell.
	ErrShellNotConfigured = errors.New("batch runner requires a shell")
	// ErrStepFailed reports a step that exited unsuccessfully without allow_failure.
	ErrStepFailed = errors.New("batch step failed")
)

// Shell runs command text and reports the complete result.
type Shell interface {
	ShellResult(executionContext context.Context, command []byte) (execshell.CommandResult, error)
}

// StepReport records the outcome of an executed step.
type StepReport struct {
	Name   string
	Result execshell.CommandResult
}

// Report lists executed steps in order.
type Report struct {
	Steps []StepReport
}

// Runner executes batch steps in order and stops at the first failing step.
type Runner struct {
	shell  Shell
	logger *zap.Logger
	output io.Writer
}

// NewRunner validates collaborators. A nil output discards step output; a nil logger disables logging.
func NewRunner(shell Shell, logger *zap.Logger, output io.Writer) (*Runner, error) {
	if shell == nil {
		return nil, ErrShellNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if output == nil {
		output = io.Discard
	}
	return &Runner{shell: shell, logger: logger, output: output}, nil
}

// Run executes every step. It returns the steps executed so far together with the error that stopped the batch.
func (runner *Runner) Run(executionContext context.Context, configuration Configuration) (Report, error) {
	report := Report{Steps: make([]StepReport, 0, len(configuration.Steps))}

	for _, step := range configuration.Steps {
		if contextError := executionContext.Err(); contextError != nil {
			return report, fmt.Errorf(stepExecutionErrorTemplateConstant, step.Name, contextError)
		}

		result, executionError := runner.shell.ShellResult(executionContext, []byte(step.Command))
		if executionError != nil {
			return report, fmt.Errorf(stepExecutionErrorTemplateConstant, step.Name, executionError)
		}
		report.Steps = append(report.Steps, StepReport{Name: step.Name, Result: result})

		if _, writeError := runner.output.Write(result.Output); writeError != nil {
			return report, fmt.Errorf(stepOutputWriteErrorTemplateConstant, step.Name, writeError)
		}

		logFields := []zap.Field{
			zap.String(stepNameLogFieldConstant, step.Name),
			zap.Int(stepExitCodeLogFieldConstant, result.ExitCode),
			zap.String(stepRunIdentifierLogFieldConstant, result.RunID),
		}
		if result.Succeeded() {
			runner.logger.Debug(stepCompletedMessageConstant, logFields...)
			continue
		}
		if step.AllowFailure {
			runner.logger.Warn(stepFailureToleratedMessageConstant, logFields...)
			continue
		}
		return report, fmt.Errorf(stepExitCodeErrorTemplateConstant, step.Name, result.ExitCode, result.Termination, ErrStepFailed)
	}

	return report, nil
}
