package execshell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// StreamEngine runs the shell through os/exec with one writer task feeding stdin and one
// reader task draining the merged stdout and stderr pipe, so a large command never
// deadlocks against a large output.
type StreamEngine struct {
	options EngineOptions
}

// NewStreamEngine constructs a StreamEngine with sanitized options.
func NewStreamEngine(options EngineOptions) *StreamEngine {
	return &StreamEngine{options: options.sanitize()}
}

// Run feeds command plus a newline to `sh -s` and returns everything the shell wrote to stdout and stderr.
func (engine *StreamEngine) Run(executionContext context.Context, command []byte) (CommandResult, error) {
	if executionContext != nil {
		if contextError := executionContext.Err(); contextError != nil {
			return CommandResult{}, newSpawnError(FailureStageSpawn, contextError)
		}
	}

	inputReader, inputWriter, pipeError := os.Pipe()
	if pipeError != nil {
		return CommandResult{}, newSpawnError(FailureStagePipe, pipeError)
	}
	outputReader, outputWriter, pipeError := os.Pipe()
	if pipeError != nil {
		closeFiles(inputReader, inputWriter)
		return CommandResult{}, newSpawnError(FailureStagePipe, pipeError)
	}

	shellCommand := exec.Command(engine.options.ShellPath, shellReadStandardInputFlag)
	shellCommand.Stdin = inputReader
	shellCommand.Stdout = outputWriter
	shellCommand.Stderr = outputWriter

	startError := shellCommand.Start()
	closeFiles(inputReader, outputWriter)
	if startError != nil {
		closeFiles(inputWriter, outputReader)
		return CommandResult{}, newSpawnError(FailureStageSpawn, startError)
	}

	waitResult := make(chan error, 1)
	go func() {
		waitResult <- shellCommand.Wait()
	}()

	// Expired deadlines release both transfer tasks even while descendants of the shell hold the pipes.
	guard := armWatchdog(executionContext, engine.options.Timeout, func() error {
		killError := shellCommand.Process.Kill()
		abortTransfers(inputWriter, outputReader)
		return killError
	})

	output := NewOutputBuffer(engine.options.MaxOutput)
	var transferTasks errgroup.Group
	transferTasks.Go(func() error {
		defer closeFiles(inputWriter)
		return writeCommandStream(inputWriter, terminatedCommand(command))
	})
	transferTasks.Go(func() error {
		drainError := drainStream(outputReader, output, engine.options.ReadSlack)
		if drainError != nil {
			_ = shellCommand.Process.Kill()
		}
		return drainError
	})
	runError := transferTasks.Wait()
	closeFiles(outputReader)

	killSent := guard.disarm()
	var waitError error
	select {
	case waitError = <-waitResult:
	default:
		if killError := shellCommand.Process.Kill(); killError == nil {
			killSent = true
		}
		waitError = <-waitResult
	}

	if runError != nil {
		output.Discard()
		return CommandResult{}, runError
	}
	processState := shellCommand.ProcessState
	if processState == nil {
		output.Discard()
		return CommandResult{}, newIOError(FailureStageReap, waitError)
	}

	exitCode, termination := classifyOutcome(outcomeFromProcessState(processState), killSent)
	return CommandResult{
		RunID:       newRunIdentifier(),
		Output:      output.Detach(),
		ExitCode:    exitCode,
		Termination: termination,
	}, nil
}

func writeCommandStream(destination io.Writer, payload []byte) error {
	if _, writeError := destination.Write(payload); writeError != nil {
		if errors.Is(writeError, syscall.EPIPE) || transferAborted(writeError) {
			return nil
		}
		return newIOError(FailureStageWrite, writeError)
	}
	return nil
}

func drainStream(source io.Reader, output *OutputBuffer, readSlack int) error {
	var overflowCheck [1]byte
	for {
		limitReached := output.Reserve(readSlack) != nil
		target := output.FreeSpace()
		if limitReached {
			target = overflowCheck[:]
		}

		readCount, readError := source.Read(target)
		if readCount > 0 {
			if limitReached {
				return newIOError(FailureStageDrain, ErrOutputLimitExceeded)
			}
			output.Commit(readCount)
		}
		if errors.Is(readError, io.EOF) || transferAborted(readError) {
			return nil
		}
		if readError != nil {
			return newIOError(FailureStageDrain, readError)
		}
	}
}

// abortTransfers expires the deadlines of both parent pipe ends. A pipe without deadline support is closed instead.
func abortTransfers(inputWriter *os.File, outputReader *os.File) {
	abortTime := time.Now()
	if deadlineError := inputWriter.SetWriteDeadline(abortTime); deadlineError != nil {
		_ = inputWriter.Close()
	}
	if deadlineError := outputReader.SetReadDeadline(abortTime); deadlineError != nil {
		_ = outputReader.Close()
	}
}

func transferAborted(transferError error) bool {
	return errors.Is(transferError, os.ErrDeadlineExceeded) || errors.Is(transferError, os.ErrClosed)
}

func closeFiles(files ...*os.File) {
	for _, file := range files {
		_ = file.Close()
	}
}
