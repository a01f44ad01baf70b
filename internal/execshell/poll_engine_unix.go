//go:build linux || darwin || freebsd || netbsd || openbsd

package execshell

import (
	"context"
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

const (
	closedDescriptorConstant       = -1
	blockIndefinitelyConstant      = -1
	overflowCheckLengthConstant    = 1
	pipeDescriptorCountConstant    = 2
	pipeReadEndIndexConstant       = 0
	pipeWriteEndIndexConstant      = 1
	noWaitOptionsConstant          = 0
	stillRunningIdentifierConstant = 0
	abortSignalByteConstant        = 1
)

// PollEngine runs the shell with fork/exec over two raw pipes, writing the command and draining the
// merged output on the calling goroutine, blocking in poll(2) whenever neither direction can progress.
type PollEngine struct {
	options EngineOptions
}

// NewPollEngine constructs a PollEngine with sanitized options.
func NewPollEngine(options EngineOptions) *PollEngine {
	return &PollEngine{options: options.sanitize()}
}

func newPlatformPollEngine(options EngineOptions) CommandEngine {
	return NewPollEngine(options)
}

// pipePair holds both descriptors of one pipe. A closed end is set to closedDescriptorConstant.
type pipePair struct {
	readEnd  int
	writeEnd int
}

// Run feeds command plus a newline to `sh -s` and returns everything the shell wrote to stdout and stderr.
// A non-zero exit code is reported in the result, not as an error.
func (engine *PollEngine) Run(executionContext context.Context, command []byte) (CommandResult, error) {
	if executionContext != nil {
		if contextError := executionContext.Err(); contextError != nil {
			return CommandResult{}, newSpawnError(FailureStageSpawn, contextError)
		}
	}

	parentToChild, pipeError := openPipePair()
	if pipeError != nil {
		return CommandResult{}, newSpawnError(FailureStagePipe, pipeError)
	}
	childToParent, pipeError := openPipePair()
	if pipeError != nil {
		parentToChild.close()
		return CommandResult{}, newSpawnError(FailureStagePipe, pipeError)
	}
	abortSignal, pipeError := openPipePair()
	if pipeError != nil {
		parentToChild.close()
		childToParent.close()
		return CommandResult{}, newSpawnError(FailureStagePipe, pipeError)
	}

	shellArguments := []string{engine.options.ShellPath, shellReadStandardInputFlag}
	processAttributes := &syscall.ProcAttr{
		Env: os.Environ(),
		Files: []uintptr{
			uintptr(parentToChild.readEnd),
			uintptr(childToParent.writeEnd),
			uintptr(childToParent.writeEnd),
		},
	}
	processIdentifier, forkError := syscall.ForkExec(engine.options.ShellPath, shellArguments, processAttributes)
	closeDescriptor(&parentToChild.readEnd)
	closeDescriptor(&childToParent.writeEnd)
	if forkError != nil {
		parentToChild.close()
		childToParent.close()
		abortSignal.close()
		return CommandResult{}, newSpawnError(FailureStageSpawn, forkError)
	}

	// Killing the shell also wakes the transfer loop. Descendants may still hold the output pipe.
	guard := armWatchdog(executionContext, engine.options.Timeout, func() error {
		killError := unix.Kill(processIdentifier, unix.SIGKILL)
		signalAbort(abortSignal.writeEnd)
		return killError
	})

	output := NewOutputBuffer(engine.options.MaxOutput)
	session := transferSession{
		inputDescriptor:  parentToChild.writeEnd,
		outputDescriptor: childToParent.readEnd,
		abortDescriptor:  abortSignal.readEnd,
		payload:          terminatedCommand(command),
		aborting:         guard.aborting,
	}
	runError := engine.transfer(&session, output)
	parentToChild.writeEnd = session.inputDescriptor
	parentToChild.close()
	childToParent.close()

	watchdogKilled := guard.disarm()
	abortSignal.close()
	outcome, reapKilled, reapError := reapChild(processIdentifier)
	if runError != nil {
		output.Discard()
		return CommandResult{}, runError
	}
	if reapError != nil {
		output.Discard()
		return CommandResult{}, newIOError(FailureStageReap, reapError)
	}

	exitCode, termination := classifyOutcome(outcome, watchdogKilled || reapKilled)
	return CommandResult{
		RunID:       newRunIdentifier(),
		Output:      output.Detach(),
		ExitCode:    exitCode,
		Termination: termination,
	}, nil
}

// transferSession tracks the parent's side of one run. The input descriptor is closed
// as soon as the whole payload has been written.
type transferSession struct {
	inputDescriptor  int
	outputDescriptor int
	abortDescriptor  int
	payload          []byte
	aborting         func() bool
}

// transfer writes the payload and drains the merged output on one goroutine. Both pipe ends are
// non-blocking and share one poll(2) wait with the abort descriptor, so a shell that fills its
// output before reading the rest of a long command cannot stall the run. Reads are sized from the
// bytes the kernel reports as available plus the slack. Once the buffer reaches its limit a one
// byte read tells a finished stream apart from overflow. An abort or a failed wait ends the transfer
// without error.
func (engine *PollEngine) transfer(session *transferSession, output *OutputBuffer) error {
	if nonblockError := unix.SetNonblock(session.inputDescriptor, true); nonblockError != nil {
		return newIOError(FailureStageWrite, nonblockError)
	}
	if nonblockError := unix.SetNonblock(session.outputDescriptor, true); nonblockError != nil {
		return newIOError(FailureStageDrain, nonblockError)
	}

	var overflowCheck [overflowCheckLengthConstant]byte
	for !session.aborting() {
		inputProgressed := false
		if session.inputDescriptor != closedDescriptorConstant {
			remainingPayload, writtenCount, writeError := writePending(session.inputDescriptor, session.payload)
			if writeError != nil {
				return writeError
			}
			session.payload = remainingPayload
			inputProgressed = writtenCount > 0
			if len(session.payload) == 0 {
				closeDescriptor(&session.inputDescriptor)
			}
		}

		limitReached := output.Reserve(bytesAvailable(session.outputDescriptor)+engine.options.ReadSlack) != nil
		target := output.FreeSpace()
		if limitReached {
			target = overflowCheck[:]
		}

		readCount, readError := unix.Read(session.outputDescriptor, target)
		switch {
		case readError == nil && readCount == 0:
			return nil
		case readError == nil && limitReached:
			return newIOError(FailureStageDrain, ErrOutputLimitExceeded)
		case readError == nil:
			output.Commit(readCount)
			continue
		case errors.Is(readError, unix.EAGAIN) || errors.Is(readError, unix.EINTR):
		default:
			return newIOError(FailureStageDrain, readError)
		}

		if inputProgressed {
			continue
		}
		if waitError := waitForTransfer(session); waitError != nil {
			return nil
		}
	}
	return nil
}

// writePending writes as much of payload as the pipe accepts without blocking. A broken pipe means
// the shell already exited, which the reap step reports, so the rest of the payload is dropped.
func writePending(descriptor int, payload []byte) ([]byte, int, error) {
	writtenCount, writeError := unix.Write(descriptor, payload)
	switch {
	case writeError == nil:
		return payload[writtenCount:], writtenCount, nil
	case errors.Is(writeError, unix.EAGAIN) || errors.Is(writeError, unix.EINTR):
		return payload, 0, nil
	case errors.Is(writeError, unix.EPIPE):
		return nil, 0, nil
	default:
		return payload, 0, newIOError(FailureStageWrite, writeError)
	}
}

// waitForTransfer blocks in poll(2) without a timeout until output is readable or hung up, the
// pending input is writable, or the abort descriptor is signalled.
func waitForTransfer(session *transferSession) error {
	pollDescriptors := []unix.PollFd{
		{Fd: int32(session.abortDescriptor), Events: unix.POLLIN},
		{Fd: int32(session.outputDescriptor), Events: unix.POLLIN},
	}
	if session.inputDescriptor != closedDescriptorConstant {
		pollDescriptors = append(pollDescriptors, unix.PollFd{Fd: int32(session.inputDescriptor), Events: unix.POLLOUT})
	}
	for {
		_, pollError := unix.Poll(pollDescriptors, blockIndefinitelyConstant)
		if errors.Is(pollError, unix.EINTR) {
			continue
		}
		return pollError
	}
}

func bytesAvailable(descriptor int) int {
	available, ioctlError := unix.IoctlGetInt(descriptor, bytesAvailableRequestConstant)
	if ioctlError != nil || available < 0 {
		return 0
	}
	return available
}

func signalAbort(descriptor int) {
	_, _ = unix.Write(descriptor, []byte{abortSignalByteConstant})
}

func openPipePair() (pipePair, error) {
	descriptors := make([]int, pipeDescriptorCountConstant)

	// Pipes are created under ForkLock so no concurrent fork inherits them before close-on-exec is set.
	syscall.ForkLock.RLock()
	defer syscall.ForkLock.RUnlock()

	if pipeError := unix.Pipe(descriptors); pipeError != nil {
		return pipePair{readEnd: closedDescriptorConstant, writeEnd: closedDescriptorConstant}, pipeError
	}
	unix.CloseOnExec(descriptors[pipeReadEndIndexConstant])
	unix.CloseOnExec(descriptors[pipeWriteEndIndexConstant])
	return pipePair{
		readEnd:  descriptors[pipeReadEndIndexConstant],
		writeEnd: descriptors[pipeWriteEndIndexConstant],
	}, nil
}

func (pair *pipePair) close() {
	closeDescriptor(&pair.readEnd)
	closeDescriptor(&pair.writeEnd)
}

func closeDescriptor(descriptor *int) {
	if *descriptor == closedDescriptorConstant {
		return
	}
	_ = unix.Close(*descriptor)
	*descriptor = closedDescriptorConstant
}

// reapChild collects the child's status, killing it first when it is still running after end of output.
func reapChild(processIdentifier int) (processOutcome, bool, error) {
	var waitStatus unix.WaitStatus
	reapedIdentifier, waitError := waitForChild(processIdentifier, &waitStatus, unix.WNOHANG)
	if waitError != nil {
		return processOutcome{}, false, waitError
	}
	if reapedIdentifier != stillRunningIdentifierConstant {
		return decodeWaitStatus(waitStatus), false, nil
	}

	if killError := unix.Kill(processIdentifier, unix.SIGKILL); killError != nil && !errors.Is(killError, unix.ESRCH) {
		return processOutcome{}, false, killError
	}
	if _, waitError = waitForChild(processIdentifier, &waitStatus, noWaitOptionsConstant); waitError != nil {
		return processOutcome{}, true, waitError
	}
	return decodeWaitStatus(waitStatus), true, nil
}

func waitForChild(processIdentifier int, waitStatus *unix.WaitStatus, options int) (int, error) {
	for {
		reapedIdentifier, waitError := unix.Wait4(processIdentifier, waitStatus, options, nil)
		if errors.Is(waitError, unix.EINTR) {
			continue
		}
		return reapedIdentifier, waitError
	}
}

func decodeWaitStatus(waitStatus unix.WaitStatus) processOutcome {
	return processOutcome{
		exited:     waitStatus.Exited(),
		exitStatus: waitStatus.ExitStatus(),
		signaled:   waitStatus.Signaled(),
		signal:     int(waitStatus.Signal()),
	}
}
