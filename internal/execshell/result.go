package execshell

import (
	"strconv"

	"github.com/google/uuid"
)

const (
	signalExitCodeOffsetConstant    = 128
	killSignalNumberConstant        = 9
	terminationExitedLabelConstant  = "exited"
	terminationSignalLabelConstant  = "signaled"
	terminationKilledLabelConstant  = "killed"
	terminationUnknownLabelConstant = "unknown"
)

// Termination describes how the child process ended.
type Termination int

// Supported termination kinds.
const (
	// TerminationExited means the shell exited on its own and ExitCode is its status.
	TerminationExited Termination = iota
	// TerminationSignaled means a signal not sent by the engine ended the shell.
	TerminationSignaled
	// TerminationKilled means the engine or its watchdog force-killed the shell.
	TerminationKilled
)

// String returns the lowercase label of the termination kind.
func (termination Termination) String() string {
	switch termination {
	case TerminationExited:
		return terminationExitedLabelConstant
	case TerminationSignaled:
		return terminationSignalLabelConstant
	case TerminationKilled:
		return terminationKilledLabelConstant
	default:
		return terminationUnknownLabelConstant + "(" + strconv.Itoa(int(termination)) + ")"
	}
}

// CommandResult is the outcome of one run. Ownership of Output transfers to the caller.
type CommandResult struct {
	RunID       string
	Output      []byte
	ExitCode    int
	Termination Termination
}

// Succeeded reports whether the shell exited on its own with status zero.
func (result CommandResult) Succeeded() bool {
	return result.Termination == TerminationExited && result.ExitCode == 0
}

// processOutcome is the decoded wait status of a reaped child.
type processOutcome struct {
	exited     bool
	exitStatus int
	signaled   bool
	signal     int
}

// classifyOutcome maps a decoded wait status onto an exit code and termination kind.
// A SIGKILL death is attributed to the engine only when the engine sent one.
func classifyOutcome(outcome processOutcome, killSent bool) (int, Termination) {
	switch {
	case outcome.exited:
		return outcome.exitStatus & 0xff, TerminationExited
	case outcome.signaled && killSent && outcome.signal == killSignalNumberConstant:
		return signalExitCodeOffsetConstant + outcome.signal, TerminationKilled
	case outcome.signaled:
		return signalExitCodeOffsetConstant + outcome.signal, TerminationSignaled
	default:
		return outcome.exitStatus, TerminationExited
	}
}

// newRunIdentifier returns the correlation identifier attached to each result and its log entries.
func newRunIdentifier() string {
	return uuid.NewString()
}
