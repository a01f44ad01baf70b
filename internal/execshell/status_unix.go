//go:build unix

package execshell

import (
	"os"
	"syscall"
)

func outcomeFromProcessState(processState *os.ProcessState) processOutcome {
	waitStatus, isWaitStatus := processState.Sys().(syscall.WaitStatus)
	if !isWaitStatus {
		return processOutcome{exited: processState.Exited(), exitStatus: processState.ExitCode()}
	}
	return processOutcome{
		exited:     waitStatus.Exited(),
		exitStatus: waitStatus.ExitStatus(),
		signaled:   waitStatus.Signaled(),
		signal:     int(waitStatus.Signal()),
	}
}
