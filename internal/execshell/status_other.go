//go:build !unix

package execshell

import "os"

func outcomeFromProcessState(processState *os.ProcessState) processOutcome {
	return processOutcome{exited: true, exitStatus: processState.ExitCode()}
}
