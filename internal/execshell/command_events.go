package execshell

// CommandEventObserver receives lifecycle notifications for shell command execution.
type CommandEventObserver interface {
	// CommandStarted notifies observers that command execution is beginning.
	CommandStarted(command []byte)
	// CommandCompleted notifies observers that the shell was reaped and supplies the result.
	CommandCompleted(command []byte, result CommandResult)
	// CommandExecutionFailed reports spawn and i/o failures that produced no result.
	CommandExecutionFailed(command []byte, failure error)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted([]byte) {}

func (noopCommandEventObserver) CommandCompleted([]byte, CommandResult) {}

func (noopCommandEventObserver) CommandExecutionFailed([]byte, error) {}
