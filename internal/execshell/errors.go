package execshell

import (
	"errors"
	"fmt"
)

const (
	spawnErrorTemplateConstant = "cannot run command: %s: %v"
	ioErrorTemplateConstant    = "command i/o failed: %s: %v"
)

var (
	// ErrSpawn identifies failures to allocate pipes or create the child process.
	ErrSpawn = errors.New("cannot run command")
	// ErrIO identifies failures reading from or writing to the child's pipes.
	ErrIO = errors.New("command i/o failed")
	// ErrOutputLimitExceeded reports that the output buffer could not grow any further.
	ErrOutputLimitExceeded = errors.New("command output exceeds configured limit")
	// ErrLoggerNotConfigured indicates that a ShellExecutor was created without a logger.
	ErrLoggerNotConfigured = errors.New("shell executor logger not configured")
	// ErrCommandEngineNotConfigured indicates that a ShellExecutor was created without an engine.
	ErrCommandEngineNotConfigured = errors.New("shell executor command engine not configured")
	// ErrUnknownEngineKind reports an unsupported engine selection.
	ErrUnknownEngineKind = errors.New("unknown command engine")
)

// FailureStage names the step of a run at which a failure occurred.
type FailureStage string

// Failure stages reported by SpawnError and IOError.
const (
	FailureStagePipe   FailureStage = "pipe"
	FailureStageSpawn  FailureStage = "spawn"
	FailureStageWrite  FailureStage = "write"
	FailureStageDrain  FailureStage = "drain"
	FailureStageReap   FailureStage = "reap"
	FailureStageConfig FailureStage = "configure"
)

// SpawnError reports that the child process could not be created. No descriptors are left open.
type SpawnError struct {
	Stage FailureStage
	Cause error
}

// Error describes the spawn failure.
func (spawnError *SpawnError) Error() string {
	return fmt.Sprintf(spawnErrorTemplateConstant, spawnError.Stage, spawnError.Cause)
}

// Unwrap exposes the underlying cause.
func (spawnError *SpawnError) Unwrap() error {
	return spawnError.Cause
}

// Is matches ErrSpawn.
func (spawnError *SpawnError) Is(target error) bool {
	return target == ErrSpawn
}

// IOError reports a read or write failure on an open pipe. Cleanup and reaping ran before it surfaced.
type IOError struct {
	Stage FailureStage
	Cause error
}

// Error describes the i/o failure.
func (ioError *IOError) Error() string {
	return fmt.Sprintf(ioErrorTemplateConstant, ioError.Stage, ioError.Cause)
}

// Unwrap exposes the underlying cause.
func (ioError *IOError) Unwrap() error {
	return ioError.Cause
}

// Is matches ErrIO.
func (ioError *IOError) Is(target error) bool {
	return target == ErrIO
}

func newSpawnError(stage FailureStage, cause error) error {
	return &SpawnError{Stage: stage, Cause: cause}
}

func newIOError(stage FailureStage, cause error) error {
	return &IOError{Stage: stage, Cause: cause}
}
