package execshell

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	defaultShellPathConstant          = "/bin/sh"
	shellReadStandardInputFlag        = "-s"
	defaultReadSlackBytesConstant     = 16 * 1024
	commandTerminatorConstant         = '\n'
	engineKindPollStringConstant      = "poll"
	engineKindStreamStringConstant    = "stream"
	unknownEngineKindTemplateConstant = "%w: %q"
)

// EngineKind selects a CommandEngine implementation.
type EngineKind string

// Supported engine kinds.
const (
	// EngineKindPoll drains output on the calling goroutine with a readiness wait.
	EngineKindPoll EngineKind = EngineKind(engineKindPollStringConstant)
	// EngineKindStream drains output with dedicated writer and reader tasks.
	EngineKindStream EngineKind = EngineKind(engineKindStreamStringConstant)
)

// EngineKinds lists the accepted engine selections.
func EngineKinds() []string {
	return []string{engineKindPollStringConstant, engineKindStreamStringConstant}
}

// ParseEngineKind normalizes a configured engine name.
func ParseEngineKind(rawKind string) (EngineKind, error) {
	normalizedKind := strings.ToLower(strings.TrimSpace(rawKind))
	switch normalizedKind {
	case "", engineKindPollStringConstant:
		return EngineKindPoll, nil
	case engineKindStreamStringConstant:
		return EngineKindStream, nil
	default:
		return "", fmt.Errorf(unknownEngineKindTemplateConstant, ErrUnknownEngineKind, rawKind)
	}
}

// CommandEngine runs command text through a subshell and returns its merged output and exit status.
type CommandEngine interface {
	Run(executionContext context.Context, command []byte) (CommandResult, error)
}

// EngineOptions configures a CommandEngine.
type EngineOptions struct {
	// ShellPath is the shell interpreter started with `-s`.
	ShellPath string
	// ReadSlack is the free capacity reserved beyond the bytes reported available before each read.
	ReadSlack int
	// MaxOutput bounds the collected output in bytes. Zero means unbounded.
	MaxOutput int
	// Timeout arms a watchdog that kills the shell after the duration. Zero means no deadline.
	Timeout time.Duration
}

// DefaultEngineOptions returns options matching `sh -s` with a 16 KiB read slack and no deadline.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		ShellPath: defaultShellPathConstant,
		ReadSlack: defaultReadSlackBytesConstant,
	}
}

func (options EngineOptions) sanitize() EngineOptions {
	sanitized := options
	sanitized.ShellPath = strings.TrimSpace(options.ShellPath)
	if len(sanitized.ShellPath) == 0 {
		sanitized.ShellPath = defaultShellPathConstant
	}
	if sanitized.ReadSlack <= 0 {
		sanitized.ReadSlack = defaultReadSlackBytesConstant
	}
	if sanitized.MaxOutput < 0 {
		sanitized.MaxOutput = 0
	}
	if sanitized.Timeout < 0 {
		sanitized.Timeout = 0
	}
	return sanitized
}

// NewCommandEngine builds the engine selected by kind.
func NewCommandEngine(kind EngineKind, options EngineOptions) (CommandEngine, error) {
	switch kind {
	case EngineKindPoll, "":
		return newPlatformPollEngine(options), nil
	case EngineKindStream:
		return NewStreamEngine(options), nil
	default:
		return nil, fmt.Errorf(unknownEngineKindTemplateConstant, ErrUnknownEngineKind, string(kind))
	}
}

func terminatedCommand(command []byte) []byte {
	terminated := make([]byte, 0, len(command)+1)
	terminated = append(terminated, command...)
	return append(terminated, commandTerminatorConstant)
}
