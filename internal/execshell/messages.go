package execshell

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	startedMessageTemplateConstant          = "Running %s"
	completedMessageTemplateConstant        = "Completed %s"
	failedExitCodeMessageTemplateConstant   = "%s failed with exit code %d"
	signaledMessageTemplateConstant         = "%s terminated by a signal (exit code %d)"
	killedMessageTemplateConstant           = "%s was killed (exit code %d)"
	executionFailureMessageTemplateConstant = "%s failed: %s"
	outputSuffixTemplateConstant            = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyCommandLabelConstant               = "empty command"
	truncatedLabelSuffixConstant            = "..."
	emptyStringConstant                     = ""
	commandLabelMaximumRunesConstant        = 60
	outputSuffixMaximumRunesConstant        = 120
	lineFeedByteConstant                    = '\n'
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
// Commands are labeled by their first line, shortened to a fixed number of runes.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command []byte) string {
	return fmt.Sprintf(startedMessageTemplateConstant, formatter.FormatCommandLabel(command))
}

// BuildSuccessMessage formats the message describing a command that exited with status zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command []byte) string {
	return fmt.Sprintf(completedMessageTemplateConstant, formatter.FormatCommandLabel(command))
}

// BuildFailureMessage formats the message describing a command that did not exit cleanly.
// The last line of its output, if any, is appended.
func (formatter CommandMessageFormatter) BuildFailureMessage(command []byte, result CommandResult) string {
	commandLabel := formatter.FormatCommandLabel(command)
	var baseMessage string
	switch result.Termination {
	case TerminationKilled:
		baseMessage = fmt.Sprintf(killedMessageTemplateConstant, commandLabel, result.ExitCode)
	case TerminationSignaled:
		baseMessage = fmt.Sprintf(signaledMessageTemplateConstant, commandLabel, result.ExitCode)
	default:
		baseMessage = fmt.Sprintf(failedExitCodeMessageTemplateConstant, commandLabel, result.ExitCode)
	}
	return baseMessage + formatter.formatOutputSuffix(result.Output)
}

// BuildExecutionFailureMessage formats the message describing a spawn or i/o failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command []byte, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(executionFailureMessageTemplateConstant, formatter.FormatCommandLabel(command), failureMessage)
}

// FormatCommandLabel returns the trimmed first line of the command, shortened with an ellipsis
// when the command continues past it.
func (formatter CommandMessageFormatter) FormatCommandLabel(command []byte) string {
	trimmedCommand := bytes.TrimSpace(command)
	if len(trimmedCommand) == 0 {
		return emptyCommandLabelConstant
	}

	firstLine := trimmedCommand
	continues := false
	if lineEnd := bytes.IndexByte(trimmedCommand, lineFeedByteConstant); lineEnd >= 0 {
		firstLine = bytes.TrimSpace(trimmedCommand[:lineEnd])
		continues = true
	}

	label, truncated := truncateRunes(string(firstLine), commandLabelMaximumRunesConstant)
	if truncated || continues {
		return label + truncatedLabelSuffixConstant
	}
	return label
}

func (formatter CommandMessageFormatter) formatOutputSuffix(output []byte) string {
	trimmedOutput := bytes.TrimSpace(output)
	if len(trimmedOutput) == 0 {
		return emptyStringConstant
	}
	if lineStart := bytes.LastIndexByte(trimmedOutput, lineFeedByteConstant); lineStart >= 0 {
		trimmedOutput = bytes.TrimSpace(trimmedOutput[lineStart+1:])
	}
	lastLine, truncated := truncateRunes(string(trimmedOutput), outputSuffixMaximumRunesConstant)
	if truncated {
		lastLine += truncatedLabelSuffixConstant
	}
	return fmt.Sprintf(outputSuffixTemplateConstant, lastLine)
}

func truncateRunes(text string, maximumRunes int) (string, bool) {
	if utf8.RuneCountInString(text) <= maximumRunes {
		return text, false
	}
	var builder strings.Builder
	runeCount := 0
	for _, character := range text {
		if runeCount == maximumRunes {
			break
		}
		builder.WriteRune(character)
		runeCount++
	}
	return builder.String(), true
}
