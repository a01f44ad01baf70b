package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/temirov/sysservices/internal/execshell"
	"github.com/temirov/sysservices/internal/utils"
	flagutils "github.com/temirov/sysservices/internal/utils/flags"
)

const (
	shellCommandUseConstant              = "shell [command...]"
	shellCommandShortDescriptionConstant = "Run command text through the shell and print its merged output"
	shellCommandLongDescriptionConstant  = "shell feeds the command text to a non-interactive shell on standard input and prints everything the shell wrote to standard output and standard error. Without arguments the command text is read from standard input. Place -- before command text that starts with a dash."
	engineFlagNameConstant               = "engine"
	engineFlagDescriptionConstant        = "Command engine, overriding shell.engine"
	timeoutFlagNameConstant              = "timeout"
	timeoutFlagDescriptionConstant       = "Kill the shell after this duration (0 disables)"
	failOnExitFlagNameConstant           = "fail-on-exit"
	failOnExitFlagDescriptionConstant    = "Return an error when the shell does not exit with status zero"
	emptyCommandMessageConstant          = "shell command text required; provide arguments or standard input"
	readCommandErrorTemplateConstant     = "unable to read command text: %w"
	writeOutputErrorTemplateConstant     = "unable to write command output: %w"
	commandFailedErrorTemplateConstant   = "%w: shell %s with exit code %d"
	argumentSeparatorConstant            = " "
)

// ErrCommandFailed reports a shell that did not exit with status zero while --fail-on-exit is set.
var ErrCommandFailed = errors.New("shell command failed")

// CommandBuilder assembles the shell command.
type CommandBuilder struct {
	LoggerProvider LoggerProvider
	FacadeProvider FacadeProvider
}

// Build constructs the shell command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:          shellCommandUseConstant,
		Short:        shellCommandShortDescriptionConstant,
		Long:         shellCommandLongDescriptionConstant,
		RunE:         builder.run,
		SilenceUsage: true,
	}

	flagutils.AddChoiceFlag(command.Flags(), nil, engineFlagNameConstant, string(execshell.EngineKindPoll), execshell.EngineKinds(), engineFlagDescriptionConstant)
	command.Flags().Duration(timeoutFlagNameConstant, 0, timeoutFlagDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), nil, failOnExitFlagNameConstant, "", true, failOnExitFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	commandText, readError := readCommandText(command.InOrStdin(), arguments)
	if readError != nil {
		return fmt.Errorf(readCommandErrorTemplateConstant, readError)
	}
	if len(strings.TrimSpace(string(commandText))) == 0 {
		if helpError := displayCommandHelp(command); helpError != nil {
			return helpError
		}
		return errors.New(emptyCommandMessageConstant)
	}

	engineKind := ""
	if command.Flags().Changed(engineFlagNameConstant) {
		engineKind = command.Flags().Lookup(engineFlagNameConstant).Value.String()
	}

	logger := resolveLogger(builder.LoggerProvider)
	facade, facadeError := resolveFacade(builder.FacadeProvider, engineKind, logger)
	if facadeError != nil {
		return facadeError
	}

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}
	timeout, _ := command.Flags().GetDuration(timeoutFlagNameConstant)
	if timeout > time.Duration(0) {
		var cancel context.CancelFunc
		executionContext, cancel = context.WithTimeout(executionContext, timeout)
		defer cancel()
	}

	result, executionError := facade.ShellResult(executionContext, commandText)
	if executionError != nil {
		return executionError
	}

	if _, writeError := utils.NewFlushingWriter(command.OutOrStdout()).Write(result.Output); writeError != nil {
		return fmt.Errorf(writeOutputErrorTemplateConstant, writeError)
	}

	failOnExit, _ := command.Flags().GetBool(failOnExitFlagNameConstant)
	if failOnExit && !result.Succeeded() {
		return fmt.Errorf(commandFailedErrorTemplateConstant, ErrCommandFailed, result.Termination, result.ExitCode)
	}
	return nil
}

func readCommandText(input io.Reader, arguments []string) ([]byte, error) {
	if len(arguments) > 0 {
		return []byte(strings.Join(arguments, argumentSeparatorConstant)), nil
	}
	if input == nil {
		return nil, nil
	}
	return io.ReadAll(input)
}
