package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/sysservices/internal/batch"
	"github.com/temirov/sysservices/internal/execshell"
	"github.com/temirov/sysservices/internal/utils"
	flagutils "github.com/temirov/sysservices/internal/utils/flags"
)

const (
	batchCommandUseConstant                  = "batch [file]"
	batchCommandShortDescriptionConstant     = "Run a list of shell steps from a YAML or JSON file"
	batchCommandLongDescriptionConstant      = "batch executes the steps of a batch file in order through the shell and stops at the first step that fails unless the step allows failure. Without a file argument the loaded configuration file is used."
	keepGoingFlagNameConstant                = "keep-going"
	keepGoingFlagDescriptionConstant         = "Tolerate failing exit statuses in every step"
	configurationPathRequiredMessageConstant = "batch file required; provide a positional argument or --config flag"
	loadBatchErrorTemplateConstant           = "unable to load batch file: %w"
	batchSummaryMessageConstant              = "batch finished"
	batchStepCountLogFieldConstant           = "steps"
	batchFileLogFieldConstant                = "file"
)

// BatchCommandBuilder assembles the batch command.
type BatchCommandBuilder struct {
	LoggerProvider LoggerProvider
	FacadeProvider FacadeProvider
}

// Build constructs the batch command.
func (builder *BatchCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:          batchCommandUseConstant,
		Short:        batchCommandShortDescriptionConstant,
		Long:         batchCommandLongDescriptionConstant,
		Args:         cobra.MaximumNArgs(1),
		RunE:         builder.run,
		SilenceUsage: true,
	}

	flagutils.AddChoiceFlag(command.Flags(), nil, engineFlagNameConstant, string(execshell.EngineKindPoll), execshell.EngineKinds(), engineFlagDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), nil, keepGoingFlagNameConstant, "k", false, keepGoingFlagDescriptionConstant)

	return command, nil
}

func (builder *BatchCommandBuilder) run(command *cobra.Command, arguments []string) error {
	batchFilePath := resolveBatchFilePath(command.Context(), arguments)
	if len(batchFilePath) == 0 {
		if helpError := displayCommandHelp(command); helpError != nil {
			return helpError
		}
		return errors.New(configurationPathRequiredMessageConstant)
	}

	batchConfiguration, loadError := batch.LoadConfiguration(batchFilePath)
	if loadError != nil {
		return fmt.Errorf(loadBatchErrorTemplateConstant, loadError)
	}

	keepGoing, _ := command.Flags().GetBool(keepGoingFlagNameConstant)
	if keepGoing {
		for stepIndex := range batchConfiguration.Steps {
			batchConfiguration.Steps[stepIndex].AllowFailure = true
		}
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

	runner, runnerError := batch.NewRunner(facade, logger, utils.NewFlushingWriter(command.OutOrStdout()))
	if runnerError != nil {
		return runnerError
	}

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}
	report, runError := runner.Run(executionContext, batchConfiguration)
	logger.Info(
		batchSummaryMessageConstant,
		zap.String(batchFileLogFieldConstant, batchFilePath),
		zap.Int(batchStepCountLogFieldConstant, len(report.Steps)),
	)
	return runError
}

func resolveBatchFilePath(executionContext context.Context, arguments []string) string {
	if len(arguments) > 0 {
		return strings.TrimSpace(arguments[0])
	}
	configurationFilePath, available := utils.NewCommandContextAccessor().ConfigurationFilePath(executionContext)
	if !available {
		return ""
	}
	return configurationFilePath
}
