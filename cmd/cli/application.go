package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	convertcmd "github.com/temirov/sysservices/cmd/cli/convert"
	filescmd "github.com/temirov/sysservices/cmd/cli/files"
	hostcmd "github.com/temirov/sysservices/cmd/cli/host"
	shellcmd "github.com/temirov/sysservices/cmd/cli/shell"
	"github.com/temirov/sysservices/internal/execshell"
	"github.com/temirov/sysservices/internal/system"
	"github.com/temirov/sysservices/internal/ui"
	"github.com/temirov/sysservices/internal/utils"
	flagutils "github.com/temirov/sysservices/internal/utils/flags"
)

const (
	applicationNameConstant                 = "sysservices"
	applicationShortDescriptionConstant     = "Host services from the command line: shell, files, names and text"
	applicationLongDescriptionConstant      = "sysservices exposes a portable layer over the operating system: running command text through a shell, byte channels over files, path resolution, folder listings, name resolution and charset conversion."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	shellConfigurationKeyConstant           = "shell"
	shellPathConfigKeyConstant              = shellConfigurationKeyConstant + ".path"
	shellEngineConfigKeyConstant            = shellConfigurationKeyConstant + ".engine"
	shellTimeoutConfigKeyConstant           = shellConfigurationKeyConstant + ".timeout"
	shellMaxOutputConfigKeyConstant         = shellConfigurationKeyConstant + ".max_output"
	shellReadSlackConfigKeyConstant         = shellConfigurationKeyConstant + ".read_slack"
	environmentPrefixConstant               = "SYSSERVICES"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	userConfigurationDirectoryNameConstant  = "sysservices"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationEngineFieldConstant        = "engine"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	engineSelectionErrorTemplateConstant    = "unable to select command engine: %w"
	engineCreationErrorTemplateConstant     = "unable to create command engine: %w"
	facadeCreationErrorTemplateConstant     = "unable to create system facade: %w"
	commandBuildErrorTemplateConstant       = "unable to build %s command: %w"
	defaultConfigurationSearchPathConstant  = "."
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Shell  ApplicationShellConfiguration  `mapstructure:"shell"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationShellConfiguration selects and tunes the command engine.
type ApplicationShellConfiguration struct {
	Path      string        `mapstructure:"path"`
	Engine    string        `mapstructure:"engine"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxOutput int           `mapstructure:"max_output"`
	ReadSlack int           `mapstructure:"read_slack"`
}

// EngineOptions converts the shell section into command engine options.
func (configuration ApplicationShellConfiguration) EngineOptions() execshell.EngineOptions {
	return execshell.EngineOptions{
		ShellPath: configuration.Path,
		ReadSlack: configuration.ReadSlack,
		MaxOutput: configuration.MaxOutput,
		Timeout:   configuration.Timeout,
	}
}

type commandBuilder interface {
	Build() (*cobra.Command, error)
}

// Application wires the Cobra root command, configuration loader, structured logger and system facade.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() (*Application, error) {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(),
	)
	embeddedConfiguration, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfiguration, embeddedConfigurationType)

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	flagutils.AddChoiceFlag(cobraCommand.PersistentFlags(), &application.logLevelFlagValue, logLevelFlagNameConstant, string(utils.LogLevelInfo), utils.LogLevels(), logLevelFlagUsageConstant)
	flagutils.AddChoiceFlag(cobraCommand.PersistentFlags(), &application.logFormatFlagValue, logFormatFlagNameConstant, string(utils.LogFormatStructured), utils.LogFormats(), logFormatFlagUsageConstant)

	for _, builder := range application.commandBuilders() {
		subcommand, buildError := builder.Build()
		if buildError != nil {
			return nil, fmt.Errorf(commandBuildErrorTemplateConstant, fmt.Sprintf("%T", builder), buildError)
		}
		cobraCommand.AddCommand(subcommand)
	}

	application.rootCommand = cobraCommand

	return application, nil
}

func (application *Application) commandBuilders() []commandBuilder {
	loggerProvider := func() *zap.Logger {
		return application.logger
	}
	facadeProvider := func() (*system.Facade, error) {
		return application.buildFacade("")
	}

	return []commandBuilder{
		&shellcmd.CommandBuilder{LoggerProvider: loggerProvider, FacadeProvider: application.buildFacade},
		&shellcmd.BatchCommandBuilder{LoggerProvider: loggerProvider, FacadeProvider: application.buildFacade},
		&filescmd.ResolveCommandBuilder{LoggerProvider: loggerProvider, FacadeProvider: facadeProvider},
		&filescmd.ListCommandBuilder{LoggerProvider: loggerProvider, FacadeProvider: facadeProvider},
		&filescmd.CatCommandBuilder{LoggerProvider: loggerProvider, FacadeProvider: facadeProvider},
		&hostcmd.LookupCommandBuilder{LoggerProvider: loggerProvider, FacadeProvider: facadeProvider},
		&hostcmd.InfoCommandBuilder{LoggerProvider: loggerProvider, FacadeProvider: facadeProvider},
		&convertcmd.CommandBuilder{LoggerProvider: loggerProvider, FacadeProvider: facadeProvider},
	}
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	application, applicationError := NewApplication()
	if applicationError != nil {
		return applicationError
	}
	return application.Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
		shellEngineConfigKeyConstant:     string(execshell.EngineKindPoll),
		shellPathConfigKeyConstant:       execshell.DefaultEngineOptions().ShellPath,
		shellReadSlackConfigKeyConstant:  execshell.DefaultEngineOptions().ReadSlack,
		shellMaxOutputConfigKeyConstant:  0,
		shellTimeoutConfigKeyConstant:    "0s",
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logLevel, levelError := utils.ParseLogLevel(application.configuration.Common.LogLevel)
	if levelError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, levelError)
	}
	logFormat, formatError := utils.ParseLogFormat(application.configuration.Common.LogFormat)
	if formatError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, formatError)
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(logLevel, logFormat)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, string(logLevel)),
		zap.String(configurationLogFormatFieldConstant, string(logFormat)),
		zap.String(configurationEngineFieldConstant, application.configuration.Shell.Engine),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithEngineKind(updatedContext, application.configuration.Shell.Engine)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

// buildFacade creates a facade over the configured shell settings. A non-empty engine kind overrides shell.engine.
func (application *Application) buildFacade(engineKindOverride string) (*system.Facade, error) {
	requestedKind := application.configuration.Shell.Engine
	if len(strings.TrimSpace(engineKindOverride)) > 0 {
		requestedKind = engineKindOverride
	}

	engineKind, parseError := execshell.ParseEngineKind(requestedKind)
	if parseError != nil {
		return nil, fmt.Errorf(engineSelectionErrorTemplateConstant, parseError)
	}

	engine, engineError := execshell.NewCommandEngine(engineKind, application.configuration.Shell.EngineOptions())
	if engineError != nil {
		return nil, fmt.Errorf(engineCreationErrorTemplateConstant, engineError)
	}

	executorOptions := []execshell.ShellExecutorOption{
		execshell.WithHumanReadableLogging(application.humanReadableLoggingEnabled()),
	}
	if application.humanReadableLoggingEnabled() {
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(application.logger)))
	}

	facade, facadeError := system.NewFacade(
		application.logger,
		system.WithCommandEngine(engine),
		system.WithShellExecutorOptions(executorOptions...),
	)
	if facadeError != nil {
		return nil, fmt.Errorf(facadeCreationErrorTemplateConstant, facadeError)
	}
	return facade, nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

func configurationSearchPaths() []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, userConfigurationDirectoryNameConstant))
	}
	return searchPaths
}
