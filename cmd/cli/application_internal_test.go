package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/sysservices/internal/execshell"
	"github.com/temirov/sysservices/internal/utils"
)

const (
	testEnvironmentEngineVariableConstant = "SYSSERVICES_SHELL_ENGINE"
	testConfigurationFileNameConstant     = "config.yaml"
)

func runApplication(testInstance *testing.T, arguments ...string) (*Application, string, error) {
	testInstance.Helper()
	application, applicationError := NewApplication()
	require.NoError(testInstance, applicationError)

	var output bytes.Buffer
	application.rootCommand.SetOut(&output)
	application.rootCommand.SetErr(&bytes.Buffer{})
	application.rootCommand.SetArgs(arguments)
	application.rootCommand.SetContext(context.Background())
	executionError := application.rootCommand.Execute()
	return application, output.String(), executionError
}

func TestApplicationRegistersCommands(testInstance *testing.T) {
	application, applicationError := NewApplication()
	require.NoError(testInstance, applicationError)

	registered := map[string]bool{}
	for _, subcommand := range application.rootCommand.Commands() {
		registered[subcommand.Name()] = true
	}
	for _, expectedName := range []string{"shell", "batch", "resolve", "ls", "cat", "host", "info", "convert"} {
		require.True(testInstance, registered[expectedName], expectedName)
	}
}

func TestApplicationConfigurationLayers(testInstance *testing.T) {
	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	configurationContent := "common:\n  log_level: warn\nshell:\n  timeout: 2s\n  max_output: 4096\n"
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(configurationContent), 0o600))
	testInstance.Setenv(testEnvironmentEngineVariableConstant, "stream")

	application, _, executionError := runApplication(testInstance, "--config", configurationPath, "--log-level", "error", "resolve", "/etc")
	require.NoError(testInstance, executionError)

	require.Equal(testInstance, "error", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", application.configuration.Common.LogFormat)
	require.Equal(testInstance, "stream", application.configuration.Shell.Engine)
	require.Equal(testInstance, 2*time.Second, application.configuration.Shell.Timeout)
	require.Equal(testInstance, 4096, application.configuration.Shell.MaxOutput)
	require.Equal(testInstance, configurationPath, application.configurationMetadata.ConfigFileUsed)

	engineKind, engineAvailable := utils.NewCommandContextAccessor().EngineKind(application.rootCommand.Context())
	require.True(testInstance, engineAvailable)
	require.Equal(testInstance, "stream", engineKind)
}

func TestApplicationRejectsInvalidLogLevel(testInstance *testing.T) {
	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte("common:\n  log_level: chatty\n"), 0o600))

	_, _, executionError := runApplication(testInstance, "--config", configurationPath, "resolve", "/etc")
	require.ErrorContains(testInstance, executionError, "unsupported log level")
}

func TestApplicationResolveCommand(testInstance *testing.T) {
	_, output, executionError := runApplication(testInstance, "resolve", "/var/log")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "/var/log\n", output)
}

func TestApplicationShellCommandRunsThroughEngines(testInstance *testing.T) {
	for _, engineKind := range execshell.EngineKinds() {
		testInstance.Run(engineKind, func(testInstance *testing.T) {
			_, output, executionError := runApplication(testInstance, "shell", "--engine", engineKind, "--", "echo", "out;", "echo", "err", ">&2")
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, "out\nerr\n", output)
		})
	}
}

func TestApplicationShellCommandReportsExitStatus(testInstance *testing.T) {
	_, _, executionError := runApplication(testInstance, "shell", "exit 4")
	require.ErrorContains(testInstance, executionError, "exited with exit code 4")
}

func TestApplicationBuildFacadeRejectsUnknownEngine(testInstance *testing.T) {
	application, applicationError := NewApplication()
	require.NoError(testInstance, applicationError)

	_, facadeError := application.buildFacade("threads")
	require.ErrorIs(testInstance, facadeError, execshell.ErrUnknownEngineKind)
}
