package shell

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/sysservices/internal/system"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// FacadeProvider builds a system facade. An empty engine kind selects the configured engine.
type FacadeProvider func(engineKind string) (*system.Facade, error)

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveFacade(provider FacadeProvider, engineKind string, logger *zap.Logger) (*system.Facade, error) {
	if provider == nil {
		return system.NewFacade(logger)
	}
	return provider(engineKind)
}

func displayCommandHelp(command *cobra.Command) error {
	if command == nil {
		return nil
	}
	return command.Help()
}
