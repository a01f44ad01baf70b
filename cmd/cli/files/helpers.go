package files

import (
	"go.uber.org/zap"

	"github.com/temirov/sysservices/internal/system"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// FacadeProvider builds the system facade used by the file commands.
type FacadeProvider func() (*system.Facade, error)

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

func resolveFacade(provider FacadeProvider, logger *zap.Logger) (*system.Facade, error) {
	if provider == nil {
		return system.NewFacade(logger)
	}
	return provider()
}
