package utils

import (
	"context"
	"strings"
)

type commandContextKey string

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	engineKindContextKeyConstant            = commandContextKey("engineKind")
)

// CommandContextAccessor stores and retrieves per-invocation settings carried on command contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath records the configuration file that was loaded for this invocation.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	return accessor.withValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath returns the recorded configuration file, if any.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	return accessor.value(executionContext, configurationFilePathContextKeyConstant)
}

// WithEngineKind records the command engine name selected for this invocation.
func (accessor CommandContextAccessor) WithEngineKind(parentContext context.Context, engineKind string) context.Context {
	return accessor.withValue(parentContext, engineKindContextKeyConstant, engineKind)
}

// EngineKind returns the recorded command engine name, if any.
func (accessor CommandContextAccessor) EngineKind(executionContext context.Context) (string, bool) {
	return accessor.value(executionContext, engineKindContextKeyConstant)
}

func (accessor CommandContextAccessor) withValue(parentContext context.Context, key commandContextKey, value string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, key, strings.TrimSpace(value))
}

func (accessor CommandContextAccessor) value(executionContext context.Context, key commandContextKey) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	storedValue, available := executionContext.Value(key).(string)
	if !available || len(storedValue) == 0 {
		return "", false
	}
	return storedValue, true
}
