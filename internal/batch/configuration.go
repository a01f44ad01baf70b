package batch

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configurationLoadErrorTemplateConstant      = "failed to load batch configuration: %w"
	configurationParseErrorTemplateConstant     = "failed to parse batch configuration: %w"
	configurationPathRequiredMessageConstant    = "batch configuration path must be provided"
	configurationEmptyStepsMessageConstant      = "batch configuration must define at least one step"
	configurationMissingCommandTemplateConstant = "batch step %s missing command"
	defaultStepNameTemplateConstant             = "step %d"
)

// Configuration describes the ordered shell steps of a batch file.
type Configuration struct {
	Steps []StepConfiguration `yaml:"steps" json:"steps"`
}

// StepConfiguration is one shell command. AllowFailure lets the batch continue past a non-zero exit code.
type StepConfiguration struct {
	Name         string `yaml:"name" json:"name"`
	Command      string `yaml:"command" json:"command"`
	AllowFailure bool   `yaml:"allow_failure" json:"allow_failure"`
}

// LoadConfiguration reads a batch definition from disk.
func LoadConfiguration(filePath string) (Configuration, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Configuration{}, errors.New(configurationPathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Configuration{}, fmt.Errorf(configurationLoadErrorTemplateConstant, readError)
	}
	return ParseConfiguration(contentBytes)
}

// ParseConfiguration decodes a batch definition. Steps may sit at the top level or under a `batch` key.
func ParseConfiguration(contentBytes []byte) (Configuration, error) {
	var configuration Configuration
	if unmarshalError := yaml.Unmarshal(contentBytes, &configuration); unmarshalError != nil {
		return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, unmarshalError)
	}

	if len(configuration.Steps) == 0 {
		var wrapper struct {
			Batch Configuration `yaml:"batch" json:"batch"`
		}
		if nestedError := yaml.Unmarshal(contentBytes, &wrapper); nestedError == nil {
			configuration = wrapper.Batch
		}
	}

	if len(configuration.Steps) == 0 {
		return Configuration{}, errors.New(configurationEmptyStepsMessageConstant)
	}

	for stepIndex := range configuration.Steps {
		step := &configuration.Steps[stepIndex]
		step.Name = strings.TrimSpace(step.Name)
		if len(step.Name) == 0 {
			step.Name = fmt.Sprintf(defaultStepNameTemplateConstant, stepIndex+1)
		}
		if len(strings.TrimSpace(step.Command)) == 0 {
			return Configuration{}, fmt.Errorf(configurationMissingCommandTemplateConstant, step.Name)
		}
	}

	return configuration, nil
}
