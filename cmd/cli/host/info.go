package host

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/temirov/sysservices/internal/system"
	flagutils "github.com/temirov/sysservices/internal/utils/flags"
)

const (
	infoCommandUseConstant              = "info"
	infoCommandShortDescriptionConstant = "Describe the host, operating system and running process"
	formatFlagNameConstant              = "format"
	formatFlagDescriptionConstant       = "Output format"
	formatTextConstant                  = "text"
	formatYAMLConstant                  = "yaml"
	infoLineTemplateConstant            = "%-16s %v\n"
	infoEncodeErrorTemplateConstant     = "unable to encode host information: %w"
)

// Information is the host description printed by the info command.
type Information struct {
	HostName        string  `yaml:"host_name"`
	Address         string  `yaml:"address"`
	Version         string  `yaml:"version"`
	Machine         string  `yaml:"machine"`
	Processor       string  `yaml:"processor"`
	ProcessID       int     `yaml:"process_id"`
	CurrentTime     float64 `yaml:"current_time"`
	CurrentFolder   string  `yaml:"current_folder"`
	TemporaryFolder string  `yaml:"temporary_folder"`
}

// InfoCommandBuilder assembles the info command.
type InfoCommandBuilder struct {
	LoggerProvider LoggerProvider
	FacadeProvider FacadeProvider
}

// Build constructs the info command.
func (builder *InfoCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:          infoCommandUseConstant,
		Short:        infoCommandShortDescriptionConstant,
		Args:         cobra.NoArgs,
		RunE:         builder.run,
		SilenceUsage: true,
	}

	flagutils.AddChoiceFlag(command.Flags(), nil, formatFlagNameConstant, formatTextConstant, []string{formatTextConstant, formatYAMLConstant}, formatFlagDescriptionConstant)

	return command, nil
}

func (builder *InfoCommandBuilder) run(command *cobra.Command, arguments []string) error {
	facade, facadeError := resolveFacade(builder.FacadeProvider, resolveLogger(builder.LoggerProvider))
	if facadeError != nil {
		return facadeError
	}

	information := CollectInformation(facade)
	if command.Flags().Lookup(formatFlagNameConstant).Value.String() == formatYAMLConstant {
		encoder := yaml.NewEncoder(command.OutOrStdout())
		if encodeError := encoder.Encode(information); encodeError != nil {
			return fmt.Errorf(infoEncodeErrorTemplateConstant, encodeError)
		}
		return encoder.Close()
	}
	return writeInformationText(command.OutOrStdout(), information)
}

// CollectInformation queries the facade for every reported attribute.
func CollectInformation(facade *system.Facade) Information {
	currentFolder, _ := facade.CurrentFolder()
	return Information{
		HostName:        facade.HostName(),
		Address:         facade.Address(),
		Version:         facade.Version(),
		Machine:         facade.Machine(),
		Processor:       facade.Processor(),
		ProcessID:       facade.ProcessID(),
		CurrentTime:     facade.CurrentTime(),
		CurrentFolder:   currentFolder,
		TemporaryFolder: facade.TemporaryFolder(),
	}
}

func writeInformationText(output io.Writer, information Information) error {
	rows := []struct {
		label string
		value any
	}{
		{label: "host_name", value: information.HostName},
		{label: "address", value: information.Address},
		{label: "version", value: information.Version},
		{label: "machine", value: information.Machine},
		{label: "processor", value: information.Processor},
		{label: "process_id", value: information.ProcessID},
		{label: "current_time", value: fmt.Sprintf("%.6f", information.CurrentTime)},
		{label: "current_folder", value: information.CurrentFolder},
		{label: "temporary_folder", value: information.TemporaryFolder},
	}
	for _, row := range rows {
		if _, writeError := fmt.Fprintf(output, infoLineTemplateConstant, row.label, row.value); writeError != nil {
			return writeError
		}
	}
	return nil
}
