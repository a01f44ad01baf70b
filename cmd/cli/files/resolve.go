package files

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	resolveCommandUseConstant              = "resolve <path>..."
	resolveCommandShortDescriptionConstant = "Print absolute forms of paths after home directory expansion"
	resolveLineTemplateConstant            = "%s\n"
)

// ResolveCommandBuilder assembles the resolve command.
type ResolveCommandBuilder struct {
	LoggerProvider LoggerProvider
	FacadeProvider FacadeProvider
}

// Build constructs the resolve command.
func (builder *ResolveCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:          resolveCommandUseConstant,
		Short:        resolveCommandShortDescriptionConstant,
		Args:         cobra.MinimumNArgs(1),
		RunE:         builder.run,
		SilenceUsage: true,
	}, nil
}

func (builder *ResolveCommandBuilder) run(command *cobra.Command, arguments []string) error {
	facade, facadeError := resolveFacade(builder.FacadeProvider, resolveLogger(builder.LoggerProvider))
	if facadeError != nil {
		return facadeError
	}
	for _, path := range arguments {
		if _, writeError := fmt.Fprintf(command.OutOrStdout(), resolveLineTemplateConstant, facade.ResolvePath(path)); writeError != nil {
			return writeError
		}
	}
	return nil
}
