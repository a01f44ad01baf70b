package host

import (
	"context"
	"fmt"
	"net"

	"github.com/spf13/cobra"

	flagutils "github.com/temirov/sysservices/internal/utils/flags"
)

const (
	lookupCommandUseConstant              = "host <name-or-address>"
	lookupCommandShortDescriptionConstant = "Resolve a host name to IPv4 addresses or an IPv4 address to a host name"
	firstFlagNameConstant                 = "first"
	firstFlagDescriptionConstant          = "Print only the first address"
	lookupLineTemplateConstant            = "%s\n"
)

// LookupCommandBuilder assembles the host command.
type LookupCommandBuilder struct {
	LoggerProvider LoggerProvider
	FacadeProvider FacadeProvider
}

// Build constructs the host command.
func (builder *LookupCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:          lookupCommandUseConstant,
		Short:        lookupCommandShortDescriptionConstant,
		Args:         cobra.ExactArgs(1),
		RunE:         builder.run,
		SilenceUsage: true,
	}

	flagutils.AddToggleFlag(command.Flags(), nil, firstFlagNameConstant, "1", false, firstFlagDescriptionConstant)

	return command, nil
}

func (builder *LookupCommandBuilder) run(command *cobra.Command, arguments []string) error {
	facade, facadeError := resolveFacade(builder.FacadeProvider, resolveLogger(builder.LoggerProvider))
	if facadeError != nil {
		return facadeError
	}

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}
	firstOnly, _ := command.Flags().GetBool(firstFlagNameConstant)

	output := command.OutOrStdout()
	var writeError error
	visit := func(value string) bool {
		_, writeError = fmt.Fprintf(output, lookupLineTemplateConstant, value)
		return writeError == nil && !firstOnly
	}

	subject := arguments[0]
	var lookupError error
	if parsedAddress := net.ParseIP(subject); parsedAddress != nil {
		lookupError = facade.AddressToHostName(executionContext, subject, visit)
	} else {
		lookupError = facade.HostNameToAddress(executionContext, subject, visit)
	}
	if lookupError != nil {
		return lookupError
	}
	return writeError
}
