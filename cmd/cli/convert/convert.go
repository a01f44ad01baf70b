package convert

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/sysservices/internal/bytechannel"
	"github.com/temirov/sysservices/internal/system"
	flagutils "github.com/temirov/sysservices/internal/utils/flags"
)

const (
	commandUseConstant              = "convert [file]"
	commandShortDescriptionConstant = "Convert text between character sets"
	commandLongDescriptionConstant  = "convert reads a file, or standard input when no file is given, and writes it re-encoded. Characters the target charset cannot represent become '?'."
	fromFlagNameConstant            = "from"
	fromFlagDescriptionConstant     = "Source charset (IANA name)"
	toFlagNameConstant              = "to"
	toFlagDescriptionConstant       = "Target charset (IANA name)"
	unicodeFlagNameConstant         = "unicode"
	unicodeFlagDescriptionConstant  = "Produce UTF-16 in host byte order, ignoring --to"
	defaultTargetCharsetConstant    = "UTF-8"
	sourceCharsetRequiredMessageConstant= "source charset required; provide --from"
	readInputErrorTemplateConstant    = "unable to read %s: %w"
	channelCloseFailedMessageConstant = "channel close failed"
	standardInputNameConstant         = "standard input"
)

// CommandBuilder assembles the convert command.
type CommandBuilder struct {
	LoggerProvider LoggerProvider
	FacadeProvider FacadeProvider
}

// Build constructs the convert command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:          commandUseConstant,
		Short:        commandShortDescriptionConstant,
		Long:         commandLongDescriptionConstant,
		Args:         cobra.MaximumNArgs(1),
		RunE:         builder.run,
		SilenceUsage: true,
	}

	command.Flags().String(fromFlagNameConstant, "", fromFlagDescriptionConstant)
	command.Flags().String(toFlagNameConstant, defaultTargetCharsetConstant, toFlagDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), nil, unicodeFlagNameConstant, "", false, unicodeFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	fromCharset, _ := command.Flags().GetString(fromFlagNameConstant)
	if len(strings.TrimSpace(fromCharset)) == 0 {
		return errors.New(sourceCharsetRequiredMessageConstant)
	}
	toCharset, _ := command.Flags().GetString(toFlagNameConstant)
	toUnicode, _ := command.Flags().GetBool(unicodeFlagNameConstant)

	logger := resolveLogger(builder.LoggerProvider)
	facade, facadeError := resolveFacade(builder.FacadeProvider, logger)
	if facadeError != nil {
		return facadeError
	}

	input, readError := readInput(command, facade, logger, arguments)
	if readError != nil {
		return readError
	}

	var converted []byte
	var conversionError error
	if toUnicode {
		converted, conversionError = facade.TextConvertToUnicode(input, fromCharset)
	} else {
		converted, conversionError = facade.TextConvert(input, fromCharset, toCharset)
	}
	if conversionError != nil {
		return conversionError
	}

	_, writeError := command.OutOrStdout().Write(converted)
	return writeError
}

func readInput(command *cobra.Command, facade *system.Facade, logger *zap.Logger, arguments []string) ([]byte, error) {
	if len(arguments) == 0 {
		content, readError := io.ReadAll(command.InOrStdin())
		if readError != nil {
			return nil, fmt.Errorf(readInputErrorTemplateConstant, standardInputNameConstant, readError)
		}
		return content, nil
	}

	channel, openError := facade.OpenFile(facade.ResolvePath(arguments[0]), bytechannel.ModeRead)
	if openError != nil {
		return nil, openError
	}
	defer func() {
		if closeError := channel.Close(); closeError != nil {
			logger.Debug(channelCloseFailedMessageConstant, zap.Error(closeError))
		}
	}()

	content, readError := io.ReadAll(channel)
	if readError != nil {
		return nil, fmt.Errorf(readInputErrorTemplateConstant, arguments[0], readError)
	}
	return content, nil
}
