package files

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/sysservices/internal/bytechannel"
	"github.com/temirov/sysservices/internal/utils"
	flagutils "github.com/temirov/sysservices/internal/utils/flags"
)

const (
	catCommandUseConstant              = "cat <file>..."
	catCommandShortDescriptionConstant = "Copy files to standard output through byte channels"
	catCommandLongDescriptionConstant  = "cat opens every file read-only and copies it to standard output. A dash names standard input."
	lockFlagNameConstant               = "lock"
	lockFlagDescriptionConstant        = "Hold a shared advisory lock while reading"
	standardInputArgumentConstant      = "-"
	copyErrorTemplateConstant          = "unable to copy %s: %w"
	channelCloseFailedMessageConstant  = "channel close failed"
	channelNameLogFieldConstant        = "channel"
)

// CatCommandBuilder assembles the cat command.
type CatCommandBuilder struct {
	LoggerProvider LoggerProvider
	FacadeProvider FacadeProvider
}

// Build constructs the cat command.
func (builder *CatCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:          catCommandUseConstant,
		Short:        catCommandShortDescriptionConstant,
		Long:         catCommandLongDescriptionConstant,
		Args:         cobra.MinimumNArgs(1),
		RunE:         builder.run,
		SilenceUsage: true,
	}

	flagutils.AddToggleFlag(command.Flags(), nil, lockFlagNameConstant, "", false, lockFlagDescriptionConstant)

	return command, nil
}

func (builder *CatCommandBuilder) run(command *cobra.Command, arguments []string) error {
	logger := resolveLogger(builder.LoggerProvider)
	facade, facadeError := resolveFacade(builder.FacadeProvider, logger)
	if facadeError != nil {
		return facadeError
	}
	lockWhileReading, _ := command.Flags().GetBool(lockFlagNameConstant)
	output := utils.NewFlushingWriter(command.OutOrStdout())

	for _, path := range arguments {
		var channel *bytechannel.Channel
		var openError error
		if path == standardInputArgumentConstant {
			channel, openError = facade.OpenStandardStream(0)
		} else {
			channel, openError = facade.OpenFile(facade.ResolvePath(path), bytechannel.ModeRead)
		}
		if openError != nil {
			return openError
		}

		copyError := copyChannel(output, channel, lockWhileReading)
		if closeError := channel.Close(); closeError != nil {
			logger.Debug(channelCloseFailedMessageConstant, zap.String(channelNameLogFieldConstant, channel.Name()), zap.Error(closeError))
		}
		if copyError != nil {
			return fmt.Errorf(copyErrorTemplateConstant, path, copyError)
		}
	}
	return nil
}

func copyChannel(output io.Writer, channel *bytechannel.Channel, lockWhileReading bool) error {
	if lockWhileReading {
		if lockError := channel.Lock(true, true); lockError != nil {
			return lockError
		}
		defer channel.Unlock()
	}
	_, copyError := io.Copy(output, channel)
	return copyError
}
