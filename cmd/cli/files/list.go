package files

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/temirov/sysservices/internal/system"
	flagutils "github.com/temirov/sysservices/internal/utils/flags"
)

const (
	listCommandUseConstant              = "ls [folder]"
	listCommandShortDescriptionConstant = "List folder entries, starting with the parent entry"
	longFlagNameConstant                = "long"
	longFlagDescriptionConstant         = "Print permissions, owner, size and modification time"
	limitFlagNameConstant               = "limit"
	limitFlagDescriptionConstant        = "Stop after this many entries (0 lists everything)"
	shortEntryTemplateConstant          = "%s\n"
	longEntryTemplateConstant           = "%s %5d %5d %10d %s %s\n"
	folderEntrySuffixConstant           = "/"
	listTimeLayoutConstant              = "2006-01-02 15:04"
)

// ListCommandBuilder assembles the ls command.
type ListCommandBuilder struct {
	LoggerProvider LoggerProvider
	FacadeProvider FacadeProvider
}

// Build constructs the ls command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:          listCommandUseConstant,
		Short:        listCommandShortDescriptionConstant,
		Args:         cobra.MaximumNArgs(1),
		RunE:         builder.run,
		SilenceUsage: true,
	}

	flagutils.AddToggleFlag(command.Flags(), nil, longFlagNameConstant, "l", false, longFlagDescriptionConstant)
	command.Flags().Int(limitFlagNameConstant, 0, limitFlagDescriptionConstant)

	return command, nil
}

func (builder *ListCommandBuilder) run(command *cobra.Command, arguments []string) error {
	facade, facadeError := resolveFacade(builder.FacadeProvider, resolveLogger(builder.LoggerProvider))
	if facadeError != nil {
		return facadeError
	}

	folder := ""
	if len(arguments) > 0 {
		folder = facade.ResolvePath(arguments[0])
	}
	longFormat, _ := command.Flags().GetBool(longFlagNameConstant)
	limit, _ := command.Flags().GetInt(limitFlagNameConstant)

	output := command.OutOrStdout()
	var writeError error
	visited := 0
	listError := facade.ListFolderEntries(folder, func(entry system.FolderEntry) bool {
		writeError = writeFolderEntry(output, entry, longFormat)
		visited++
		return writeError == nil && (limit <= 0 || visited < limit)
	})
	if listError != nil {
		return listError
	}
	return writeError
}

func writeFolderEntry(output io.Writer, entry system.FolderEntry, longFormat bool) error {
	displayName := entry.Name
	if entry.IsFolder {
		displayName += folderEntrySuffixConstant
	}
	if !longFormat {
		_, writeError := fmt.Fprintf(output, shortEntryTemplateConstant, displayName)
		return writeError
	}
	_, writeError := fmt.Fprintf(
		output,
		longEntryTemplateConstant,
		entry.Permissions,
		entry.UserID,
		entry.GroupID,
		entry.Size,
		entry.ModificationTime.In(time.Local).Format(listTimeLayoutConstant),
		displayName,
	)
	return writeError
}
