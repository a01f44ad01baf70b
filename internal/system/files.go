package system

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/sysservices/internal/bytechannel"
)

const (
	temporaryFolderEnvironmentConstant        = "TMPDIR"
	defaultTemporaryFolderConstant            = "/tmp"
	temporaryFileSuffixPatternConstant        = "*"
	temporaryNamePatternTemplateConstant      = "tmp.%d.*"
	pathSeparatorConstant                     = "/"
	temporaryFileErrorTemplateConstant        = "unable to create temporary file in %s: %w"
	temporaryNameErrorTemplateConstant        = "unable to reserve temporary file name: %w"
	temporaryFileCreatedMessageConstant       = "temporary file created"
	temporaryFilePathLogFieldConstant         = "path"
	temporaryFileDirectoryLogFieldConstant    = "directory"
	temporaryFileCleanupFailedMessageConstant = "temporary name cleanup failed"
	closeErrorLogFieldConstant                = "close_error"
	removeErrorLogFieldConstant               = "remove_error"
)

// OpenFile opens path in the given mode.
func (facade *Facade) OpenFile(path string, mode bytechannel.Mode) (*bytechannel.Channel, error) {
	return bytechannel.Open(path, mode)
}

// OpenStandardStream wraps standard input (0), output (1) or error (2).
func (facade *Facade) OpenStandardStream(index int) (*bytechannel.Channel, error) {
	return bytechannel.AdoptStandardStream(index)
}

// CreateTemporaryFile creates a unique file named prefix plus a random suffix inside directory
// and returns an update channel on it together with its path.
func (facade *Facade) CreateTemporaryFile(directory string, prefix string) (*bytechannel.Channel, string, error) {
	file, createError := facade.fileSystem.CreateTemp(directory, prefix+temporaryFileSuffixPatternConstant)
	if createError != nil {
		return nil, "", fmt.Errorf(temporaryFileErrorTemplateConstant, directory, createError)
	}

	channel, channelError := bytechannel.FromFile(file, bytechannel.ModeUpdate)
	if channelError != nil {
		_ = file.Close()
		return nil, "", fmt.Errorf(temporaryFileErrorTemplateConstant, directory, channelError)
	}

	facade.logger.Debug(
		temporaryFileCreatedMessageConstant,
		zap.String(temporaryFilePathLogFieldConstant, file.Name()),
		zap.String(temporaryFileDirectoryLogFieldConstant, directory),
	)
	return channel, file.Name(), nil
}

// TemporaryFileName reserves a unique path in the temporary folder. The file itself is removed again
// before the name is returned.
func (facade *Facade) TemporaryFileName() (string, error) {
	pattern := fmt.Sprintf(temporaryNamePatternTemplateConstant, os.Getpid())
	file, createError := facade.fileSystem.CreateTemp(facade.TemporaryFolder(), pattern)
	if createError != nil {
		return "", fmt.Errorf(temporaryNameErrorTemplateConstant, createError)
	}

	temporaryName := file.Name()
	closeError := file.Close()
	removeError := facade.fileSystem.Remove(temporaryName)
	if closeError != nil || removeError != nil {
		facade.logger.Debug(
			temporaryFileCleanupFailedMessageConstant,
			zap.String(temporaryFilePathLogFieldConstant, temporaryName),
			zap.NamedError(closeErrorLogFieldConstant, closeError),
			zap.NamedError(removeErrorLogFieldConstant, removeError),
		)
	}
	return temporaryName, nil
}

// TemporaryFolder returns TMPDIR, or /tmp when it is unset or empty, without a trailing slash.
func (facade *Facade) TemporaryFolder() string {
	temporaryFolder, defined := facade.lookupEnvironment(temporaryFolderEnvironmentConstant)
	if !defined || len(temporaryFolder) == 0 {
		return defaultTemporaryFolderConstant
	}
	if len(temporaryFolder) > 1 && strings.HasSuffix(temporaryFolder, pathSeparatorConstant) {
		return temporaryFolder[:len(temporaryFolder)-1]
	}
	return temporaryFolder
}
