package system

import (
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"
)

const (
	defaultFolderPermissionsConstant     = 0o777
	ownerWritePermissionConstant         = 0o200
	permissionBitsMaskConstant           = 0o777
	setUserIdentifierBitConstant         = 0o4000
	setGroupIdentifierBitConstant        = 0o2000
	stickyBitConstant                    = 0o1000
	folderOperationErrorTemplateConstant = "%s %s: %w"
	renameErrorTemplateConstant          = "rename %s to %s: %w"
	operationCreateFolderConstant        = "create folder"
	operationDeleteFolderConstant        = "delete folder"
	operationDeleteFileConstant          = "delete file"
	operationChangePermissionsConstant   = "change permissions"
	operationSetCurrentFolderConstant    = "set current folder"
	folderOperationMessageConstant       = "folder operation completed"
	operationLogFieldConstant            = "operation"
	pathLogFieldConstant                 = "path"
)

var (
	// ErrNotAFolder reports a folder operation applied to something else.
	ErrNotAFolder = errors.New("not a folder")
	// ErrIsAFolder reports a file operation applied to a folder.
	ErrIsAFolder = errors.New("is a folder")
)

// CreateFolder creates a single folder. Missing parents are not created.
func (facade *Facade) CreateFolder(path string) error {
	if mkdirError := facade.fileSystem.Mkdir(path, defaultFolderPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(folderOperationErrorTemplateConstant, operationCreateFolderConstant, path, mkdirError)
	}
	facade.logFolderOperation(operationCreateFolderConstant, path)
	return nil
}

// DeleteFolder removes an empty folder.
func (facade *Facade) DeleteFolder(path string) error {
	fileInformation, statError := facade.fileSystem.Lstat(path)
	if statError != nil {
		return fmt.Errorf(folderOperationErrorTemplateConstant, operationDeleteFolderConstant, path, statError)
	}
	if !fileInformation.IsDir() {
		return fmt.Errorf(folderOperationErrorTemplateConstant, operationDeleteFolderConstant, path, ErrNotAFolder)
	}
	if removeError := facade.fileSystem.Remove(path); removeError != nil {
		return fmt.Errorf(folderOperationErrorTemplateConstant, operationDeleteFolderConstant, path, removeError)
	}
	facade.logFolderOperation(operationDeleteFolderConstant, path)
	return nil
}

// DeleteFile removes a file or a symbolic link. Folders are rejected.
func (facade *Facade) DeleteFile(path string) error {
	fileInformation, statError := facade.fileSystem.Lstat(path)
	if statError != nil {
		return fmt.Errorf(folderOperationErrorTemplateConstant, operationDeleteFileConstant, path, statError)
	}
	if fileInformation.IsDir() {
		return fmt.Errorf(folderOperationErrorTemplateConstant, operationDeleteFileConstant, path, ErrIsAFolder)
	}
	if removeError := facade.fileSystem.Remove(path); removeError != nil {
		return fmt.Errorf(folderOperationErrorTemplateConstant, operationDeleteFileConstant, path, removeError)
	}
	facade.logFolderOperation(operationDeleteFileConstant, path)
	return nil
}

// RenameFileOrFolder moves oldPath to newPath.
func (facade *Facade) RenameFileOrFolder(oldPath string, newPath string) error {
	if renameError := facade.fileSystem.Rename(oldPath, newPath); renameError != nil {
		return fmt.Errorf(renameErrorTemplateConstant, oldPath, newPath, renameError)
	}
	return nil
}

// FileExists reports whether path names something other than a folder.
func (facade *Facade) FileExists(path string) bool {
	fileInformation, statError := facade.fileSystem.Stat(path)
	return statError == nil && !fileInformation.IsDir()
}

// FolderExists reports whether path names a folder.
func (facade *Facade) FolderExists(path string) bool {
	fileInformation, statError := facade.fileSystem.Stat(path)
	return statError == nil && fileInformation.IsDir()
}

// FileNotAccessible reports whether an existing path cannot be written as a file:
// folders and files without the owner write bit qualify. Missing paths do not.
func (facade *Facade) FileNotAccessible(path string) bool {
	fileInformation, statError := facade.fileSystem.Stat(path)
	if statError != nil {
		return false
	}
	if fileInformation.IsDir() {
		return true
	}
	return fileInformation.Mode().Perm()&ownerWritePermissionConstant == 0
}

// ChangePermissions applies a numeric permission mask such as 0o644, including set-id and sticky bits.
func (facade *Facade) ChangePermissions(path string, mask uint32) error {
	if chmodError := facade.fileSystem.Chmod(path, fileModeFromMask(mask)); chmodError != nil {
		return fmt.Errorf(folderOperationErrorTemplateConstant, operationChangePermissionsConstant, path, chmodError)
	}
	return nil
}

// UMask installs mask as the process file creation mask and returns the previous mask.
func (facade *Facade) UMask(mask uint32) (uint32, error) {
	return replaceFileCreationMask(mask)
}

// CurrentFolder returns the process working directory.
func (facade *Facade) CurrentFolder() (string, error) {
	return facade.fileSystem.Getwd()
}

// SetCurrentFolder changes the process working directory.
func (facade *Facade) SetCurrentFolder(path string) error {
	if chdirError := facade.fileSystem.Chdir(path); chdirError != nil {
		return fmt.Errorf(folderOperationErrorTemplateConstant, operationSetCurrentFolderConstant, path, chdirError)
	}
	return nil
}

func (facade *Facade) logFolderOperation(operation string, path string) {
	facade.logger.Debug(
		folderOperationMessageConstant,
		zap.String(operationLogFieldConstant, operation),
		zap.String(pathLogFieldConstant, path),
	)
}

func fileModeFromMask(mask uint32) fs.FileMode {
	fileMode := fs.FileMode(mask & permissionBitsMaskConstant)
	if mask&setUserIdentifierBitConstant != 0 {
		fileMode |= fs.ModeSetuid
	}
	if mask&setGroupIdentifierBitConstant != 0 {
		fileMode |= fs.ModeSetgid
	}
	if mask&stickyBitConstant != 0 {
		fileMode |= fs.ModeSticky
	}
	return fileMode
}
