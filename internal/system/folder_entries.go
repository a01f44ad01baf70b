package system

import (
	"fmt"
	"io/fs"
	"time"

	"go.uber.org/zap"
)

const (
	currentFolderConstant             = "."
	parentFolderEntryNameConstant     = ".."
	listFolderErrorTemplateConstant   = "list folder %s: %w"
	skippedFolderEntryMessageConstant = "folder entry skipped"
	folderEntryNameLogFieldConstant   = "entry"
)

// FolderEntry describes one item of a folder listing.
type FolderEntry struct {
	Name             string
	Size             int64
	ModificationTime time.Time
	AccessTime       time.Time
	ChangeTime       time.Time
	Permissions      fs.FileMode
	UserID           uint32
	GroupID          uint32
	IsFolder         bool
}

// ListFolderEntries reports a synthetic ".." entry followed by the entries of folder in name order.
// An empty folder argument lists the current folder. The listing stops early when visit returns false.
func (facade *Facade) ListFolderEntries(folder string, visit func(FolderEntry) bool) error {
	if len(folder) == 0 {
		folder = currentFolderConstant
	}

	directoryEntries, readError := facade.fileSystem.ReadDir(folder)
	if readError != nil {
		return fmt.Errorf(listFolderErrorTemplateConstant, folder, readError)
	}

	if !visit(FolderEntry{Name: parentFolderEntryNameConstant, IsFolder: true}) {
		return nil
	}

	for _, directoryEntry := range directoryEntries {
		entryInformation, informationError := directoryEntry.Info()
		if informationError != nil {
			facade.logger.Debug(
				skippedFolderEntryMessageConstant,
				zap.String(folderEntryNameLogFieldConstant, directoryEntry.Name()),
				zap.Error(informationError),
			)
			continue
		}
		if !visit(newFolderEntry(entryInformation)) {
			return nil
		}
	}
	return nil
}

func newFolderEntry(entryInformation fs.FileInfo) FolderEntry {
	folderEntry := FolderEntry{
		Name:             entryInformation.Name(),
		Size:             entryInformation.Size(),
		ModificationTime: entryInformation.ModTime(),
		AccessTime:       entryInformation.ModTime(),
		ChangeTime:       entryInformation.ModTime(),
		Permissions:      entryInformation.Mode().Perm(),
		IsFolder:         entryInformation.IsDir(),
	}
	applyPlatformMetadata(&folderEntry, entryInformation)
	return folderEntry
}
