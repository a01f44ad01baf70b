//go:build !linux

package system

import "io/fs"

func applyPlatformMetadata(folderEntry *FolderEntry, entryInformation fs.FileInfo) {}
