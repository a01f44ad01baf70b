package system

import (
	"io/fs"
	"syscall"
	"time"
)

func applyPlatformMetadata(folderEntry *FolderEntry, entryInformation fs.FileInfo) {
	status, available := entryInformation.Sys().(*syscall.Stat_t)
	if !available || status == nil {
		return
	}
	folderEntry.AccessTime = time.Unix(int64(status.Atim.Sec), int64(status.Atim.Nsec))
	folderEntry.ChangeTime = time.Unix(int64(status.Ctim.Sec), int64(status.Ctim.Nsec))
	folderEntry.UserID = status.Uid
	folderEntry.GroupID = status.Gid
}
