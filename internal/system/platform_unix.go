//go:build linux || darwin || freebsd || netbsd || openbsd

package system

import "golang.org/x/sys/unix"

func kernelRelease() string {
	var systemName unix.Utsname
	if unameError := unix.Uname(&systemName); unameError != nil {
		return unknownValueConstant
	}
	return unix.ByteSliceToString(systemName.Release[:])
}

func machineName() string {
	var systemName unix.Utsname
	if unameError := unix.Uname(&systemName); unameError != nil {
		return unknownValueConstant
	}
	return unix.ByteSliceToString(systemName.Machine[:])
}

func replaceFileCreationMask(mask uint32) (uint32, error) {
	return uint32(unix.Umask(int(mask & permissionBitsMaskConstant))), nil
}
