//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package system

import (
	"errors"
	"runtime"
)

func kernelRelease() string {
	return runtime.GOOS
}

func machineName() string {
	return runtime.GOARCH
}

func replaceFileCreationMask(uint32) (uint32, error) {
	return 0, errors.ErrUnsupported
}
