//go:build linux

package execshell

import "golang.org/x/sys/unix"

const bytesAvailableRequestConstant = unix.TIOCINQ
