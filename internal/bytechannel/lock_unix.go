//go:build unix

package bytechannel

import (
	"errors"

	"golang.org/x/sys/unix"
)

func validateDescriptor(descriptor uintptr) error {
	var descriptorStatus unix.Stat_t
	return unix.Fstat(int(descriptor), &descriptorStatus)
}

// Lock places an advisory lock on the whole file. A shared lock admits other shared holders.
// Without wait, a conflicting lock fails immediately.
func (channel *Channel) Lock(shared bool, wait bool) error {
	if channel.closed {
		return ErrClosed
	}
	operation := unix.LOCK_EX
	if shared {
		operation = unix.LOCK_SH
	}
	if !wait {
		operation |= unix.LOCK_NB
	}
	for {
		lockError := unix.Flock(int(channel.file.Fd()), operation)
		if errors.Is(lockError, unix.EINTR) {
			continue
		}
		if lockError != nil {
			return channel.fail(operationLockConstant, lockError)
		}
		return nil
	}
}

// Unlock releases a lock taken with Lock.
func (channel *Channel) Unlock() error {
	if channel.closed {
		return ErrClosed
	}
	if unlockError := unix.Flock(int(channel.file.Fd()), unix.LOCK_UN); unlockError != nil {
		return channel.fail(operationLockConstant, unlockError)
	}
	return nil
}
