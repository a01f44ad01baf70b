//go:build !unix

package bytechannel

import "errors"

func validateDescriptor(descriptor uintptr) error {
	return nil
}

// Lock is not available on this platform.
func (channel *Channel) Lock(shared bool, wait bool) error {
	return channel.fail(operationLockConstant, errors.ErrUnsupported)
}

// Unlock is not available on this platform.
func (channel *Channel) Unlock() error {
	return channel.fail(operationLockConstant, errors.ErrUnsupported)
}
