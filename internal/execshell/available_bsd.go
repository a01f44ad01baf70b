//go:build darwin || freebsd || netbsd || openbsd

package execshell

// FIONREAD from sys/filio.h.
const bytesAvailableRequestConstant = 0x4004667f
