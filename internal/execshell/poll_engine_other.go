//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package execshell

// Platforms without the fork and poll primitives run every command on the stream engine.
func newPlatformPollEngine(options EngineOptions) CommandEngine {
	return NewStreamEngine(options)
}
