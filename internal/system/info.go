package system

import (
	"context"
	"os"
	"runtime"
	"time"
)

const (
	unknownValueConstant         = "unknown"
	addressSeparatorConstant     = ":"
	nanosecondsPerSecondConstant = float64(time.Second)
)

var processorLabels = map[string]string{
	"amd64":   "x86_64",
	"386":     "x86",
	"arm64":   "arm64",
	"arm":     "arm",
	"ppc64le": "PowerPC",
	"ppc64":   "PowerPC",
	"s390x":   "s390x",
	"riscv64": "riscv64",
}

// CurrentTime returns the wall clock in seconds since the Unix epoch.
func (facade *Facade) CurrentTime() float64 {
	return float64(facade.clock().UnixNano()) / nanosecondsPerSecondConstant
}

// ProcessID returns the identifier of the running process.
func (facade *Facade) ProcessID() int {
	return os.Getpid()
}

// Version returns the operating system release.
func (facade *Facade) Version() string {
	return kernelRelease()
}

// Machine returns the hardware name reported by the kernel.
func (facade *Facade) Machine() string {
	return machineName()
}

// Processor returns the processor family the binary was built for.
func (facade *Facade) Processor() string {
	if label, known := processorLabels[runtime.GOARCH]; known {
		return label
	}
	return runtime.GOARCH
}

// HostName returns the network name of this host, or an empty string when it cannot be determined.
func (facade *Facade) HostName() string {
	hostName, hostNameError := os.Hostname()
	if hostNameError != nil {
		return ""
	}
	return hostName
}

// Address identifies this process instance as "host:program".
func (facade *Facade) Address() string {
	return facade.HostName() + addressSeparatorConstant + facade.executablePath
}

// Sleep pauses for duration or until the context ends.
func (facade *Facade) Sleep(sleepContext context.Context, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}
	if sleepContext == nil {
		sleepContext = context.Background()
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-sleepContext.Done():
		return sleepContext.Err()
	}
}
