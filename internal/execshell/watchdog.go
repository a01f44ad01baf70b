package execshell

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// watchdog kills a running shell when the execution context ends or the timeout elapses.
// It is the only goroutine a poll engine run starts, and it never outlives the run.
type watchdog struct {
	stopSignal chan struct{}
	finished   chan struct{}
	mutex      sync.Mutex
	disarmed   bool
	killed     bool
	fired      atomic.Bool
}

func armWatchdog(executionContext context.Context, timeout time.Duration, kill func() error) *watchdog {
	guard := &watchdog{stopSignal: make(chan struct{}), finished: make(chan struct{})}

	var cancellation <-chan struct{}
	if executionContext != nil {
		cancellation = executionContext.Done()
	}

	var deadlineTimer *time.Timer
	var deadline <-chan time.Time
	if timeout > 0 {
		deadlineTimer = time.NewTimer(timeout)
		deadline = deadlineTimer.C
	}

	if cancellation == nil && deadline == nil {
		close(guard.finished)
		return guard
	}

	go func() {
		defer close(guard.finished)
		if deadlineTimer != nil {
			defer deadlineTimer.Stop()
		}

		select {
		case <-guard.stopSignal:
			return
		case <-cancellation:
		case <-deadline:
		}

		guard.mutex.Lock()
		defer guard.mutex.Unlock()
		if guard.disarmed {
			return
		}
		guard.fired.Store(true)
		if killError := kill(); killError == nil {
			guard.killed = true
		}
	}()

	return guard
}

// aborting reports whether the watchdog has fired. Transfer loops check it between reads.
func (guard *watchdog) aborting() bool {
	return guard.fired.Load()
}

// disarm stops the watchdog, waits for its goroutine, and reports whether it killed the shell.
// After disarm returns the watchdog never signals the child again, so the caller may reap it.
func (guard *watchdog) disarm() bool {
	guard.mutex.Lock()
	alreadyDisarmed := guard.disarmed
	guard.disarmed = true
	guard.mutex.Unlock()

	if !alreadyDisarmed {
		close(guard.stopSignal)
	}
	<-guard.finished

	guard.mutex.Lock()
	defer guard.mutex.Unlock()
	return guard.killed
}
