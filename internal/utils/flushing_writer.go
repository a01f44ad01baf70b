package utils

import (
	"io"
	"sync"
)

type flusher interface {
	Flush() error
}

// FlushingWriter forwards command output to a destination without holding any of it back.
// Each Write is delivered in full, then flushed when the destination buffers.
type FlushingWriter struct {
	destination io.Writer
	mutex       sync.Mutex
}

// NewFlushingWriter wraps destination for unbuffered command output. A nil destination yields nil.
func NewFlushingWriter(destination io.Writer) io.Writer {
	if destination == nil {
		return nil
	}
	if _, alreadyWrapped := destination.(*FlushingWriter); alreadyWrapped {
		return destination
	}
	return &FlushingWriter{destination: destination}
}

// Write delivers output to the destination, retrying short writes until every byte is accepted.
// A destination that makes no progress yields io.ErrShortWrite.
func (flushingWriter *FlushingWriter) Write(output []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.destination == nil {
		return 0, nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	deliveredCount := 0
	for deliveredCount < len(output) {
		writtenCount, writeError := flushingWriter.destination.Write(output[deliveredCount:])
		deliveredCount += writtenCount
		if writeError != nil {
			return deliveredCount, writeError
		}
		if writtenCount == 0 {
			return deliveredCount, io.ErrShortWrite
		}
	}

	if bufferedDestination, buffers := flushingWriter.destination.(flusher); buffers {
		if flushError := bufferedDestination.Flush(); flushError != nil {
			return deliveredCount, flushError
		}
	}
	return deliveredCount, nil
}
