package bytechannel

import (
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	defaultBufferSizeConstant        = 8 * 1024
	defaultFilePermissionsConstant   = 0o666
	standardInputDescriptorConstant  = 0
	standardOutputDescriptorConstant = 1
	standardErrorDescriptorConstant  = 2
	standardInputNameConstant        = "stdin"
	standardOutputNameConstant       = "stdout"
	standardErrorNameConstant        = "stderr"
	descriptorNameTemplateConstant   = "fd:%d"
	openFailureTemplateConstant      = "%w: %s: %w"
	operationFailureTemplateConstant = "%w: %s %s: %w"
	adoptFailureTemplateConstant     = "%w: descriptor %d: %w"
	unknownStreamTemplateConstant    = "%w: standard stream %d"
	operationReadConstant            = "read"
	operationWriteConstant           = "write"
	operationSeekConstant            = "seek"
	operationTruncateConstant        = "truncate"
	operationCloseConstant           = "close"
	operationLockConstant            = "lock"
)

var (
	// ErrNotFound reports that a named file could not be opened.
	ErrNotFound = errors.New("cannot open file")
	// ErrInvalidDescriptor reports that an adopted descriptor is not open.
	ErrInvalidDescriptor = errors.New("invalid descriptor")
	// ErrIO reports a failed read, write, flush, seek, truncate or lock.
	ErrIO = errors.New("channel i/o failed")
	// ErrClosed reports an operation on a channel that was already closed.
	ErrClosed = errors.New("channel already closed")
)

// SeekOrigin selects the reference point of Seek.
type SeekOrigin int

// Seek origins.
const (
	SeekStart SeekOrigin = iota
	SeekCurrent
	SeekEnd
)

// Channel is a buffered duplex byte stream that exclusively owns one descriptor.
// It is not safe for concurrent use.
type Channel struct {
	file            *os.File
	name            string
	mode            Mode
	ownsDescriptor  bool
	buffered        bool
	readAhead       []byte
	readOffset      int
	pendingWrite    []byte
	endOfStream     bool
	failed          bool
	closed          bool
	bufferSizeBytes int
}

// Open opens the named file in the given mode. Update falls back to creating the file when it does not exist.
func Open(path string, mode Mode) (*Channel, error) {
	openFlags, flagsError := mode.openFlags()
	if flagsError != nil {
		return nil, fmt.Errorf(openFailureTemplateConstant, ErrNotFound, path, flagsError)
	}

	file, openError := os.OpenFile(path, openFlags, defaultFilePermissionsConstant)
	if openError != nil && mode == ModeUpdate && errors.Is(openError, os.ErrNotExist) {
		file, openError = os.OpenFile(path, updateCreateFlags, defaultFilePermissionsConstant)
	}
	if openError != nil {
		return nil, fmt.Errorf(openFailureTemplateConstant, ErrNotFound, path, openError)
	}

	return newChannel(file, path, mode, true, true), nil
}

// Adopt takes ownership of an open descriptor. Adopting descriptor 1 or 2 disables buffering.
func Adopt(descriptor uintptr, mode Mode) (*Channel, error) {
	if _, flagsError := mode.openFlags(); flagsError != nil {
		return nil, fmt.Errorf(adoptFailureTemplateConstant, ErrInvalidDescriptor, descriptor, flagsError)
	}
	if validationError := validateDescriptor(descriptor); validationError != nil {
		return nil, fmt.Errorf(adoptFailureTemplateConstant, ErrInvalidDescriptor, descriptor, validationError)
	}

	descriptorName := describeDescriptor(descriptor)
	file := os.NewFile(descriptor, descriptorName)
	if file == nil {
		return nil, fmt.Errorf(adoptFailureTemplateConstant, ErrInvalidDescriptor, descriptor, os.ErrInvalid)
	}
	return newChannel(file, descriptorName, mode, true, isBufferedDescriptor(descriptor)), nil
}

// FromFile takes ownership of an already opened file.
func FromFile(file *os.File, mode Mode) (*Channel, error) {
	if file == nil {
		return nil, fmt.Errorf(adoptFailureTemplateConstant, ErrInvalidDescriptor, 0, os.ErrInvalid)
	}
	if _, flagsError := mode.openFlags(); flagsError != nil {
		return nil, fmt.Errorf(openFailureTemplateConstant, ErrInvalidDescriptor, file.Name(), flagsError)
	}
	return newChannel(file, file.Name(), mode, true, true), nil
}

// AdoptStandardStream wraps standard input, output or error without taking ownership of the descriptor.
// Closing the channel flushes it but leaves the process stream open.
func AdoptStandardStream(index int) (*Channel, error) {
	switch index {
	case standardInputDescriptorConstant:
		return newChannel(os.Stdin, standardInputNameConstant, ModeRead, false, true), nil
	case standardOutputDescriptorConstant:
		return newChannel(os.Stdout, standardOutputNameConstant, ModeWrite, false, false), nil
	case standardErrorDescriptorConstant:
		return newChannel(os.Stderr, standardErrorNameConstant, ModeWrite, false, false), nil
	default:
		return nil, fmt.Errorf(unknownStreamTemplateConstant, ErrInvalidDescriptor, index)
	}
}

func newChannel(file *os.File, name string, mode Mode, ownsDescriptor bool, buffered bool) *Channel {
	return &Channel{
		file:            file,
		name:            name,
		mode:            mode,
		ownsDescriptor:  ownsDescriptor,
		buffered:        buffered,
		bufferSizeBytes: defaultBufferSizeConstant,
	}
}

// isBufferedDescriptor keeps standard output and standard error unbuffered so their writes stay ordered
// relative to other writers of the same streams.
func isBufferedDescriptor(descriptor uintptr) bool {
	return descriptor != standardOutputDescriptorConstant && descriptor != standardErrorDescriptorConstant
}

func describeDescriptor(descriptor uintptr) string {
	switch descriptor {
	case standardInputDescriptorConstant:
		return standardInputNameConstant
	case standardOutputDescriptorConstant:
		return standardOutputNameConstant
	case standardErrorDescriptorConstant:
		return standardErrorNameConstant
	default:
		return fmt.Sprintf(descriptorNameTemplateConstant, descriptor)
	}
}

// Name returns the path or descriptor label the channel was created from.
func (channel *Channel) Name() string {
	return channel.name
}

// Mode returns the logical open mode.
func (channel *Channel) Mode() Mode {
	return channel.mode
}

// Fd returns the underlying descriptor.
func (channel *Channel) Fd() uintptr {
	return channel.file.Fd()
}

// Buffered reports whether reads and writes go through the channel buffers.
func (channel *Channel) Buffered() bool {
	return channel.buffered
}

// EOF reports whether a read reached the end of the stream.
func (channel *Channel) EOF() bool {
	return channel.endOfStream
}

// Failed reports whether any operation failed since the channel was created.
func (channel *Channel) Failed() bool {
	return channel.failed
}

// Read fills buffer until it is full or the stream ends. It returns io.EOF only when no byte was read.
func (channel *Channel) Read(buffer []byte) (int, error) {
	if channel.closed {
		return 0, ErrClosed
	}
	if len(buffer) == 0 {
		return 0, nil
	}
	if flushError := channel.Flush(); flushError != nil {
		return 0, flushError
	}

	readCount := copy(buffer, channel.readAhead[channel.readOffset:])
	channel.consumeReadAhead(readCount)

	for readCount < len(buffer) {
		var chunkCount int
		var chunkError error
		remaining := buffer[readCount:]
		if channel.buffered && len(remaining) < channel.bufferSizeBytes {
			chunkCount, chunkError = channel.fillReadAhead()
			chunkCount = copy(remaining, channel.readAhead[channel.readOffset:])
			channel.consumeReadAhead(chunkCount)
		} else {
			chunkCount, chunkError = channel.file.Read(remaining)
		}
		readCount += chunkCount

		if errors.Is(chunkError, io.EOF) {
			channel.endOfStream = true
			break
		}
		if chunkError != nil {
			return readCount, channel.fail(operationReadConstant, chunkError)
		}
		if chunkCount == 0 {
			channel.endOfStream = true
			break
		}
	}

	if readCount == 0 && channel.endOfStream {
		return 0, io.EOF
	}
	return readCount, nil
}

// ReadByte returns the next byte.
func (channel *Channel) ReadByte() (byte, error) {
	var single [1]byte
	if _, readError := channel.Read(single[:]); readError != nil {
		return 0, readError
	}
	return single[0], nil
}

// Write writes all of data. A short write is an error.
func (channel *Channel) Write(data []byte) (int, error) {
	if channel.closed {
		return 0, ErrClosed
	}
	if discardError := channel.discardReadAhead(); discardError != nil {
		return 0, discardError
	}

	if !channel.buffered {
		return channel.writeThrough(data)
	}

	channel.pendingWrite = append(channel.pendingWrite, data...)
	if len(channel.pendingWrite) >= channel.bufferSizeBytes {
		if flushError := channel.Flush(); flushError != nil {
			return 0, flushError
		}
	}
	return len(data), nil
}

// Flush writes buffered bytes to the descriptor.
func (channel *Channel) Flush() error {
	if channel.closed {
		return ErrClosed
	}
	if len(channel.pendingWrite) == 0 {
		return nil
	}
	pending := channel.pendingWrite
	channel.pendingWrite = channel.pendingWrite[:0]
	if _, writeError := channel.writeThrough(pending); writeError != nil {
		return writeError
	}
	return nil
}

// Seek moves the position relative to origin and clears the end-of-stream flag.
func (channel *Channel) Seek(offset int64, origin SeekOrigin) error {
	if channel.closed {
		return ErrClosed
	}
	if flushError := channel.Flush(); flushError != nil {
		return flushError
	}

	var whence int
	switch origin {
	case SeekStart:
		whence = io.SeekStart
	case SeekCurrent:
		whence = io.SeekCurrent
		offset -= int64(len(channel.readAhead) - channel.readOffset)
	case SeekEnd:
		whence = io.SeekEnd
	default:
		return channel.fail(operationSeekConstant, os.ErrInvalid)
	}

	if _, seekError := channel.file.Seek(offset, whence); seekError != nil {
		return channel.fail(operationSeekConstant, seekError)
	}
	channel.resetReadAhead()
	channel.endOfStream = false
	return nil
}

// Tell returns the logical position, or 0 when it cannot be determined.
func (channel *Channel) Tell() int64 {
	if channel.closed {
		return 0
	}
	descriptorPosition, seekError := channel.file.Seek(0, io.SeekCurrent)
	if seekError != nil {
		return 0
	}
	position := descriptorPosition - int64(len(channel.readAhead)-channel.readOffset) + int64(len(channel.pendingWrite))
	if position < 0 {
		return 0
	}
	return position
}

// Size returns the total number of bytes in the underlying file, or 0 when it cannot be determined.
func (channel *Channel) Size() int64 {
	if channel.closed {
		return 0
	}
	if flushError := channel.Flush(); flushError != nil {
		return 0
	}
	fileInformation, statError := channel.file.Stat()
	if statError != nil {
		return 0
	}
	return fileInformation.Size()
}

// Truncate cuts the file at the current position.
func (channel *Channel) Truncate() error {
	if channel.closed {
		return ErrClosed
	}
	if flushError := channel.Flush(); flushError != nil {
		return flushError
	}
	position := channel.Tell()
	if truncateError := channel.file.Truncate(position); truncateError != nil {
		return channel.fail(operationTruncateConstant, truncateError)
	}
	return channel.Seek(position, SeekStart)
}

// Sync repositions the descriptor to the logical position, writing buffered bytes and dropping read-ahead.
func (channel *Channel) Sync() error {
	if channel.closed {
		return ErrClosed
	}
	if flushError := channel.Flush(); flushError != nil {
		return flushError
	}
	return channel.Seek(channel.Tell(), SeekStart)
}

// PutBack pushes one byte in front of the unread data and clears the end-of-stream flag.
func (channel *Channel) PutBack(value byte) error {
	if channel.closed {
		return ErrClosed
	}
	if flushError := channel.Flush(); flushError != nil {
		return flushError
	}

	if channel.readOffset > 0 {
		channel.readOffset--
		channel.readAhead[channel.readOffset] = value
	} else {
		unread := channel.readAhead[channel.readOffset:]
		pushed := make([]byte, 0, len(unread)+1)
		pushed = append(pushed, value)
		channel.readAhead = append(pushed, unread...)
		channel.readOffset = 0
	}
	channel.endOfStream = false
	return nil
}

// Close flushes buffered bytes and releases the descriptor. The descriptor is released even when the flush fails.
// Closing twice returns ErrClosed.
func (channel *Channel) Close() error {
	if channel.closed {
		return ErrClosed
	}
	flushError := channel.Flush()
	channel.closed = true
	channel.resetReadAhead()
	channel.pendingWrite = nil

	var closeError error
	if channel.ownsDescriptor {
		if fileCloseError := channel.file.Close(); fileCloseError != nil {
			closeError = channel.fail(operationCloseConstant, fileCloseError)
		}
	}
	return errors.Join(flushError, closeError)
}

func (channel *Channel) writeThrough(data []byte) (int, error) {
	writtenCount, writeError := channel.file.Write(data)
	if writeError != nil {
		return writtenCount, channel.fail(operationWriteConstant, writeError)
	}
	if writtenCount < len(data) {
		return writtenCount, channel.fail(operationWriteConstant, io.ErrShortWrite)
	}
	return writtenCount, nil
}

func (channel *Channel) fillReadAhead() (int, error) {
	if cap(channel.readAhead) < channel.bufferSizeBytes {
		channel.readAhead = make([]byte, channel.bufferSizeBytes)
	}
	channel.readAhead = channel.readAhead[:cap(channel.readAhead)]
	readCount, readError := channel.file.Read(channel.readAhead)
	if readCount < 0 {
		readCount = 0
	}
	channel.readAhead = channel.readAhead[:readCount]
	channel.readOffset = 0
	return readCount, readError
}

func (channel *Channel) consumeReadAhead(count int) {
	channel.readOffset += count
	if channel.readOffset >= len(channel.readAhead) {
		channel.resetReadAhead()
	}
}

func (channel *Channel) resetReadAhead() {
	channel.readAhead = channel.readAhead[:0]
	channel.readOffset = 0
}

// discardReadAhead rewinds the descriptor over unread buffered bytes before a write.
func (channel *Channel) discardReadAhead() error {
	unreadCount := len(channel.readAhead) - channel.readOffset
	if unreadCount == 0 {
		channel.resetReadAhead()
		return nil
	}
	if _, seekError := channel.file.Seek(-int64(unreadCount), io.SeekCurrent); seekError != nil {
		return channel.fail(operationSeekConstant, seekError)
	}
	channel.resetReadAhead()
	return nil
}

func (channel *Channel) fail(operation string, cause error) error {
	channel.failed = true
	return fmt.Errorf(operationFailureTemplateConstant, ErrIO, operation, channel.name, cause)
}

var _ io.ReadWriteCloser = (*Channel)(nil)
