package execshell

const (
	minimumGrowthCapacityConstant = 512
)

// OutputBuffer is a growable byte buffer owned by a single run.
// The used length never exceeds the capacity, and the capacity never exceeds the limit when one is set.
type OutputBuffer struct {
	data  []byte
	limit int
}

// NewOutputBuffer creates an empty buffer. A limit of zero or less means unbounded.
func NewOutputBuffer(limit int) *OutputBuffer {
	if limit < 0 {
		limit = 0
	}
	return &OutputBuffer{limit: limit}
}

// Reserve guarantees at least additional bytes of free capacity, growing geometrically.
// When a limit is set, the free capacity is clamped to the limit and ErrOutputLimitExceeded
// is returned only when no free byte remains.
func (buffer *OutputBuffer) Reserve(additional int) error {
	if additional < 1 {
		additional = 1
	}

	usedLength := len(buffer.data)
	requiredCapacity := usedLength + additional
	if buffer.limit > 0 && requiredCapacity > buffer.limit {
		requiredCapacity = buffer.limit
	}
	if requiredCapacity <= usedLength {
		return ErrOutputLimitExceeded
	}
	if requiredCapacity <= cap(buffer.data) {
		return nil
	}

	grownCapacity := cap(buffer.data) * 2
	if grownCapacity < minimumGrowthCapacityConstant {
		grownCapacity = minimumGrowthCapacityConstant
	}
	if grownCapacity < requiredCapacity {
		grownCapacity = requiredCapacity
	}
	if buffer.limit > 0 && grownCapacity > buffer.limit {
		grownCapacity = buffer.limit
	}

	grownData := make([]byte, usedLength, grownCapacity)
	copy(grownData, buffer.data)
	buffer.data = grownData
	return nil
}

// FreeSpace returns the writable region between the used length and the capacity.
func (buffer *OutputBuffer) FreeSpace() []byte {
	return buffer.data[len(buffer.data):cap(buffer.data)]
}

// Commit extends the used length by count bytes previously written into FreeSpace.
func (buffer *OutputBuffer) Commit(count int) {
	if count <= 0 {
		return
	}
	free := cap(buffer.data) - len(buffer.data)
	if count > free {
		count = free
	}
	buffer.data = buffer.data[:len(buffer.data)+count]
}

// Len reports the number of bytes collected.
func (buffer *OutputBuffer) Len() int {
	return len(buffer.data)
}

// Cap reports the current capacity.
func (buffer *OutputBuffer) Cap() int {
	return cap(buffer.data)
}

// Detach shrinks the collected bytes to their exact length and transfers them to the caller.
// The buffer is empty afterwards.
func (buffer *OutputBuffer) Detach() []byte {
	if len(buffer.data) == 0 {
		buffer.data = nil
		return []byte{}
	}
	exact := make([]byte, len(buffer.data))
	copy(exact, buffer.data)
	buffer.data = nil
	return exact
}

// Discard releases the collected bytes without returning them.
func (buffer *OutputBuffer) Discard() {
	buffer.data = nil
}
