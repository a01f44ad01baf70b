package bytechannel

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	modeReadLabelConstant            = "read"
	modeWriteLabelConstant           = "write"
	modeUpdateLabelConstant          = "update"
	modeAppendLabelConstant          = "append"
	unknownModeTemplateConstant      = "%w: %q"
	unknownModeValueTemplateConstant = "%w: %d"
)

// ErrUnsupportedMode reports an open mode outside Read, Write, Update and Append.
var ErrUnsupportedMode = errors.New("unsupported open mode")

// Mode is the logical open mode of a channel.
type Mode int

// Logical open modes.
const (
	// ModeRead opens an existing file for reading.
	ModeRead Mode = iota
	// ModeWrite creates or truncates a file for writing.
	ModeWrite
	// ModeUpdate opens a file for reading and writing, creating it when missing.
	ModeUpdate
	// ModeAppend creates a file if needed and writes at its end.
	ModeAppend
)

const updateCreateFlags = os.O_RDWR | os.O_CREATE | os.O_TRUNC

var modeOpenFlags = map[Mode]int{
	ModeRead:   os.O_RDONLY,
	ModeWrite:  os.O_WRONLY | os.O_CREATE | os.O_TRUNC,
	ModeUpdate: os.O_RDWR,
	ModeAppend: os.O_WRONLY | os.O_CREATE | os.O_APPEND,
}

var modeLabels = map[Mode]string{
	ModeRead:   modeReadLabelConstant,
	ModeWrite:  modeWriteLabelConstant,
	ModeUpdate: modeUpdateLabelConstant,
	ModeAppend: modeAppendLabelConstant,
}

// ModeLabels lists the accepted mode names in mode order.
func ModeLabels() []string {
	return []string{modeReadLabelConstant, modeWriteLabelConstant, modeUpdateLabelConstant, modeAppendLabelConstant}
}

// ParseMode converts a mode name into a Mode.
func ParseMode(rawMode string) (Mode, error) {
	normalizedMode := strings.ToLower(strings.TrimSpace(rawMode))
	for mode, label := range modeLabels {
		if label == normalizedMode {
			return mode, nil
		}
	}
	return 0, fmt.Errorf(unknownModeTemplateConstant, ErrUnsupportedMode, rawMode)
}

// String returns the mode name.
func (mode Mode) String() string {
	if label, exists := modeLabels[mode]; exists {
		return label
	}
	return fmt.Sprintf("mode(%d)", int(mode))
}

func (mode Mode) openFlags() (int, error) {
	openFlags, exists := modeOpenFlags[mode]
	if !exists {
		return 0, fmt.Errorf(unknownModeValueTemplateConstant, ErrUnsupportedMode, int(mode))
	}
	return openFlags, nil
}
