package execshell_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/sysservices/internal/execshell"
)

const (
	testBufferUnboundedCaseNameConstant = "unbounded_growth"
	testBufferLimitedCaseNameConstant   = "clamped_to_limit"
	testBufferExhaustedCaseNameConstant = "exhausted_limit"
)

func TestOutputBufferReserve(testInstance *testing.T) {
	testCases := []struct {
		name             string
		limit            int
		prefillLength    int
		reserveLength    int
		expectError      error
		minimumFreeSpace int
		maximumCapacity  int
	}{
		{
			name:             testBufferUnboundedCaseNameConstant,
			limit:            0,
			prefillLength:    100,
			reserveLength:    4096,
			minimumFreeSpace: 4096,
		},
		{
			name:             testBufferLimitedCaseNameConstant,
			limit:            1000,
			prefillLength:    100,
			reserveLength:    4096,
			minimumFreeSpace: 900,
			maximumCapacity:  1000,
		},
		{
			name:            testBufferExhaustedCaseNameConstant,
			limit:           100,
			prefillLength:   100,
			reserveLength:   1,
			expectError:     execshell.ErrOutputLimitExceeded,
			maximumCapacity: 100,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			buffer := execshell.NewOutputBuffer(testCase.limit)
			require.NoError(testInstance, buffer.Reserve(testCase.prefillLength))
			written := copy(buffer.FreeSpace(), make([]byte, testCase.prefillLength))
			buffer.Commit(written)
			require.Equal(testInstance, testCase.prefillLength, buffer.Len())

			reserveError := buffer.Reserve(testCase.reserveLength)
			if testCase.expectError != nil {
				require.ErrorIs(testInstance, reserveError, testCase.expectError)
			} else {
				require.NoError(testInstance, reserveError)
				require.GreaterOrEqual(testInstance, len(buffer.FreeSpace()), testCase.minimumFreeSpace)
			}
			if testCase.maximumCapacity > 0 {
				require.LessOrEqual(testInstance, buffer.Cap(), testCase.maximumCapacity)
			}
			require.LessOrEqual(testInstance, buffer.Len(), buffer.Cap())
		})
	}
}

func TestOutputBufferDetachTransfersExactBytes(testInstance *testing.T) {
	buffer := execshell.NewOutputBuffer(0)
	payload := []byte("collected output")

	require.NoError(testInstance, buffer.Reserve(len(payload)))
	buffer.Commit(copy(buffer.FreeSpace(), payload))

	detached := buffer.Detach()
	require.Equal(testInstance, payload, detached)
	require.Equal(testInstance, len(payload), cap(detached))
	require.Zero(testInstance, buffer.Len())
}

func TestOutputBufferDetachEmptyReturnsEmptySlice(testInstance *testing.T) {
	buffer := execshell.NewOutputBuffer(0)

	detached := buffer.Detach()
	require.NotNil(testInstance, detached)
	require.Empty(testInstance, detached)
}

func TestOutputBufferCommitNeverExceedsCapacity(testInstance *testing.T) {
	buffer := execshell.NewOutputBuffer(0)
	require.NoError(testInstance, buffer.Reserve(10))

	buffer.Commit(buffer.Cap() + 50)
	require.Equal(testInstance, buffer.Cap(), buffer.Len())
}
