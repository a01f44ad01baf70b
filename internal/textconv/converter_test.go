package textconv_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/sysservices/internal/textconv"
)

const (
	testUTF8CharsetConstant    = "UTF-8"
	testLatin1CharsetConstant  = "ISO-8859-1"
	testWindowsCharsetConstant = "windows-1252"
	testMacCharsetConstant     = "macintosh"
)

func TestConvert(testInstance *testing.T) {
	testCases := []struct {
		name           string
		input          []byte
		fromCharset    string
		toCharset      string
		expectedOutput []byte
	}{
		{name: "utf8_to_latin1", input: []byte("café"), fromCharset: testUTF8CharsetConstant, toCharset: testLatin1CharsetConstant, expectedOutput: []byte{'c', 'a', 'f', 0xE9}},
		{name: "latin1_to_utf8", input: []byte{'c', 'a', 'f', 0xE9}, fromCharset: testLatin1CharsetConstant, toCharset: testUTF8CharsetConstant, expectedOutput: []byte("café")},
		{name: "unmappable_becomes_question_mark", input: []byte("a€b日"), fromCharset: testUTF8CharsetConstant, toCharset: testLatin1CharsetConstant, expectedOutput: []byte("a?b?")},
		{name: "euro_in_windows_1252", input: []byte("€"), fromCharset: testUTF8CharsetConstant, toCharset: testWindowsCharsetConstant, expectedOutput: []byte{0x80}},
		{name: "mac_roman_to_utf8", input: []byte{0x8E}, fromCharset: testMacCharsetConstant, toCharset: testUTF8CharsetConstant, expectedOutput: []byte("é")},
		{name: "case_insensitive_names", input: []byte("plain"), fromCharset: "utf-8", toCharset: "iso-8859-1", expectedOutput: []byte("plain")},
		{name: "empty_input", input: nil, fromCharset: testUTF8CharsetConstant, toCharset: testLatin1CharsetConstant, expectedOutput: []byte{}},
	}

	converter := textconv.NewConverter()
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			output, convertError := converter.Convert(testCase.input, testCase.fromCharset, testCase.toCharset)
			require.NoError(testInstance, convertError)
			require.Equal(testInstance, testCase.expectedOutput, output)
		})
	}
}

func TestConvertRejectsUnknownCharset(testInstance *testing.T) {
	converter := textconv.NewConverter()

	_, fromError := converter.Convert([]byte("x"), "no-such-charset", testUTF8CharsetConstant)
	require.ErrorIs(testInstance, fromError, textconv.ErrUnknownCharset)

	_, toError := converter.Convert([]byte("x"), testUTF8CharsetConstant, "no-such-charset")
	require.ErrorIs(testInstance, toError, textconv.ErrUnknownCharset)
}

func TestToUnicodeUsesHostByteOrder(testInstance *testing.T) {
	converter := textconv.NewConverter()

	output, convertError := converter.ToUnicode([]byte{'A', 0xE9}, testLatin1CharsetConstant)
	require.NoError(testInstance, convertError)
	require.Len(testInstance, output, 4)
	require.Equal(testInstance, uint16('A'), binary.NativeEndian.Uint16(output[0:2]))
	require.Equal(testInstance, uint16(0xE9), binary.NativeEndian.Uint16(output[2:4]))

	emptyOutput, emptyError := converter.ToUnicode(nil, testLatin1CharsetConstant)
	require.NoError(testInstance, emptyError)
	require.Empty(testInstance, emptyOutput)
}

func TestToUnicodeEncodesSupplementaryPlaneAsSurrogatePair(testInstance *testing.T) {
	converter := textconv.NewConverter()

	output, convertError := converter.ToUnicode([]byte("😀"), testUTF8CharsetConstant)
	require.NoError(testInstance, convertError)
	require.Len(testInstance, output, 4)
	require.Equal(testInstance, uint16(0xD83D), binary.NativeEndian.Uint16(output[0:2]))
	require.Equal(testInstance, uint16(0xDE00), binary.NativeEndian.Uint16(output[2:4]))
}
