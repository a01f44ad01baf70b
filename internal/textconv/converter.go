// Package textconv converts text between IANA-named character sets.
package textconv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

const (
	unknownCharsetTemplateConstant    = "%w: %q"
	conversionFailureTemplateConstant = "%w: %s to %s: %w"
	replacementCharacterConstant      = '?'
)

var (
	// ErrUnknownCharset reports a charset name the IANA index does not know or cannot encode.
	ErrUnknownCharset = errors.New("unknown charset")
	// ErrConversionFailed reports that the input could not be decoded from its charset.
	ErrConversionFailed = errors.New("text conversion failed")
)

// Converter resolves charset names through an IANA index.
type Converter struct {
	index *ianaindex.Index
}

// NewConverter returns a Converter backed by the IANA registry.
func NewConverter() *Converter {
	return &Converter{index: ianaindex.IANA}
}

// Lookup returns the encoding registered under charsetName.
func (converter *Converter) Lookup(charsetName string) (encoding.Encoding, error) {
	trimmedName := strings.TrimSpace(charsetName)
	resolvedEncoding, lookupError := converter.index.Encoding(trimmedName)
	if lookupError != nil || resolvedEncoding == nil {
		return nil, fmt.Errorf(unknownCharsetTemplateConstant, ErrUnknownCharset, charsetName)
	}
	return resolvedEncoding, nil
}

// Convert re-encodes input from one charset to another. Characters the target cannot represent become '?'.
func (converter *Converter) Convert(input []byte, fromCharset string, toCharset string) ([]byte, error) {
	sourceEncoding, sourceError := converter.Lookup(fromCharset)
	if sourceError != nil {
		return nil, sourceError
	}
	targetEncoding, targetError := converter.Lookup(toCharset)
	if targetError != nil {
		return nil, targetError
	}
	if len(input) == 0 {
		return []byte{}, nil
	}

	decoded, decodeError := sourceEncoding.NewDecoder().Bytes(input)
	if decodeError != nil {
		return nil, fmt.Errorf(conversionFailureTemplateConstant, ErrConversionFailed, fromCharset, toCharset, decodeError)
	}
	return encodeWithReplacement(targetEncoding, decoded), nil
}

// ToUnicode decodes input from its charset into UTF-16 code units in host byte order.
func (converter *Converter) ToUnicode(input []byte, fromCharset string) ([]byte, error) {
	sourceEncoding, sourceError := converter.Lookup(fromCharset)
	if sourceError != nil {
		return nil, sourceError
	}
	if len(input) == 0 {
		return []byte{}, nil
	}

	decoded, decodeError := sourceEncoding.NewDecoder().Bytes(input)
	if decodeError != nil {
		return nil, fmt.Errorf(conversionFailureTemplateConstant, ErrConversionFailed, fromCharset, HostUTF16Name(), decodeError)
	}
	return encodeWithReplacement(hostUTF16(), decoded), nil
}

// HostUTF16Name names the UTF-16 variant ToUnicode produces on this host.
func HostUTF16Name() string {
	if hostIsLittleEndian() {
		return "UTF-16LE"
	}
	return "UTF-16BE"
}

func hostUTF16() encoding.Encoding {
	if hostIsLittleEndian() {
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	}
	return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
}

func hostIsLittleEndian() bool {
	return binary.NativeEndian.Uint16([]byte{1, 0}) == 1
}

// encodeWithReplacement encodes UTF-8 text, substituting '?' for every rune the target rejects.
func encodeWithReplacement(targetEncoding encoding.Encoding, utf8Text []byte) []byte {
	if encoded, encodeError := targetEncoding.NewEncoder().Bytes(utf8Text); encodeError == nil {
		return encoded
	}

	encoder := targetEncoding.NewEncoder()
	converted := make([]byte, 0, len(utf8Text))
	for remaining := utf8Text; len(remaining) > 0; {
		_, runeWidth := utf8.DecodeRune(remaining)
		encodedRune, encodeError := encoder.Bytes(remaining[:runeWidth])
		if encodeError != nil {
			converted = append(converted, replacementCharacterConstant)
		} else {
			converted = append(converted, encodedRune...)
		}
		remaining = remaining[runeWidth:]
	}
	return converted
}
