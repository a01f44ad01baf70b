package system

// TextConvert re-encodes input between IANA-named charsets, replacing unrepresentable characters with '?'.
func (facade *Facade) TextConvert(input []byte, fromCharset string, toCharset string) ([]byte, error) {
	return facade.converter.Convert(input, fromCharset, toCharset)
}

// TextConvertToUnicode decodes input into UTF-16 in host byte order.
func (facade *Facade) TextConvertToUnicode(input []byte, fromCharset string) ([]byte, error) {
	return facade.converter.ToUnicode(input, fromCharset)
}
