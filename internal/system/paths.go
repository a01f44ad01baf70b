package system

// ResolvePath expands a leading tilde and anchors relative paths at the current folder.
func (facade *Facade) ResolvePath(path string) string {
	return facade.resolver.Resolve(path)
}

// LongFilePath returns path unchanged; this platform has no short names.
func (facade *Facade) LongFilePath(path string) string {
	return path
}

// ShortFilePath returns path unchanged; this platform has no short names.
func (facade *Facade) ShortFilePath(path string) string {
	return path
}
