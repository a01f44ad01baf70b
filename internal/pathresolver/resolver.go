// Package pathresolver turns relative and account-relative paths into absolute ones.
//
// Resolution is purely textual: a leading `~` or `~name` segment is replaced
// with an account home directory, and anything not rooted at `/` is prefixed
// with the working directory. Dot segments and symlinks are left alone.
package pathresolver

import (
	"os"
	"os/user"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant   = "~"
	pathSeparatorConstant = "/"
)

// AccountDirectory resolves account home directories from the system account database.
type AccountDirectory interface {
	// CurrentHomeDirectory returns the home directory of the account running the process.
	CurrentHomeDirectory() (string, error)
	// HomeDirectoryFor returns the home directory of the named account.
	HomeDirectoryFor(accountName string) (string, error)
}

// WorkingDirectoryProvider returns the current working directory.
type WorkingDirectoryProvider func() (string, error)

// SystemAccountDirectory looks accounts up through os/user.
type SystemAccountDirectory struct {
	currentHomeDirectory string
	currentLookupError   error
	currentLookupGuard   sync.Once
}

// CurrentHomeDirectory resolves the running account once and caches the answer.
func (directory *SystemAccountDirectory) CurrentHomeDirectory() (string, error) {
	directory.currentLookupGuard.Do(func() {
		currentAccount, lookupError := user.Current()
		if lookupError != nil {
			directory.currentLookupError = lookupError
			return
		}
		directory.currentHomeDirectory = currentAccount.HomeDir
	})
	return directory.currentHomeDirectory, directory.currentLookupError
}

// HomeDirectoryFor resolves the named account on every call.
func (directory *SystemAccountDirectory) HomeDirectoryFor(accountName string) (string, error) {
	namedAccount, lookupError := user.Lookup(accountName)
	if lookupError != nil {
		return "", lookupError
	}
	return namedAccount.HomeDir, nil
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithAccountDirectory replaces the account database used for tilde expansion.
func WithAccountDirectory(accountDirectory AccountDirectory) Option {
	return func(resolver *Resolver) {
		if accountDirectory != nil {
			resolver.accountDirectory = accountDirectory
		}
	}
}

// WithWorkingDirectoryProvider replaces the working directory lookup.
func WithWorkingDirectoryProvider(provider WorkingDirectoryProvider) Option {
	return func(resolver *Resolver) {
		if provider != nil {
			resolver.workingDirectoryProvider = provider
		}
	}
}

// Resolver resolves paths against account home directories and the working directory.
type Resolver struct {
	accountDirectory         AccountDirectory
	workingDirectoryProvider WorkingDirectoryProvider
}

// NewResolver constructs a Resolver backed by os/user and os.Getwd unless overridden.
func NewResolver(options ...Option) *Resolver {
	resolver := &Resolver{
		accountDirectory:         &SystemAccountDirectory{},
		workingDirectoryProvider: os.Getwd,
	}
	for _, option := range options {
		if option != nil {
			option(resolver)
		}
	}
	return resolver
}

// Resolve expands a leading tilde segment and prefixes relative results with the working directory.
// It never fails: when a lookup fails the affected step leaves the path as it was.
func (resolver *Resolver) Resolve(candidatePath string) string {
	expandedPath := resolver.Expand(candidatePath)
	if strings.HasPrefix(expandedPath, pathSeparatorConstant) {
		return expandedPath
	}

	workingDirectory, workingDirectoryError := resolver.workingDirectoryProvider()
	if workingDirectoryError != nil || len(workingDirectory) == 0 {
		return expandedPath
	}
	return workingDirectory + pathSeparatorConstant + expandedPath
}

// Expand replaces `~` or `~/...` with the current account's home directory and `~name/...`
// with the named account's home directory. Unknown accounts leave the path unchanged.
func (resolver *Resolver) Expand(candidatePath string) string {
	if !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	accountName, remainder := splitTildeSegment(candidatePath)

	var homeDirectory string
	var lookupError error
	if len(accountName) == 0 {
		homeDirectory, lookupError = resolver.accountDirectory.CurrentHomeDirectory()
	} else {
		homeDirectory, lookupError = resolver.accountDirectory.HomeDirectoryFor(accountName)
	}
	if lookupError != nil || len(homeDirectory) == 0 {
		return candidatePath
	}

	if len(remainder) > 0 && homeDirectory != pathSeparatorConstant {
		homeDirectory = strings.TrimSuffix(homeDirectory, pathSeparatorConstant)
	} else if len(remainder) > 0 {
		homeDirectory = ""
	}
	return homeDirectory + remainder
}

// splitTildeSegment splits "~name/rest" into "name" and "/rest".
func splitTildeSegment(candidatePath string) (string, string) {
	withoutTilde := strings.TrimPrefix(candidatePath, tildeSymbolConstant)
	separatorIndex := strings.Index(withoutTilde, pathSeparatorConstant)
	if separatorIndex < 0 {
		return withoutTilde, ""
	}
	return withoutTilde[:separatorIndex], withoutTilde[separatorIndex:]
}
