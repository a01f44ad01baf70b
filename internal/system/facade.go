package system

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/sysservices/internal/execshell"
	"github.com/temirov/sysservices/internal/pathresolver"
	"github.com/temirov/sysservices/internal/textconv"
)

const (
	engineCreationErrorTemplateConstant   = "unable to create command engine: %w"
	executorCreationErrorTemplateConstant = "unable to create shell executor: %w"
)

// HostResolver performs forward and reverse name lookups.
type HostResolver interface {
	LookupHost(lookupContext context.Context, host string) ([]string, error)
	LookupAddr(lookupContext context.Context, address string) ([]string, error)
}

// Option customizes a Facade.
type Option func(*Facade)

// WithCommandEngine replaces the default poll engine.
func WithCommandEngine(engine execshell.CommandEngine) Option {
	return func(facade *Facade) {
		facade.engine = engine
	}
}

// WithShellExecutorOptions forwards options to the shell executor.
func WithShellExecutorOptions(options ...execshell.ShellExecutorOption) Option {
	return func(facade *Facade) {
		facade.executorOptions = append(facade.executorOptions, options...)
	}
}

// WithPathResolver replaces the default path resolver.
func WithPathResolver(resolver *pathresolver.Resolver) Option {
	return func(facade *Facade) {
		if resolver != nil {
			facade.resolver = resolver
		}
	}
}

// WithFileSystem replaces the operating system file system.
func WithFileSystem(fileSystem FileSystem) Option {
	return func(facade *Facade) {
		if fileSystem != nil {
			facade.fileSystem = fileSystem
		}
	}
}

// WithHostResolver replaces net.DefaultResolver.
func WithHostResolver(resolver HostResolver) Option {
	return func(facade *Facade) {
		if resolver != nil {
			facade.hostResolver = resolver
		}
	}
}

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(facade *Facade) {
		if clock != nil {
			facade.clock = clock
		}
	}
}

// WithEnvironmentLookup replaces os.LookupEnv.
func WithEnvironmentLookup(lookup func(string) (string, bool)) Option {
	return func(facade *Facade) {
		if lookup != nil {
			facade.lookupEnvironment = lookup
		}
	}
}

// WithExecutablePath sets the program path reported by Address.
func WithExecutablePath(executablePath string) Option {
	return func(facade *Facade) {
		facade.executablePath = executablePath
	}
}

// Facade is the single entry point to host services.
type Facade struct {
	logger            *zap.Logger
	engine            execshell.CommandEngine
	executorOptions   []execshell.ShellExecutorOption
	executor          *execshell.ShellExecutor
	resolver          *pathresolver.Resolver
	fileSystem        FileSystem
	hostResolver      HostResolver
	converter         *textconv.Converter
	clock             func() time.Time
	lookupEnvironment func(string) (string, bool)
	executablePath    string
}

// NewFacade wires the facade collaborators. A nil logger disables logging.
func NewFacade(logger *zap.Logger, options ...Option) (*Facade, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	facade := &Facade{
		logger:            logger,
		resolver:          pathresolver.NewResolver(),
		fileSystem:        OSFileSystem{},
		hostResolver:      net.DefaultResolver,
		converter:         textconv.NewConverter(),
		clock:             time.Now,
		lookupEnvironment: os.LookupEnv,
	}
	if len(os.Args) > 0 {
		facade.executablePath = os.Args[0]
	}
	for _, option := range options {
		if option != nil {
			option(facade)
		}
	}

	if facade.engine == nil {
		engine, engineError := execshell.NewCommandEngine(execshell.EngineKindPoll, execshell.DefaultEngineOptions())
		if engineError != nil {
			return nil, fmt.Errorf(engineCreationErrorTemplateConstant, engineError)
		}
		facade.engine = engine
	}

	executor, executorError := execshell.NewShellExecutor(logger, facade.engine, facade.executorOptions...)
	if executorError != nil {
		return nil, fmt.Errorf(executorCreationErrorTemplateConstant, executorError)
	}
	facade.executor = executor

	return facade, nil
}

// Shell runs command text through the configured shell and returns its merged output and exit code.
// A failed run returns no output and a non-nil error.
func (facade *Facade) Shell(executionContext context.Context, command []byte) ([]byte, int, error) {
	result, executionError := facade.ShellResult(executionContext, command)
	if executionError != nil {
		return nil, 0, executionError
	}
	return result.Output, result.ExitCode, nil
}

// ShellResult runs command text and returns the complete result, including how the shell terminated.
func (facade *Facade) ShellResult(executionContext context.Context, command []byte) (execshell.CommandResult, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}
	return facade.executor.Execute(executionContext, command)
}
