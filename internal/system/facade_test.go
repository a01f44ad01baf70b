package system_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/sysservices/internal/bytechannel"
	"github.com/temirov/sysservices/internal/execshell"
	"github.com/temirov/sysservices/internal/pathresolver"
	"github.com/temirov/sysservices/internal/system"
)

const (
	testShellCommandConstant    = "printf hi"
	testShellOutputConstant     = "hi"
	testExecutablePathConstant  = "/usr/local/bin/sysservices"
	testTemporaryPrefixConstant = "batch-"
	testFolderNameConstant      = "nested"
	testFileNameConstant        = "note.txt"
	testFileContentsConstant    = "contents"
)

var errTestEngineFailure = errors.New("engine failure")

type stubCommandEngine struct {
	result   execshell.CommandResult
	runError error
	commands []string
}

func (engine *stubCommandEngine) Run(executionContext context.Context, command []byte) (execshell.CommandResult, error) {
	engine.commands = append(engine.commands, string(command))
	return engine.result, engine.runError
}

func newTestFacade(testInstance *testing.T, options ...system.Option) *system.Facade {
	testInstance.Helper()
	allOptions := append([]system.Option{system.WithCommandEngine(&stubCommandEngine{})}, options...)
	facade, facadeError := system.NewFacade(zap.NewNop(), allOptions...)
	require.NoError(testInstance, facadeError)
	return facade
}

func TestFacadeShell(testInstance *testing.T) {
	testCases := []struct {
		name             string
		engine           *stubCommandEngine
		expectedOutput   []byte
		expectedExitCode int
		expectedError    error
	}{
		{
			name:             "success",
			engine:           &stubCommandEngine{result: execshell.CommandResult{Output: []byte(testShellOutputConstant)}},
			expectedOutput:   []byte(testShellOutputConstant),
			expectedExitCode: 0,
		},
		{
			name:             "non_zero_exit_is_not_an_error",
			engine:           &stubCommandEngine{result: execshell.CommandResult{Output: []byte("no"), ExitCode: 3}},
			expectedOutput:   []byte("no"),
			expectedExitCode: 3,
		},
		{
			name:          "engine_failure",
			engine:        &stubCommandEngine{result: execshell.CommandResult{Output: []byte("partial")}, runError: errTestEngineFailure},
			expectedError: errTestEngineFailure,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			facade, facadeError := system.NewFacade(nil, system.WithCommandEngine(testCase.engine))
			require.NoError(testInstance, facadeError)

			output, exitCode, shellError := facade.Shell(context.Background(), []byte(testShellCommandConstant))
			require.Equal(testInstance, []string{testShellCommandConstant}, testCase.engine.commands)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, shellError, testCase.expectedError)
				require.Nil(testInstance, output)
				require.Zero(testInstance, exitCode)
				return
			}
			require.NoError(testInstance, shellError)
			require.Equal(testInstance, testCase.expectedOutput, output)
			require.Equal(testInstance, testCase.expectedExitCode, exitCode)
		})
	}
}

func TestFacadeShellLogsThroughExecutor(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	engine := &stubCommandEngine{result: execshell.CommandResult{Output: []byte(testShellOutputConstant), RunID: "run-7"}}
	facade, facadeError := system.NewFacade(zap.New(observedCore), system.WithCommandEngine(engine))
	require.NoError(testInstance, facadeError)

	result, shellError := facade.ShellResult(context.Background(), []byte(testShellCommandConstant))
	require.NoError(testInstance, shellError)
	require.Equal(testInstance, "run-7", result.RunID)
	require.Equal(testInstance, 2, observedLogs.Len())
}

func TestFolderOperations(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	facade, facadeError := system.NewFacade(zap.New(observedCore), system.WithCommandEngine(&stubCommandEngine{}))
	require.NoError(testInstance, facadeError)

	rootFolder := testInstance.TempDir()
	folderPath := filepath.Join(rootFolder, testFolderNameConstant)
	filePath := filepath.Join(rootFolder, testFileNameConstant)
	require.NoError(testInstance, os.WriteFile(filePath, []byte(testFileContentsConstant), 0o644))

	require.NoError(testInstance, facade.CreateFolder(folderPath))
	require.True(testInstance, facade.FolderExists(folderPath))
	require.False(testInstance, facade.FileExists(folderPath))
	require.True(testInstance, facade.FileExists(filePath))
	require.False(testInstance, facade.FolderExists(filePath))
	require.Error(testInstance, facade.CreateFolder(folderPath))
	require.Error(testInstance, facade.CreateFolder(filepath.Join(rootFolder, "missing", "child")))

	require.ErrorIs(testInstance, facade.DeleteFolder(filePath), system.ErrNotAFolder)
	require.ErrorIs(testInstance, facade.DeleteFile(folderPath), system.ErrIsAFolder)

	renamedPath := filepath.Join(rootFolder, "renamed.txt")
	require.NoError(testInstance, facade.RenameFileOrFolder(filePath, renamedPath))
	require.False(testInstance, facade.FileExists(filePath))
	require.True(testInstance, facade.FileExists(renamedPath))

	require.NoError(testInstance, facade.DeleteFile(renamedPath))
	require.NoError(testInstance, facade.DeleteFolder(folderPath))
	require.False(testInstance, facade.FolderExists(folderPath))
	require.ErrorIs(testInstance, facade.DeleteFile(renamedPath), os.ErrNotExist)

	require.Equal(testInstance, 3, observedLogs.FilterMessage("folder operation completed").Len())
}

func TestFileNotAccessible(testInstance *testing.T) {
	rootFolder := testInstance.TempDir()
	writablePath := filepath.Join(rootFolder, "writable")
	readOnlyPath := filepath.Join(rootFolder, "read-only")
	require.NoError(testInstance, os.WriteFile(writablePath, nil, 0o644))
	require.NoError(testInstance, os.WriteFile(readOnlyPath, nil, 0o444))

	testCases := []struct {
		name     string
		path     string
		expected bool
	}{
		{name: "missing", path: filepath.Join(rootFolder, "absent"), expected: false},
		{name: "folder", path: rootFolder, expected: true},
		{name: "read_only_file", path: readOnlyPath, expected: true},
		{name: "writable_file", path: writablePath, expected: false},
	}

	facade := newTestFacade(testInstance)
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, facade.FileNotAccessible(testCase.path))
		})
	}
}

func TestChangePermissions(testInstance *testing.T) {
	filePath := filepath.Join(testInstance.TempDir(), testFileNameConstant)
	require.NoError(testInstance, os.WriteFile(filePath, nil, 0o600))

	facade := newTestFacade(testInstance)
	require.NoError(testInstance, facade.ChangePermissions(filePath, 0o640))

	fileInformation, statError := os.Stat(filePath)
	require.NoError(testInstance, statError)
	require.Equal(testInstance, os.FileMode(0o640), fileInformation.Mode().Perm())

	require.Error(testInstance, facade.ChangePermissions(filepath.Join(testInstance.TempDir(), "absent"), 0o600))
}

func TestCurrentFolderRoundTrip(testInstance *testing.T) {
	facade := newTestFacade(testInstance)
	originalFolder, folderError := facade.CurrentFolder()
	require.NoError(testInstance, folderError)
	defer func() {
		require.NoError(testInstance, facade.SetCurrentFolder(originalFolder))
	}()

	targetFolder, resolveError := filepath.EvalSymlinks(testInstance.TempDir())
	require.NoError(testInstance, resolveError)
	require.NoError(testInstance, facade.SetCurrentFolder(targetFolder))

	currentFolder, folderError := facade.CurrentFolder()
	require.NoError(testInstance, folderError)
	require.Equal(testInstance, targetFolder, currentFolder)

	require.Error(testInstance, facade.SetCurrentFolder(filepath.Join(targetFolder, "absent")))
}

func TestListFolderEntries(testInstance *testing.T) {
	rootFolder := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(rootFolder, "b.txt"), []byte("bb"), 0o644))
	require.NoError(testInstance, os.WriteFile(filepath.Join(rootFolder, "a.txt"), []byte("a"), 0o600))
	require.NoError(testInstance, os.Mkdir(filepath.Join(rootFolder, "c"), 0o755))

	facade := newTestFacade(testInstance)

	var listedEntries []system.FolderEntry
	require.NoError(testInstance, facade.ListFolderEntries(rootFolder, func(entry system.FolderEntry) bool {
		listedEntries = append(listedEntries, entry)
		return true
	}))

	require.Len(testInstance, listedEntries, 4)
	require.Equal(testInstance, "..", listedEntries[0].Name)
	require.True(testInstance, listedEntries[0].IsFolder)
	require.Equal(testInstance, "a.txt", listedEntries[1].Name)
	require.Equal(testInstance, int64(1), listedEntries[1].Size)
	require.Equal(testInstance, os.FileMode(0o600), listedEntries[1].Permissions)
	require.False(testInstance, listedEntries[1].IsFolder)
	require.Equal(testInstance, "b.txt", listedEntries[2].Name)
	require.Equal(testInstance, int64(2), listedEntries[2].Size)
	require.Equal(testInstance, "c", listedEntries[3].Name)
	require.True(testInstance, listedEntries[3].IsFolder)
	require.False(testInstance, listedEntries[3].ModificationTime.IsZero())
}

func TestListFolderEntriesStopsWhenVisitorDeclines(testInstance *testing.T) {
	rootFolder := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(rootFolder, "a"), nil, 0o644))
	require.NoError(testInstance, os.WriteFile(filepath.Join(rootFolder, "b"), nil, 0o644))

	facade := newTestFacade(testInstance)

	visitedNames := []string{}
	require.NoError(testInstance, facade.ListFolderEntries(rootFolder, func(entry system.FolderEntry) bool {
		visitedNames = append(visitedNames, entry.Name)
		return len(visitedNames) < 2
	}))
	require.Equal(testInstance, []string{"..", "a"}, visitedNames)

	missingError := facade.ListFolderEntries(filepath.Join(rootFolder, "absent"), func(system.FolderEntry) bool { return true })
	require.ErrorIs(testInstance, missingError, os.ErrNotExist)
}

func TestTemporaryFolder(testInstance *testing.T) {
	testCases := []struct {
		name           string
		value          string
		defined        bool
		expectedFolder string
	}{
		{name: "unset", expectedFolder: "/tmp"},
		{name: "empty", value: "", defined: true, expectedFolder: "/tmp"},
		{name: "trailing_slash", value: "/var/tmp/", defined: true, expectedFolder: "/var/tmp"},
		{name: "plain", value: "/scratch", defined: true, expectedFolder: "/scratch"},
		{name: "root", value: "/", defined: true, expectedFolder: "/"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			facade := newTestFacade(testInstance, system.WithEnvironmentLookup(func(string) (string, bool) {
				return testCase.value, testCase.defined
			}))
			require.Equal(testInstance, testCase.expectedFolder, facade.TemporaryFolder())
		})
	}
}

func TestTemporaryFileNameIsReservedAndRemoved(testInstance *testing.T) {
	temporaryFolder := testInstance.TempDir()
	facade := newTestFacade(testInstance, system.WithEnvironmentLookup(func(string) (string, bool) {
		return temporaryFolder + "/", true
	}))

	temporaryName, nameError := facade.TemporaryFileName()
	require.NoError(testInstance, nameError)
	require.Equal(testInstance, temporaryFolder, filepath.Dir(temporaryName))
	require.Contains(testInstance, filepath.Base(temporaryName), "tmp.")
	require.False(testInstance, facade.FileExists(temporaryName))
}

func TestCreateTemporaryFile(testInstance *testing.T) {
	temporaryFolder := testInstance.TempDir()
	facade := newTestFacade(testInstance)

	channel, temporaryPath, createError := facade.CreateTemporaryFile(temporaryFolder, testTemporaryPrefixConstant)
	require.NoError(testInstance, createError)
	require.Equal(testInstance, bytechannel.ModeUpdate, channel.Mode())
	require.Equal(testInstance, temporaryFolder, filepath.Dir(temporaryPath))
	require.Contains(testInstance, filepath.Base(temporaryPath), testTemporaryPrefixConstant)

	_, writeError := channel.Write([]byte(testFileContentsConstant))
	require.NoError(testInstance, writeError)
	require.NoError(testInstance, channel.Seek(0, bytechannel.SeekStart))
	readBuffer := make([]byte, len(testFileContentsConstant))
	readCount, readError := channel.Read(readBuffer)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, testFileContentsConstant, string(readBuffer[:readCount]))
	require.NoError(testInstance, channel.Close())

	_, _, missingError := facade.CreateTemporaryFile(filepath.Join(temporaryFolder, "absent"), testTemporaryPrefixConstant)
	require.Error(testInstance, missingError)
}

func TestOpenFileAndStandardStreams(testInstance *testing.T) {
	facade := newTestFacade(testInstance)

	_, openError := facade.OpenFile(filepath.Join(testInstance.TempDir(), "absent"), bytechannel.ModeRead)
	require.ErrorIs(testInstance, openError, bytechannel.ErrNotFound)

	errorStream, streamError := facade.OpenStandardStream(2)
	require.NoError(testInstance, streamError)
	require.False(testInstance, errorStream.Buffered())
	require.NoError(testInstance, errorStream.Close())
}

func TestResolvePathUsesResolver(testInstance *testing.T) {
	resolver := pathresolver.NewResolver(pathresolver.WithWorkingDirectoryProvider(func() (string, error) {
		return "/work", nil
	}))
	facade := newTestFacade(testInstance, system.WithPathResolver(resolver))

	require.Equal(testInstance, "/work/a/b", facade.ResolvePath("a/b"))
	require.Equal(testInstance, "/abs", facade.ResolvePath("/abs"))
	require.Equal(testInstance, "x/y", facade.LongFilePath("x/y"))
	require.Equal(testInstance, "x/y", facade.ShortFilePath("x/y"))
}

func TestProcessInformation(testInstance *testing.T) {
	fixedTime := time.Unix(1700000000, 500000000)
	facade := newTestFacade(
		testInstance,
		system.WithClock(func() time.Time { return fixedTime }),
		system.WithExecutablePath(testExecutablePathConstant),
	)

	require.InDelta(testInstance, 1700000000.5, facade.CurrentTime(), 1e-6)
	require.Equal(testInstance, os.Getpid(), facade.ProcessID())
	require.NotEmpty(testInstance, facade.Version())
	require.NotEmpty(testInstance, facade.Machine())
	require.NotEmpty(testInstance, facade.Processor())

	hostName, hostNameError := os.Hostname()
	require.NoError(testInstance, hostNameError)
	require.Equal(testInstance, hostName, facade.HostName())
	require.Equal(testInstance, hostName+":"+testExecutablePathConstant, facade.Address())
}

func TestSleep(testInstance *testing.T) {
	facade := newTestFacade(testInstance)

	require.NoError(testInstance, facade.Sleep(context.Background(), 0))
	require.NoError(testInstance, facade.Sleep(context.Background(), time.Millisecond))

	canceledContext, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(testInstance, facade.Sleep(canceledContext, time.Hour), context.Canceled)
}

func TestTextConversion(testInstance *testing.T) {
	facade := newTestFacade(testInstance)

	converted, convertError := facade.TextConvert([]byte("né€"), "UTF-8", "ISO-8859-1")
	require.NoError(testInstance, convertError)
	require.Equal(testInstance, []byte{'n', 0xE9, '?'}, converted)

	unicodeText, unicodeError := facade.TextConvertToUnicode([]byte("ab"), "ISO-8859-1")
	require.NoError(testInstance, unicodeError)
	require.Len(testInstance, unicodeText, 4)
}
