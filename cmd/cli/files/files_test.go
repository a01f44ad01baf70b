package files_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	filescmd "github.com/temirov/sysservices/cmd/cli/files"
	"github.com/temirov/sysservices/internal/pathresolver"
	"github.com/temirov/sysservices/internal/system"
)

const (
	testWorkingDirectoryConstant = "/srv/work"
	testFileContentConstant      = "line one\nline two\n"
)

func newFacadeProvider(testInstance *testing.T) filescmd.FacadeProvider {
	return func() (*system.Facade, error) {
		resolver := pathresolver.NewResolver(pathresolver.WithWorkingDirectoryProvider(func() (string, error) {
			return testWorkingDirectoryConstant, nil
		}))
		return system.NewFacade(zap.NewNop(), system.WithPathResolver(resolver))
	}
}

func executeCommand(testInstance *testing.T, command *cobra.Command, arguments ...string) (string, error) {
	testInstance.Helper()
	var output bytes.Buffer
	command.SetOut(&output)
	command.SetErr(&bytes.Buffer{})
	command.SetArgs(arguments)
	command.SetContext(context.Background())
	executionError := command.Execute()
	return output.String(), executionError
}

func TestResolveCommandPrintsAbsolutePaths(testInstance *testing.T) {
	builder := filescmd.ResolveCommandBuilder{FacadeProvider: newFacadeProvider(testInstance)}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command, "notes.txt", "/etc/hosts")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, testWorkingDirectoryConstant+"/notes.txt\n/etc/hosts\n", output)
}

func TestListCommandListsEntries(testInstance *testing.T) {
	folder := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(folder, "b.txt"), []byte("b"), 0o600))
	require.NoError(testInstance, os.WriteFile(filepath.Join(folder, "a.txt"), []byte("a"), 0o600))
	require.NoError(testInstance, os.Mkdir(filepath.Join(folder, "nested"), 0o700))

	testCases := []struct {
		name           string
		arguments      []string
		expectedOutput string
	}{
		{name: "all", arguments: []string{folder}, expectedOutput: "../\na.txt\nb.txt\nnested/\n"},
		{name: "limited", arguments: []string{"--limit", "2", folder}, expectedOutput: "../\na.txt\n"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			builder := filescmd.ListCommandBuilder{FacadeProvider: newFacadeProvider(testInstance)}
			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)

			output, executionError := executeCommand(testInstance, command, testCase.arguments...)
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, testCase.expectedOutput, output)
		})
	}
}

func TestListCommandLongFormat(testInstance *testing.T) {
	folder := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(folder, "data.bin"), []byte("12345"), 0o640))

	builder := filescmd.ListCommandBuilder{FacadeProvider: newFacadeProvider(testInstance)}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command, "-l", folder)
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "-rw-r-----")
	require.Contains(testInstance, output, "         5 ")
	require.Contains(testInstance, output, "data.bin\n")
}

func TestListCommandMissingFolder(testInstance *testing.T) {
	builder := filescmd.ListCommandBuilder{FacadeProvider: newFacadeProvider(testInstance)}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	_, executionError := executeCommand(testInstance, command, filepath.Join(testInstance.TempDir(), "absent"))
	require.ErrorIs(testInstance, executionError, os.ErrNotExist)
}

func TestCatCommandCopiesFiles(testInstance *testing.T) {
	folder := testInstance.TempDir()
	firstPath := filepath.Join(folder, "first.txt")
	secondPath := filepath.Join(folder, "second.txt")
	require.NoError(testInstance, os.WriteFile(firstPath, []byte(testFileContentConstant), 0o600))
	require.NoError(testInstance, os.WriteFile(secondPath, []byte("tail"), 0o600))

	for _, arguments := range [][]string{{firstPath, secondPath}, {"--lock", firstPath, secondPath}} {
		builder := filescmd.CatCommandBuilder{FacadeProvider: newFacadeProvider(testInstance)}
		command, buildError := builder.Build()
		require.NoError(testInstance, buildError)

		output, executionError := executeCommand(testInstance, command, arguments...)
		require.NoError(testInstance, executionError)
		require.Equal(testInstance, testFileContentConstant+"tail", output)
	}
}

func TestCatCommandMissingFile(testInstance *testing.T) {
	builder := filescmd.CatCommandBuilder{FacadeProvider: newFacadeProvider(testInstance)}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	_, executionError := executeCommand(testInstance, command, filepath.Join(testInstance.TempDir(), "absent.txt"))
	require.ErrorIs(testInstance, executionError, os.ErrNotExist)
}
