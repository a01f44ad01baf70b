package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/sysservices/internal/execshell"
	"github.com/temirov/sysservices/internal/ui"
)

const (
	testCommandConstant                    = "ls -l /var/log"
	testExecutionFailureReasonConstant     = "pipe creation failed"
	testFailureOutputConstant              = "ls: cannot access '/var/log': Permission denied"
	testStartMessageExpectationConstant    = "Running " + testCommandConstant
	testSuccessMessageExpectationConstant  = "Completed " + testCommandConstant
	testFailureMessageExpectationConstant  = testCommandConstant + " failed with exit code 2: " + testFailureOutputConstant
	testKilledMessageExpectationConstant   = testCommandConstant + " was killed (exit code 137)"
	testExecutionFailureMessageExpectation = testCommandConstant + " failed: " + testExecutionFailureReasonConstant
	testRunIdentifierConstant              = "run-1"
)

func TestConsoleCommandEventLoggerEmitsMessages(testInstance *testing.T) {
	command := []byte(testCommandConstant)

	testCases := []struct {
		name            string
		invoke          func(logger *ui.ConsoleCommandEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: "command_started",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(command)
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testStartMessageExpectationConstant,
		},
		{
			name: "command_completed_success",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(command, execshell.CommandResult{ExitCode: 0, Termination: execshell.TerminationExited})
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testSuccessMessageExpectationConstant,
		},
		{
			name: "command_completed_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(command, execshell.CommandResult{ExitCode: 2, Termination: execshell.TerminationExited, Output: []byte(testFailureOutputConstant + "\n")})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: testFailureMessageExpectationConstant,
		},
		{
			name: "command_killed",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(command, execshell.CommandResult{ExitCode: 137, Termination: execshell.TerminationKilled})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: testKilledMessageExpectationConstant,
		},
		{
			name: "command_execution_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandExecutionFailed(command, errors.New(testExecutionFailureReasonConstant))
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: testExecutionFailureMessageExpectation,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore))

			testCase.invoke(eventLogger)

			entries := observedLogs.All()
			require.Len(testInstance, entries, 1)
			require.Equal(testInstance, testCase.expectedLevel, entries[0].Level)
			require.Equal(testInstance, testCase.expectedMessage, entries[0].Message)
			require.Empty(testInstance, entries[0].Context)
		})
	}
}

func TestConsoleCommandEventLoggerRunIdentifiers(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore), ui.WithRunIdentifiers(true))

	eventLogger.CommandCompleted([]byte(testCommandConstant), execshell.CommandResult{RunID: testRunIdentifierConstant})

	entries := observedLogs.All()
	require.Len(testInstance, entries, 1)
	require.Equal(testInstance, testRunIdentifierConstant, entries[0].ContextMap()["run_id"])
}

func TestConsoleCommandEventLoggerNilReceiver(testInstance *testing.T) {
	var eventLogger *ui.ConsoleCommandEventLogger
	require.NotPanics(testInstance, func() {
		eventLogger.CommandStarted([]byte(testCommandConstant))
		eventLogger.CommandCompleted([]byte(testCommandConstant), execshell.CommandResult{})
		eventLogger.CommandExecutionFailed([]byte(testCommandConstant), nil)
	})
}
