// Package execshell runs command text through a subshell and collects its output.
//
// A CommandEngine spawns `sh -s`, writes the command followed by a newline to
// the shell's standard input, drains the merged standard output and standard
// error into an OutputBuffer, and reaps the child, killing it when it is still
// running once its output has ended. PollEngine implements the single-threaded
// readiness-wait drain over raw descriptors; StreamEngine implements the same
// contract with a dedicated writer task and reader task over os/exec.
// ShellExecutor layers structured logging and lifecycle observers on top of an
// engine.
package execshell
