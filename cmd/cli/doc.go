// Package cli builds the sysservices command-line interface: the Cobra root
// command, layered configuration, zap logging and the subcommands that drive
// the system facade.
package cli
