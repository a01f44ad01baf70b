// Package batch runs YAML-defined sequences of shell commands through the system facade.
package batch
