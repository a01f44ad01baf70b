// Package utils holds the ambient plumbing shared by the sysservices commands.
//
// ConfigurationLoader layers embedded defaults, files and SYSSERVICES_* environment
// variables through Viper. LoggerFactory builds zap loggers. CommandContextAccessor
// and FlushingWriter carry per-invocation state and output between cobra commands.
package utils
