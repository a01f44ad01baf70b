// Package system exposes host services to an interpreter runtime through a single Facade.
//
// The facade covers shell execution, file channels, folder management, path
// resolution, host name lookups, text conversion and process information. It is
// built once with NewFacade and passed to every consumer.
package system
