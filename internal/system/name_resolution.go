package system

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"go.uber.org/zap"
)

const (
	hostLookupErrorTemplateConstant    = "resolve host %s: %w"
	addressLookupErrorTemplateConstant = "resolve address %s: %w"
	invalidAddressTemplateConstant     = "%w: %q"
	fullyQualifiedSuffixConstant       = "."
	lookupFailedMessageConstant        = "name lookup failed"
	lookupSubjectLogFieldConstant      = "subject"
)

var (
	// ErrInvalidAddress reports an address that is not a dotted IPv4 literal.
	ErrInvalidAddress = errors.New("invalid IPv4 address")
	// ErrNoAddresses reports a host name without IPv4 addresses.
	ErrNoAddresses = errors.New("no IPv4 addresses")
	// ErrNoHostName reports an address without a registered host name.
	ErrNoHostName = errors.New("no host name")
)

// HostNameToAddress resolves hostName and reports each IPv4 address in dotted form.
// Reporting stops early when visit returns false.
func (facade *Facade) HostNameToAddress(lookupContext context.Context, hostName string, visit func(string) bool) error {
	if lookupContext == nil {
		lookupContext = context.Background()
	}
	resolvedAddresses, lookupError := facade.hostResolver.LookupHost(lookupContext, hostName)
	if lookupError != nil {
		facade.logLookupFailure(hostName, lookupError)
		return fmt.Errorf(hostLookupErrorTemplateConstant, hostName, lookupError)
	}

	reportedCount := 0
	for _, resolvedAddress := range resolvedAddresses {
		parsedAddress := net.ParseIP(resolvedAddress)
		if parsedAddress == nil || parsedAddress.To4() == nil {
			continue
		}
		reportedCount++
		if !visit(parsedAddress.To4().String()) {
			return nil
		}
	}
	if reportedCount == 0 {
		return fmt.Errorf(hostLookupErrorTemplateConstant, hostName, ErrNoAddresses)
	}
	return nil
}

// AddressToHostName reports the primary host name registered for a dotted IPv4 address.
func (facade *Facade) AddressToHostName(lookupContext context.Context, address string, visit func(string) bool) error {
	parsedAddress := net.ParseIP(strings.TrimSpace(address))
	if parsedAddress == nil || parsedAddress.To4() == nil {
		return fmt.Errorf(invalidAddressTemplateConstant, ErrInvalidAddress, address)
	}
	if lookupContext == nil {
		lookupContext = context.Background()
	}

	hostNames, lookupError := facade.hostResolver.LookupAddr(lookupContext, parsedAddress.To4().String())
	if lookupError != nil {
		facade.logLookupFailure(address, lookupError)
		return fmt.Errorf(addressLookupErrorTemplateConstant, address, lookupError)
	}
	if len(hostNames) == 0 {
		return fmt.Errorf(addressLookupErrorTemplateConstant, address, ErrNoHostName)
	}
	visit(strings.TrimSuffix(hostNames[0], fullyQualifiedSuffixConstant))
	return nil
}

func (facade *Facade) logLookupFailure(subject string, lookupError error) {
	facade.logger.Debug(lookupFailedMessageConstant, zap.String(lookupSubjectLogFieldConstant, subject), zap.Error(lookupError))
}
