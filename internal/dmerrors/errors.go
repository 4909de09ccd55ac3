// Package dmerrors provides the symbolic error taxonomy shared by the
// DM tree, account resolver, credential engine and session core. This is a
// leaf package with no internal dependencies so every other package can
// import it without creating an import cycle.
package dmerrors

import (
	"errors"
	"fmt"
)

// Code represents the kind of error a DM operation failed with.
type Code int

const (
	// Usage indicates a null handle, a missing required argument, or a
	// call made in a state that does not permit it.
	Usage Code = iota + 1

	// Memory indicates an allocation failure.
	Memory

	// DeviceFull indicates the DM tree or a managed object has exhausted
	// its storage capacity.
	DeviceFull

	// Internal indicates a codec/transport contract violation.
	Internal

	// NotFound indicates the requested URI or subtree does not exist.
	NotFound

	// NotAllowed indicates an ACL denial or a write to a read-only node.
	NotAllowed

	// InvalidCredentials indicates credential verification failed.
	InvalidCredentials

	// AuthenticationAccepted is a positive authentication outcome, not a
	// failure; it is represented as a Code so callers can log and branch
	// on it the same way they do on the failure codes.
	AuthenticationAccepted

	// CommandFailed indicates a managed-object-level failure, such as a
	// malformed IMEI during secret derivation.
	CommandFailed

	// CommandNotImplemented indicates the managed object does not
	// implement the requested capability.
	CommandNotImplemented

	// OptionalFeatureNotSupported indicates an optional SyncML feature the
	// client does not implement.
	OptionalFeatureNotSupported

	// End signals that the session has naturally finished. Not a failure;
	// wrapped in ErrEnd so callers can test for it with errors.Is.
	End
)

// String returns a human-readable name for the error code.
func (c Code) String() string {
	switch c {
	case Usage:
		return "Usage"
	case Memory:
		return "Memory"
	case DeviceFull:
		return "DeviceFull"
	case Internal:
		return "Internal"
	case NotFound:
		return "NotFound"
	case NotAllowed:
		return "NotAllowed"
	case InvalidCredentials:
		return "InvalidCredentials"
	case AuthenticationAccepted:
		return "AuthenticationAccepted"
	case CommandFailed:
		return "CommandFailed"
	case CommandNotImplemented:
		return "CommandNotImplemented"
	case OptionalFeatureNotSupported:
		return "OptionalFeatureNotSupported"
	case End:
		return "End"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Error is a DM operation error carrying a symbolic code, a human-readable
// message, and the URI the error occurred at, if any.
type Error struct {
	Code    Code
	Message string
	URI     string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.URI != "" {
		return fmt.Sprintf("%s: %s (uri: %s)", e.Code, e.Message, e.URI)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is lets errors.Is match on Code alone when the target is a *Error with no
// Message/URI set, and lets errors.Is(err, ErrEnd) work for the End code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ErrEnd is the sentinel session-complete signal. GetNextPacket returns it
// (wrapped as *Error{Code: End}) when there is nothing left to send.
var ErrEnd = &Error{Code: End, Message: "session complete"}

// ============================================================================
// Factory functions
// ============================================================================

// NewUsageError creates a Usage error.
func NewUsageError(message string) *Error {
	return &Error{Code: Usage, Message: message}
}

// NewNotFoundError creates a NotFound error for the given URI.
func NewNotFoundError(uri string) *Error {
	return &Error{Code: NotFound, Message: "uri not found", URI: uri}
}

// NewNotAllowedError creates a NotAllowed error for the given URI and
// principal.
func NewNotAllowedError(uri, principal string) *Error {
	return &Error{
		Code:    NotAllowed,
		Message: fmt.Sprintf("principal %q not authorized", principal),
		URI:     uri,
	}
}

// NewInvalidCredentialsError creates an InvalidCredentials error.
func NewInvalidCredentialsError(reason string) *Error {
	return &Error{Code: InvalidCredentials, Message: reason}
}

// NewCommandFailedError creates a CommandFailed error for the given URI.
func NewCommandFailedError(uri, reason string) *Error {
	return &Error{Code: CommandFailed, Message: reason, URI: uri}
}

// NewCommandNotImplementedError creates a CommandNotImplemented error for
// the given URI.
func NewCommandNotImplementedError(uri string) *Error {
	return &Error{Code: CommandNotImplemented, Message: "capability not implemented", URI: uri}
}

// NewOptionalFeatureNotSupportedError creates an
// OptionalFeatureNotSupported error for the given URI.
func NewOptionalFeatureNotSupportedError(uri string) *Error {
	return &Error{Code: OptionalFeatureNotSupported, Message: "optional feature not supported", URI: uri}
}

// NewInternalError creates an Internal error wrapping a lower-level cause.
func NewInternalError(cause error) *Error {
	msg := "internal error"
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Code: Internal, Message: msg}
}

// NewDeviceFullError creates a DeviceFull error for the given URI.
func NewDeviceFullError(uri string) *Error {
	return &Error{Code: DeviceFull, Message: "capacity exhausted", URI: uri}
}

// ============================================================================
// Error-kind checking helpers
// ============================================================================

// CodeOf returns the Code carried by err, or 0 if err is not a *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// IsNotFound returns true if err is a NotFound error.
func IsNotFound(err error) bool {
	return CodeOf(err) == NotFound
}

// IsNotAllowed returns true if err is a NotAllowed error.
func IsNotAllowed(err error) bool {
	return CodeOf(err) == NotAllowed
}

// IsEnd returns true if err signals natural session completion.
func IsEnd(err error) bool {
	return CodeOf(err) == End
}
