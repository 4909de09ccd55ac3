package handlers

import "github.com/oma-dm/goclient/internal/dmerrors"

// SyncML DM status codes this client produces. Only the subset the core
// ever returns is named; the rest of the OMA-DM status space is passthrough
// (servers may send others, this client only needs to react to auth codes).
const (
	StatusOK                     = 200
	StatusAuthenticationAccepted = 212
	StatusUnauthorized           = 401
	StatusForbidden              = 403
	StatusNotFound               = 404
	StatusCommandFailed          = 500
	StatusNotImplemented         = 501
	StatusOptionalFeature        = 406
	StatusCommandNotAllowed      = 405
)

// StatusCodeFor maps a dmerrors result to the SyncML status code a Status
// element reports for it.
func StatusCodeFor(err error) int {
	if err == nil {
		return StatusOK
	}
	switch dmerrors.CodeOf(err) {
	case dmerrors.NotFound:
		return StatusNotFound
	case dmerrors.NotAllowed:
		return StatusForbidden
	case dmerrors.InvalidCredentials:
		return StatusUnauthorized
	case dmerrors.AuthenticationAccepted:
		return StatusAuthenticationAccepted
	case dmerrors.CommandNotImplemented:
		return StatusNotImplemented
	case dmerrors.OptionalFeatureNotSupported:
		return StatusOptionalFeature
	case dmerrors.CommandFailed:
		return StatusCommandFailed
	default:
		return StatusCommandFailed
	}
}
