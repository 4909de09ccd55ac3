package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging across the session core,
// credential engine and DM tree. Use these keys consistently across all
// log statements so downstream log aggregation can query by field.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Session & Message
	// ========================================================================
	KeySessionID = "session_id" // SyncML SessionID (hex)
	KeyMsgID     = "msg_id"     // SyncML MsgID (decimal)
	KeyCmdID     = "cmd_id"     // SyncML CmdID within a message
	KeyCmdRef    = "cmd_ref"    // CmdRef a status/results element refers to
	KeyState     = "state"      // Session state machine state
	KeyServerID  = "server_id"  // DM server identifier (AppAuth ServerID)

	// ========================================================================
	// DM Tree Operations
	// ========================================================================
	KeyURI       = "uri"        // DM tree URI
	KeyURN       = "urn"        // Managed object URN
	KeyOperation = "operation"  // get, replace, exec, alert, ...
	KeyFormat    = "format"     // node format: chr, int, bool, bin, node
	KeyMIMEType  = "mime_type"  // node MIME-like type
	KeyPrincipal = "principal"  // ACL principal evaluated for an operation
	KeyACL       = "acl"        // effective ACL string

	// ========================================================================
	// Credentials & Authentication
	// ========================================================================
	KeyAuthType   = "auth_type"   // BASIC, DIGEST, ...
	KeyAuthStatus = "auth_status" // resulting SyncML status code
	KeyDirection  = "direction"   // toServer / toClient

	// ========================================================================
	// Alerts
	// ========================================================================
	KeyAlertCode  = "alert_code" // 1200, 1201, 1222, 1223, 1226, ...
	KeyCorrelator = "correlator" // generic alert correlator

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Numeric/symbolic error code
	KeyAttempt    = "attempt"     // Retry attempt number
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// SessionID returns a slog.Attr for the SyncML SessionID
func SessionID(id string) slog.Attr {
	return slog.String(KeySessionID, id)
}

// MsgID returns a slog.Attr for the SyncML MsgID
func MsgID(id int) slog.Attr {
	return slog.Int(KeyMsgID, id)
}

// CmdID returns a slog.Attr for a SyncML CmdID
func CmdID(id int) slog.Attr {
	return slog.Int(KeyCmdID, id)
}

// CmdRef returns a slog.Attr for a SyncML CmdRef
func CmdRef(ref int) slog.Attr {
	return slog.Int(KeyCmdRef, ref)
}

// State returns a slog.Attr for the session state
func State(s string) slog.Attr {
	return slog.String(KeyState, s)
}

// ServerID returns a slog.Attr for the DM server identifier
func ServerID(id string) slog.Attr {
	return slog.String(KeyServerID, id)
}

// URI returns a slog.Attr for a DM tree URI
func URI(uri string) slog.Attr {
	return slog.String(KeyURI, uri)
}

// URN returns a slog.Attr for a managed object URN
func URN(urn string) slog.Attr {
	return slog.String(KeyURN, urn)
}

// Operation returns a slog.Attr for the operation kind
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Format returns a slog.Attr for a node format tag
func Format(f string) slog.Attr {
	return slog.String(KeyFormat, f)
}

// MIMEType returns a slog.Attr for a node's MIME-like type
func MIMEType(t string) slog.Attr {
	return slog.String(KeyMIMEType, t)
}

// Principal returns a slog.Attr for the ACL principal being evaluated
func Principal(p string) slog.Attr {
	return slog.String(KeyPrincipal, p)
}

// ACL returns a slog.Attr for an effective ACL string
func ACL(acl string) slog.Attr {
	return slog.String(KeyACL, acl)
}

// AuthType returns a slog.Attr for a credential type
func AuthType(t string) slog.Attr {
	return slog.String(KeyAuthType, t)
}

// AuthStatus returns a slog.Attr for a SyncML auth status code
func AuthStatus(code int) slog.Attr {
	return slog.Int(KeyAuthStatus, code)
}

// Direction returns a slog.Attr for credential direction (toServer/toClient)
func Direction(d string) slog.Attr {
	return slog.String(KeyDirection, d)
}

// AlertCode returns a slog.Attr for a SyncML alert code
func AlertCode(code string) slog.Attr {
	return slog.String(KeyAlertCode, code)
}

// Correlator returns a slog.Attr for a generic alert correlator
func Correlator(c string) slog.Attr {
	return slog.String(KeyCorrelator, c)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a symbolic error code
func ErrorCode(code fmt.Stringer) slog.Attr {
	if code == nil {
		return slog.Attr{}
	}
	return slog.String(KeyErrorCode, code.String())
}

// Attempt returns a slog.Attr for retry attempt number
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}
