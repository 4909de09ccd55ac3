package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for OMA-DM session/tree/credential operations, following
// OpenTelemetry semantic conventions where applicable.
const (
	AttrServerID  = "omadm.server_id"
	AttrSessionID = "omadm.session_id"
	AttrMsgID     = "omadm.msg_id"
	AttrCmdID     = "omadm.cmd_id"
	AttrCmdRef    = "omadm.cmd_ref"
	AttrState     = "omadm.state"

	AttrURI       = "omadm.tree.uri"
	AttrURN       = "omadm.tree.urn"
	AttrOperation = "omadm.tree.operation"
	AttrPrincipal = "omadm.tree.principal"

	AttrAuthType   = "omadm.auth.type"
	AttrAuthStatus = "omadm.auth.status"
	AttrDirection  = "omadm.auth.direction"

	AttrAlertCode  = "omadm.alert.code"
	AttrCorrelator = "omadm.alert.correlator"
)

// Span names for session-core operations.
const (
	SpanGetNextPacket  = "session.GetNextPacket"
	SpanProcessReply   = "session.ProcessReply"
	SpanSessionStart   = "session.SessionStart"
	SpanHandleGet      = "handler.Get"
	SpanHandleReplace  = "handler.Replace"
	SpanHandleExec     = "handler.Exec"
	SpanHandleAlert    = "handler.Alert"
	SpanCredentialAuth = "credential.verify"
)

// ServerID returns an attribute for the DM server identifier.
func ServerID(id string) attribute.KeyValue {
	return attribute.String(AttrServerID, id)
}

// SessionID returns an attribute for the SyncML SessionID.
func SessionID(id string) attribute.KeyValue {
	return attribute.String(AttrSessionID, id)
}

// MsgID returns an attribute for the SyncML MsgID.
func MsgID(id int) attribute.KeyValue {
	return attribute.Int(AttrMsgID, id)
}

// CmdID returns an attribute for a SyncML CmdID.
func CmdID(id int) attribute.KeyValue {
	return attribute.Int(AttrCmdID, id)
}

// State returns an attribute for the session state machine state.
func State(s string) attribute.KeyValue {
	return attribute.String(AttrState, s)
}

// URI returns an attribute for a DM tree URI.
func URI(uri string) attribute.KeyValue {
	return attribute.String(AttrURI, uri)
}

// URN returns an attribute for a managed object URN.
func URN(urn string) attribute.KeyValue {
	return attribute.String(AttrURN, urn)
}

// Operation returns an attribute for the DM tree operation kind.
func Operation(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// Principal returns an attribute for the ACL principal being evaluated.
func Principal(p string) attribute.KeyValue {
	return attribute.String(AttrPrincipal, p)
}

// AuthType returns an attribute for a credential type.
func AuthType(t string) attribute.KeyValue {
	return attribute.String(AttrAuthType, t)
}

// AuthStatus returns an attribute for a resulting SyncML status code.
func AuthStatus(code int) attribute.KeyValue {
	return attribute.Int(AttrAuthStatus, code)
}

// Direction returns an attribute for credential direction.
func Direction(d string) attribute.KeyValue {
	return attribute.String(AttrDirection, d)
}

// AlertCode returns an attribute for a SyncML alert code.
func AlertCode(code string) attribute.KeyValue {
	return attribute.String(AttrAlertCode, code)
}

// StartSessionSpan starts a span for a session-core operation, stamping the
// session's identifying triple as attributes.
func StartSessionSpan(ctx context.Context, spanName, serverID, sessionID string, msgID int, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		ServerID(serverID),
		SessionID(sessionID),
		MsgID(msgID),
	}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, spanName, trace.WithAttributes(allAttrs...))
}

// StartTreeSpan starts a span for a DM tree operation.
func StartTreeSpan(ctx context.Context, spanName, uri, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		URI(uri),
		Operation(operation),
	}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, spanName, trace.WithAttributes(allAttrs...))
}
