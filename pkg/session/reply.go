package session

import (
	"context"

	"github.com/oma-dm/goclient/internal/dmerrors"
	"github.com/oma-dm/goclient/internal/logger"
	"github.com/oma-dm/goclient/internal/telemetry"
	"github.com/oma-dm/goclient/pkg/credential"
	"github.com/oma-dm/goclient/pkg/dmtree"
	"github.com/oma-dm/goclient/pkg/handlers"
	"github.com/oma-dm/goclient/pkg/syncml"
)

// headerCmdRef is the reserved CmdRef a header-level Status (Cmd "SyncHdr")
// carries, rather than referencing any queued element.
const headerCmdRef = "0"

// ProcessReply decodes an inbound message, validates the server's header
// credential (if the server direction is still pending), dispatches every
// inbound command to its handler, and resolves inbound Status elements
// against the previously-acknowledged outbound queue — persisting a
// rotated DIGEST nonce back to the tree when a challenge asks for one.
func (s *Session) ProcessReply(ctx context.Context, data []byte) error {
	if s.state == StateNone || s.state == StateEnd {
		return dmerrors.NewUsageError("session not in a state that accepts a reply")
	}

	msg, err := syncml.Decode(data)
	if err != nil {
		return dmerrors.NewInternalError(err)
	}

	ctx, span := telemetry.StartSessionSpan(ctx, telemetry.SpanProcessReply, s.serverID, s.sessionIDHex, s.messageID)
	defer span.End()

	msgRef := parseRef(msg.Header.MsgID)

	if s.serverAuthStatus != AuthAccepted && s.account.ToClientCred != nil && msg.Header.Cred != nil {
		s.verifyServerCred(ctx, *msg.Header.Cred)
	}

	for _, cmd := range msg.Body.Commands {
		s.dispatchInbound(ctx, msgRef, cmd)
	}

	if s.state == StateClientInit || s.state == StateServerInit {
		s.state = StateInSession
	}

	return nil
}

func (s *Session) verifyServerCred(ctx context.Context, cred syncml.Cred) {
	err := credential.Verify(*s.account.ToClientCred, cred.Data)
	accepted := err == nil
	if accepted {
		s.serverAuthStatus = AuthAccepted
	}
	if s.metrics != nil {
		s.metrics.RecordAuthOutcome(string(credential.ToClient), s.account.ToClientCred.Type.String(), accepted)
	}
	logger.InfoCtx(ctx, "server credential verified", logger.Direction(string(credential.ToClient)), logger.AuthStatus(boolToStatus(accepted)))
}

func boolToStatus(accepted bool) int {
	if accepted {
		return handlers.StatusAuthenticationAccepted
	}
	return handlers.StatusUnauthorized
}

// dispatchInbound routes a single inbound command to its handler and
// queues the resulting outbound element(s). The CmdRef on every resulting
// Status/Results is the inbound command's own CmdID, per spec.
func (s *Session) dispatchInbound(ctx context.Context, msgRef int, cmd syncml.Command) {
	principal := s.serverID

	switch v := cmd.(type) {
	case syncml.Get:
		cmdRef := parseRef(v.CmdID)
		for _, item := range v.Item {
			results, status := handlers.HandleGet(ctx, s.tree, principal, msgRef, cmdRef, item.Target.LocURI)
			s.queueInboundResponse(status, results)
		}
	case syncml.Replace:
		cmdRef := parseRef(v.CmdID)
		status := handlers.HandleReplace(ctx, s.tree, principal, msgRef, cmdRef, v.Item)
		s.queueInboundResponse(status, nil)
	case syncml.Exec:
		cmdRef := parseRef(v.CmdID)
		var data []byte
		var uri string
		if len(v.Item) > 0 {
			uri = v.Item[0].Target.LocURI
			data = []byte(v.Item[0].Data)
		}
		status := handlers.HandleExec(ctx, s.tree, principal, msgRef, cmdRef, uri, v.Correlator, data)
		s.queueInboundResponse(status, nil)
	case syncml.Alert:
		s.handleInboundAlert(ctx, msgRef, v)
	case syncml.Status:
		s.handleInboundStatus(ctx, v)
	case syncml.Results:
		// Inbound Results answer a Get this client issued; resolve CmdRef
		// against the queue it should reference before accepting the
		// payload.
		cmdRef := parseRef(v.CmdRef)
		if !s.resolveCmdRef(cmdRef) {
			s.queueInboundResponse(s.commandNotAllowed(msgRef, parseRef(v.CmdID), "Results"), nil)
			return
		}
		logger.DebugCtx(ctx, "inbound results received", logger.CmdRef(cmdRef))
	}
}

// resolveCmdRef reports whether cmdRef names a command this session
// actually emitted, checking acknowledgedQueue first (already-answered
// commands) and then the still-pending outboundQueue, per the
// command-ID-reference rule.
func (s *Session) resolveCmdRef(cmdRef int) bool {
	for _, el := range s.acknowledgedQueue {
		if elementCmdID(el) == cmdRef {
			return true
		}
	}
	for _, el := range s.outboundQueue {
		if elementCmdID(el) == cmdRef {
			return true
		}
	}
	return false
}

// commandNotAllowed builds the Status a session emits when an inbound
// command's CmdRef cannot be resolved against either queue.
func (s *Session) commandNotAllowed(msgRef, cmdRef int, cmd string) *handlers.StatusElement {
	return &handlers.StatusElement{MsgRef: msgRef, CmdRef: cmdRef, Cmd: cmd, Code: handlers.StatusCommandNotAllowed}
}

func (s *Session) queueInboundResponse(status *handlers.StatusElement, results *handlers.ResultsElement) {
	if status != nil {
		s.outboundQueue = append(s.outboundQueue, status)
		if s.metrics != nil {
			s.metrics.RecordCommandDispatched(status.Cmd, status.Code)
		}
	}
	if results != nil {
		s.outboundQueue = append(s.outboundQueue, results)
	}
}

// handleInboundAlert acknowledges any inbound alert, additionally
// reacting to the session-lifecycle codes itself and forwarding anything
// else (the 1100 user-interaction range, and 1226 generic alerts) to the
// UI callback.
func (s *Session) handleInboundAlert(ctx context.Context, msgRef int, alert syncml.Alert) {
	cmdRef := parseRef(alert.CmdID)
	status := handlers.AckAlert(msgRef, cmdRef)
	s.queueInboundResponse(status, nil)

	if isSessionScopeAlert(alert.Data) {
		if alert.Data == AlertSessionAbort {
			s.state = StateAbort
			logger.WarnCtx(ctx, "session aborted by server", logger.AlertCode(alert.Data))
		}
		return
	}

	if s.uiCallback == nil {
		return
	}
	item := &Item{}
	if len(alert.Item) > 0 {
		it := alert.Item[0]
		if it.Source != nil {
			item.Source = it.Source.LocURI
		}
		if it.Meta != nil {
			item.Format, item.Type = it.Meta.Format, it.Meta.Type
		}
		item.Data = it.Data
	}
	s.uiCallback(ctx, alert.Data, item)
}

// handleInboundStatus resolves a Status against the previously emitted
// (acknowledged) queue. A header-level status (CmdRef "0") reports on the
// client's own <Cred>: code 212 accepts it; 401 with a Chal asks for
// DIGEST re-authentication using the Chal's fresh nonce, which is
// persisted back to the account's AAuthData leaf so the next Build call
// picks it up.
func (s *Session) handleInboundStatus(ctx context.Context, status syncml.Status) {
	if status.CmdRef == headerCmdRef {
		s.handleHeaderStatus(ctx, status)
		return
	}

	cmdRef := parseRef(status.CmdRef)
	if !s.resolveCmdRef(cmdRef) {
		s.queueInboundResponse(s.commandNotAllowed(parseRef(status.MsgRef), parseRef(status.CmdID), "Status"), nil)
		return
	}

	// Statuses answering our own Alert/Replace/Results elements carry no
	// further action once resolved beyond observing the code.
	logger.DebugCtx(ctx, "inbound status", logger.CmdRef(cmdRef), logger.AuthStatus(parseRef(status.Data)))
}

func (s *Session) handleHeaderStatus(ctx context.Context, status syncml.Status) {
	code := parseRef(status.Data)
	switch code {
	case handlers.StatusAuthenticationAccepted, handlers.StatusOK:
		s.clientAuthStatus = AuthAccepted
		if s.metrics != nil && s.account.ToServerCred != nil {
			s.metrics.RecordAuthOutcome(string(credential.ToServer), s.account.ToServerCred.Type.String(), true)
		}
	case handlers.StatusUnauthorized:
		if s.metrics != nil && s.account.ToServerCred != nil {
			s.metrics.RecordAuthOutcome(string(credential.ToServer), s.account.ToServerCred.Type.String(), false)
		}
		if status.Chal != nil {
			s.rotateClientNonce(ctx, *status.Chal)
		}
	}
}

// rotateClientNonce decodes the challenge's NextNonce and persists it both
// to the in-memory descriptor and back to the tree's AAuthData leaf, so
// the next outbound Build uses the server-issued nonce.
func (s *Session) rotateClientNonce(ctx context.Context, chal syncml.Chal) {
	if chal.Meta.NextNonce == "" || s.account.ToServerCred == nil || s.account.ToServerCredURI == "" {
		return
	}
	nonce, err := credential.DecodeNonce(chal.Meta.NextNonce)
	if err != nil {
		logger.WarnCtx(ctx, "failed to decode challenge nonce", logger.Err(err))
		return
	}
	s.account.ToServerCred.Data = nonce

	uri := s.account.ToServerCredURI + "/AAuthData"
	if err := s.tree.Set(ctx, uri, nonce, dmtree.FormatBin, "", selfPrincipal); err != nil {
		logger.WarnCtx(ctx, "failed to persist rotated nonce", logger.URI(uri), logger.Err(err))
	}
}
