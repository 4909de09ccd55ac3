package session

import (
	"context"
	"strconv"

	"github.com/oma-dm/goclient/internal/dmerrors"
	"github.com/oma-dm/goclient/internal/logger"
	"github.com/oma-dm/goclient/internal/telemetry"
	"github.com/oma-dm/goclient/pkg/handlers"
	"github.com/oma-dm/goclient/pkg/syncml"
)

const devInfoBaseURI = "./DevInfo"

// GetNextPacket composes and returns the next outbound message, per
// message composition steps 1-6:
//
//  1. increment MsgID, reset CmdID to 1
//  2. assemble the header, attaching <Cred> while the client's direction
//     has not yet been accepted
//  3. stamp and emit every queued element in order, counting Alert/
//     Replace/Results as "new work" (toSend)
//  4. close the body with Final always set (no chunked messages)
//  5. move the emitted queue to the acknowledged queue
//  6. transition to END if toSend was zero, so the *next* call returns
//     ErrEnd without composing an empty message
func (s *Session) GetNextPacket(ctx context.Context) (*Packet, error) {
	if s.state == StateNone {
		return nil, dmerrors.NewUsageError("session not started")
	}
	if s.state == StateEnd {
		return nil, dmerrors.ErrEnd
	}

	ctx, span := telemetry.StartSessionSpan(ctx, telemetry.SpanGetNextPacket, s.serverID, s.sessionIDHex, s.messageID+1)
	defer span.End()

	if s.state == StateClientInit || s.state == StateServerInit {
		s.seedInitialAlert()
	}

	if len(s.outboundQueue) == 0 {
		s.state = StateEnd
		return nil, dmerrors.ErrEnd
	}

	s.messageID++
	s.commandID = 0

	toSend := 0
	cmds := make([]syncml.Command, 0, len(s.outboundQueue))
	for _, el := range s.outboundQueue {
		s.commandID++
		stamp(el, s.commandID, s.messageID)
		if countsAsWork(el) {
			toSend++
		}
		cmds = append(cmds, handlers.ToWire(el))
	}

	msg := &syncml.Message{
		Header: s.buildHeader(),
		Body:   syncml.Body{Commands: cmds, Final: true},
	}

	data, err := syncml.Encode(msg)
	if err != nil {
		return nil, dmerrors.NewInternalError(err)
	}

	s.acknowledgedQueue = s.outboundQueue
	s.outboundQueue = nil

	if s.metrics != nil {
		s.metrics.RecordMessageSent(s.serverID, toSend > 0)
	}

	if s.state == StateClientInit || s.state == StateServerInit {
		s.state = StateInSession
	}
	if toSend <= 0 {
		s.state = StateEnd
	}

	logger.InfoCtx(ctx, "message composed",
		logger.SessionID(s.sessionIDHex), logger.MsgID(s.messageID),
		logger.State(s.state.String()))

	return &Packet{Data: data}, nil
}

// seedInitialAlert queues the session-lifecycle alert and device-info
// Replace that open the conversation, for both client- and
// server-initiated sessions.
func (s *Session) seedInitialAlert() {
	code := AlertClientInitiated
	if s.state == StateServerInit {
		code = AlertServerInitiated
	}
	s.outboundQueue = append(s.outboundQueue, &handlers.AlertElement{Code: code})

	if items := s.buildDevInfoReplace(); len(items) > 0 {
		s.outboundQueue = append(s.outboundQueue, &handlers.ReplaceElement{Items: items})
	}
}

// buildDevInfoReplace reads every leaf under ./DevInfo and turns it into a
// ReplaceItem, so the opening message always carries a full device-info
// snapshot.
func (s *Session) buildDevInfoReplace() []syncml.ReplaceItem {
	node, err := s.tree.Get(context.Background(), devInfoBaseURI, selfPrincipal)
	if err != nil {
		return nil
	}

	items := make([]syncml.ReplaceItem, 0, len(node.Children))
	for _, child := range node.Children {
		uri := devInfoBaseURI + "/" + child
		leaf, err := s.tree.Get(context.Background(), uri, selfPrincipal)
		if err != nil || leaf.IsInterior() {
			continue
		}
		items = append(items, syncml.ReplaceItem{
			Target: syncml.LocURI{LocURI: uri},
			Meta:   &syncml.ItemMeta{Format: string(leaf.Format), Type: leaf.MIMEType},
			Data:   string(leaf.Value),
		})
	}
	return items
}

// buildHeader assembles the SyncHdr for the message about to be sent,
// attaching <Cred> only while the client's own direction has not yet been
// accepted by the server.
func (s *Session) buildHeader() syncml.Header {
	hdr := syncml.Header{
		VerDTD:    syncml.VerDTD,
		VerProto:  syncml.VerProto,
		SessionID: s.sessionIDHex,
		MsgID:     strconv.Itoa(s.messageID),
		Target:    syncml.LocURI{LocURI: s.account.ServerURI},
		Source:    syncml.LocURI{LocURI: s.account.ID},
		Meta:      &syncml.HeaderMeta{MaxMsgSize: syncml.MaxMsgSize},
	}

	if s.clientAuthStatus != AuthAccepted && s.account.ToServerCred != nil {
		cred, err := buildCred(*s.account.ToServerCred)
		if err == nil {
			hdr.Cred = cred
		}
	}

	return hdr
}

// stamp assigns cmdID/msgID to el via a type switch, since Element has no
// shared setter (matching the reference's element-kind dispatch).
func stamp(el handlers.Element, cmdID, msgID int) {
	switch v := el.(type) {
	case *handlers.AlertElement:
		v.CmdID, v.MsgID = cmdID, msgID
	case *handlers.ReplaceElement:
		v.CmdID, v.MsgID = cmdID, msgID
	case *handlers.ResultsElement:
		v.CmdID, v.MsgID = cmdID, msgID
	case *handlers.StatusElement:
		v.CmdID, v.MsgID = cmdID, msgID
	}
}

// countsAsWork reports whether el is "new work" for the toSend counter:
// Status elements (acknowledgments) don't count, everything else does.
func countsAsWork(el handlers.Element) bool {
	_, isStatus := el.(*handlers.StatusElement)
	return !isStatus
}

// elementCmdID reads el's CmdID via the same type switch stamp uses to
// write it, since Element has no shared accessor.
func elementCmdID(el handlers.Element) int {
	switch v := el.(type) {
	case *handlers.AlertElement:
		return v.CmdID
	case *handlers.ReplaceElement:
		return v.CmdID
	case *handlers.ResultsElement:
		return v.CmdID
	case *handlers.StatusElement:
		return v.CmdID
	}
	return 0
}
