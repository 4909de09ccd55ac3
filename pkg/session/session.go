// Package session implements the OMA-DM management session core: the
// state machine, message composition, reply ingestion and command
// dispatch that drive a SyncML DM conversation with a server, one
// GetNextPacket/ProcessReply pair at a time.
package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/oma-dm/goclient/internal/dmerrors"
	"github.com/oma-dm/goclient/internal/logger"
	"github.com/oma-dm/goclient/pkg/account"
	"github.com/oma-dm/goclient/pkg/credential"
	"github.com/oma-dm/goclient/pkg/dmtree"
	"github.com/oma-dm/goclient/pkg/handlers"
	"github.com/oma-dm/goclient/pkg/metrics"
	"github.com/oma-dm/goclient/pkg/syncml"
)

// selfPrincipal is used for the device's own reads of its tree (device
// info, account lookups) where no server is yet acting as principal.
const selfPrincipal = "self"

// Item is a generic alert payload, used by AddGenericAlert and forwarded
// to the UI callback for user-interaction alerts (the 1100 range).
type Item struct {
	Source string
	Format string
	Type   string
	Data   string
}

// UICallback is invoked for inbound alerts outside the session-lifecycle
// codes (1200/1201/1222/1223): typically user-interaction prompts in the
// 1100 range.
type UICallback func(ctx context.Context, code string, item *Item)

// Packet is a composed outbound message ready for transport.
type Packet struct {
	Data []byte
}

// Session is a single OMA-DM management session handle. Not safe for
// concurrent use by multiple goroutines at once (see SPEC_FULL.md §5).
type Session struct {
	tree    *dmtree.Tree
	account *account.Account
	metrics metrics.SessionMetrics

	uiCallback UICallback

	state    State
	serverID string

	sessionIDInt int
	sessionIDHex string
	messageID    int
	commandID    int

	clientAuthStatus AuthStatus
	serverAuthStatus AuthStatus

	outboundQueue     []handlers.Element
	acknowledgedQueue []handlers.Element

	startTime time.Time
}

// SessionInit creates a new, unbound session. useWbxml is accepted for API
// parity with the reference but must be false: this client's codec
// (pkg/syncml) implements only the XML wire form.
func SessionInit(useWbxml bool) (*Session, error) {
	if useWbxml {
		return nil, dmerrors.NewCommandNotImplementedError("wbxml")
	}
	return &Session{
		tree:  dmtree.New(),
		state: StateNone,
	}, nil
}

// New builds a session around an already-populated tree, for callers (and
// tests) that construct the tree directly rather than through AddMO.
func New(tree *dmtree.Tree, m metrics.SessionMetrics) *Session {
	return &Session{tree: tree, metrics: m, state: StateNone}
}

// SetUICallback registers fn to receive forwarded user-interaction alerts.
func (s *Session) SetUICallback(fn UICallback) {
	s.uiCallback = fn
}

// AddMO registers a managed object plugin with the session's tree.
func (s *Session) AddMO(ctx context.Context, mo dmtree.ManagedObject) error {
	return s.tree.AddPlugin(ctx, mo)
}

// GetURIList returns the base URIs of every registered MO subtree
// advertising urn.
func (s *Session) GetURIList(ctx context.Context, urn string) ([]string, error) {
	return s.tree.ListURI(ctx, urn)
}

// SessionStart binds the session to serverID/sessionID, resolving the
// account and credential directions from the tree.
func (s *Session) SessionStart(ctx context.Context, serverID string, sessionID int) error {
	if err := s.tree.CheckMandatoryMO(); err != nil {
		return err
	}

	acct, err := account.Resolve(ctx, s.tree, serverID, selfPrincipal)
	if err != nil {
		return err
	}

	s.account = acct
	s.serverID = serverID
	s.tree.SetServer(serverID)
	s.sessionIDInt = sessionID
	s.sessionIDHex = fmt.Sprintf("%x", sessionID)
	s.messageID = 0
	s.commandID = 0
	s.startTime = time.Now()

	s.clientAuthStatus = AuthAccepted
	if acct.ToServerCred != nil {
		s.clientAuthStatus = AuthPending
	}
	s.serverAuthStatus = AuthAccepted
	if acct.ToClientCred != nil {
		s.serverAuthStatus = AuthPending
	}

	s.state = StateClientInit
	logger.InfoCtx(ctx, "session started", logger.ServerID(serverID), logger.SessionID(s.sessionIDHex), logger.State(s.state.String()))
	return nil
}

// SessionStartOnAlert decodes a Package 0 server trigger, starts the
// session against the server/session IDs it carries, and validates the
// trigger's credential (if any) against the account's toClientCred before
// transitioning to SERVER_INIT.
func (s *Session) SessionStartOnAlert(ctx context.Context, pkg0 []byte) (flags byte, bodyOffset int, err error) {
	pkt, err := syncml.DecodePackage0(pkg0)
	if err != nil {
		return 0, 0, err
	}

	if err := s.SessionStart(ctx, pkt.ServerID, pkt.SessionID); err != nil {
		return 0, 0, err
	}

	if s.account.ToClientCred != nil && pkt.BodyOffset < len(pkg0) {
		received := string(pkg0[pkt.BodyOffset:])
		if verr := credential.Verify(*s.account.ToClientCred, received); verr != nil {
			s.state = StateAbort
			return pkt.Flags, pkt.BodyOffset, verr
		}
		s.serverAuthStatus = AuthAccepted
	}

	s.state = StateServerInit
	return pkt.Flags, pkt.BodyOffset, nil
}

// AddAlert queues a bare session-lifecycle or server-facing alert (no
// structured item). 1223 (abort) transitions the state machine to ABORT;
// 1222 (more data) to MORE_MSG.
func (s *Session) AddAlert(code string) {
	s.outboundQueue = append(s.outboundQueue, &handlers.AlertElement{Code: code})
	switch code {
	case AlertSessionAbort:
		s.state = StateAbort
	case AlertMoreData:
		s.state = StateMoreMsg
	}
}

// AddGenericAlert queues a 1226 generic alert carrying a correlator and a
// single structured item.
func (s *Session) AddGenericAlert(correlator string, item Item) {
	s.outboundQueue = append(s.outboundQueue, &handlers.AlertElement{
		Code: AlertGeneric,
		Items: []syncml.AlertItem{{
			Source: &syncml.LocURI{LocURI: correlator},
			Meta:   &syncml.ItemMeta{Format: item.Format, Type: item.Type},
			Data:   item.Data,
		}},
	})
}

// SessionClose releases the session's tree resources. The session handle
// must not be used afterward.
func (s *Session) SessionClose(ctx context.Context) error {
	if s.metrics != nil && !s.startTime.IsZero() {
		s.metrics.RecordSessionDuration(s.serverID, time.Since(s.startTime))
	}
	return s.tree.Close(ctx)
}

func parseRef(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
