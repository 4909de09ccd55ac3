package session

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/oma-dm/goclient/internal/dmerrors"
	"github.com/oma-dm/goclient/pkg/credential"
	"github.com/oma-dm/goclient/pkg/dmtree"
	"github.com/oma-dm/goclient/pkg/mo/devinfo"
	"github.com/oma-dm/goclient/pkg/mo/dmacc"
	"github.com/oma-dm/goclient/pkg/syncml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDevInfo() devinfo.Info {
	return devinfo.Info{DevId: "490154203237518", Man: "Acme", Mod: "Widget", DmV: "1.2", Lang: "en-US"}
}

func buildTree(t *testing.T, auths []dmacc.AuthSeed) *dmtree.Tree {
	t.Helper()
	ctx := context.Background()
	tree := dmtree.New()

	require.NoError(t, tree.AddPlugin(ctx, devinfo.New(testDevInfo())))
	require.NoError(t, tree.AddPlugin(ctx, dmacc.New([]dmacc.AccountSeed{
		{ServerID: "srv1", AddrType: "URI", Addr: "https://dm.example.com", Auths: auths},
	})))
	return tree
}

// fakeMetrics records every call for assertion without needing Prometheus.
type fakeMetrics struct {
	messagesSent []bool
	authOutcomes []authOutcome
	commands     []commandOutcome
	sessionDurs  []time.Duration
}

type authOutcome struct {
	direction, authType string
	accepted            bool
}

type commandOutcome struct {
	kind string
	code int
}

func (f *fakeMetrics) RecordMessageSent(serverID string, toSend bool) {
	f.messagesSent = append(f.messagesSent, toSend)
}
func (f *fakeMetrics) RecordCommandDispatched(kind string, statusCode int) {
	f.commands = append(f.commands, commandOutcome{kind, statusCode})
}
func (f *fakeMetrics) RecordAuthOutcome(direction, authType string, accepted bool) {
	f.authOutcomes = append(f.authOutcomes, authOutcome{direction, authType, accepted})
}
func (f *fakeMetrics) RecordSessionDuration(serverID string, d time.Duration) {
	f.sessionDurs = append(f.sessionDurs, d)
}

func TestClientInitiatedSessionNoCredentials(t *testing.T) {
	ctx := context.Background()
	tree := buildTree(t, nil)
	s := New(tree, nil)

	require.NoError(t, s.SessionStart(ctx, "srv1", 1))
	assert.Equal(t, AuthAccepted, s.clientAuthStatus)
	assert.Equal(t, AuthAccepted, s.serverAuthStatus)

	pkt, err := s.GetNextPacket(ctx)
	require.NoError(t, err)

	msg, err := syncml.Decode(pkt.Data)
	require.NoError(t, err)

	assert.Equal(t, "1", msg.Header.MsgID)
	assert.Nil(t, msg.Header.Cred)
	require.Len(t, msg.Body.Commands, 2)

	alert, ok := msg.Body.Commands[0].(syncml.Alert)
	require.True(t, ok)
	assert.Equal(t, AlertClientInitiated, alert.Data)

	replace, ok := msg.Body.Commands[1].(syncml.Replace)
	require.True(t, ok)
	assert.Len(t, replace.Item, 5)

	assert.Equal(t, StateInSession, s.state)
}

func TestClientInitiatedSessionWithBasicAuth(t *testing.T) {
	ctx := context.Background()
	tree := buildTree(t, []dmacc.AuthSeed{
		{Level: "CLCRED", Type: "BASIC", Name: "alice", Secret: "s3cret"},
	})
	s := New(tree, nil)

	require.NoError(t, s.SessionStart(ctx, "srv1", 1))
	assert.Equal(t, AuthPending, s.clientAuthStatus)

	pkt, err := s.GetNextPacket(ctx)
	require.NoError(t, err)

	msg, err := syncml.Decode(pkt.Data)
	require.NoError(t, err)

	require.NotNil(t, msg.Header.Cred)
	assert.Equal(t, "syncml:auth-basic", msg.Header.Cred.Meta.Type)
	assert.Equal(t, "YWxpY2U6czNjcmV0", msg.Header.Cred.Data)
}

func encodePackage0(t *testing.T, flags byte, sessionID int, serverID string, payload []byte) []byte {
	t.Helper()
	buf := make([]byte, 7+len(serverID)+len(payload))
	buf[0] = flags
	binary.BigEndian.PutUint32(buf[1:5], uint32(sessionID))
	binary.BigEndian.PutUint16(buf[5:7], uint16(len(serverID)))
	copy(buf[7:], serverID)
	copy(buf[7+len(serverID):], payload)
	return buf
}

func TestServerInitiatedSessionViaPackage0(t *testing.T) {
	ctx := context.Background()
	tree := buildTree(t, []dmacc.AuthSeed{
		{Level: "SRVCRED", Type: "DIGEST", Name: "srv1", Secret: "serversecret", Data: []byte("initial-nonce")},
	})
	s := New(tree, nil)

	desc := credential.Descriptor{Type: credential.Digest, Name: "srv1", Secret: "serversecret", Data: []byte("initial-nonce")}
	cred, err := credential.Build(desc)
	require.NoError(t, err)

	pkg0 := encodePackage0(t, 0x01, 42, "srv1", []byte(cred.Payload))

	flags, _, err := s.SessionStartOnAlert(ctx, pkg0)
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), flags)
	assert.Equal(t, AuthAccepted, s.serverAuthStatus)
	assert.Equal(t, StateServerInit, s.state)

	pkt, err := s.GetNextPacket(ctx)
	require.NoError(t, err)

	msg, err := syncml.Decode(pkt.Data)
	require.NoError(t, err)

	alert, ok := msg.Body.Commands[0].(syncml.Alert)
	require.True(t, ok)
	assert.Equal(t, AlertServerInitiated, alert.Data)
	assert.Equal(t, StateInSession, s.state)
}

func TestAbortAlertThenEnd(t *testing.T) {
	ctx := context.Background()
	tree := buildTree(t, nil)
	s := New(tree, nil)
	require.NoError(t, s.SessionStart(ctx, "srv1", 1))

	_, err := s.GetNextPacket(ctx) // opening message, ClientInit -> InSession
	require.NoError(t, err)

	s.AddAlert(AlertSessionAbort)
	assert.Equal(t, StateAbort, s.state)

	pkt, err := s.GetNextPacket(ctx)
	require.NoError(t, err)
	msg, err := syncml.Decode(pkt.Data)
	require.NoError(t, err)
	require.Len(t, msg.Body.Commands, 1)
	alert, ok := msg.Body.Commands[0].(syncml.Alert)
	require.True(t, ok)
	assert.Equal(t, AlertSessionAbort, alert.Data)

	_, err = s.GetNextPacket(ctx)
	assert.ErrorIs(t, err, dmerrors.ErrEnd)
}

func TestServerCredVerificationFailureMidSessionStaysInSession(t *testing.T) {
	ctx := context.Background()
	tree := buildTree(t, []dmacc.AuthSeed{
		{Level: "SRVCRED", Type: "DIGEST", Name: "srv1", Secret: "serversecret", Data: []byte("initial-nonce")},
	})
	m := &fakeMetrics{}
	s := New(tree, m)
	require.NoError(t, s.SessionStart(ctx, "srv1", 1))

	_, err := s.GetNextPacket(ctx) // ClientInit -> InSession
	require.NoError(t, err)
	require.Equal(t, StateInSession, s.state)
	require.Equal(t, AuthPending, s.serverAuthStatus)

	reply := &syncml.Message{
		Header: syncml.Header{
			VerDTD: syncml.VerDTD, VerProto: syncml.VerProto,
			SessionID: s.sessionIDHex, MsgID: "1",
			Target: syncml.LocURI{LocURI: s.account.ID},
			Source: syncml.LocURI{LocURI: "srv1"},
			Cred: &syncml.Cred{
				Meta: syncml.CredMeta{Type: "syncml:auth-md5", Format: "b64"},
				Data: "dGFtcGVyZWQ=", // base64("tampered"), never a valid digest
			},
		},
		Body: syncml.Body{Final: true},
	}
	data, err := syncml.Encode(reply)
	require.NoError(t, err)

	require.NoError(t, s.ProcessReply(ctx, data))

	assert.Equal(t, AuthPending, s.serverAuthStatus)
	assert.Equal(t, StateInSession, s.state)
	require.Len(t, m.authOutcomes, 1)
	assert.False(t, m.authOutcomes[0].accepted)
	assert.Equal(t, string(credential.ToClient), m.authOutcomes[0].direction)
}

func TestGetURIListFindsRegisteredMOs(t *testing.T) {
	tree := buildTree(t, nil)
	s := New(tree, nil)
	uris, err := s.GetURIList(context.Background(), "urn:oma:mo:oma-dm-devinfo:1.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"./DevInfo"}, uris)
}

func TestGetURIListReturnsBothAccountsInRegistrationOrder(t *testing.T) {
	ctx := context.Background()
	tree := dmtree.New()
	require.NoError(t, tree.AddPlugin(ctx, devinfo.New(testDevInfo())))
	require.NoError(t, tree.AddPlugin(ctx, dmacc.New([]dmacc.AccountSeed{
		{ServerID: "srv1", AddrType: "URI", Addr: "https://a.example.com"},
		{ServerID: "srv2", AddrType: "URI", Addr: "https://b.example.com"},
	})))

	s := New(tree, nil)
	uris, err := s.GetURIList(ctx, "urn:oma:mo:oma-dm-dmacc:1.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"./DMAcc/1", "./DMAcc/2"}, uris)
}
