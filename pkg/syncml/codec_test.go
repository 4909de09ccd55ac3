package syncml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	msg := &Message{
		Header: Header{
			VerDTD:    VerDTD,
			VerProto:  VerProto,
			SessionID: "01",
			MsgID:     "1",
			Target:    LocURI{LocURI: "https://dm.example.com"},
			Source:    LocURI{LocURI: "device-123"},
			Meta:      &HeaderMeta{MaxMsgSize: MaxMsgSize},
		},
		Body: Body{
			Commands: []Command{
				Alert{CmdID: "1", Data: "1201"},
				Replace{CmdID: "2", Item: []ReplaceItem{
					{Target: LocURI{LocURI: "./DevInfo/Man"}, Data: "Acme"},
				}},
			},
			Final: true,
		},
	}

	data, err := Encode(msg)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, "01", decoded.Header.SessionID)
	assert.Equal(t, "1", decoded.Header.MsgID)
	assert.Equal(t, "device-123", decoded.Header.Source.LocURI)
	assert.True(t, decoded.Body.Final)
	require.Len(t, decoded.Body.Commands, 2)

	alert, ok := decoded.Body.Commands[0].(Alert)
	require.True(t, ok)
	assert.Equal(t, "1201", alert.Data)

	replace, ok := decoded.Body.Commands[1].(Replace)
	require.True(t, ok)
	require.Len(t, replace.Item, 1)
	assert.Equal(t, "./DevInfo/Man", replace.Item[0].Target.LocURI)
	assert.Equal(t, "Acme", replace.Item[0].Data)
}

func TestDecodePreservesCommandOrder(t *testing.T) {
	msg := &Message{
		Header: Header{VerDTD: VerDTD, VerProto: VerProto, SessionID: "01", MsgID: "2"},
		Body: Body{
			Commands: []Command{
				Status{CmdID: "1", MsgRef: "1", CmdRef: "1", Cmd: "Alert", Data: "200"},
				Get{CmdID: "2", Item: []GetItem{{Target: LocURI{LocURI: "./DevInfo"}}}},
				Exec{CmdID: "3", Item: []ExecItem{{Target: LocURI{LocURI: "./Vendor/Reboot"}}}},
				Results{CmdID: "4", MsgRef: "1", CmdRef: "2", Item: []ResultsItem{
					{Source: LocURI{LocURI: "./DevInfo/DevId"}, Data: "device-123"},
				}},
			},
		},
	}

	data, err := Encode(msg)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded.Body.Commands, 4)

	kinds := make([]string, len(decoded.Body.Commands))
	for i, c := range decoded.Body.Commands {
		kinds[i] = c.Kind()
	}
	assert.Equal(t, []string{"Status", "Get", "Exec", "Results"}, kinds)
}

func TestDecodePackage0(t *testing.T) {
	data := []byte{
		0x01,                   // flags
		0x00, 0x00, 0x00, 0x2a, // sessionID = 42
		0x00, 0x05, // serverID length = 5
	}
	data = append(data, []byte("srv01")...)
	data = append(data, []byte("management-payload")...)

	pkg0, err := DecodePackage0(data)
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), pkg0.Flags)
	assert.Equal(t, 42, pkg0.SessionID)
	assert.Equal(t, "srv01", pkg0.ServerID)
	assert.Equal(t, "management-payload", string(data[pkg0.BodyOffset:]))
}

func TestDecodePackage0TooShort(t *testing.T) {
	_, err := DecodePackage0([]byte{0x01, 0x00})
	assert.Error(t, err)
}
