package syncml

import "github.com/oma-dm/goclient/pkg/credential"

// NewHeader builds a SyncHdr for the given session/message IDs and
// endpoints. If cred is non-nil it is attached verbatim; callers decide
// whether credentials are still owed based on auth status.
func NewHeader(sessionIDHex, msgID, sourceURI, targetURI string, cred *credential.Credential) Header {
	h := Header{
		VerDTD:    VerDTD,
		VerProto:  VerProto,
		SessionID: sessionIDHex,
		MsgID:     msgID,
		Target:    LocURI{LocURI: targetURI},
		Source:    LocURI{LocURI: sourceURI},
		Meta:      &HeaderMeta{MaxMsgSize: MaxMsgSize},
	}
	if cred != nil {
		h.Cred = &Cred{
			Meta: CredMeta{Type: cred.MetaType, Format: cred.MetaFmt},
			Data: cred.Payload,
		}
	}
	return h
}
