package session

import (
	"github.com/oma-dm/goclient/pkg/credential"
	"github.com/oma-dm/goclient/pkg/syncml"
)

// buildCred converts a resolved credential descriptor into the wire <Cred>
// element for an outbound header.
func buildCred(desc credential.Descriptor) (*syncml.Cred, error) {
	built, err := credential.Build(desc)
	if err != nil {
		return nil, err
	}
	return &syncml.Cred{
		Meta: syncml.CredMeta{Type: built.MetaType, Format: built.MetaFmt},
		Data: built.Payload,
	}, nil
}
