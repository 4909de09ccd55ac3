// Package credential implements OMA-DM BASIC and MD5-DIGEST credential
// build/verify/challenge, the only two credential types this client
// computes itself; every other AAuthType value is carried through as
// passthrough metadata for a transport-level authenticator to interpret.
package credential

// AuthType identifies a credential's authentication scheme.
type AuthType int

const (
	Unknown AuthType = iota
	Basic
	Digest
	HMAC
	X509
	SecurID
	SafeWord
	DigiPass
	HTTPBasic
	HTTPDigest
	Transport
)

// authTypeStrings maps the AAuthType tree value string to its AuthType,
// per spec §4.2's decode table.
var authTypeStrings = map[string]AuthType{
	"BASIC":    Basic,
	"DIGEST":   Digest,
	"HMAC":     HMAC,
	"X509":     X509,
	"SECURID":  SecurID,
	"SAFEWORD": SafeWord,
	"DIGIPASS": DigiPass,
}

// ParseAuthType decodes an AAuthType value string. Unrecognized values
// (including empty string) decode to Unknown, matching the reference's
// permissive fallback rather than failing account resolution over an
// unexpected credential type.
func ParseAuthType(s string) AuthType {
	if t, ok := authTypeStrings[s]; ok {
		return t
	}
	return Unknown
}

// metaTypeStrings maps AuthType to the wire <Meta><Type> string used in an
// outbound Cred element, per spec §4.2's encode table. Types with no
// OMA-DM-level credential representation encode to "".
var metaTypeStrings = map[AuthType]string{
	Basic:    "syncml:auth-basic",
	Digest:   "syncml:auth-md5",
	HMAC:     "syncml:auth-MAC",
	X509:     "syncml:auth-X509",
	SecurID:  "syncml:auth-securid",
	SafeWord: "syncml:auth-safeword",
	DigiPass: "syncml:auth-digipass",
}

// MetaType returns the wire meta type string for t, or "" if t has no
// OMA-DM-level representation (HTTP-BASIC, HTTP-DIGEST, Transport, Unknown).
func (t AuthType) MetaType() string {
	return metaTypeStrings[t]
}

func (t AuthType) String() string {
	switch t {
	case Basic:
		return "BASIC"
	case Digest:
		return "DIGEST"
	case HMAC:
		return "HMAC"
	case X509:
		return "X509"
	case SecurID:
		return "SECURID"
	case SafeWord:
		return "SAFEWORD"
	case DigiPass:
		return "DIGIPASS"
	case HTTPBasic:
		return "HTTP-BASIC"
	case HTTPDigest:
		return "HTTP-DIGEST"
	case Transport:
		return "TRANSPORT"
	default:
		return "UNKNOWN"
	}
}

// Descriptor is a credential descriptor: the type, principal name, shared
// secret, and (for DIGEST) the current nonce.
type Descriptor struct {
	Type   AuthType
	Name   string
	Secret string
	Data   []byte // DIGEST nonce; unused for BASIC
}

// Direction identifies which side of the session a Descriptor
// authenticates.
type Direction string

const (
	ToServer Direction = "toServer"
	ToClient Direction = "toClient"
)
