package credential

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"

	"github.com/oma-dm/goclient/internal/dmerrors"
)

// MinNonceSize is the minimum number of random bytes drawn for a DIGEST
// nonce. The reference seeds a non-cryptographic PRNG from wall-clock
// time; this redesign always draws from crypto/rand instead (spec §9).
const MinNonceSize = 8

// Credential is the wire payload and meta pair produced for an outbound
// <Cred> element.
type Credential struct {
	Payload  string // base64 text, ready to place in <Data>
	MetaType string // <Meta><Type>, e.g. "syncml:auth-basic"
	MetaFmt  string // <Meta><Format>, always "b64" for the types this engine builds
}

// Build constructs the outbound credential payload for desc. Only BASIC
// and DIGEST are computed here; any other type returns CommandNotImplemented
// since the core never builds credentials for transport-level auth schemes.
func Build(desc Descriptor) (*Credential, error) {
	switch desc.Type {
	case Basic:
		payload := base64.StdEncoding.EncodeToString([]byte(desc.Name + ":" + desc.Secret))
		return &Credential{Payload: payload, MetaType: Basic.MetaType(), MetaFmt: "b64"}, nil
	case Digest:
		payload := base64.StdEncoding.EncodeToString(digestHash(desc.Name, desc.Secret, desc.Data))
		return &Credential{Payload: payload, MetaType: Digest.MetaType(), MetaFmt: "b64"}, nil
	default:
		return nil, dmerrors.NewCommandNotImplementedError("")
	}
}

// digestHash implements spec §4.3's nested MD5/Base64 construction:
//
//	A  = name ":" secret
//	AD = Base64(MD5(A))
//	B  = AD ":" nonce
//	result = MD5(B)
func digestHash(name, secret string, nonce []byte) []byte {
	a := name + ":" + secret
	adSum := md5.Sum([]byte(a))
	ad := base64.StdEncoding.EncodeToString(adSum[:])
	b := append([]byte(ad+":"), nonce...)
	bSum := md5.Sum(b)
	return bSum[:]
}

// Verify recomputes the expected credential payload for desc and compares
// it against the payload received on the wire. Returns nil on a match
// (callers report this onward as AuthenticationAccepted) or
// InvalidCredentials otherwise.
func Verify(desc Descriptor, receivedPayload string) error {
	expected, err := Build(desc)
	if err != nil {
		return err
	}
	if expected.Payload == receivedPayload {
		return nil
	}
	return dmerrors.NewInvalidCredentialsError("credential mismatch")
}

// Challenge is a server-issued (or client-issued, for mutual auth)
// authentication challenge to be carried in a Status element's Chal.
type Challenge struct {
	MetaType string
	Nonce    []byte // non-nil only for DIGEST
}

// GenerateChallenge builds a challenge for authType. For DIGEST, a fresh
// cryptographically random nonce of at least MinNonceSize bytes is drawn;
// the caller is responsible for persisting the same bytes back into the
// account's AAuthData leaf (see pkg/account) so the next Build call uses
// the matching nonce.
func GenerateChallenge(authType AuthType) (*Challenge, error) {
	switch authType {
	case Basic:
		return &Challenge{MetaType: Basic.MetaType()}, nil
	case Digest:
		nonce := make([]byte, MinNonceSize)
		if _, err := rand.Read(nonce); err != nil {
			return nil, dmerrors.NewInternalError(err)
		}
		return &Challenge{MetaType: Digest.MetaType(), Nonce: nonce}, nil
	default:
		return nil, dmerrors.NewCommandNotImplementedError("")
	}
}

// EncodeNonce base64-encodes a nonce for the wire <NextNonce> element.
func EncodeNonce(nonce []byte) string {
	return base64.StdEncoding.EncodeToString(nonce)
}

// DecodeNonce decodes a wire <NextNonce> element back into raw bytes.
func DecodeNonce(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, dmerrors.NewInternalError(err)
	}
	return b, nil
}
