// Package dmacc implements the mandatory OMA DM DMAcc managed object: the
// subtree of server account definitions the account resolver
// (pkg/account) reads to build a Account, and that the session core
// (pkg/session) writes rotated DIGEST nonces back into.
package dmacc

import (
	"context"
	"fmt"

	"github.com/oma-dm/goclient/pkg/dmtree"
)

const (
	baseURI = "./DMAcc"
	urn     = "urn:oma:mo:oma-dm-dmacc:1.0"
)

// AuthSeed describes one AppAuth credential entry to seed under an
// account, corresponding to one AAuthLevel (CLCRED or SRVCRED).
type AuthSeed struct {
	Level string // "CLCRED" or "SRVCRED"
	Type  string // AAuthType value string, e.g. "BASIC", "DIGEST"
	Name  string
	Secret string
	Data   []byte // initial AAuthData nonce, if any
}

// AccountSeed describes one server account to register in the DMAcc tree.
type AccountSeed struct {
	ServerID string
	AddrType string // e.g. "URI"
	Addr     string // server_uri
	Auths    []AuthSeed
}

// MO is the DMAcc managed object.
type MO struct {
	dmtree.NoExec
	store *dmtree.MemoryStore
}

// New creates a DMAcc managed object seeded with accounts.
func New(accounts []AccountSeed) *MO {
	s := dmtree.NewMemoryStore()
	s.SetACL("", "Get=*")

	for i, acct := range accounts {
		base := fmt.Sprintf("%d", i+1)
		s.SetLeaf(base+"/ServerID", []byte(acct.ServerID), dmtree.FormatChr, "")
		s.SetLeaf(base+"/AppAddr/AddrType", []byte(acct.AddrType), dmtree.FormatChr, "")
		s.SetLeaf(base+"/AppAddr/Addr", []byte(acct.Addr), dmtree.FormatChr, "")

		for j, auth := range acct.Auths {
			authBase := fmt.Sprintf("%s/AppAuth/%d", base, j+1)
			s.SetLeaf(authBase+"/AAuthLevel", []byte(auth.Level), dmtree.FormatChr, "")
			s.SetLeaf(authBase+"/AAuthType", []byte(auth.Type), dmtree.FormatChr, "")
			s.SetLeaf(authBase+"/AAuthName", []byte(auth.Name), dmtree.FormatChr, "")
			s.SetLeaf(authBase+"/AAuthSecret", []byte(auth.Secret), dmtree.FormatChr, "")
			s.SetLeaf(authBase+"/AAuthData", auth.Data, dmtree.FormatBin, "")
			// AAuthData is the one leaf a DM session is allowed to rewrite
			// (rotated nonce persistence, spec §4.3); everything else in
			// an account definition is operator-managed configuration.
			s.SetACL(authBase+"/AAuthData", "Get=*&Replace=*")
		}
	}

	return &MO{store: s}
}

func (m *MO) BaseURI() string { return baseURI }
func (m *MO) URN() string     { return urn }

func (m *MO) Init(ctx context.Context) error  { return nil }
func (m *MO) Close(ctx context.Context) error { return nil }

func (m *MO) IsNode(ctx context.Context, uri string) (bool, error) {
	return m.store.IsNode(ctx, uri)
}

func (m *MO) FindURN(ctx context.Context, uri, wantURN string) (bool, error) {
	return wantURN == urn, nil
}

// InstanceURIs implements dmtree.MultiInstance: the DMAcc base URI is a
// container of zero or more numbered account subtrees rather than a
// single instance itself, so Tree.ListURI enumerates each account's own
// base URI (./DMAcc/1, ./DMAcc/2, ...) instead of just ./DMAcc.
func (m *MO) InstanceURIs(ctx context.Context) ([]string, error) {
	node, err := m.store.Get(ctx, "")
	if err != nil {
		return nil, err
	}
	return node.Children, nil
}

func (m *MO) Get(ctx context.Context, uri string) (*dmtree.Node, error) {
	return m.store.Get(ctx, uri)
}

func (m *MO) Set(ctx context.Context, uri string, value []byte, format dmtree.Format, mimeType string) error {
	return m.store.Set(ctx, uri, value, format, mimeType)
}

func (m *MO) GetACL(ctx context.Context, uri string) (string, error) {
	return m.store.GetACL(ctx, uri)
}
