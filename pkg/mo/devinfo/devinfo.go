// Package devinfo implements the mandatory OMA DM DevInfo managed object,
// the static leaf set a DM server reads to identify the device (DevId,
// manufacturer, model, DM protocol version, language).
package devinfo

import (
	"context"

	"github.com/oma-dm/goclient/pkg/dmtree"
)

const (
	baseURI = "./DevInfo"
	urn     = "urn:oma:mo:oma-dm-devinfo:1.0"
)

// Info is the set of static device properties the DevInfo MO exposes.
type Info struct {
	DevId string // device identifier advertised as the session's account id; often an IMEI
	Man   string // manufacturer
	Mod   string // model
	DmV   string // DM protocol version implemented, e.g. "1.2"
	Lang  string // device language, e.g. "en-US"
}

// MO is the DevInfo managed object. It is read-only: the server may Get
// every leaf but may not Replace or Exec any of them.
type MO struct {
	dmtree.ReadOnly
	store *dmtree.MemoryStore
}

// New creates a DevInfo managed object populated from info.
func New(info Info) *MO {
	s := dmtree.NewMemoryStore()
	s.SetLeaf("DevId", []byte(info.DevId), dmtree.FormatChr, "")
	s.SetLeaf("Man", []byte(info.Man), dmtree.FormatChr, "")
	s.SetLeaf("Mod", []byte(info.Mod), dmtree.FormatChr, "")
	s.SetLeaf("DmV", []byte(info.DmV), dmtree.FormatChr, "")
	s.SetLeaf("Lang", []byte(info.Lang), dmtree.FormatChr, "")
	s.SetACL("", "Get=*")
	return &MO{store: s}
}

func (m *MO) BaseURI() string { return baseURI }
func (m *MO) URN() string     { return urn }

func (m *MO) Init(ctx context.Context) error { return nil }
func (m *MO) Close(ctx context.Context) error { return nil }

func (m *MO) IsNode(ctx context.Context, uri string) (bool, error) {
	return m.store.IsNode(ctx, uri)
}

func (m *MO) FindURN(ctx context.Context, uri, wantURN string) (bool, error) {
	return wantURN == urn, nil
}

func (m *MO) Get(ctx context.Context, uri string) (*dmtree.Node, error) {
	return m.store.Get(ctx, uri)
}

func (m *MO) GetACL(ctx context.Context, uri string) (string, error) {
	return m.store.GetACL(ctx, uri)
}
