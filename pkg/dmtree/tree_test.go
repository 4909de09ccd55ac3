package dmtree_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oma-dm/goclient/internal/dmerrors"
	"github.com/oma-dm/goclient/pkg/dmtree"
	"github.com/oma-dm/goclient/pkg/mo/devinfo"
	"github.com/oma-dm/goclient/pkg/mo/dmacc"
)

func testInfo() devinfo.Info {
	return devinfo.Info{DevId: "490154203237518", Man: "Acme", Mod: "Widget", DmV: "1.2", Lang: "en-US"}
}

func TestGet_ReturnsLeafValue(t *testing.T) {
	ctx := context.Background()
	tree := dmtree.New()
	require.NoError(t, tree.AddPlugin(ctx, devinfo.New(testInfo())))

	node, err := tree.Get(ctx, "./DevInfo/DevId", "any")
	require.NoError(t, err)
	assert.Equal(t, "490154203237518", string(node.Value))
	assert.Equal(t, "./DevInfo/DevId", node.URI)
}

func TestGet_InteriorNodeListsChildren(t *testing.T) {
	ctx := context.Background()
	tree := dmtree.New()
	require.NoError(t, tree.AddPlugin(ctx, devinfo.New(testInfo())))

	node, err := tree.Get(ctx, "./DevInfo", "any")
	require.NoError(t, err)
	assert.True(t, node.IsInterior())
	assert.ElementsMatch(t, []string{"DevId", "Man", "Mod", "DmV", "Lang"}, node.Children)
}

func TestGet_UnknownURIReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	tree := dmtree.New()
	require.NoError(t, tree.AddPlugin(ctx, devinfo.New(testInfo())))

	_, err := tree.Get(ctx, "./NoSuchMO/Leaf", "any")
	assert.True(t, dmerrors.IsNotFound(err))
}

func TestSet_ReadOnlyMODeniesReplace(t *testing.T) {
	ctx := context.Background()
	tree := dmtree.New()
	require.NoError(t, tree.AddPlugin(ctx, devinfo.New(testInfo())))

	err := tree.Set(ctx, "./DevInfo/DevId", []byte("new"), dmtree.FormatChr, "", "any")
	require.Error(t, err)
}

func TestAddPlugin_RejectsOverlappingBaseURI(t *testing.T) {
	ctx := context.Background()
	tree := dmtree.New()
	require.NoError(t, tree.AddPlugin(ctx, devinfo.New(testInfo())))

	err := tree.AddPlugin(ctx, devinfo.New(testInfo()))
	require.Error(t, err)
	assert.Equal(t, dmerrors.Usage, dmerrors.CodeOf(err))
}

func TestListURI_ReturnsBasesAdvertisingURN(t *testing.T) {
	ctx := context.Background()
	tree := dmtree.New()
	require.NoError(t, tree.AddPlugin(ctx, devinfo.New(testInfo())))

	uris, err := tree.ListURI(ctx, "urn:oma:mo:oma-dm-devinfo:1.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"./DevInfo"}, uris)

	uris, err = tree.ListURI(ctx, "urn:oma:mo:unregistered:1.0")
	require.NoError(t, err)
	assert.Empty(t, uris)
}

func TestListURI_DMAccEnumeratesPerAccountBaseURIs(t *testing.T) {
	ctx := context.Background()
	tree := dmtree.New()
	require.NoError(t, tree.AddPlugin(ctx, dmacc.New([]dmacc.AccountSeed{
		{ServerID: "srv1", AddrType: "URI", Addr: "https://a.example.com"},
		{ServerID: "srv2", AddrType: "URI", Addr: "https://b.example.com"},
	})))

	uris, err := tree.ListURI(ctx, "urn:oma:mo:oma-dm-dmacc:1.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"./DMAcc/1", "./DMAcc/2"}, uris)
}

func TestCheckMandatoryMO_FailsWhenMissing(t *testing.T) {
	tree := dmtree.New()
	err := tree.CheckMandatoryMO()
	require.Error(t, err)
	assert.Equal(t, dmerrors.Usage, dmerrors.CodeOf(err))
}

func TestCheckMandatoryMO_FailsWithOnlyDevInfo(t *testing.T) {
	ctx := context.Background()
	tree := dmtree.New()
	require.NoError(t, tree.AddPlugin(ctx, devinfo.New(testInfo())))

	err := tree.CheckMandatoryMO()
	require.Error(t, err)
}

func TestGet_ACLDeniesByDefault(t *testing.T) {
	ctx := context.Background()
	tree := dmtree.New()
	require.NoError(t, tree.AddPlugin(ctx, noACLMO{}))

	_, err := tree.Get(ctx, "./Foo/Leaf", "alice")
	require.Error(t, err)
	assert.True(t, dmerrors.IsNotAllowed(err))
}

func TestGetACL_InheritsFromAncestor(t *testing.T) {
	ctx := context.Background()
	tree := dmtree.New()
	require.NoError(t, tree.AddPlugin(ctx, devinfo.New(testInfo())))

	acl, err := tree.GetACL(ctx, "./DevInfo/DevId")
	require.NoError(t, err)
	assert.Equal(t, "Get=*", acl)
}

func TestFindSubtree_LocatesAccountByServerID(t *testing.T) {
	ctx := context.Background()
	tree := dmtree.New()
	require.NoError(t, tree.AddPlugin(ctx, dmacc.New([]dmacc.AccountSeed{
		{ServerID: "srv1", AddrType: "URI", Addr: "https://a.example.com"},
		{ServerID: "srv2", AddrType: "URI", Addr: "https://b.example.com"},
	})))

	uri, err := tree.FindSubtree(ctx, "", "urn:oma:mo:oma-dm-dmacc:1.0", "ServerID", "srv2")
	require.NoError(t, err)
	assert.Equal(t, "./DMAcc/2", uri)
}

func TestFindSubtree_NoMatchReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	tree := dmtree.New()
	require.NoError(t, tree.AddPlugin(ctx, dmacc.New([]dmacc.AccountSeed{
		{ServerID: "srv1", AddrType: "URI", Addr: "https://a.example.com"},
	})))

	_, err := tree.FindSubtree(ctx, "", "urn:oma:mo:oma-dm-dmacc:1.0", "ServerID", "nope")
	assert.True(t, dmerrors.IsNotFound(err))
}

// noACLMO is a minimal fake managed object with no ACL set anywhere, used
// to exercise the tree's default-deny behavior independent of any real MO.
type noACLMO struct {
	dmtree.NoExec
}

func (noACLMO) BaseURI() string { return "./Foo" }
func (noACLMO) URN() string     { return "urn:test:foo:1.0" }
func (noACLMO) Init(ctx context.Context) error  { return nil }
func (noACLMO) Close(ctx context.Context) error { return nil }
func (noACLMO) IsNode(ctx context.Context, uri string) (bool, error) {
	return uri == "", nil
}
func (noACLMO) FindURN(ctx context.Context, uri, urn string) (bool, error) {
	return urn == "urn:test:foo:1.0", nil
}
func (noACLMO) Get(ctx context.Context, uri string) (*dmtree.Node, error) {
	if uri == "" {
		return &dmtree.Node{Format: dmtree.FormatNode, Children: []string{"Leaf"}}, nil
	}
	return &dmtree.Node{Format: dmtree.FormatChr, Value: []byte("v")}, nil
}
func (noACLMO) Set(ctx context.Context, uri string, value []byte, format dmtree.Format, mimeType string) error {
	return nil
}
func (noACLMO) GetACL(ctx context.Context, uri string) (string, error) {
	return "", nil
}
