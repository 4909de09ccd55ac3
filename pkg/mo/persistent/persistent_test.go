package persistent

import (
	"context"
	"testing"

	"github.com/oma-dm/goclient/internal/dmerrors"
	"github.com/oma-dm/goclient/pkg/dmtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMO(t *testing.T, cfg Config) *MO {
	t.Helper()
	mo := New(cfg)
	require.NoError(t, mo.Init(context.Background()))
	t.Cleanup(func() { _ = mo.Close(context.Background()) })
	return mo
}

func TestSetThenGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	mo := newTestMO(t, Config{})

	require.NoError(t, mo.Set(ctx, "apn", []byte("internet"), dmtree.FormatChr, "text/plain"))

	node, err := mo.Get(ctx, "apn")
	require.NoError(t, err)
	assert.Equal(t, []byte("internet"), node.Value)
	assert.Equal(t, dmtree.FormatChr, node.Format)
	assert.Equal(t, "text/plain", node.MIMEType)
}

func TestGetMissingEntryIsNotFound(t *testing.T) {
	mo := newTestMO(t, Config{})
	_, err := mo.Get(context.Background(), "nope")
	assert.True(t, dmerrors.IsNotFound(err))
}

func TestRootListsEntriesPlusFlush(t *testing.T) {
	ctx := context.Background()
	mo := newTestMO(t, Config{})

	require.NoError(t, mo.Set(ctx, "b", []byte("2"), dmtree.FormatChr, ""))
	require.NoError(t, mo.Set(ctx, "a", []byte("1"), dmtree.FormatChr, ""))

	node, err := mo.Get(ctx, "")
	require.NoError(t, err)
	assert.True(t, node.IsInterior())
	assert.Equal(t, []string{"a", "b", "Flush"}, node.Children)
}

func TestMaxEntriesReturnsDeviceFull(t *testing.T) {
	ctx := context.Background()
	mo := newTestMO(t, Config{MaxEntries: 1})

	require.NoError(t, mo.Set(ctx, "a", []byte("1"), dmtree.FormatChr, ""))

	err := mo.Set(ctx, "b", []byte("2"), dmtree.FormatChr, "")
	require.Error(t, err)
	assert.Equal(t, dmerrors.DeviceFull, dmerrors.CodeOf(err))

	// Overwriting the existing entry is not a new entry, so it must not
	// be rejected by the same cap.
	require.NoError(t, mo.Set(ctx, "a", []byte("updated"), dmtree.FormatChr, ""))
}

func TestFlushExecClearsAllEntries(t *testing.T) {
	ctx := context.Background()
	mo := newTestMO(t, Config{})

	require.NoError(t, mo.Set(ctx, "a", []byte("1"), dmtree.FormatChr, ""))
	require.NoError(t, mo.Set(ctx, "b", []byte("2"), dmtree.FormatChr, ""))

	require.NoError(t, mo.Exec(ctx, flushURI, nil, ""))

	node, err := mo.Get(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{flushURI}, node.Children)
}

func TestExecUnknownURIIsNotImplemented(t *testing.T) {
	mo := newTestMO(t, Config{})
	err := mo.Exec(context.Background(), "NotARealCommand", nil, "")
	assert.Equal(t, dmerrors.CommandNotImplemented, dmerrors.CodeOf(err))
}

func TestGetFlushIsNotAllowed(t *testing.T) {
	mo := newTestMO(t, Config{})
	_, err := mo.Get(context.Background(), flushURI)
	assert.True(t, dmerrors.IsNotAllowed(err))
}

func TestRootACLGrantsFullAccess(t *testing.T) {
	mo := newTestMO(t, Config{})
	acl, err := mo.GetACL(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Get=*&Replace=*&Exec=*", acl)
}
