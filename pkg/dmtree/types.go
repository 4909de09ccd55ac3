// Package dmtree implements the URI-addressed hierarchical managed-object
// store at the center of an OMA-DM session: it dispatches Get/Set/Exec/ACL
// operations to pluggable managed-object (MO) providers by longest
// matching base URI, and enumerates subtrees by URN.
package dmtree

import (
	"context"

	"github.com/oma-dm/goclient/internal/dmerrors"
)

// Format identifies the wire representation of a node's value, matching
// the SyncML DevInf format tokens.
type Format string

const (
	FormatNode   Format = "node"
	FormatChr    Format = "chr"
	FormatInt    Format = "int"
	FormatBool   Format = "bool"
	FormatBin    Format = "bin"
	FormatB64    Format = "b64"
	FormatXML    Format = "xml"
	FormatNull   Format = "null"
)

// Node is the value returned by Get: an interior node lists its children's
// names in Children and carries no Value, a leaf's Value is its raw
// payload.
type Node struct {
	URI      string
	Value    []byte
	Format   Format
	MIMEType string
	Children []string
}

// IsInterior reports whether this node represents a container rather than
// a leaf value.
func (n *Node) IsInterior() bool {
	return n.Format == FormatNode
}

// ManagedObject is the capability interface a plugin implements to own one
// subtree of the DM tree. This replaces the function-pointer/dlsym
// dispatch table of the reference implementation with a statically typed
// Go interface: a single concrete type satisfying this interface is the
// capability object.
type ManagedObject interface {
	// BaseURI returns the fixed root this MO claims, e.g. "./DevInfo".
	BaseURI() string

	// URN returns the managed object's identifying URN, e.g.
	// "urn:oma:mo:oma-dm-devinfo:1.0".
	URN() string

	// Init is called once when the MO is registered with a tree.
	Init(ctx context.Context) error

	// Close releases any resources the MO holds.
	Close(ctx context.Context) error

	// IsNode reports whether uri (relative to BaseURI) addresses an
	// interior node rather than a leaf.
	IsNode(ctx context.Context, uri string) (bool, error)

	// FindURN reports whether this MO's subtree at uri advertises urn.
	// Used by Tree.ListURI to enumerate all subtrees of a given kind.
	FindURN(ctx context.Context, uri, urn string) (bool, error)

	// Get reads the node at uri.
	Get(ctx context.Context, uri string) (*Node, error)

	// Set writes value/format/mimeType at uri.
	Set(ctx context.Context, uri string, value []byte, format Format, mimeType string) error

	// GetACL returns the ACL string explicitly set at uri, or "" if none
	// is set there (the tree applies ancestor inheritance).
	GetACL(ctx context.Context, uri string) (string, error)

	// Exec runs the executable node at uri with the given command data and
	// correlator, returning CommandNotImplemented if uri is not
	// executable.
	Exec(ctx context.Context, uri string, data []byte, correlator string) error
}

// MultiInstance is implemented by managed objects whose base URI is a
// container of zero or more numbered instance subtrees rather than a
// single instance of the MO's URN itself (e.g. DMAcc, which holds one
// subtree per registered server account). Tree.ListURI type-asserts for
// this to enumerate each instance's own base URI instead of just the
// MO's base.
type MultiInstance interface {
	// InstanceURIs returns the relative URI of each registered instance,
	// in registration order.
	InstanceURIs(ctx context.Context) ([]string, error)
}

// NoExec embeds into MO implementations with no executable nodes,
// following the reference's "optional capability" contract without
// requiring every MO to hand-roll the same boilerplate error.
type NoExec struct{}

// Exec always reports CommandNotImplemented.
func (NoExec) Exec(ctx context.Context, uri string, data []byte, correlator string) error {
	return dmerrors.NewCommandNotImplementedError(uri)
}

// ReadOnly embeds into MO implementations whose tree is entirely
// server-readable and never writable (e.g. DevInfo).
type ReadOnly struct {
	NoExec
}

// Set always reports NotAllowed.
func (ReadOnly) Set(ctx context.Context, uri string, value []byte, format Format, mimeType string) error {
	return dmerrors.NewNotAllowedError(uri, "")
}
