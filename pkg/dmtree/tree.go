package dmtree

import (
	"context"
	"strings"
	"sync"

	"github.com/oma-dm/goclient/internal/dmerrors"
	"github.com/oma-dm/goclient/internal/logger"
)

// mandatoryURNs lists the managed object URNs a tree must carry a provider
// for before a session may be started against it.
var mandatoryURNs = []string{
	"urn:oma:mo:oma-dm-devinfo:1.0",
	"urn:oma:mo:oma-dm-dmacc:1.0",
}

// Tree is the URI-addressed managed-object store. Every Tree method holds
// the tree's mutex for the whole call, so calls from several goroutines are
// serialized, managed-object calls included; the session core it backs is
// itself single-threaded (see the session package).
type Tree struct {
	mu       sync.Mutex
	plugins  []ManagedObject // ordered by registration, longest-prefix match at dispatch time
	serverID string
}

// New creates an empty Tree with no registered managed objects.
func New() *Tree {
	return &Tree{}
}

// SetServer records the ServerID the tree is currently servicing, used only
// for logging/metrics context; it has no effect on dispatch or ACL
// evaluation (principal is passed explicitly to every call that needs it).
func (t *Tree) SetServer(serverID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.serverID = serverID
}

// AddPlugin registers a managed object. Base URIs must be disjoint
// (neither a prefix of another registered MO's base nor equal to one);
// violating this is a Usage error since it makes dispatch ambiguous.
func (t *Tree) AddPlugin(ctx context.Context, mo ManagedObject) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	base := mo.BaseURI()
	for _, existing := range t.plugins {
		eb := existing.BaseURI()
		if base == eb || strings.HasPrefix(base, eb+"/") || strings.HasPrefix(eb, base+"/") {
			return dmerrors.NewUsageError("managed object base URI overlaps an existing registration: " + base)
		}
	}

	if err := mo.Init(ctx); err != nil {
		return err
	}

	t.plugins = append(t.plugins, mo)
	logger.InfoCtx(ctx, "managed object registered", logger.URI(base), logger.URN(mo.URN()))
	return nil
}

// Close releases every registered managed object's resources.
func (t *Tree) Close(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var firstErr error
	for _, mo := range t.plugins {
		if err := mo.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// CheckMandatoryMO verifies that every mandatory URN has a registered
// provider.
func (t *Tree) CheckMandatoryMO() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, urn := range mandatoryURNs {
		found := false
		for _, mo := range t.plugins {
			if mo.URN() == urn {
				found = true
				break
			}
		}
		if !found {
			return dmerrors.NewUsageError("no managed object registered for mandatory urn " + urn)
		}
	}
	return nil
}

// resolve finds the registered MO whose base URI is the longest prefix of
// uri, and returns it along with uri relative to that base.
func (t *Tree) resolve(uri string) (ManagedObject, string, error) {
	var best ManagedObject
	var bestBase string

	for _, mo := range t.plugins {
		base := mo.BaseURI()
		if uri != base && !strings.HasPrefix(uri, base+"/") {
			continue
		}
		if len(base) > len(bestBase) {
			best = mo
			bestBase = base
		}
	}

	if best == nil {
		return nil, "", dmerrors.NewNotFoundError(uri)
	}

	rel := strings.TrimPrefix(uri, bestBase)
	rel = strings.TrimPrefix(rel, "/")
	return best, rel, nil
}

// Get reads the node at uri, enforcing that principal is authorized for
// Get under the effective ACL.
func (t *Tree) Get(ctx context.Context, uri, principal string) (*Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkACL(ctx, uri, OpGet, principal); err != nil {
		return nil, err
	}

	mo, rel, err := t.resolve(uri)
	if err != nil {
		return nil, err
	}
	node, err := mo.Get(ctx, rel)
	if err != nil {
		return nil, err
	}
	if node != nil {
		node.URI = uri
	}
	return node, nil
}

// Set writes value/format/mimeType at uri, enforcing ACL.
func (t *Tree) Set(ctx context.Context, uri string, value []byte, format Format, mimeType, principal string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkACL(ctx, uri, OpReplace, principal); err != nil {
		return err
	}

	mo, rel, err := t.resolve(uri)
	if err != nil {
		return err
	}
	return mo.Set(ctx, rel, value, format, mimeType)
}

// Exec runs the executable node at uri, enforcing ACL.
func (t *Tree) Exec(ctx context.Context, uri string, data []byte, correlator, principal string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkACL(ctx, uri, OpExec, principal); err != nil {
		return err
	}

	mo, rel, err := t.resolve(uri)
	if err != nil {
		return err
	}
	return mo.Exec(ctx, rel, data, correlator)
}

// GetACL returns the effective ACL string at uri, walking up to the
// nearest ancestor with an explicit ACL set if uri itself has none.
func (t *Tree) GetACL(ctx context.Context, uri string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.effectiveACL(ctx, uri)
}

// effectiveACL returns the nearest explicit ACL at or above uri, expecting
// the caller already holds t.mu.
func (t *Tree) effectiveACL(ctx context.Context, uri string) (string, error) {
	cur := uri
	for {
		// ran off every MO's base while climbing toward the root; no
		// ancestor claims this URI, so keep climbing rather than failing
		// the whole lookup on the first unclaimed ancestor.
		if mo, rel, err := t.resolve(cur); err == nil {
			acl, err := mo.GetACL(ctx, rel)
			if err != nil {
				return "", err
			}
			if acl != "" {
				return acl, nil
			}
		} else if !dmerrors.IsNotFound(err) || cur == uri {
			return "", err
		}

		parent := parentURI(cur)
		if parent == cur {
			return "", nil
		}
		cur = parent
	}
}

// checkACL enforces that principal may perform op at uri, expecting the
// caller already holds t.mu.
func (t *Tree) checkACL(ctx context.Context, uri string, op Op, principal string) error {
	acl, err := t.effectiveACL(ctx, uri)
	if err != nil {
		return err
	}
	if !Authorized(acl, op, principal) {
		logger.WarnCtx(ctx, "acl denied", logger.URI(uri), logger.Operation(string(op)), logger.Principal(principal))
		return dmerrors.NewNotAllowedError(uri, principal)
	}
	return nil
}

// parentURI returns the parent of a "."-rooted slash path, or uri itself
// if uri is already the root.
func parentURI(uri string) string {
	if uri == "." || uri == "" {
		return "."
	}
	idx := strings.LastIndex(uri, "/")
	if idx <= 0 {
		return "."
	}
	return uri[:idx]
}

// ListURI returns the base URIs of every registered instance of urn, in
// registration order. Most managed objects are themselves a single
// instance, so their own base URI is returned; a managed object
// implementing MultiInstance (e.g. DMAcc) contributes one base URI per
// registered instance subtree instead.
func (t *Tree) ListURI(ctx context.Context, urn string) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var uris []string
	for _, mo := range t.plugins {
		ok, err := mo.FindURN(ctx, "", urn)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		if multi, ok := mo.(MultiInstance); ok {
			instances, err := multi.InstanceURIs(ctx)
			if err != nil {
				return nil, err
			}
			base := mo.BaseURI()
			for _, inst := range instances {
				uris = append(uris, base+"/"+inst)
			}
			continue
		}

		uris = append(uris, mo.BaseURI())
	}
	return uris, nil
}

// FindSubtree enumerates the children of root — or, if root is "", the
// children of every registered MO whose subtree advertises urn — and
// returns the first whose childName leaf equals childValue. Returns
// NotFound if none match. urn is ignored when root is non-empty (the
// caller already knows which subtree it wants to search).
func (t *Tree) FindSubtree(ctx context.Context, root, urn, childName, childValue string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var roots []string
	if root == "" {
		for _, mo := range t.plugins {
			ok, err := mo.FindURN(ctx, "", urn)
			if err != nil {
				return "", err
			}
			if ok {
				roots = append(roots, mo.BaseURI())
			}
		}
	} else {
		roots = []string{root}
	}

	var candidates []string
	for _, r := range roots {
		mo, rel, err := t.resolve(r)
		if err != nil {
			return "", err
		}
		node, err := mo.Get(ctx, rel)
		if err != nil {
			return "", err
		}
		for _, child := range node.Children {
			candidates = append(candidates, r+"/"+child)
		}
	}

	for _, uri := range candidates {
		mo, rel, err := t.resolve(uri + "/" + childName)
		if err != nil {
			continue
		}
		node, err := mo.Get(ctx, rel)
		if err != nil {
			continue
		}
		if string(node.Value) == childValue {
			return uri, nil
		}
	}
	return "", dmerrors.NewNotFoundError(root + "/*/" + childName)
}
