// Package persistent implements an example managed object whose state
// outlives the process: a vendor extension subtree (./Vendor/ConfigCache)
// backed by an embedded BadgerDB store, demonstrating that persistence is
// a plugin-local decision rather than something the DM tree core provides.
//
// Key Namespace:
//
//	Entry data   "e:"   e:<name>   entryData (JSON)   one per cached entry
//
// A single Exec node, Flush, clears every cached entry in one transaction.
package persistent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/oma-dm/goclient/internal/dmerrors"
	"github.com/oma-dm/goclient/pkg/dmtree"
)

const (
	baseURI  = "./Vendor/ConfigCache"
	urn      = "x-oma-dm:mo:vendor-configcache:1.0"
	flushURI = "Flush"

	prefixEntry = "e:"
)

// Config controls how the MO opens its backing store.
type Config struct {
	// Path is the BadgerDB directory. Empty means an in-memory store
	// (entries do not survive process restart; used by tests and by
	// deployments with no writable disk).
	Path string

	// MaxEntries bounds the number of distinct cached entries. Zero means
	// unbounded. Exceeding it on a new key returns DeviceFull, matching
	// the capacity-exhaustion contract of the tree's other MOs.
	MaxEntries int
}

type entryData struct {
	Value    []byte        `json:"value"`
	Format   dmtree.Format `json:"format"`
	MIMEType string        `json:"mime_type"`
}

// MO is the ConfigCache managed object.
type MO struct {
	dmtree.NoExec
	cfg Config
	db  *badger.DB
}

// New creates a ConfigCache managed object. The backing store is opened on
// Init, not here, so construction never fails.
func New(cfg Config) *MO {
	return &MO{cfg: cfg}
}

func (m *MO) BaseURI() string { return baseURI }
func (m *MO) URN() string     { return urn }

// Init opens the BadgerDB store, creating it if necessary.
func (m *MO) Init(ctx context.Context) error {
	opts := badger.DefaultOptions(m.cfg.Path)
	if m.cfg.Path == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return dmerrors.NewInternalError(fmt.Errorf("open configcache store: %w", err))
	}
	m.db = db
	return nil
}

// Close releases the BadgerDB store.
func (m *MO) Close(ctx context.Context) error {
	if m.db == nil {
		return nil
	}
	if err := m.db.Close(); err != nil {
		return dmerrors.NewInternalError(err)
	}
	return nil
}

func (m *MO) FindURN(ctx context.Context, uri, wantURN string) (bool, error) {
	return wantURN == urn, nil
}

// IsNode reports whether uri addresses an interior node. The root and
// Flush are the only two fixed nodes; everything else is a leaf entry
// whose existence is resolved lazily against the store.
func (m *MO) IsNode(ctx context.Context, uri string) (bool, error) {
	if uri == "" {
		return true, nil
	}
	if uri == flushURI {
		return false, nil
	}
	if _, err := m.getEntry(uri); err != nil {
		return false, err
	}
	return false, nil
}

// Get reads uri. The root lists every cached entry name; Flush is
// write-only (Get reports NotAllowed, it carries no readable value);
// anything else is looked up as a cached entry.
func (m *MO) Get(ctx context.Context, uri string) (*dmtree.Node, error) {
	if uri == "" {
		names, err := m.listEntries()
		if err != nil {
			return nil, err
		}
		return &dmtree.Node{Format: dmtree.FormatNode, Children: append(names, flushURI)}, nil
	}
	if uri == flushURI {
		return nil, dmerrors.NewNotAllowedError(uri, "")
	}

	data, err := m.getEntry(uri)
	if err != nil {
		return nil, err
	}
	return &dmtree.Node{URI: uri, Value: data.Value, Format: data.Format, MIMEType: data.MIMEType}, nil
}

// Set writes uri as a cached entry, enforcing MaxEntries on first write.
func (m *MO) Set(ctx context.Context, uri string, value []byte, format dmtree.Format, mimeType string) error {
	if uri == "" || uri == flushURI {
		return dmerrors.NewNotAllowedError(uri, "")
	}

	data, err := json.Marshal(entryData{Value: value, Format: format, MIMEType: mimeType})
	if err != nil {
		return dmerrors.NewInternalError(err)
	}

	err = m.db.Update(func(txn *badger.Txn) error {
		_, getErr := txn.Get(entryKey(uri))
		isNew := getErr == badger.ErrKeyNotFound
		if isNew && m.cfg.MaxEntries > 0 {
			count, countErr := m.countEntriesLocked(txn)
			if countErr != nil {
				return countErr
			}
			if count >= m.cfg.MaxEntries {
				return dmerrors.NewDeviceFullError(uri)
			}
		}
		return txn.Set(entryKey(uri), data)
	})
	if err != nil {
		if dmerrors.CodeOf(err) != 0 {
			return err
		}
		return dmerrors.NewInternalError(err)
	}
	return nil
}

// GetACL returns the explicit ACL at uri. Only the root carries one; every
// other node inherits it.
func (m *MO) GetACL(ctx context.Context, uri string) (string, error) {
	if uri == "" {
		return "Get=*&Replace=*&Exec=*", nil
	}
	return "", nil
}

// Exec runs Flush, deleting every cached entry in one transaction.
// Anything else is CommandNotImplemented.
func (m *MO) Exec(ctx context.Context, uri string, data []byte, correlator string) error {
	if uri != flushURI {
		return dmerrors.NewCommandNotImplementedError(uri)
	}

	err := m.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefixEntry)

		it := txn.NewIterator(opts)
		defer it.Close()

		var keys [][]byte
		for it.Seek([]byte(prefixEntry)); it.ValidForPrefix([]byte(prefixEntry)); it.Next() {
			key := it.Item().KeyCopy(nil)
			keys = append(keys, key)
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return dmerrors.NewInternalError(err)
	}
	return nil
}

func (m *MO) getEntry(uri string) (*entryData, error) {
	var data entryData
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(entryKey(uri))
		if err == badger.ErrKeyNotFound {
			return dmerrors.NewNotFoundError(uri)
		}
		if err != nil {
			return dmerrors.NewInternalError(err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &data)
		})
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

func (m *MO) listEntries() ([]string, error) {
	var names []string
	err := m.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefixEntry)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefixEntry)); it.ValidForPrefix([]byte(prefixEntry)); it.Next() {
			key := string(it.Item().Key())
			names = append(names, key[len(prefixEntry):])
		}
		return nil
	})
	if err != nil {
		return nil, dmerrors.NewInternalError(err)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MO) countEntriesLocked(txn *badger.Txn) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(prefixEntry)

	it := txn.NewIterator(opts)
	defer it.Close()

	count := 0
	for it.Seek([]byte(prefixEntry)); it.ValidForPrefix([]byte(prefixEntry)); it.Next() {
		count++
	}
	return count, nil
}

func entryKey(name string) []byte {
	return []byte(prefixEntry + name)
}
