package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/latticefs/lattice/internal/logger"
)

// IndexEntry is one path's cached metadata, grounded on the teacher's
// pkg/metadata/store/badger encode/decode-then-txn.Set pattern.
type IndexEntry struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Index is a Badger-backed record of each local file's size and modtime. It
// is rebuilt from disk on startup (stat-ing every file), updated by the
// create/write/delete/copy handlers, and counted by /debug/status;
// storage_size does not consult it. It is never the system of record —
// FSStore's filesystem calls always win.
type Index struct {
	db *badger.DB
}

// OpenIndex opens (creating if absent) a Badger database at dir.
func OpenIndex(dir string) (*Index, error) {
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogAdapter{})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open storage index: %w", err)
	}
	return &Index{db: db}, nil
}

// Close releases the underlying database.
func (i *Index) Close() error {
	return i.db.Close()
}

func indexKey(path string) []byte {
	return []byte("path:" + path)
}

// Put upserts path's cached metadata.
func (i *Index) Put(path string, size int64, modTime time.Time) error {
	entry := IndexEntry{Path: path, Size: size, ModTime: modTime}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return i.db.Update(func(txn *badger.Txn) error {
		return txn.Set(indexKey(path), data)
	})
}

// Get returns path's cached metadata, if present.
func (i *Index) Get(path string) (IndexEntry, bool, error) {
	var entry IndexEntry
	var found bool
	err := i.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(indexKey(path))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	return entry, found, err
}

// Delete removes path's cached metadata.
func (i *Index) Delete(path string) error {
	return i.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(indexKey(path))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}

// Rebuild clears the index and repopulates it from a fresh Walk of store,
// run once at startup before the node registers with the Naming Service.
func (i *Index) Rebuild(store *FSStore) (int, error) {
	paths, err := store.Walk()
	if err != nil {
		return 0, err
	}

	err = i.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		var stale [][]byte
		prefix := []byte("path:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			stale = append(stale, append([]byte{}, it.Item().Key()...))
		}
		for _, k := range stale {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	ctx := context.Background()
	for _, p := range paths {
		size, err := store.Size(ctx, p)
		if err != nil {
			logger.Warn("storage index: skipping unreadable path during rebuild", "path", p, "err", err)
			continue
		}
		if err := i.Put(p, size, time.Now()); err != nil {
			return 0, err
		}
	}
	return len(paths), nil
}

// Count returns the number of paths currently cached in the index, for
// operator-facing status reporting.
func (i *Index) Count() (int, error) {
	n := 0
	err := i.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte("path:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// badgerLogAdapter routes Badger's internal logging through the shared
// slog-based logger instead of Badger's default stderr logger.
type badgerLogAdapter struct{}

func (badgerLogAdapter) Errorf(format string, args ...any)   { logger.Errorf(format, args...) }
func (badgerLogAdapter) Warningf(format string, args ...any) { logger.Warnf(format, args...) }
func (badgerLogAdapter) Infof(format string, args ...any)    { logger.Infof(format, args...) }
func (badgerLogAdapter) Debugf(format string, args ...any)   { logger.Debugf(format, args...) }
