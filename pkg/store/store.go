// Package store implements the compile cache on a bbolt database.
//
// Successful compilations are kept in the "compiled" bucket, keyed by a
// blake3 hash of everything the output depends on. The "meta" bucket holds
// shared variables, one of which records the compiler version that wrote
// the cache; opening the cache with another version drops the compiled
// code.
package store

import (
	"fmt"
	"time"

	"github.com/zeebo/blake3"
	bolt "go.etcd.io/bbolt"

	"github.com/izreit/sifon/pkg/logutil"
	. "github.com/izreit/sifon/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[store] ")

const (
	bucketCompiled = "compiled"
	bucketMeta     = "meta"

	versionVar = "version"
)

// initDB holds the functions run in one transaction when a database is
// opened.
var initDB = map[string](func(*bolt.Tx) error){}

type dbStore struct {
	db *bolt.DB
}

// NewStore opens the database at path, creating it when needed. Cached code
// written by a compiler version other than version is dropped.
func NewStore(path, version string) (Store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	st, err := NewStoreFromDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	old, err := st.SharedVar(versionVar)
	if err != nil && err != ErrNoVar {
		db.Close()
		return nil, err
	}
	if old != version {
		logger.Printf("cache written by version %q, purging for %q", old, version)
		if err := st.Purge(); err != nil {
			db.Close()
			return nil, err
		}
		if err := st.SetSharedVar(versionVar, version); err != nil {
			db.Close()
			return nil, err
		}
	}
	return st, nil
}

// NewStoreFromDB creates a new Store from a bbolt DB.
func NewStoreFromDB(db *bolt.DB) (Store, error) {
	logger.Println("initializing store")
	err := db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dbStore{db}, nil
}

func (s *dbStore) Close() error { return s.db.Close() }

// KeyOf computes the cache key of a compilation.
func KeyOf(version, options, name, code string) Key {
	h := blake3.New()
	for _, s := range []string{version, options, name, code} {
		fmt.Fprintf(h, "%d:%s\n", len(s), s)
	}
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}
