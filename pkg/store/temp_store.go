package store

import (
	"path/filepath"

	"github.com/izreit/sifon/pkg/store/storedefs"
	"github.com/izreit/sifon/pkg/testutil"
)

// MustTempStore returns a Store backed by a file in a temporary directory,
// which is closed when the test ends.
func MustTempStore(c testutil.Cleanuper) storedefs.Store {
	st, err := NewStore(filepath.Join(testutil.TempDir(c), "cache.db"), "test")
	if err != nil {
		panic(err)
	}
	c.Cleanup(func() { st.Close() })
	return st
}
