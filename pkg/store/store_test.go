package store_test

import (
	"path/filepath"
	"testing"

	"github.com/izreit/sifon/pkg/store"
	"github.com/izreit/sifon/pkg/store/storedefs"
	"github.com/izreit/sifon/pkg/store/storetest"
	"github.com/izreit/sifon/pkg/testutil"
)

func TestCompiled(t *testing.T) {
	storetest.TestCompiled(t, store.MustTempStore(t))
}

func TestSharedVar(t *testing.T) {
	storetest.TestSharedVar(t, store.MustTempStore(t))
}

func TestNewStore_PurgesOnVersionChange(t *testing.T) {
	path := filepath.Join(testutil.TempDir(t), "cache.db")
	key := store.KeyOf("1", "", "a.sifon", "x")

	st, err := store.NewStore(path, "1")
	if err != nil {
		t.Fatal(err)
	}
	if err := st.PutCode(key, "x;"); err != nil {
		t.Fatal(err)
	}
	st.Close()

	// Same version keeps the code.
	st, err = store.NewStore(path, "1")
	if err != nil {
		t.Fatal(err)
	}
	if code, err := st.Code(key); code != "x;" || err != nil {
		t.Errorf("got (%q, %v)", code, err)
	}
	st.Close()

	st, err = store.NewStore(path, "2")
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if _, err := st.Code(key); err != storedefs.ErrNoCode {
		t.Errorf("got error %v, want ErrNoCode", err)
	}
	if v, _ := st.SharedVar("version"); v != "2" {
		t.Errorf("got version %q", v)
	}
}

func TestKeyOf(t *testing.T) {
	base := store.KeyOf("1", "O", "a", "code")
	if base != store.KeyOf("1", "O", "a", "code") {
		t.Errorf("KeyOf is not deterministic")
	}
	for _, k := range []storedefs.Key{
		store.KeyOf("2", "O", "a", "code"),
		store.KeyOf("1", "", "a", "code"),
		store.KeyOf("1", "O", "b", "code"),
		store.KeyOf("1", "O", "a", "code2"),
		// Boundaries between the parts matter.
		store.KeyOf("1", "Oa", "", "code"),
	} {
		if k == base {
			t.Errorf("got a colliding key")
		}
	}
}
