package storetest

import (
	"testing"

	. "github.com/izreit/sifon/pkg/store/storedefs"
)

// TestSharedVar tests the shared variable functionality of a Store.
func TestSharedVar(t *testing.T, st Store) {
	const (
		varname = "foo"
		value1  = "lorem ipsum"
		value2  = "o mores, o tempora"
	)

	if _, err := st.SharedVar(varname); !isErr(err, ErrNoVar) {
		t.Error("want ErrNoVar, got", err)
	}
	if err := st.SetSharedVar(varname, value1); err != nil {
		t.Error("want no error, got", err)
	}
	if v, err := st.SharedVar(varname); v != value1 || err != nil {
		t.Errorf("want %q and no error, got %q and %v", value1, v, err)
	}
	if err := st.SetSharedVar(varname, value2); err != nil {
		t.Error("want no error, got", err)
	}
	if v, err := st.SharedVar(varname); v != value2 || err != nil {
		t.Errorf("want %q and no error, got %q and %v", value2, v, err)
	}
	if err := st.DelSharedVar(varname); err != nil {
		t.Error("want no error, got", err)
	}
	if _, err := st.SharedVar(varname); !isErr(err, ErrNoVar) {
		t.Error("want ErrNoVar, got", err)
	}
}
