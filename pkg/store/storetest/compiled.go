package storetest

import (
	"testing"

	. "github.com/izreit/sifon/pkg/store/storedefs"
)

// TestCompiled tests the compiled code functionality of a Store.
func TestCompiled(t *testing.T, st Store) {
	k1, k2 := Key{1}, Key{2}

	if _, err := st.Code(k1); !isErr(err, ErrNoCode) {
		t.Errorf("Code(k1) -> error %v, want %v", err, ErrNoCode)
	}
	for _, kc := range []struct {
		key  Key
		code string
	}{{k1, "a;"}, {k2, "b;"}, {k1, "c;"}} {
		if err := st.PutCode(kc.key, kc.code); err != nil {
			t.Errorf("PutCode(%v) -> error %v", kc.key, err)
		}
	}
	if code, err := st.Code(k1); code != "c;" || err != nil {
		t.Errorf("Code(k1) -> (%q, %v), want (%q, nil)", code, err, "c;")
	}
	if n, err := st.NumCodes(); n != 2 || err != nil {
		t.Errorf("NumCodes() -> (%d, %v), want (2, nil)", n, err)
	}

	if err := st.DelCode(k2); err != nil {
		t.Errorf("DelCode(k2) -> error %v", err)
	}
	if _, err := st.Code(k2); !isErr(err, ErrNoCode) {
		t.Errorf("Code(k2) after DelCode -> error %v, want %v", err, ErrNoCode)
	}

	if err := st.Purge(); err != nil {
		t.Errorf("Purge() -> error %v", err)
	}
	if n, err := st.NumCodes(); n != 0 || err != nil {
		t.Errorf("NumCodes() after Purge -> (%d, %v), want (0, nil)", n, err)
	}
}
