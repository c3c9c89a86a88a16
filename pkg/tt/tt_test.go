package tt

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// recorder implements T and keeps the reported errors.
type recorder []string

func (r *recorder) Helper() {}

func (r *recorder) Errorf(format string, args ...any) {
	*r = append(*r, fmt.Sprintf(format, args...))
}

func add(x, y int) int { return x + y }

func addsub(x, y int) (int, int) { return x + y, x - y }

func failIfNil(p *int) error {
	if p == nil {
		return errors.New("nil pointer given")
	}
	return nil
}

func TestPass(t *testing.T) {
	var r recorder
	Test(&r, Fn("addsub", addsub), Table{
		Args(1, 10).Rets(11, -9),
		Args(3, 3).Rets(Any, 0),
	})
	if len(r) > 0 {
		t.Errorf("Test reported errors for passing cases: %v", r)
	}
}

func TestFailOneReturn(t *testing.T) {
	var r recorder
	Test(&r, Fn("add", add), Table{Args(1, 10).Rets(12)})
	assertOneError(t, r, "add(1, 10) returns (-want +got):\n")
}

func TestFailCustomArgsFmt(t *testing.T) {
	var r recorder
	Test(&r, Fn("addsub", addsub).ArgsFmt("x = %d, y = %d"), Table{
		Args(1, 10).Rets(11, -90),
	})
	assertOneError(t, r, "addsub(x = 1, y = 10) returns (-want +got):\n")
}

func TestNilArgumentAndErrorMatcher(t *testing.T) {
	var r recorder
	Test(&r, Fn("failIfNil", failIfNil), Table{
		Args(nil).Rets(ErrorMatching("nil pointer")),
	})
	if len(r) > 0 {
		t.Errorf("Test reported errors: %v", r)
	}
}

func assertOneError(t *testing.T, r recorder, wantPrefix string) {
	t.Helper()
	switch len(r) {
	case 0:
		t.Errorf("Test didn't error when it should have done so")
	case 1:
		if !strings.HasPrefix(r[0], wantPrefix) {
			t.Errorf("Test wrote message:\nwant prefix: %q\ngot: %q", wantPrefix, r[0])
		}
	default:
		t.Errorf("Test wrote too many error messages: %v", r)
	}
}
