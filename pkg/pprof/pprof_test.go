package pprof_test

import (
	"os"
	"testing"

	"github.com/izreit/sifon/pkg/pprof"
	"github.com/izreit/sifon/pkg/prog"
	"github.com/izreit/sifon/pkg/prog/progtest"
	"github.com/izreit/sifon/pkg/testutil"
)

var (
	Test      = progtest.Test
	ThatSifon = progtest.ThatSifon
)

func TestProgram(t *testing.T) {
	testutil.InTempDir(t)

	Test(t, prog.Composite(&pprof.Program{}, noopProgram{}),
		ThatSifon("-cpuprofile", "cpuprof").DoesNothing(),
		ThatSifon("-cpuprofile", "/a/bad/path").
			WritesStderrContaining("Warning: cannot create CPU profile:"),
		ThatSifon("-allocsprofile", "allocsprof").DoesNothing(),
		ThatSifon("-allocsprofile", "/a/bad/path").
			WritesStderrContaining("Warning: cannot create memory allocation profile:"),
	)

	// Check for the effect of the flags. There isn't much to test beyond a
	// sanity check that the profile files now exist.
	for _, name := range []string{"cpuprof", "allocsprof"} {
		if _, err := os.Stat(name); err != nil {
			t.Errorf("profile file %s does not exist: %v", name, err)
		}
	}
}

type noopProgram struct{}

func (noopProgram) RegisterFlags(*prog.FlagSet)     {}
func (noopProgram) Run([3]*os.File, []string) error { return nil }
