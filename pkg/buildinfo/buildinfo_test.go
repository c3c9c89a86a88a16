package buildinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
	"testing"

	. "github.com/izreit/sifon/pkg/prog/progtest"
	"github.com/izreit/sifon/pkg/tt"
)

func TestProgram(t *testing.T) {
	Test(t, &Program{},
		ThatSifon("-version").WritesStdout(Value.Version+"\n"),
		ThatSifon("-version", "-json").WritesStdout(mustToJSON(Value.Version)+"\n"),

		ThatSifon("-buildinfo").WritesStdout(
			fmt.Sprintf(
				"Version: %v\nGo version: %v\n", Value.Version, Value.GoVersion)),
		ThatSifon("-buildinfo", "-json").WritesStdout(mustToJSON(Value)+"\n"),

		ThatSifon().ExitsWith(2).WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestValue_BuiltFromVersionBase(t *testing.T) {
	if !strings.HasPrefix(Value.Version, VersionBase) {
		t.Errorf("Value.Version = %q, want prefix %q", Value.Version, VersionBase)
	}
}

func buildInfo(main string, settings ...string) func() (*debug.BuildInfo, bool) {
	return func() (*debug.BuildInfo, bool) {
		bi := &debug.BuildInfo{Main: debug.Module{Version: main}}
		for i := 0; i+1 < len(settings); i += 2 {
			bi.Settings = append(bi.Settings, debug.BuildSetting{Key: settings[i], Value: settings[i+1]})
		}
		return bi, true
	}
}

func noBuildInfo() (*debug.BuildInfo, bool) { return nil, false }

func TestDevVersion(t *testing.T) {
	const next = "0.3.0"
	vcs := func(rev, time, modified string) []string {
		return []string{"vcs.revision", rev, "vcs.time", time, "vcs.modified", modified}
	}
	tt.Test(t, tt.Fn("devVersion", devVersion), tt.Table{
		tt.Args(next, "", noBuildInfo).Rets("0.3.0-dev.unknown"),
		tt.Args(next, "", buildInfo("(devel)")).Rets("0.3.0-dev.unknown"),
		tt.Args(next, "", buildInfo("")).Rets("0.3.0-dev.unknown"),
		// go install github.com/izreit/sifon/cmd/sifon@v0.3.1
		tt.Args(next, "", buildInfo("v0.3.1")).Rets("0.3.1"),
		tt.Args(next, "", buildInfo("(devel)", vcs("1234567890abcdef", "2026-10-19T08:30:00Z", "false")...)).
			Rets("0.3.0-dev.0.20261019083000-1234567890ab"),
		tt.Args(next, "", buildInfo("(devel)", vcs("1234567890abcdef", "2026-10-19T08:30:00Z", "true")...)).
			Rets("0.3.0-dev.0.20261019083000-1234567890ab-dirty"),
		// commit times in other zones are normalized to UTC
		tt.Args(next, "", buildInfo("(devel)", vcs("1234567890abcdef", "2026-10-19T10:30:00+02:00", "false")...)).
			Rets("0.3.0-dev.0.20261019083000-1234567890ab"),
		// short revisions are kept whole
		tt.Args(next, "", buildInfo("(devel)", vcs("abc123", "2026-10-19T08:30:00Z", "false")...)).
			Rets("0.3.0-dev.0.20261019083000-abc123"),
		tt.Args(next, "", buildInfo("(devel)", vcs("1234567890abcdef", "last tuesday", "false")...)).
			Rets("0.3.0-dev.unknown"),
		tt.Args(next, "", buildInfo("(devel)", "vcs.time", "2026-10-19T08:30:00Z")).
			Rets("0.3.0-dev.unknown"),
		// an override wins over anything the build recorded
		tt.Args(next, "20261019083000-cafe", buildInfo("v0.3.1")).Rets("0.3.0-dev.0.20261019083000-cafe"),
		tt.Args(next, "20261019083000-cafe", noBuildInfo).Rets("0.3.0-dev.0.20261019083000-cafe"),
	})
}
