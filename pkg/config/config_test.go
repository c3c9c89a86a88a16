package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/izreit/sifon/pkg/must"
	"github.com/izreit/sifon/pkg/testutil"
)

func TestDecode(t *testing.T) {
	cfg, err := Decode(strings.NewReader(testutil.Dedent(`
		reduce: true
		cache: .cache/sifon.db
		color: never
		`)))
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{StdMacros: true, Reduce: true, Cache: ".cache/sifon.db", Color: "never"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestDecode_Empty(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestDecode_Errors(t *testing.T) {
	for _, src := range []string{
		"no-such-key: 1\n",
		"color: sometimes\n",
		"reduce: [1]\n",
	} {
		if _, err := Decode(strings.NewReader(src)); err == nil {
			t.Errorf("%q: want an error", src)
		}
	}
}

func TestLoad_WalksUp(t *testing.T) {
	dir := testutil.TempDir(t)
	must.WriteFile(filepath.Join(dir, FileName), "std-macros: false\nout-dir: build\n")
	sub := filepath.Join(dir, "a", "b")
	must.OK(os.MkdirAll(sub, 0o755))

	cfg, err := Load(sub)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StdMacros || cfg.OutDir != filepath.Join(dir, "build") || cfg.Path != filepath.Join(dir, FileName) {
		t.Errorf("got %+v", cfg)
	}
}

func TestLoad_Default(t *testing.T) {
	cfg, err := Load(testutil.TempDir(t))
	if err != nil {
		t.Fatal(err)
	}
	// A sifon.yaml above the temporary directory would be picked up, so only
	// check when none was found.
	if cfg.Path == "" {
		if diff := cmp.Diff(Default(), cfg); diff != "" {
			t.Errorf("config (-want +got):\n%s", diff)
		}
	}
}
