package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

type cleanuper struct{ fns []func() }

func (c *cleanuper) Cleanup(fn func()) { c.fns = append(c.fns, fn) }

func (c *cleanuper) runCleanups() {
	for i := len(c.fns) - 1; i >= 0; i-- {
		c.fns[i]()
	}
}

func TestTempDir_IsDirAndCleanedUp(t *testing.T) {
	c := &cleanuper{}
	dir := TempDir(c)
	stat, err := os.Stat(dir)
	if err != nil || !stat.IsDir() {
		t.Fatalf("TempDir returns %q which is not a directory", dir)
	}
	if err := os.WriteFile(filepath.Join(dir, "a"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	c.runCleanups()
	if _, err := os.Stat(dir); err == nil {
		t.Errorf("dir %q still exists after cleanup", dir)
	}
}

func TestInTempDir_RestoresWd(t *testing.T) {
	original, _ := os.Getwd()
	c := &cleanuper{}
	dir := InTempDir(c)
	if wd, _ := os.Getwd(); wd != dir {
		t.Errorf("wd is %q, want %q", wd, dir)
	}
	c.runCleanups()
	if wd, _ := os.Getwd(); wd != original {
		t.Errorf("wd restored to %q, want %q", wd, original)
	}
}

func TestApplyDir(t *testing.T) {
	InTempDir(t)
	ApplyDir(Dir{
		"sifon.yaml": "reduce: true\n",
		"src":        Dir{"a.sfn": "x .= 1\n"},
	})
	got, err := os.ReadFile(filepath.Join("src", "a.sfn"))
	if err != nil || string(got) != "x .= 1\n" {
		t.Errorf("src/a.sfn = %q, %v", got, err)
	}
}
