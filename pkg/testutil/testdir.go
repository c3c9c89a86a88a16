package testutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// TempDir creates a temporary directory for testing that will be removed
// after the test finishes. The path has symlinks resolved.
func TempDir(c Cleanuper) string {
	dir, err := os.MkdirTemp("", "sifontest.")
	if err != nil {
		panic(err)
	}
	dir, err = filepath.EvalSymlinks(dir)
	if err != nil {
		panic(err)
	}
	c.Cleanup(func() {
		if err := os.RemoveAll(dir); err != nil {
			fmt.Fprintln(os.Stderr, "failed to remove temp dir", dir)
		}
	})
	return dir
}

// InTempDir is like TempDir, but also changes into the directory. The
// working directory is restored after the test finishes.
func InTempDir(c Cleanuper) string {
	dir := TempDir(c)
	Chdir(c, dir)
	return dir
}

// Chdir changes into a directory, and restores the original working
// directory when a test ends.
func Chdir(c Cleanuper, dir string) string {
	oldWd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	if err := os.Chdir(dir); err != nil {
		panic(err)
	}
	c.Cleanup(func() {
		if err := os.Chdir(oldWd); err != nil {
			fmt.Fprintln(os.Stderr, "failed to restore wd", oldWd)
		}
	})
	return dir
}

// Dir describes the layout of a directory. Keys are file names; values are
// either a string, the content of a regular file, or a nested Dir.
type Dir map[string]any

// ApplyDir creates the layout of dir in the working directory.
func ApplyDir(dir Dir) { ApplyDirIn(dir, "") }

// ApplyDirIn creates the layout of dir under root.
func ApplyDirIn(dir Dir, root string) {
	for name, file := range dir {
		path := filepath.Join(root, name)
		switch file := file.(type) {
		case string:
			if err := os.WriteFile(path, []byte(file), 0o644); err != nil {
				panic(err)
			}
		case Dir:
			if err := os.MkdirAll(path, 0o755); err != nil {
				panic(err)
			}
			ApplyDirIn(file, path)
		default:
			panic(fmt.Sprintf("file is neither string nor Dir: %v", file))
		}
	}
}
