// Package must contains simple functions that panic on errors.
//
// It should only be used in tests and in places where errors are provably
// impossible.
package must

import (
	"os"
	"path/filepath"
)

// OK panics if the error value is not nil.
func OK(err error) {
	if err != nil {
		panic(err)
	}
}

// OK1 panics if the error value is not nil, and returns v otherwise.
func OK1[T any](v T, err error) T {
	OK(err)
	return v
}

// OK2 is like OK1 for functions returning two values and an error.
func OK2[T1, T2 any](v1 T1, v2 T2, err error) (T1, T2) {
	OK(err)
	return v1, v2
}

// ReadFileString wraps os.ReadFile and converts the result to a string.
func ReadFileString(name string) string {
	return string(OK1(os.ReadFile(name)))
}

// WriteFile writes data to a file, after creating all ancestor directories
// that don't exist.
func WriteFile(name, data string) {
	OK(os.MkdirAll(filepath.Dir(name), 0o700))
	OK(os.WriteFile(name, []byte(data), 0o600))
}
