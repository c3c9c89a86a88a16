// Package testutil keeps helpers shared by the tests of sifon packages.
package testutil

import "os"

// Cleanuper wraps the Cleanup method. It is satisfied by [*testing.T] and
// [*testing.B].
type Cleanuper interface {
	Cleanup(func())
}

// Set assigns v to *p, restoring the old value when the test finishes.
func Set[T any](c Cleanuper, p *T, v T) {
	old := *p
	*p = v
	c.Cleanup(func() { *p = old })
}

// Setenv sets an environment variable until the test finishes, and returns
// value.
func Setenv(c Cleanuper, name, value string) string {
	if old, ok := os.LookupEnv(name); ok {
		c.Cleanup(func() { os.Setenv(name, old) })
	} else {
		c.Cleanup(func() { os.Unsetenv(name) })
	}
	os.Setenv(name, value)
	return value
}
