// Package storetest keeps test suites that any storedefs.Store should pass.
package storetest

import "errors"

// isErr reports whether err is want, or both are nil.
func isErr(err, want error) bool {
	if want == nil {
		return err == nil
	}
	return errors.Is(err, want)
}
