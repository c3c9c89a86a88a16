// Package storedefs contains definitions of the store API.
//
// It is a separate package so that packages that only depend on the store API
// does not need to depend on the concrete implementation.
package storedefs

import "errors"

// ErrNoCode is returned when there is no code cached under a key.
var ErrNoCode = errors.New("no cached code")

// ErrNoVar is returned by SharedVar when there is no such variable.
var ErrNoVar = errors.New("no such variable")

// Key identifies one compilation: the compiler version, the options, the
// file name and the source.
type Key [32]byte

// Store is an interface satisfied by the compile cache.
type Store interface {
	Code(key Key) (string, error)
	PutCode(key Key, code string) error
	DelCode(key Key) error
	NumCodes() (int, error)
	Purge() error

	SharedVar(name string) (string, error)
	SetSharedVar(name, value string) error
	DelSharedVar(name string) error

	Close() error
}
