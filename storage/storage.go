// Package storage defines the host environment's persistent key-value
// capability and provides an in-memory implementation. The session store
// treats any failure from a Storage as non-fatal.
package storage

// Storage is a string-keyed persistence capability. Get returns the empty
// string for absent keys; absence is a valid "no session" state, not an
// error.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}
