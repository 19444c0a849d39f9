package store

import "fmt"

// StorageError wraps a failed storage round-trip. Callers route these through
// the resilience layer rather than surfacing them to the user.
type StorageError struct {
	Op  string // e.g. "struggle.upsert"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
