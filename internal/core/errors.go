package core

import "errors"

// Store and session failures. Layers wrap these with fmt.Errorf("...: %w", err)
// and callers match them with errors.Is.
var (
	// ErrStoreUnavailable means the row store could not be read or written.
	ErrStoreUnavailable = errors.New("row store unavailable")
	// ErrParse marks a row that could not be mapped to a Batch. Such rows are dropped on read.
	ErrParse = errors.New("row parse error")
	// ErrPersistence means a write did not land.
	ErrPersistence = errors.New("persistence error")
	// ErrConcurrentModification means the table changed between load and replace.
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrNotFound               = errors.New("batch not found")
	ErrInvalidCredentials     = errors.New("invalid credentials")
)

// IsValidation reports whether err is one of the input validation errors.
func IsValidation(err error) bool {
	for _, target := range []error{ErrInvalidDate, ErrInvalidAmount, ErrEmptyName, ErrEmptyCategory, ErrEmptyClass, ErrEmptyPatch, ErrNameTooLong} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
