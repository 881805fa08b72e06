package catalog

import "errors"

// Sentinel errors per the error-kind table: InvalidInput, Decode (owned
// by the ingestion coordinator, not the store), AlreadyExists, NotFound,
// Timeout, Transient, Corruption. Compare with errors.Is.
var (
	ErrInvalidInput = errors.New("catalog: invalid input")
	ErrAlreadyExists = errors.New("catalog: track already exists")
	ErrNotFound      = errors.New("catalog: not found")
	ErrTimeout       = errors.New("catalog: operation timed out")
	ErrTransient     = errors.New("catalog: transient backend error")
	ErrCorruption    = errors.New("catalog: integrity check failed")
	ErrLayoutMismatch = errors.New("catalog: index built with an incompatible hash layout")
)
