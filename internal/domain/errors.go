package domain

import (
	"errors"
	"fmt"
)

// Credit and catalog errors
var (
	ErrAccountNotFound     = errors.New("credit account not found")
	ErrQuotaLookup         = errors.New("credit quota lookup failed")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrLogoNotFound        = errors.New("logo not found")
)

// Transfer errors
var (
	ErrNotAuthenticated = errors.New("no live session for account")
	ErrAssetNotFound    = errors.New("guest asset not found")
)

// StorageError wraps a failure of the embedded guest store. Save surfaces it
// to the caller; cleanup paths log and move on instead.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("guest store %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
