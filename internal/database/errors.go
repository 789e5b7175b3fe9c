package database

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned by id-based reads that match nothing.
// Dangling references never surface as an error: the reconciliation
// engine checks Exists before writing and skips the write instead.
var ErrNotFound = errors.New("record not found")

// notFound maps gorm's sentinel onto ours so callers never import gorm
// just to classify an error.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
