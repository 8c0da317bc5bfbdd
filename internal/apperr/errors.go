// Package apperr defines the sentinel errors shared across the engine.
package apperr

import "errors"

var (
	ErrInvalidPath   = errors.New("invalid path")
	ErrNotFound      = errors.New("not found")
	ErrNameCollision = errors.New("name collision")
	ErrAlreadyExists = errors.New("already exists")
	ErrScan          = errors.New("vault scan failed")
	ErrStorageWrite  = errors.New("storage write failed")
	ErrRenameFailed  = errors.New("rename failed")
)
