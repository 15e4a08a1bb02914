package repository

import "errors"

var (
	// ErrFileNotFound signals that the file could not be located.
	ErrFileNotFound = errors.New("file not found")
	// ErrInvalidName rejects file names that would escape the team
	// namespace.
	ErrInvalidName = errors.New("invalid file name")
)
